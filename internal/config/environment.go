package config

import (
	"log/slog"
	"os"
	"strings"
)

// IsDevelopment reports whether the log format is set to text, which is
// what local setups use.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Log.Format, "text")
}

// LogLevel maps the configured level name to a slog level. Unknown names
// fall back to info.
func (c LogConfig) LogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger from the log section
func (c LogConfig) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel()}
	if strings.EqualFold(c.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
