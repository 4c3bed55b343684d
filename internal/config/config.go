package config

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Lottery LotteryConfig `mapstructure:"lottery"`
	VRF     VRFConfig     `mapstructure:"vrf"`
	Payout  PayoutConfig  `mapstructure:"payout"`
	Storage StorageConfig `mapstructure:"storage"`
	Redis   RedisConfig   `mapstructure:"redis"`
	JWT     JWTConfig     `mapstructure:"jwt"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Keeper  KeeperConfig  `mapstructure:"keeper"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LotteryConfig is fixed for the lifetime of the lottery
type LotteryConfig struct {
	EntranceFeeWei string        `mapstructure:"entrance_fee_wei"`
	Interval       time.Duration `mapstructure:"interval"`
}

// EntranceFee parses EntranceFeeWei as a base-10 integer
func (c LotteryConfig) EntranceFee() (*big.Int, error) {
	fee, ok := new(big.Int).SetString(strings.TrimSpace(c.EntranceFeeWei), 10)
	if !ok || fee.Sign() <= 0 {
		return nil, fmt.Errorf("invalid entrance fee %q", c.EntranceFeeWei)
	}
	return fee, nil
}

// VRFConfig holds the randomness oracle settings
type VRFConfig struct {
	Mode                 string        `mapstructure:"mode"`
	URL                  string        `mapstructure:"url"`
	CallbackURL          string        `mapstructure:"callback_url"`
	KeyHash              string        `mapstructure:"key_hash"`
	CallbackGasLimit     uint32        `mapstructure:"callback_gas_limit"`
	RequestConfirmations uint16        `mapstructure:"request_confirmations"`
	NumWords             uint32        `mapstructure:"num_words"`
	AutoFulfillDelay     time.Duration `mapstructure:"auto_fulfill_delay"`
	Timeout              time.Duration `mapstructure:"timeout"`
}

// PayoutConfig holds the payout gateway settings
type PayoutConfig struct {
	Mode    string        `mapstructure:"mode"`
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	Driver        string `mapstructure:"driver"`
	MongoURI      string `mapstructure:"mongo_uri"`
	MongoDatabase string `mapstructure:"mongo_database"`
	BoltPath      string `mapstructure:"bolt_path"`
}

// RedisConfig holds the notification publisher settings
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string        `mapstructure:"secret"`
	ExpiresIn time.Duration `mapstructure:"expires_in"`
}

// AuthConfig holds operator credentials
type AuthConfig struct {
	OperatorPasswordHash  string `mapstructure:"operator_password_hash"`
	AllowAnonymousPlayers bool   `mapstructure:"allow_anonymous_players"`
}

// KeeperConfig controls the upkeep poller
type KeeperConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// LogConfig controls the slog handler
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from .env, config files and environment variables
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("RAFFLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// setDefaults sets default values for configuration. Every key is
// registered here so AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "4000")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("lottery.entrance_fee_wei", "10000000000000000") // 0.01 ether
	v.SetDefault("lottery.interval", 30*time.Second)

	v.SetDefault("vrf.mode", "mock")
	v.SetDefault("vrf.url", "")
	v.SetDefault("vrf.callback_url", "http://localhost:4000/api/v1/oracle/fulfill")
	v.SetDefault("vrf.key_hash", "0xd89b2bf150e3b9e13446986e571fb9cab24b13cea0a43ea20a6049a85cc807cc")
	v.SetDefault("vrf.callback_gas_limit", 500000)
	v.SetDefault("vrf.request_confirmations", 3)
	v.SetDefault("vrf.num_words", 1)
	v.SetDefault("vrf.auto_fulfill_delay", 2*time.Second)
	v.SetDefault("vrf.timeout", 10*time.Second)

	v.SetDefault("payout.mode", "ledger")
	v.SetDefault("payout.url", "")
	v.SetDefault("payout.api_key", "")
	v.SetDefault("payout.timeout", 10*time.Second)

	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("storage.mongo_database", "raffle")
	v.SetDefault("storage.bolt_path", "raffle.db")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "raffle:notifications")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expires_in", 24*time.Hour)

	v.SetDefault("auth.operator_password_hash", "")
	v.SetDefault("auth.allow_anonymous_players", false)

	v.SetDefault("keeper.enabled", true)
	v.SetDefault("keeper.poll_interval", 5*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate rejects configurations the service cannot start with
func (c *Config) Validate() error {
	if _, err := c.Lottery.EntranceFee(); err != nil {
		return err
	}
	if c.Lottery.Interval <= 0 {
		return fmt.Errorf("lottery interval must be positive, got %s", c.Lottery.Interval)
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt secret is required")
	}
	if c.VRF.NumWords == 0 {
		return errors.New("vrf num_words must be at least 1")
	}
	switch c.VRF.Mode {
	case "mock":
	case "http":
		if c.VRF.URL == "" {
			return errors.New("vrf url is required in http mode")
		}
	default:
		return fmt.Errorf("unknown vrf mode %q", c.VRF.Mode)
	}
	switch c.Payout.Mode {
	case "ledger":
	case "http":
		if c.Payout.URL == "" {
			return errors.New("payout url is required in http mode")
		}
	default:
		return fmt.Errorf("unknown payout mode %q", c.Payout.Mode)
	}
	switch c.Storage.Driver {
	case "memory", "mongo", "bolt":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Keeper.Enabled && c.Keeper.PollInterval <= 0 {
		return errors.New("keeper poll interval must be positive")
	}
	return nil
}
