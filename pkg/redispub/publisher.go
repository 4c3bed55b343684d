// Package redispub publishes JSON messages on a Redis pub/sub channel.
package redispub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrRedisNotReady = errors.New("redispub: redis not ready")

// Config holds the connection settings
type Config struct {
	Addr           string
	Password       string
	DB             int
	Channel        string
	ConnectTimeout time.Duration
	RetryAttempts  int
	RetryInterval  time.Duration
}

// Publisher writes messages to one channel
type Publisher struct {
	client  redis.UniversalClient
	channel string
}

// Connect dials Redis, retrying until it answers a PING or the attempts
// run out.
func Connect(ctx context.Context, cfg Config) (*Publisher, error) {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 500 * time.Millisecond
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	for i := 0; i < cfg.RetryAttempts; i++ {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		if err := client.Ping(ctx).Err(); err == nil {
			return NewPublisher(client, cfg.Channel), nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrRedisNotReady, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}
	return nil, ErrRedisNotReady
}

// NewPublisher wraps an existing client
func NewPublisher(client redis.UniversalClient, channel string) *Publisher {
	return &Publisher{client: client, channel: channel}
}

// Channel returns the channel messages are published on
func (p *Publisher) Channel() string {
	return p.channel
}

// Publish JSON-encodes v and publishes it
func (p *Publisher) Publish(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.channel, err)
	}
	return nil
}

// Close closes the underlying client
func (p *Publisher) Close() error {
	return p.client.Close()
}
