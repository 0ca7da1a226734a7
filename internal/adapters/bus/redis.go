// Package bus carries global frames between relay nodes over Redis pub/sub.
package bus

import (
	"context"
	"fmt"

	"github.com/dkeye/Collab/internal/core"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// RedisBus publishes every frame on one channel; each node, the publisher included,
// receives it through its own subscription.
type RedisBus struct {
	client  *redis.Client
	channel string
}

func NewRedisBus(ctx context.Context, cfg RedisConfig) (*RedisBus, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	channel := cfg.Channel
	if channel == "" {
		channel = "collab:global"
	}
	return &RedisBus{client: client, channel: channel}, nil
}

func (b *RedisBus) Publish(ctx context.Context, f core.Frame) error {
	return b.client.Publish(ctx, b.channel, []byte(f)).Err()
}

// Subscribe returns once the subscription is confirmed; delivery runs until ctx ends.
func (b *RedisBus) Subscribe(ctx context.Context, fn func(core.Frame)) error {
	sub := b.client.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				fn(core.Frame(msg.Payload))
			}
		}
	}()
	log.Info().Str("module", "adapters.bus").Str("channel", b.channel).Msg("subscribed")
	return nil
}

func (b *RedisBus) Close() error {
	return b.client.Close()
}
