package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/classdesk/classdesk-api/pkg/config"
)

const pingTimeout = 3 * time.Second

// NewRedis connects the client that backs the dashboard cache and the
// document-change fan-out between instances. Both callers tolerate redis
// being absent, so reachability is verified eagerly here and the caller
// decides whether to degrade.
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:       fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:   cfg.Password,
		DB:         cfg.DB,
		ClientName: "classdesk-api",
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis unreachable at %s: %w", client.Options().Addr, err)
	}

	return client, nil
}
