package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var errNoClient = errors.New("redis client not configured")

type Options struct {
	Addr     string
	Password string
	DB       int
	// Zero means the go-redis default.
	DialTimeout time.Duration
}

// NewRedisClient returns a client that has answered a PING. The same client
// backs the ingest stream producer and the health check.
func NewRedisClient(ctx context.Context, opts Options) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: opts.DialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return client, nil
}

type Pinger struct {
	Client *redis.Client
}

func (p Pinger) Ping(ctx context.Context) error {
	if p.Client == nil {
		return errNoClient
	}
	return p.Client.Ping(ctx).Err()
}
