package redisx

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// NewClient returns a client for the shared rate limiter.
func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		MaxRetries:   -1,
		DialTimeout:  500 * time.Millisecond,
		ReadTimeout:  250 * time.Millisecond,
		WriteTimeout: 250 * time.Millisecond,
	})
}

// Available reports whether Redis answers a PING.
func Available(ctx context.Context, c *redis.Client) bool {
	return c.Ping(ctx).Err() == nil
}
