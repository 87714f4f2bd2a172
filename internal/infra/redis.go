package infra

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// NewRedis creates and validates the go-redis client shared by the job
// queues and the ultimo-cambio cache.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	// Validate connectivity at startup
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}
