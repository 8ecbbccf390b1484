package store

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects the client backing BlogListCache. It pings once
// and closes the client again when the server is unreachable, so a bad
// REDIS_ADDR fails start-up instead of every list request.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}
