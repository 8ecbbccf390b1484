package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	blogListKey    = "bloglist:blogs"
	blogListGenKey = "bloglist:blogs:gen"
)

var errStaleGeneration = errors.New("blog list generation changed")

// BlogListCache keeps the encoded GET /api/blogs response in Redis.
//
// Every invalidation bumps a generation counter. A body is only stored if
// the generation read before the list query is still current, so a list
// computed before a mutation can never overwrite the invalidation.
type BlogListCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewBlogListCache(rdb *redis.Client, ttl time.Duration) *BlogListCache {
	return &BlogListCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached body, or ok=false on a miss.
func (c *BlogListCache) Get(ctx context.Context) ([]byte, bool, error) {
	b, err := c.rdb.Get(ctx, blogListKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Generation returns the current invalidation count; zero before the first
// invalidation.
func (c *BlogListCache) Generation(ctx context.Context) (int64, error) {
	return generation(ctx, c.rdb)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func generation(ctx context.Context, cmd getter) (int64, error) {
	n, err := cmd.Get(ctx, blogListGenKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Set stores body if gen is still the current generation. A stale body is
// dropped silently.
func (c *BlogListCache) Set(ctx context.Context, gen int64, body []byte) error {
	err := c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := generation(ctx, tx)
		if err != nil {
			return err
		}
		if cur != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, blogListKey, body, c.ttl)
			return nil
		})
		return err
	}, blogListGenKey)
	if errors.Is(err, errStaleGeneration) || errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

// Invalidate drops the cached list and bumps the generation; called after
// every blog mutation.
func (c *BlogListCache) Invalidate(ctx context.Context) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, blogListGenKey)
		pipe.Del(ctx, blogListKey)
		return nil
	})
	return err
}
