package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*BlogListCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := NewRedisClient(context.Background(), mr.Addr(), "")
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })
	return NewBlogListCache(rdb, time.Minute), mr
}

func TestBlogListCacheRoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Zero(t, gen)

	require.NoError(t, c.Set(ctx, gen, []byte(`[]`)))
	body, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, string(body))
	assert.Equal(t, time.Minute, mr.TTL(blogListKey))
}

func TestBlogListCacheInvalidate(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 0, []byte(`[{"title":"a"}]`)))
	require.NoError(t, c.Invalidate(ctx))

	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)
}

func TestBlogListCacheDropsStaleBody(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	// a list read before the mutation finishes after it
	before, err := c.Generation(ctx)
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx))
	require.NoError(t, c.Set(ctx, before, []byte(`[{"title":"deleted"}]`)))

	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	after, err := c.Generation(ctx)
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, after, []byte(`[]`)))
	body, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, string(body))
}

func TestNewRedisClientUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisClient(context.Background(), addr, "")
	assert.Error(t, err)
}
