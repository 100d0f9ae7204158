package cache_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oauthkit/baiduauth/pkg/cache"
)

func TestMemory_SetGet(t *testing.T) {
	t.Parallel()

	c := cache.NewMemory[string](cache.WithCleanupInterval(0))
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v", got)
}

func TestMemory_Miss(t *testing.T) {
	t.Parallel()

	c := cache.NewMemory[string](cache.WithCleanupInterval(0))
	defer c.Close()

	_, err := c.Get(context.Background(), "absent")
	require.ErrorIs(t, err, cache.ErrNotFound)
}

func TestMemory_Expiry(t *testing.T) {
	t.Parallel()

	c := cache.NewMemory[int](cache.WithCleanupInterval(0))
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", 42, time.Millisecond))
	time.Sleep(10 * time.Millisecond)

	_, err := c.Get(ctx, "k")
	require.ErrorIs(t, err, cache.ErrNotFound)
}

func TestMemory_Delete(t *testing.T) {
	t.Parallel()

	c := cache.NewMemory[string](cache.WithCleanupInterval(0))
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))

	_, err := c.Get(ctx, "k")
	require.ErrorIs(t, err, cache.ErrNotFound)

	// Deleting an absent key is fine.
	require.NoError(t, c.Delete(ctx, "k"))
}

func TestMemory_SetAfterClose(t *testing.T) {
	t.Parallel()

	c := cache.NewMemory[string](cache.WithCleanupInterval(0))
	require.NoError(t, c.Close())

	err := c.Set(context.Background(), "k", "v", time.Minute)
	require.ErrorIs(t, err, cache.ErrClosed)
}

func TestGetOrSet(t *testing.T) {
	t.Parallel()

	c := cache.NewMemory[string](cache.WithCleanupInterval(0))
	defer c.Close()
	ctx := context.Background()

	var calls atomic.Int32
	load := func(ctx context.Context) (string, time.Duration, error) {
		calls.Add(1)
		return "loaded", time.Minute, nil
	}

	v, err := cache.GetOrSet(ctx, c, "k", load)
	require.NoError(t, err)
	require.Equal(t, "loaded", v)
	require.Equal(t, int32(1), calls.Load())

	// Second call is served from cache.
	v, err = cache.GetOrSet(ctx, c, "k", load)
	require.NoError(t, err)
	require.Equal(t, "loaded", v)
	require.Equal(t, int32(1), calls.Load())
}
