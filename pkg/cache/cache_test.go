package cache_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mvc/pkg/cache"
	"github.com/dmitrymomot/mvc/pkg/redis"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newMemory[V any](t *testing.T, opts ...cache.MemoryOption) (*cache.Memory[V], *clock) {
	t.Helper()
	clk := &clock{now: time.Unix(1_700_000_000, 0)}
	m := cache.NewMemory[V](append([]cache.MemoryOption{
		cache.WithMemoryClock(clk.Now),
		cache.WithCleanupInterval(0),
	}, opts...)...)
	t.Cleanup(func() { _ = m.Close() })
	return m, clk
}

// --- Memory ---

func TestMemory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("get set delete", func(t *testing.T) {
		t.Parallel()

		m, _ := newMemory[string](t)
		_, err := m.Get(ctx, "k")
		require.ErrorIs(t, err, cache.ErrNotFound)

		require.NoError(t, m.Set(ctx, "k", "v", 0))
		v, err := m.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "v", v)

		ok, err := m.Has(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)

		require.NoError(t, m.Delete(ctx, "k"))
		ok, _ = m.Has(ctx, "k")
		assert.False(t, ok)
	})

	t.Run("expiry", func(t *testing.T) {
		t.Parallel()

		m, clk := newMemory[[]byte](t)
		require.NoError(t, m.Set(ctx, "page", []byte("<html>"), 10*time.Second))

		clk.Add(9 * time.Second)
		_, err := m.Get(ctx, "page")
		require.NoError(t, err)

		clk.Add(time.Second)
		_, err = m.Get(ctx, "page")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("default and infinite ttl", func(t *testing.T) {
		t.Parallel()

		m, clk := newMemory[int](t, cache.WithDefaultTTL(time.Minute))
		require.NoError(t, m.Set(ctx, "default", 1, 0))
		require.NoError(t, m.Set(ctx, "forever", 2, -1))

		clk.Add(2 * time.Minute)
		_, err := m.Get(ctx, "default")
		require.ErrorIs(t, err, cache.ErrNotFound)
		v, err := m.Get(ctx, "forever")
		require.NoError(t, err)
		assert.Equal(t, 2, v)
	})

	t.Run("lru eviction", func(t *testing.T) {
		t.Parallel()

		m, _ := newMemory[int](t, cache.WithMaxEntries(2))
		require.NoError(t, m.Set(ctx, "a", 1, 0))
		require.NoError(t, m.Set(ctx, "b", 2, 0))
		_, _ = m.Get(ctx, "a")
		require.NoError(t, m.Set(ctx, "c", 3, 0))

		assert.Equal(t, 2, m.Len())
		_, err := m.Get(ctx, "b")
		require.ErrorIs(t, err, cache.ErrNotFound)
		_, err = m.Get(ctx, "a")
		require.NoError(t, err)
	})

	t.Run("clear and close", func(t *testing.T) {
		t.Parallel()

		m, _ := newMemory[int](t)
		require.NoError(t, m.Set(ctx, "a", 1, 0))
		require.NoError(t, m.Clear(ctx))
		assert.Zero(t, m.Len())

		require.NoError(t, m.Close())
		require.NoError(t, m.Close())
		require.ErrorIs(t, m.Set(ctx, "a", 1, 0), cache.ErrClosed)
	})
}

// --- GetOrSet ---

func TestGetOrSet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("loads once then hits", func(t *testing.T) {
		t.Parallel()

		m, _ := newMemory[string](t)
		var calls atomic.Int32
		load := func(context.Context) (string, time.Duration, error) {
			calls.Add(1)
			return "default", time.Minute, nil
		}

		v, err := cache.GetOrSet[string](ctx, m, "core.view.default", load)
		require.NoError(t, err)
		assert.Equal(t, "default", v)

		v, err = cache.GetOrSet[string](ctx, m, "core.view.default", load)
		require.NoError(t, err)
		assert.Equal(t, "default", v)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("errors are not cached", func(t *testing.T) {
		t.Parallel()

		m, _ := newMemory[string](t)
		boom := errors.New("boom")
		_, err := cache.GetOrSet[string](ctx, m, "k", func(context.Context) (string, time.Duration, error) {
			return "", 0, boom
		})
		require.ErrorIs(t, err, boom)
		assert.Zero(t, m.Len())
	})

	t.Run("same key on caches of different types", func(t *testing.T) {
		t.Parallel()

		strs, _ := newMemory[string](t)
		ints, _ := newMemory[int](t)

		s, err := cache.GetOrSet[string](ctx, strs, "shared", func(context.Context) (string, time.Duration, error) {
			return "s", 0, nil
		})
		require.NoError(t, err)
		i, err := cache.GetOrSet[int](ctx, ints, "shared", func(context.Context) (int, time.Duration, error) {
			return 7, 0, nil
		})
		require.NoError(t, err)
		assert.Equal(t, "s", s)
		assert.Equal(t, 7, i)
	})
}

// --- New ---

func TestNew(t *testing.T) {
	t.Parallel()

	c, err := cache.New[int](cache.Config{}, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &cache.Memory[int]{}, c)
	_ = c.Close()

	_, err = cache.New[int](cache.Config{Backend: cache.BackendRedis}, nil, nil)
	require.ErrorIs(t, err, cache.ErrNoRedisClient)

	_, err = cache.New[int](cache.Config{Backend: "memcached"}, nil, nil)
	require.ErrorIs(t, err, cache.ErrUnknownBackend)
}

func TestRaw(t *testing.T) {
	t.Parallel()

	b, err := cache.Raw{}.Marshal([]byte("<p>hi</p>"))
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", string(b))
}

// --- Redis ---

func TestRedis(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}

	ctx := context.Background()
	client, err := redis.Open(ctx, redis.Config{URL: url})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	c, err := cache.New[[]byte](cache.Config{Backend: cache.BackendRedis, Prefix: "mvc-test-pages"}, client, cache.Raw{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Clear(ctx) })

	_, err = c.Get(ctx, "missing")
	require.ErrorIs(t, err, cache.ErrNotFound)

	require.NoError(t, c.Set(ctx, "page", []byte("<html>"), time.Minute))
	v, err := c.Get(ctx, "page")
	require.NoError(t, err)
	assert.Equal(t, "<html>", string(v))

	ok, err := c.Has(ctx, "page")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, c.Clear(ctx))
	ok, err = c.Has(ctx, "page")
	require.NoError(t, err)
	assert.False(t, ok)
}
