package pagecache_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mvc/pkg/cache"
	"github.com/dmitrymomot/mvc/pkg/pagecache"
)

func TestKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "sc_12-abc_page_/news?page=2", pagecache.Key("12-abc", "/news?page=2"))
	assert.Equal(t, "sc__page_/", pagecache.Key("", "/"))
}

func TestCacheable(t *testing.T) {
	t.Parallel()

	assert.True(t, pagecache.Cacheable(httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.True(t, pagecache.Cacheable(httptest.NewRequest(http.MethodHead, "/", nil)))
	assert.False(t, pagecache.Cacheable(httptest.NewRequest(http.MethodPost, "/", nil)))
}

func TestStoreAndLookup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	now := time.Unix(1_700_000_000, 0)
	store := cache.NewMemory[[]byte](cache.WithCleanupInterval(0), cache.WithMemoryClock(func() time.Time { return now }))
	t.Cleanup(func() { _ = store.Close() })
	c := pagecache.New(store)

	_, ok := c.Lookup(ctx, "k")
	assert.False(t, ok)

	require.NoError(t, c.Store(ctx, "k", []byte("first")))
	require.NoError(t, c.Store(ctx, "k", []byte("second")), "existing entry is kept")

	body, ok := c.Lookup(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "first", string(body))

	now = now.Add(pagecache.DefaultTTL)
	_, ok = c.Lookup(ctx, "k")
	assert.False(t, ok, "entry expires after the ttl")
}
