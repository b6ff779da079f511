package pagecache

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/mvc/pkg/cache"
	"github.com/dmitrymomot/mvc/pkg/logger"
)

// DefaultTTL is how long a page stays cached.
const DefaultTTL = 10 * time.Second

// Cache stores rendered page bodies.
type Cache struct {
	store cache.Cache[[]byte]
	log   *slog.Logger
	ttl   time.Duration
}

// Option configures Cache.
type Option func(*Cache)

// WithTTL overrides DefaultTTL.
func WithTTL(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// WithLogger sets the logger for backend failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.log = l
		}
	}
}

// New wraps store.
func New(store cache.Cache[[]byte], opts ...Option) *Cache {
	c := &Cache{store: store, ttl: DefaultTTL, log: logger.NewNope()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key builds the cache key for a session cookie value and request URI.
func Key(session, requestURI string) string {
	return "sc_" + session + "_page_" + requestURI
}

// Cacheable reports whether responses to r may be cached.
func Cacheable(r *http.Request) bool {
	return r.Method == http.MethodGet || r.Method == http.MethodHead
}

// Lookup returns the cached body for key. Backend errors count as a miss.
func (c *Cache) Lookup(ctx context.Context, key string) ([]byte, bool) {
	body, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			c.log.WarnContext(ctx, "page cache lookup failed", slog.String("error", err.Error()))
		}
		return nil, false
	}
	return body, true
}

// Store caches body under key unless an entry already exists.
func (c *Cache) Store(ctx context.Context, key string, body []byte) error {
	ok, err := c.store.Has(ctx, key)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return c.store.Set(ctx, key, body, c.ttl)
}
