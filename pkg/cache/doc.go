// Package cache holds the caches shared between requests: the second level
// of the settings cache and the page cache.
//
// Both backends implement [Cache]. [Memory] keeps entries in process with an
// LRU bound; [Redis] stores them in a go-redis client so several instances
// share one cache. [New] picks one from a [Config]:
//
//	pages, err := cache.New[[]byte](cfg.Cache, client, cache.Raw{})
//
// [GetOrSet] collapses concurrent misses for one key into a single load:
//
//	s, err := cache.GetOrSet(ctx, c, "core.view.default", func(ctx context.Context) (entity.Setting, time.Duration, error) {
//		s, err := settings.ByProperty(ctx, "core.view.default")
//		return s, time.Minute, err
//	})
package cache
