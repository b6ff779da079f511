// Package settings reads and writes the key-value rows of the Settings table.
//
// A Settings value belongs to one request. Reads are cached for the rest of
// the request, and optionally in a shared cache.Cache between requests:
//
//	s := settings.New(registry.Default(), settings.WithSharedCache(shared, time.Minute))
//	if err := s.Load(ctx, []string{"core.view.default"}); err != nil {
//		return err
//	}
//	view, _ := s.Get(ctx, "core.view.default")
//
// Get with a default creates the missing row. Set updates an existing row and
// drops the cached copies.
package settings
