package internal

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"slices"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/mvc/pkg/cache"
	"github.com/dmitrymomot/mvc/pkg/config"
	"github.com/dmitrymomot/mvc/pkg/cookie"
	"github.com/dmitrymomot/mvc/pkg/db"
	"github.com/dmitrymomot/mvc/pkg/entity"
	"github.com/dmitrymomot/mvc/pkg/logger"
	"github.com/dmitrymomot/mvc/pkg/pagecache"
	"github.com/dmitrymomot/mvc/pkg/redis"
	"github.com/dmitrymomot/mvc/pkg/sweeper"
)

// RequestIDExtractor adds the request ID to application log records.
func RequestIDExtractor(ctx context.Context) (slog.Attr, bool) {
	id, ok := ctx.Value(RequestIDKey{}).(string)
	if !ok || id == "" {
		return slog.Attr{}, false
	}
	return slog.String("request_id", id), true
}

// Bootstrap validates cfg, opens the databases, Redis and caches it
// describes, and returns an App wired to them. opts are applied after the
// configuration, so they can add controllers or override any setting.
//
// A database that cannot be opened is logged and stays registered as
// unusable; Redis, when configured, must be reachable.
func Bootstrap(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.New(cfg.Logger, RequestIDExtractor)
	databases := db.OpenAll(ctx, cfg.Databases, log)
	all := make([]*db.Database, 0, len(databases))
	checks := []HealthOption{}
	for name, d := range databases {
		all = append(all, d)
		checks = append(checks, WithReadinessCheck("db:"+name, db.Healthcheck(d)))
	}

	// Hooks run in registration order; everything closed here depends on
	// nothing registered after it.
	var shutdown []func(context.Context) error
	fail := func(err error) (*App, error) {
		for _, hook := range slices.Backward(shutdown) {
			_ = hook(context.WithoutCancel(ctx))
		}
		_ = db.Shutdown(all...)(ctx)
		return nil, err
	}

	var rdb goredis.UniversalClient
	if cfg.Redis.URL != "" {
		client, err := redis.Open(ctx, cfg.Redis)
		if err != nil {
			return fail(err)
		}
		rdb = client
		shutdown = append(shutdown, redis.Shutdown(client))
		checks = append(checks, WithReadinessCheck("redis", redis.Healthcheck(client)))
	}

	cookies, err := cookie.New(cfg.Cookie)
	if err != nil {
		return fail(err)
	}

	settingsCache, err := cache.New[entity.Setting](cfg.Cache, rdb, nil)
	if err != nil {
		return fail(err)
	}
	shutdown = append(shutdown, func(context.Context) error { return settingsCache.Close() })

	loc, err := cfg.LogLocation()
	if err != nil {
		return fail(err)
	}
	sinkCfg := logger.SinkConfig{
		Writer:   os.Stdout,
		Logger:   log,
		FilePath: cfg.Log.File,
		Title:    cfg.Title,
		Location: loc,
	}
	if d, ok := databases[db.DefaultName]; ok {
		sinkCfg.Store = entity.NewLogStore(d)
	}
	sink, err := logger.NewSink(sinkCfg)
	if err != nil {
		return fail(err)
	}

	names := cfg.Components
	if cfg.CacheOutput && !slices.Contains(names, "pagecache") {
		names = append(slices.Clone(names), "pagecache")
	}
	var components []ComponentFactory
	for _, name := range names {
		switch name {
		case "settings":
			components = append(components, SettingsComponent(cfg.SettingsAutoload...))
		case "auth":
			components = append(components, AuthComponent())
		case "pagecache":
			store, err := cache.New[[]byte](cfg.Cache, rdb, cache.Raw{})
			if err != nil {
				return fail(err)
			}
			shutdown = append(shutdown, func(context.Context) error { return store.Close() })
			components = append(components, PageCacheComponent(pagecache.New(store, pagecache.WithLogger(log))))
		}
	}

	var startup []func(context.Context) error
	if cfg.Sweeper.Enabled {
		s, err := sweeper.New(databases[db.DefaultName], cfg.Sweeper.Schedule, sweeper.WithLogger(log))
		if err != nil {
			return fail(err)
		}
		startup = append(startup, s.StartFunc())
		// The sweeper stops before anything it uses is closed.
		shutdown = append([]func(context.Context) error{s.Shutdown()}, shutdown...)
	}
	shutdown = append(shutdown, db.Shutdown(all...))

	cfgOpts := []Option{
		WithLogger(log),
		WithDatabases(databases),
		WithRouter(cfg.Router),
		WithRequestLog(sink, cfg.Log),
		WithCookies(cookies),
		WithSettingsCache(settingsCache, 0),
		WithComponents(components...),
		WithRelease(cfg.Server.Release),
		WithCompression(cfg.Server.CompressOutput),
		WithMetrics(cfg.Server.Metrics),
		WithSite(cfg.Title, cfg.BaseURL, cfg.AssetsURL),
		WithAddress(cfg.Server.Addr),
		WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		WithHealthChecks(checks...),
	}
	for _, hook := range startup {
		cfgOpts = append(cfgOpts, WithStartupHook(hook))
	}
	for _, hook := range shutdown {
		cfgOpts = append(cfgOpts, WithShutdownHook(hook))
	}

	app, err := New(append(cfgOpts, opts...)...)
	if err != nil {
		var errs []error
		for _, hook := range shutdown {
			if herr := hook(context.WithoutCancel(ctx)); herr != nil {
				errs = append(errs, herr)
			}
		}
		return nil, errors.Join(append([]error{err}, errs...)...)
	}
	return app, nil
}
