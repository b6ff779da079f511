package internal

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/mvc/pkg/auth"
	"github.com/dmitrymomot/mvc/pkg/cache"
	"github.com/dmitrymomot/mvc/pkg/config"
	"github.com/dmitrymomot/mvc/pkg/cookie"
	"github.com/dmitrymomot/mvc/pkg/db"
	"github.com/dmitrymomot/mvc/pkg/entity"
	"github.com/dmitrymomot/mvc/pkg/logger"
)

// Option configures the application.
type Option func(*App)

// WithLogger sets the application logger used outside request logs:
// startup, shutdown, probes and sink failures.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithDatabases sets the shared databases gateways are created over.
func WithDatabases(databases map[string]*db.Database) Option {
	return func(a *App) {
		for name, d := range databases {
			a.databases[name] = d
		}
	}
}

// WithControllers registers controllers. Names must be unique.
func WithControllers(controllers ...Controller) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, controllers...)
	}
}

// WithComponents sets the per-request components in run order.
func WithComponents(factories ...ComponentFactory) Option {
	return func(a *App) {
		a.components = append(a.components, factories...)
	}
}

// WithMiddleware adds middleware around the dispatch of every request.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHTTPMiddleware adds plain net/http middleware in front of chi's routes,
// probes and static files included.
func WithHTTPMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(a *App) {
		a.httpMiddlewares = append(a.httpMiddlewares, mw...)
	}
}

// WithRouter sets the default controller, default method and forwarders.
func WithRouter(cfg config.RouterConfig) Option {
	return func(a *App) {
		a.routerConfig = cfg
	}
}

// WithRequestLog configures the per-request log: where it goes and what it
// records.
func WithRequestLog(sink logger.Sink, cfg config.LogConfig) Option {
	return func(a *App) {
		if sink != nil {
			a.sink = sink
		}
		a.logQueries = cfg.SQLQueries
		a.memoryUsage = cfg.MemoryUsage
		a.bufferOpts = []logger.BufferOption{
			logger.WithDebug(cfg.Debug),
			logger.WithMemoryUsage(cfg.MemoryUsage, cfg.MemoryDelta),
		}
	}
}

// WithCookies sets the cookie manager. Defaults to unprefixed, unsigned cookies.
func WithCookies(m *cookie.Manager) Option {
	return func(a *App) {
		if m != nil {
			a.cookies = m
		}
	}
}

// WithHasher sets the password hasher Login compares with.
func WithHasher(h auth.Hasher) Option {
	return func(a *App) {
		a.hasher = h
	}
}

// WithSettingsCache shares settings between requests. ttl of zero uses the
// cache's default.
func WithSettingsCache(c cache.Cache[entity.Setting], ttl time.Duration) Option {
	return func(a *App) {
		a.settingsCache = c
		a.settingsTTL = ttl
	}
}

// WithRelease hides error details and discards partial output when an
// action fails.
func WithRelease(release bool) Option {
	return func(a *App) {
		a.release = release
	}
}

// WithCompression gzips text responses.
func WithCompression(enabled bool) Option {
	return func(a *App) {
		a.compress = enabled
	}
}

// WithSite sets the values views receive: the site title, the base URL
// redirects resolve against, and the assets URL.
func WithSite(title, baseURL, assetsURL string) Option {
	return func(a *App) {
		a.title = title
		a.baseURL = baseURL
		a.assetsURL = assetsURL
	}
}

// WithInfoView replaces the info page.
func WithInfoView(v InfoView) Option {
	return func(a *App) {
		if v != nil {
			a.infoView = v
		}
	}
}

// WithErrorView replaces the internal error page.
func WithErrorView(v ErrorView) Option {
	return func(a *App) {
		if v != nil {
			a.errorView = v
		}
	}
}

// WithStaticFiles mounts a static file handler at the given pattern.
// Directory listings are disabled. Files are served with default cache headers.
//
// Example:
//
//	//go:embed public
//	var assets embed.FS
//
//	mvc.New(
//	    mvc.WithStaticFiles("/static/", assets, "public"),
//	)
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return func(a *App) {
		subFS, err := fs.Sub(fsys, subDir)
		if err != nil {
			a.errs = append(a.errs, fmt.Errorf("static files %q: %w", pattern, err))
			return
		}

		fileServer := http.StripPrefix(strings.TrimSuffix(pattern, "/"), http.FileServerFS(subFS))

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Block directory listings
			if strings.HasSuffix(r.URL.Path, "/") {
				http.NotFound(w, r)
				return
			}

			w.Header().Set("Cache-Control", "public, max-age=3600")
			w.Header().Set("X-Content-Type-Options", "nosniff")

			fileServer.ServeHTTP(w, r)
		})

		a.staticRoutes = append(a.staticRoutes, staticRoute{handler, pattern})
	}
}

// WithHealthChecks enables health check endpoints with optional configuration.
// Liveness (/health/live): Always returns OK if process is running.
// Readiness (/health/ready): Runs all configured checks.
//
// Example:
//
//	mvc.WithHealthChecks(
//	    mvc.WithReadinessCheck("db:default", db.Healthcheck(d)),
//	    mvc.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithMetrics serves Prometheus metrics at /metrics.
func WithMetrics(enabled bool) Option {
	return func(a *App) {
		a.serveMetrics = enabled
	}
}

// WithClock overrides time.Now for request timing.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		if now != nil {
			a.now = now
		}
	}
}

// WithAddress sets the HTTP server address.
// Defaults to ":8080".
func WithAddress(addr string) Option {
	return func(a *App) {
		if addr != "" {
			a.address = addr
		}
	}
}

// WithShutdownTimeout sets the timeout for graceful shutdown.
// This applies to both the HTTP server and shutdown hooks.
// Defaults to 30 seconds.
func WithShutdownTimeout(d time.Duration) Option {
	return func(a *App) {
		if d > 0 {
			a.shutdownTimeout = d
		}
	}
}

// WithStartupHook registers a function to run before the server accepts
// requests. A failing hook aborts Run.
func WithStartupHook(fn func(context.Context) error) Option {
	return func(a *App) {
		if fn != nil {
			a.startupHooks = append(a.startupHooks, fn)
		}
	}
}

// WithShutdownHook registers a cleanup function to run during shutdown.
// Hooks are called in the order they were registered.
// Each hook receives a context with the shutdown timeout.
//
// Example:
//
//	mvc.WithShutdownHook(db.Shutdown(databases...))
func WithShutdownHook(fn func(context.Context) error) Option {
	return func(a *App) {
		if fn != nil {
			a.shutdownHooks = append(a.shutdownHooks, fn)
		}
	}
}
