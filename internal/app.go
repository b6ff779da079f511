package internal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/mvc/pkg/auth"
	"github.com/dmitrymomot/mvc/pkg/cache"
	"github.com/dmitrymomot/mvc/pkg/config"
	"github.com/dmitrymomot/mvc/pkg/cookie"
	"github.com/dmitrymomot/mvc/pkg/db"
	"github.com/dmitrymomot/mvc/pkg/entity"
	"github.com/dmitrymomot/mvc/pkg/health"
	"github.com/dmitrymomot/mvc/pkg/logger"
)

// Default server timeouts (hardcoded, opinionated).
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// App orchestrates the application lifecycle: the chi router in front,
// the dispatcher behind it, and graceful shutdown.
// App is immutable after creation - all configuration is done via New().
type App struct {
	router        chi.Router
	logger        *slog.Logger
	databases     map[string]*db.Database
	controllers   controllerRegistry
	routes        *Router
	cookies       *cookie.Manager
	hasher        auth.Hasher
	settingsCache cache.Cache[entity.Setting]
	sink          logger.Sink
	metrics       *metrics
	healthConfig  *healthConfig
	infoView      InfoView
	errorView     ErrorView
	now           func() time.Time

	title     string
	baseURL   string
	assetsURL string
	address   string

	routerConfig    config.RouterConfig
	handlers        []Controller
	components      []ComponentFactory
	middlewares     []Middleware
	httpMiddlewares []func(http.Handler) http.Handler
	staticRoutes    []staticRoute
	bufferOpts      []logger.BufferOption
	startupHooks    []func(context.Context) error
	shutdownHooks   []func(context.Context) error
	errs            []error

	settingsTTL     time.Duration
	shutdownTimeout time.Duration

	release      bool
	logQueries   bool
	memoryUsage  bool
	compress     bool
	serveMetrics bool
}

// staticRoute represents a static file handler mount point.
type staticRoute struct {
	handler http.Handler
	pattern string
}

// New creates a new application with the given options.
// The App is immutable after creation.
//
// Example:
//
//	app, err := mvc.New(
//	    mvc.WithDatabases(dbs),
//	    mvc.WithControllers(&IndexController{}, &UserController{}),
//	    mvc.WithComponents(mvc.SettingsComponent(), mvc.AuthComponent()),
//	)
func New(opts ...Option) (*App, error) {
	a := &App{
		router:          chi.NewRouter(),
		logger:          logger.NewNope(),
		databases:       map[string]*db.Database{},
		sink:            logger.Void{},
		metrics:         newMetrics(),
		infoView:        DefaultInfoView,
		errorView:       DefaultErrorView,
		now:             time.Now,
		address:         ":8080",
		shutdownTimeout: defaultShutdownTimeout,
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.cookies == nil {
		cookies, err := cookie.New(cookie.Config{})
		if err != nil {
			a.errs = append(a.errs, err)
		}
		a.cookies = cookies
	}

	controllers, err := newControllerRegistry(a.handlers)
	if err != nil {
		a.errs = append(a.errs, err)
	}
	a.controllers = controllers

	routes, err := NewRouter(a.routerConfig, controllers.has)
	if err != nil {
		a.errs = append(a.errs, err)
	}
	a.routes = routes

	if len(a.errs) > 0 {
		return nil, errors.Join(append([]error{ErrInvalidConfig}, a.errs...)...)
	}

	a.setupRoutes()
	return a, nil
}

// Router returns the underlying chi.Router for the App.
func (a *App) Router() chi.Router {
	return a.router
}

// Run starts the HTTP server and blocks until an interrupt or SIGTERM,
// then shuts down gracefully and runs the shutdown hooks.
func (a *App) Run(ctx context.Context) error {
	return runServer(runtimeConfig{
		handler:         a.router,
		address:         a.address,
		logger:          a.logger,
		shutdownTimeout: a.shutdownTimeout,
		startupHooks:    a.startupHooks,
		shutdownHooks:   a.shutdownHooks,
		baseCtx:         ctx,
	})
}

// setupRoutes mounts static files, probes and metrics on chi, and sends
// every other path to the dispatcher.
func (a *App) setupRoutes() {
	a.router.Use(middleware.RealIP)
	if a.compress {
		a.router.Use(middleware.Compress(5, "text/html", "text/css", "text/plain", "application/json", "application/javascript"))
	}
	for _, mw := range a.httpMiddlewares {
		a.router.Use(mw)
	}

	for _, sr := range a.staticRoutes {
		a.router.Mount(sr.pattern, sr.handler)
	}

	if a.healthConfig != nil {
		a.router.Get(a.healthConfig.livenessPath, health.LivenessHandler())
		a.router.Get(a.healthConfig.readinessPath, health.ReadinessHandler(a.healthConfig.checks,
			health.WithLogger(a.logger)))
	}

	if a.serveMetrics {
		a.router.Handle("/metrics", a.metrics.handler())
	}

	a.router.Handle("/*", a)
}

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

// Default health check paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during readiness probe.
//
// Example:
//
//	mvc.WithReadinessCheck("db:default", db.Healthcheck(d))
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if c.checks == nil {
			c.checks = make(health.Checks)
		}
		c.checks[name] = fn
	}
}
