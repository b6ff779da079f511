package mvc

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/mvc/internal"
	"github.com/dmitrymomot/mvc/pkg/auth"
	"github.com/dmitrymomot/mvc/pkg/cache"
	"github.com/dmitrymomot/mvc/pkg/config"
	"github.com/dmitrymomot/mvc/pkg/cookie"
	"github.com/dmitrymomot/mvc/pkg/db"
	"github.com/dmitrymomot/mvc/pkg/entity"
	"github.com/dmitrymomot/mvc/pkg/health"
	"github.com/dmitrymomot/mvc/pkg/logger"
	"github.com/dmitrymomot/mvc/pkg/pagecache"
)

// Type aliases - public API
type (
	// App owns the chi router, the dispatcher behind it, and graceful shutdown.
	App = internal.App

	// Context provides request/response access and the per-request services.
	Context = internal.Context

	// Controller groups the actions reachable under one URL segment.
	Controller = internal.Controller

	// ActionRouter registers the actions of one controller.
	ActionRouter = internal.ActionRouter

	// ActionFunc handles a request with its positional arguments.
	ActionFunc = internal.ActionFunc

	// HandlerFunc is the whole dispatch of one request, as seen by middleware.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// Component hooks into every request before routing and at teardown.
	Component = internal.Component

	// ComponentFactory builds a fresh Component for each request.
	ComponentFactory = internal.ComponentFactory

	// ComponentFunc adapts a pair of functions to Component.
	ComponentFunc = internal.ComponentFunc

	// Route is a resolved request target.
	Route = internal.Route

	// Router maps request paths to routes.
	Router = internal.Router

	// Option configures the application.
	Option = internal.Option

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// ResponseWriter buffers the response until teardown.
	ResponseWriter = internal.ResponseWriter

	// Page carries the site values views receive.
	Page = internal.Page

	// InfoView renders the info page.
	InfoView = internal.InfoView

	// ErrorView renders the internal error page.
	ErrorView = internal.ErrorView

	// HTTPError is an error with an HTTP status and a visitor-facing message.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// PanicError is a recovered panic.
	PanicError = internal.PanicError

	// Extractor tries several request sources in order.
	Extractor = internal.Extractor

	// ExtractorSource reads one value from a request.
	ExtractorSource = internal.ExtractorSource

	// Config is the whole framework configuration.
	Config = config.Config

	// ContextExtractor extracts a slog attribute from context.
	ContextExtractor = logger.ContextExtractor
)

// Errors
var (
	ErrHandled           = internal.ErrHandled
	ErrMalformedRequest  = internal.ErrMalformedRequest
	ErrInvalidForwarder  = internal.ErrInvalidForwarder
	ErrInvalidController = internal.ErrInvalidController
	ErrNoAction          = internal.ErrNoAction
	ErrInvalidConfig     = internal.ErrInvalidConfig
)

// Constructors

// New creates an application from explicit options.
// The App is immutable after creation.
//
// Example:
//
//	app, err := mvc.New(
//	    mvc.WithDatabases(databases),
//	    mvc.WithControllers(&IndexController{}, &UserController{}),
//	    mvc.WithComponents(mvc.SettingsComponent(), mvc.AuthComponent()),
//	)
func New(opts ...Option) (*App, error) {
	return internal.New(opts...)
}

// Bootstrap opens everything cfg describes (databases, Redis, caches, the
// request log sink, the session sweeper) and returns an App wired to it.
// opts are applied last.
//
// Example:
//
//	cfg, err := mvc.LoadConfig("config.yaml")
//	if err != nil {
//	    return err
//	}
//	app, err := mvc.Bootstrap(ctx, cfg, mvc.WithControllers(controllers...))
//	if err != nil {
//	    return err
//	}
//	return app.Run(ctx)
func Bootstrap(ctx context.Context, cfg Config, opts ...Option) (*App, error) {
	return internal.Bootstrap(ctx, cfg, opts...)
}

// LoadConfig reads a YAML or TOML file over the defaults.
// ${VAR} references are expanded from the environment.
func LoadConfig(path string) (Config, error) {
	return config.Load(path)
}

// DefaultConfig returns the configuration used for keys a file leaves out.
func DefaultConfig() Config {
	return config.Defaults()
}

// App options

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option {
	return internal.WithLogger(l)
}

// WithDatabases sets the databases request gateways are created over.
func WithDatabases(databases map[string]*db.Database) Option {
	return internal.WithDatabases(databases)
}

// WithControllers registers controllers. Names must be unique.
func WithControllers(controllers ...Controller) Option {
	return internal.WithControllers(controllers...)
}

// WithComponents sets the per-request components in run order.
func WithComponents(factories ...ComponentFactory) Option {
	return internal.WithComponents(factories...)
}

// WithMiddleware adds middleware around the dispatch of every request.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithHTTPMiddleware adds net/http middleware in front of every route.
func WithHTTPMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return internal.WithHTTPMiddleware(mw...)
}

// WithRouter sets the default controller, default method and forwarders.
func WithRouter(cfg config.RouterConfig) Option {
	return internal.WithRouter(cfg)
}

// WithRequestLog sets where request logs go and what they record.
func WithRequestLog(sink logger.Sink, cfg config.LogConfig) Option {
	return internal.WithRequestLog(sink, cfg)
}

// WithCookies sets the cookie manager.
func WithCookies(m *cookie.Manager) Option {
	return internal.WithCookies(m)
}

// WithHasher sets the password hasher used by Login.
func WithHasher(h auth.Hasher) Option {
	return internal.WithHasher(h)
}

// WithSettingsCache shares settings between requests.
func WithSettingsCache(c cache.Cache[entity.Setting], ttl time.Duration) Option {
	return internal.WithSettingsCache(c, ttl)
}

// WithRelease hides error details and partial output from failed requests.
func WithRelease(release bool) Option {
	return internal.WithRelease(release)
}

// WithCompression gzips text responses.
func WithCompression(enabled bool) Option {
	return internal.WithCompression(enabled)
}

// WithSite sets the site title, base URL and assets URL.
func WithSite(title, baseURL, assetsURL string) Option {
	return internal.WithSite(title, baseURL, assetsURL)
}

// WithInfoView replaces the info page.
func WithInfoView(v InfoView) Option {
	return internal.WithInfoView(v)
}

// WithErrorView replaces the internal error page.
func WithErrorView(v ErrorView) Option {
	return internal.WithErrorView(v)
}

// WithStaticFiles mounts a static file handler at the given pattern.
// Directory listings are disabled.
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
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

// WithHealthChecks enables /health/live and /health/ready.
//
// Example:
//
//	mvc.WithHealthChecks(
//	    mvc.WithReadinessCheck("db:default", db.Healthcheck(d)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithMetrics serves Prometheus metrics at /metrics.
func WithMetrics(enabled bool) Option {
	return internal.WithMetrics(enabled)
}

// WithAddress sets the HTTP server address. Defaults to ":8080".
func WithAddress(addr string) Option {
	return internal.WithAddress(addr)
}

// WithShutdownTimeout bounds graceful shutdown. Defaults to 30 seconds.
func WithShutdownTimeout(d time.Duration) Option {
	return internal.WithShutdownTimeout(d)
}

// WithStartupHook registers a function to run before the server accepts requests.
func WithStartupHook(fn func(context.Context) error) Option {
	return internal.WithStartupHook(fn)
}

// WithShutdownHook registers a cleanup function to run during shutdown.
// Hooks are called in the order they were registered.
func WithShutdownHook(fn func(context.Context) error) Option {
	return internal.WithShutdownHook(fn)
}

// Health check options

// WithLivenessPath sets a custom liveness endpoint path.
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath sets a custom readiness endpoint path.
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Components

// SettingsComponent preloads the given settings properties on every request.
func SettingsComponent(autoload ...string) ComponentFactory {
	return internal.SettingsComponent(autoload...)
}

// AuthComponent verifies the session cookie and loads permissions before routing.
func AuthComponent() ComponentFactory {
	return internal.AuthComponent()
}

// PageCacheComponent serves repeated GET requests from the output cache.
func PageCacheComponent(pc *pagecache.Cache) ComponentFactory {
	return internal.PageCacheComponent(pc)
}

// Errors

// NewHTTPError creates an error rendered as the info page with code.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

// WithTitle sets the info page title of an HTTPError.
func WithTitle(title string) HTTPErrorOption {
	return internal.WithTitle(title)
}

// WithError attaches the underlying cause, logged but not shown.
func WithError(err error) HTTPErrorOption {
	return internal.WithError(err)
}

// ErrBadRequest creates a 400 HTTPError.
func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(message, opts...)
}

// ErrForbidden creates a 403 HTTPError.
func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrForbidden(message, opts...)
}

// ErrNotFound creates a 404 HTTPError.
func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(message, opts...)
}

// IsHTTPError reports whether err is or wraps an HTTPError.
func IsHTTPError(err error) bool {
	return internal.IsHTTPError(err)
}

// AsHTTPError returns the HTTPError in err's chain, or nil.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

// Request helpers

// Arg converts the i-th positional argument. Missing or unparsable
// arguments yield the zero T.
func Arg[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, i int) T {
	return internal.Arg[T](c, i)
}

// Query converts a query parameter. Unparsable values yield the zero T.
func Query[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) T {
	return internal.Query[T](c, name)
}

// QueryDefault converts a query parameter, or returns defaultValue.
func QueryDefault[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string, defaultValue T) T {
	return internal.QueryDefault(c, name, defaultValue)
}

// ContextValue returns the value stored under key, or the zero T.
func ContextValue[T any](c Context, key any) T {
	return internal.ContextValue[T](c, key)
}

// NewExtractor creates an Extractor that tries the given sources in order.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return internal.NewExtractor(sources...)
}

// FromHeader reads a request header.
func FromHeader(name string) ExtractorSource { return internal.FromHeader(name) }

// FromQuery reads a query parameter.
func FromQuery(name string) ExtractorSource { return internal.FromQuery(name) }

// FromCookie reads a cookie through the cookie manager.
func FromCookie(name string) ExtractorSource { return internal.FromCookie(name) }

// FromArg reads the i-th positional argument.
func FromArg(i int) ExtractorSource { return internal.FromArg(i) }

// FromForm reads a form field.
func FromForm(name string) ExtractorSource { return internal.FromForm(name) }

// FromBearerToken reads a Bearer token from the Authorization header.
func FromBearerToken() ExtractorSource { return internal.FromBearerToken() }

// RequestIDExtractor adds the request ID to application log records.
func RequestIDExtractor() ContextExtractor {
	return internal.RequestIDExtractor
}
