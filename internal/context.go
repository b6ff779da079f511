package internal

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/mvc/pkg/auth"
	"github.com/dmitrymomot/mvc/pkg/cookie"
	"github.com/dmitrymomot/mvc/pkg/db"
	"github.com/dmitrymomot/mvc/pkg/logger"
	"github.com/dmitrymomot/mvc/pkg/settings"
)

// RequestIDKey is the context key the request ID middleware stores under.
type RequestIDKey struct{}

// Context provides request/response access and the per-request services.
// It also implements context.Context by delegating to the underlying request context.
type Context interface {
	context.Context

	// Request returns the underlying *http.Request.
	Request() *http.Request

	// Response returns the buffered response writer as an http.ResponseWriter.
	Response() http.ResponseWriter

	// ResponseWriter returns the buffered writer for advanced usage.
	ResponseWriter() *ResponseWriter

	// Route returns the resolved route. It is zero inside components' OnRun.
	Route() Route

	// Args returns the positional arguments after the action name.
	Args() []string

	// Query returns the query parameter value by name.
	// Returns empty string if the parameter doesn't exist.
	Query(name string) string

	// Form returns the form value by name.
	Form(name string) string

	// Header returns the request header value by name.
	Header(name string) string

	// SetHeader sets a response header.
	SetHeader(name, value string)

	// Logger returns a logger whose records land in this request's log.
	Logger() *slog.Logger

	// Log returns the request log buffer for raw lines and benchmarks.
	Log() *logger.Buffer

	// DB returns the request gateway for the named database, DefaultName
	// when name is omitted. Gateways are created on first use and flushed
	// at teardown.
	DB(name ...string) *db.Gateway

	// Settings returns the request's settings store over the default database.
	Settings() *settings.Settings

	// Auth returns the request's authentication state. It is Unverified
	// until the auth component or a caller runs Verify.
	Auth() *auth.Auth

	// Cookies returns the application's cookie manager.
	Cookies() *cookie.Manager

	// Cookie returns a cookie value.
	Cookie(name string) (string, error)

	// SetCookie sets a cookie. A zero expires makes it a session cookie.
	SetCookie(name, value string, expires time.Time)

	// DeleteCookie removes a cookie.
	DeleteCookie(name string)

	// Render renders a component with the given status code.
	Render(code int, component templ.Component) error

	// JSON writes a JSON response with the given status code.
	JSON(code int, v any) error

	// String writes a plain text response with the given status code.
	String(code int, s string) error

	// HTML writes s as an HTML response with the given status code.
	HTML(code int, s string) error

	// Redirect sends a 302 to location, relative to the base URL unless it
	// is absolute.
	Redirect(location string) error

	// Info renders the info page with a title and a message.
	Info(title, message string) error

	// Error creates and returns an HTTPError without writing a response.
	// The error should be returned from the action to render it.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	// Written returns true if a response has already been written.
	Written() bool

	// Set stores a value in the request context.
	Set(key, value any)

	// Get retrieves a value from the request context.
	// Returns nil if the key is not found.
	Get(key any) any

	// RequestID returns the ID the request ID middleware assigned, if any.
	RequestID() string

	// Page returns the layout data for views.
	Page() Page
}

// requestContext implements the Context interface.
type requestContext struct {
	request    *http.Request
	response   *ResponseWriter
	app        *App
	buf        *logger.Buffer
	log        *slog.Logger
	registry   *db.Registry
	settings   *settings.Settings
	auth       *auth.Auth
	components []Component
	route      Route
}

func newContext(w http.ResponseWriter, r *http.Request, app *App, buf *logger.Buffer, registry *db.Registry) *requestContext {
	return &requestContext{
		request:  r,
		response: NewResponseWriter(w),
		app:      app,
		buf:      buf,
		log:      buf.Logger(),
		registry: registry,
	}
}

func (c *requestContext) Request() *http.Request {
	return c.request
}

func (c *requestContext) Response() http.ResponseWriter {
	return c.response
}

func (c *requestContext) ResponseWriter() *ResponseWriter {
	return c.response
}

func (c *requestContext) Route() Route {
	return c.route
}

func (c *requestContext) Args() []string {
	return c.route.Args
}

func (c *requestContext) Query(name string) string {
	return c.request.URL.Query().Get(name)
}

func (c *requestContext) Form(name string) string {
	return c.request.FormValue(name)
}

func (c *requestContext) Header(name string) string {
	return c.request.Header.Get(name)
}

func (c *requestContext) SetHeader(name, value string) {
	c.response.Header().Set(name, value)
}

func (c *requestContext) Deadline() (time.Time, bool) {
	return c.request.Context().Deadline()
}

func (c *requestContext) Done() <-chan struct{} {
	return c.request.Context().Done()
}

func (c *requestContext) Err() error {
	return c.request.Context().Err()
}

func (c *requestContext) Value(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Logger() *slog.Logger {
	return c.log
}

func (c *requestContext) Log() *logger.Buffer {
	return c.buf
}

func (c *requestContext) DB(name ...string) *db.Gateway {
	if len(name) > 0 && name[0] != "" {
		return c.registry.Gateway(name[0])
	}
	return c.registry.Default()
}

func (c *requestContext) Settings() *settings.Settings {
	if c.settings == nil {
		opts := []settings.Option{settings.WithLogger(c.log)}
		if c.app.settingsCache != nil {
			opts = append(opts, settings.WithSharedCache(c.app.settingsCache, c.app.settingsTTL))
		}
		c.settings = settings.New(c.DB(), opts...)
	}
	return c.settings
}

func (c *requestContext) Auth() *auth.Auth {
	if c.auth == nil {
		opts := []auth.Option{auth.WithLogger(c.log)}
		if c.app.hasher != nil {
			opts = append(opts, auth.WithHasher(c.app.hasher))
		}
		c.auth = auth.New(c.DB(), c.Settings(), c.app.cookies, c.response, c.request, opts...)
	}
	return c.auth
}

func (c *requestContext) Cookies() *cookie.Manager {
	return c.app.cookies
}

func (c *requestContext) Cookie(name string) (string, error) {
	return c.app.cookies.Get(c.request, name)
}

func (c *requestContext) SetCookie(name, value string, expires time.Time) {
	c.app.cookies.Set(c.response, name, value, expires)
}

func (c *requestContext) DeleteCookie(name string) {
	c.app.cookies.Delete(c.response, name)
}

func (c *requestContext) Render(code int, component templ.Component) error {
	c.response.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.response.WriteHeader(code)
	return component.Render(c, c.response)
}

func (c *requestContext) JSON(code int, v any) error {
	c.response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.response.WriteHeader(code)
	return json.NewEncoder(c.response).Encode(v)
}

func (c *requestContext) String(code int, s string) error {
	c.response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := c.response.Write([]byte(s))
	return err
}

func (c *requestContext) HTML(code int, s string) error {
	c.response.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := c.response.Write([]byte(s))
	return err
}

func (c *requestContext) Redirect(location string) error {
	if !strings.Contains(location, "://") {
		location = strings.TrimSuffix(c.app.baseURL, "/") + "/" + strings.TrimPrefix(location, "/")
	}
	c.response.Header().Set("Location", location)
	c.response.WriteHeader(http.StatusFound)
	return nil
}

func (c *requestContext) Info(title, message string) error {
	return c.Render(http.StatusOK, c.app.infoView(c.Page(), title, message))
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(code, message, opts...)
}

func (c *requestContext) Written() bool {
	return c.response.Written()
}

func (c *requestContext) Set(key, value any) {
	ctx := context.WithValue(c.request.Context(), key, value)
	c.request = c.request.WithContext(ctx)
}

func (c *requestContext) Get(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) RequestID() string {
	id, _ := c.Get(RequestIDKey{}).(string)
	return id
}

func (c *requestContext) Page() Page {
	return Page{
		SiteTitle: c.app.title,
		AssetsURL: c.app.assetsURL,
		BaseURL:   c.app.baseURL,
	}
}
