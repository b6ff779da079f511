package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/a-h/templ"
	"github.com/dustin/go-humanize"

	"github.com/dmitrymomot/mvc/pkg/auth"
	"github.com/dmitrymomot/mvc/pkg/db"
	"github.com/dmitrymomot/mvc/pkg/logger"
)

// notFoundMessage is shown when neither the requested action nor the
// controller's default action exists.
const notFoundMessage = "The page you requested could not be found."

// ServeHTTP runs one request through the full lifecycle: components, routing,
// the action, error rendering, teardown and the request log flush.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := a.now()

	buf := logger.NewBuffer(a.bufferOpts...)
	regOpts := []db.RegistryOption{db.WithRegistryLogger(buf.Logger())}
	if a.logQueries {
		regOpts = append(regOpts, db.WithQueryBenchmarks(buf))
	}
	c := newContext(w, r, a, buf, db.NewRegistry(a.databases, regOpts...))

	h := HandlerFunc(func(Context) error { return a.handle(c) })
	for i := len(a.middlewares) - 1; i >= 0; i-- {
		h = a.middlewares[i](h)
	}

	err := safeCall(func() error { return h(c) })
	if err != nil && !errors.Is(err, ErrHandled) {
		a.renderError(c, err)
	}

	a.teardown(c, start)
}

// handle builds the components, runs their OnRun hooks, then routes and
// invokes the action.
func (a *App) handle(c *requestContext) error {
	c.response.Checkpoint()
	for _, factory := range a.components {
		c.components = append(c.components, factory(c))
	}
	for _, comp := range c.components {
		if err := comp.OnRun(c); err != nil {
			return err
		}
	}

	c.route = a.routes.Parse(c.request.URL.Path)
	act, method, ok := a.controllers.lookup(c.route.Controller, c.route.Method, a.routes.DefaultMethod())
	if !ok {
		return ErrNotFound(notFoundMessage,
			WithError(fmt.Errorf("%w: %s::%s", ErrNoAction, c.route.Controller, c.route.Method)))
	}
	if len(c.route.Args) < act.required {
		return fmt.Errorf("%w: %s::%s wants %d arguments, got %d",
			ErrMalformedRequest, c.route.Controller, method, act.required, len(c.route.Args))
	}

	c.log.DebugContext(c, "dispatching "+c.route.Controller+"::"+method)
	return safeCall(func() error { return act.fn(c, c.route.Args) })
}

// safeCall turns a panic into a *PanicError.
func safeCall(fn func() error) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{Value: v, Stack: debug.Stack()}
		}
	}()
	return fn()
}

// renderError replaces the response with the page matching err. Denials,
// malformed requests and HTTP errors get the info page; anything else is
// logged and gets the internal error page.
func (a *App) renderError(c *requestContext, err error) {
	page := c.Page()

	var denied *auth.DeniedError
	if errors.As(err, &denied) {
		a.metrics.deniedRequests.Inc()
		c.response.Reset()
		a.render(c, denied.Status, a.infoView(page, denied.Title, denied.Message))
		return
	}

	if errors.Is(err, ErrMalformedRequest) {
		c.log.DebugContext(c, err.Error())
		c.response.Reset()
		a.render(c, http.StatusBadRequest, a.infoView(page, "Error", MalformedRequestMessage))
		return
	}

	if httpErr := AsHTTPError(err); httpErr != nil {
		if httpErr.Err != nil {
			c.log.InfoContext(c, httpErr.Message, slog.String("error", httpErr.Err.Error()))
		}
		title := httpErr.Title
		if title == "" {
			title = httpErr.StatusText()
		}
		c.response.Reset()
		a.render(c, httpErr.Code, a.infoView(page, title, httpErr.Message))
		return
	}

	attrs := []any{slog.String("error", err.Error())}
	var pe *PanicError
	if errors.As(err, &pe) && pe.Stack != nil {
		attrs = append(attrs, slog.String("stack", string(pe.Stack)))
	}
	c.log.ErrorContext(c, "request failed", attrs...)

	detail := err.Error()
	if a.release {
		c.response.Reset()
		detail = ""
	}
	a.render(c, http.StatusInternalServerError, a.errorView(page, detail))
}

func (a *App) render(c *requestContext, code int, view templ.Component) {
	if err := c.Render(code, view); err != nil {
		c.log.ErrorContext(c, "error page render failed", slog.String("error", err.Error()))
	}
}

// teardown runs OnExit hooks, flushes every deferred queue, sends the
// response, and hands the request log to the sink. It runs after cancellation
// too: the deferred statements and the log still have to land.
func (a *App) teardown(c *requestContext, start time.Time) {
	ctx := context.WithoutCancel(c)

	for _, comp := range c.components {
		if err := safeCall(func() error { return comp.OnExit(c) }); err != nil {
			c.log.ErrorContext(ctx, "component exit failed", slog.String("error", err.Error()))
		}
	}

	var queries int64
	for _, gw := range c.registry.Gateways() {
		queries += gw.QueryCount()
	}
	if err := c.registry.Close(ctx); err != nil {
		a.metrics.flushFailures.Inc()
		c.log.ErrorContext(ctx, "deferred statements rolled back", slog.String("error", err.Error()))
	}

	// Deferred writes land before the client sees anything, including a
	// rotated session cookie.
	if err := c.response.Commit(); err != nil {
		c.log.WarnContext(ctx, "response write failed", slog.String("error", err.Error()))
	}

	if a.memoryUsage {
		system, heap := logger.MemoryFootprint()
		c.buf.Line(fmt.Sprintf("(Max Memory Usage) System: %s; Heap: %s;",
			humanize.IBytes(system), humanize.IBytes(heap)))
	}

	meta := logger.Meta{
		RequestID: c.RequestID(),
		ClientIP:  auth.ClientIP(c.request),
	}
	if c.auth != nil {
		meta.UserID = c.auth.UserID()
	}
	if err := c.buf.Flush(ctx, a.sink, meta); err != nil {
		a.logger.ErrorContext(ctx, "request log flush failed", slog.String("error", err.Error()))
	}

	a.metrics.observe(c.route.Controller, c.response.Status(), a.now().Sub(start), queries)
}
