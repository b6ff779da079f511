// Package internal provides the core types and implementation for the mvc framework.
//
// This package is internal and should not be used directly. Import "github.com/dmitrymomot/mvc"
// instead, which re-exports the public API.
//
// # Core Types
//
//   - App: Owns the chi router, the dispatcher behind it, and graceful shutdown
//   - Context: Request/response access plus the per-request services (DB, Settings, Auth, Log)
//   - Controller: A named group of actions reachable under one URL segment
//   - ActionFunc: Signature of one action; receives the positional arguments
//   - Component: OnRun/OnExit hooks around every request
//   - Middleware: Wraps the whole dispatch of a request
//   - Router: Maps paths to controller, method and arguments, after forwarders
//
// # Request Lifecycle
//
// Every path that is not a static file, probe or /metrics reaches the dispatcher:
//
//  1. A request log buffer and a request-scoped database registry are created.
//  2. Middleware runs, then each component's OnRun in declaration order.
//     A component returning ErrHandled has already written the response.
//  3. The path is stripped of its leading slash, rewritten by the forwarders,
//     and split into controller, method and arguments. An unknown controller
//     resolves to the default controller; an unknown method to the default method.
//  4. The action runs when enough arguments are present, otherwise the
//     malformed request page is shown.
//  5. Errors become pages: auth denials, malformed requests and HTTPErrors
//     render the info page; anything else is logged and renders the error page.
//  6. Teardown runs every component's OnExit, flushes the deferred
//     statements of every gateway, sends the buffered response, appends the
//     memory line and hands the request log to the configured sink.
//
// # Controllers
//
//	type UserController struct{}
//
//	func (UserController) Name() string { return "User" }
//
//	func (h UserController) Actions(r internal.ActionRouter) {
//	    r.Action("default_index", 0, h.list)
//	    r.Action("view", 1, h.view)
//	}
//
//	func (h UserController) view(c internal.Context, args []string) error {
//	    id := internal.Arg[int64](c, 0)
//	    user, err := entity.NewUsers(c.DB()).ByID(c, id)
//	    if errors.Is(err, db.ErrNoRows) {
//	        return c.Error(http.StatusNotFound, "No such user.")
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    return c.Render(http.StatusOK, views.User(user))
//	}
//
// /user/view/7 reaches view with args ["7"]; /user/view reaches the
// malformed request page; /user/unknown reaches list.
//
// # Context as context.Context
//
// Context embeds context.Context, so it can be passed directly to any function
// that expects a standard library context.
//
// # Server Runtime
//
//	app, err := internal.Bootstrap(ctx, cfg, internal.WithControllers(...))
//	if err != nil {
//	    return err
//	}
//	return app.Run(ctx)
//
// See the mvc package documentation for the public API and usage examples.
package internal
