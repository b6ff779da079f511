// Package middlewares provides dispatch middleware for mvc applications.
//
// Middleware wraps the whole dispatch of a request: component hooks, routing
// and the action. Teardown (OnExit hooks, the response write, deferred
// statements and the request log flush) always runs after the chain returns.
//
// # Request ID
//
// RequestID assigns an ID to each request. An upstream ID from one of the
// configured headers is kept; otherwise a UUID is generated. The ID is sent
// back in X-Request-ID and stored with the flushed request log.
//
//	app, err := mvc.New(
//	    mvc.WithMiddleware(middlewares.RequestID()),
//	)
//
// Use RequestIDExtractor with the application logger to tag its records:
//
//	log := logger.New(cfg.Logger, middlewares.RequestIDExtractor())
//
// # Recover
//
// Recover turns a panic into a *PanicError after logging it with the route
// and a bounded stack. The dispatcher renders it as the internal error page.
//
//	mvc.WithMiddleware(
//	    middlewares.RequestID(),
//	    middlewares.Recover(),
//	)
//
// # Timing
//
// Timing writes one benchmark line per request to the request log, with the
// elapsed time and memory delta of the whole dispatch.
//
// # Recommended Middleware Order
//
//	mvc.WithMiddleware(
//	    middlewares.RequestID(), // first: every later log line carries the ID
//	    middlewares.Timing(),
//	    middlewares.Recover(),
//	)
package middlewares
