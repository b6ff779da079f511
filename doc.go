// Package mvc is a small request-dispatch framework: one HTTP request is
// routed to one controller action, with the response buffered, database
// writes deferred to a single end-of-request transaction, and a per-request
// log handed to a sink when the request is done.
//
// # Quick Start
//
// Load a configuration, register controllers and run:
//
//	cfg, err := mvc.LoadConfig("config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	app, err := mvc.Bootstrap(ctx, cfg,
//	    mvc.WithControllers(&IndexController{}, &UserController{}),
//	    mvc.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := app.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Routing
//
// Paths are /controller/method/arg1/arg2. The controller segment is
// converted to CamelCase ("foo-bar" is "FooBar") and the method segment to
// snake_case ("do-thing" is "do_thing"). An unknown controller resolves to
// the default controller, an unknown or missing method to the default
// method. Forwarders, regular expressions with replacements, rewrite the
// path before it is split:
//
//	router:
//	  forwarders:
//	    - pattern: '^u/(\d+)$'
//	      replacement: 'user/view/$1'
//
// # Controllers
//
//	type UserController struct{}
//
//	func (UserController) Name() string { return "User" }
//
//	func (h UserController) Actions(r mvc.ActionRouter) {
//	    r.Action("default_index", 0, h.list)
//	    r.Action("view", 1, h.view)
//	}
//
//	func (h UserController) view(c mvc.Context, args []string) error {
//	    user, err := entity.NewUsers(c.DB()).ByID(c, mvc.Arg[int64](c, 0))
//	    if errors.Is(err, db.ErrNoRows) {
//	        return mvc.ErrNotFound("No such user.")
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    return c.Render(http.StatusOK, views.User(user))
//	}
//
// An action with fewer positional arguments than it declares is never
// called; the visitor gets the malformed request page instead.
//
// # Per-request Services
//
// Context gives every action its own database gateways (c.DB), settings
// cache (c.Settings), authentication state (c.Auth) and request log (c.Log).
// None of them is shared with another request.
//
// Writes that may wait until the response is ready are queued with
// c.DB().AddDeferred and executed in one transaction during teardown, before
// the response is sent.
//
// # Components
//
// Components run before routing and again at teardown, in declaration order.
// The built-in ones preload settings, verify the session cookie and serve
// cached pages:
//
//	mvc.WithComponents(
//	    mvc.SettingsComponent("core.view.default"),
//	    mvc.AuthComponent(),
//	)
//
// # Errors
//
// Actions return errors. HTTPErrors and authentication denials render the
// info page; anything else is logged and renders the internal error page,
// which hides the detail in release mode.
//
// # Shutdown
//
// Run handles SIGINT/SIGTERM: the server drains, then shutdown hooks run in
// registration order. Bootstrap registers hooks that stop the session sweeper
// and close caches, Redis and databases.
package mvc
