package internal

// Controller groups the actions reachable under one URL segment.
//
// Example:
//
//	type UserController struct {
//	    users entity.Users
//	}
//
//	func (UserController) Name() string { return "User" }
//
//	func (h *UserController) Actions(r mvc.ActionRouter) {
//	    r.Action("default_index", 0, h.index)
//	    r.Action("view", 1, h.view) // /user/view/<id>
//	}
type Controller interface {
	// Name is the CamelCase identifier the first path segment resolves to:
	// "FooBar" serves /foo-bar.
	Name() string
	Actions(r ActionRouter)
}

// ActionRouter registers the actions of one controller.
type ActionRouter interface {
	// Action registers fn under name (snake_case, as the second path segment
	// with hyphens replaced). Requests with fewer than required positional
	// arguments get the malformed request page instead of reaching fn.
	Action(name string, required int, fn ActionFunc)
}

// ActionFunc handles a request. Args holds every path segment after the
// action name, including extras beyond the required count.
type ActionFunc func(c Context, args []string) error

// HandlerFunc is the signature middleware wraps: the whole dispatch of one
// request, components included.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
//
// Example:
//
//	func Timing(next mvc.HandlerFunc) mvc.HandlerFunc {
//	    return func(c mvc.Context) error {
//	        c.Log().Benchmark("request")
//	        defer c.Log().Benchmark("request", "request served")
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// Component hooks into every request. OnRun hooks run in declaration order
// before routing; OnExit hooks run in the same order during teardown, even
// when the request failed.
type Component interface {
	OnRun(c Context) error
	OnExit(c Context) error
}

// ComponentFactory builds a fresh Component for each request.
type ComponentFactory func(c Context) Component
