package internal

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dmitrymomot/mvc/pkg/config"
	"github.com/dmitrymomot/mvc/pkg/naming"
)

// Route is a resolved request target.
type Route struct {
	// Controller is the CamelCase controller identifier.
	Controller string
	// Method is the snake_case action name before the unknown-action fallback.
	Method string
	// Path is the request path after forwarders ran, without the leading slash.
	Path string
	Args []string
}

type forwarder struct {
	pattern     *regexp.Regexp
	replacement string
}

// Router maps request paths to routes.
type Router struct {
	known             func(controller string) bool
	defaultController string
	defaultMethod     string
	forwarders        []forwarder
}

// NewRouter compiles cfg. known reports whether a controller identifier is
// registered; nil accepts every identifier.
func NewRouter(cfg config.RouterConfig, known func(controller string) bool) (*Router, error) {
	r := &Router{
		known:             known,
		defaultController: cfg.DefaultController,
		defaultMethod:     cfg.DefaultMethod,
	}
	if r.defaultController == "" {
		r.defaultController = "Index"
	}
	if r.defaultMethod == "" {
		r.defaultMethod = "default_index"
	}
	if r.known == nil {
		r.known = func(string) bool { return true }
	}

	for i, f := range cfg.Forwarders {
		re, err := regexp.Compile(f.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: forwarder %d %q: %w", ErrInvalidForwarder, i, f.Pattern, err)
		}
		r.forwarders = append(r.forwarders, forwarder{pattern: re, replacement: f.Replacement})
	}
	return r, nil
}

// DefaultMethod is the action used when none is given or the given one is unknown.
func (r *Router) DefaultMethod() string { return r.defaultMethod }

// Forward applies every forwarder in order. Each replaces at most its first match.
func (r *Router) Forward(path string) string {
	for _, f := range r.forwarders {
		loc := f.pattern.FindStringSubmatchIndex(path)
		if loc == nil {
			continue
		}
		out := f.pattern.ExpandString(nil, f.replacement, path, loc)
		path = path[:loc[0]] + string(out) + path[loc[1]:]
	}
	return path
}

// Parse resolves path: leading slash stripped, forwarders applied, then
// controller, method and arguments taken from the segments. An unknown or
// missing controller resolves to the default controller; a missing method
// to the default method.
func (r *Router) Parse(path string) Route {
	path = r.Forward(strings.TrimPrefix(path, "/"))
	parts := strings.Split(path, "/")

	route := Route{
		Path:       path,
		Controller: r.defaultController,
		Method:     r.defaultMethod,
		Args:       []string{},
	}

	if parts[0] != "" {
		if name := naming.Controller(parts[0]); name != "" && r.known(name) {
			route.Controller = name
		}
	}
	if len(parts) > 1 && parts[1] != "" {
		route.Method = naming.Action(parts[1])
	}
	if len(parts) > 2 {
		route.Args = parts[2:]
	}
	return route
}
