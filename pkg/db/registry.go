package db

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Registry hands out request-scoped gateways, one per named database,
// created lazily on first lookup. Build one per request and Close it at teardown.
type Registry struct {
	databases  map[string]*Database
	gateways   map[string]*Gateway
	log        *slog.Logger
	bench      Benchmarker
	order      []string
	mu         sync.Mutex
	logQueries bool
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger gateways report failures to.
func WithRegistryLogger(log *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

// WithQueryBenchmarks wraps every statement in a benchmark pair named query_<n>.
func WithQueryBenchmarks(b Benchmarker) RegistryOption {
	return func(r *Registry) {
		r.bench = b
		r.logQueries = b != nil
	}
}

// NewRegistry creates a registry over the shared databases.
func NewRegistry(databases map[string]*Database, opts ...RegistryOption) *Registry {
	r := &Registry{
		databases: databases,
		gateways:  make(map[string]*Gateway),
		log:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Gateway returns the gateway for name, creating it on first use.
// Unknown names yield a gateway that fails fast with ErrConnectionUnavailable.
func (r *Registry) Gateway(name string) *Gateway {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g, ok := r.gateways[name]; ok {
		return g
	}
	g := newGateway(name, r.databases[name], r.log, r.bench, r.logQueries)
	r.gateways[name] = g
	r.order = append(r.order, name)
	return g
}

// Default returns the gateway for DefaultName.
func (r *Registry) Default() *Gateway {
	return r.Gateway(DefaultName)
}

// Gateways returns the gateways created so far, in creation order.
func (r *Registry) Gateways() []*Gateway {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Gateway, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.gateways[name])
	}
	return out
}

// Close flushes the deferred queue of every created gateway, in creation order,
// and releases their connections. Flush failures are joined; they never stop
// the remaining gateways from flushing.
func (r *Registry) Close(ctx context.Context) error {
	var errs []error
	for _, g := range r.Gateways() {
		if err := g.FlushDeferred(ctx); err != nil {
			errs = append(errs, err)
		}
		if err := g.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
