package middlewares

import (
	"github.com/dmitrymomot/mvc/internal"
)

// Timing returns middleware that benchmarks the whole dispatch, components
// included, into the request log:
//
//	[Benchmark] (+12.5 KiB) (3.27 ms) Served user/view/7
func Timing() internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			const id = "mvc.request"
			c.Log().Benchmark(id)
			err := next(c)
			c.Log().Benchmark(id, "Served", c.Route().Path)
			return err
		}
	}
}
