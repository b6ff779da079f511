// Package redis opens the go-redis client shared by the cache backends.
//
// The connection is described by a Config, the same way databases are, so it
// can live in the application configuration file:
//
//	cache:
//	  backend: redis
//	  redis:
//	    url: redis://localhost:6379/0
//	    pool_size: 20
//
// Open pings the server and retries with a linear backoff, which lets the
// framework start while the server is still booting. Healthcheck and Shutdown
// return closures for the readiness endpoint and the shutdown hooks.
package redis
