// Package health serves the liveness and readiness probes.
//
// Readiness runs every named check in parallel under a timeout. The
// framework registers one check per configured database ("db:<name>") and
// one for Redis when the shared cache uses it:
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//		"db:default": db.Healthcheck(database),
//	}))
//
// Plain text ("OK" or "Service Unavailable") is the default; JSON is served
// for Accept: application/json or ?format=json and includes the process
// memory footprint.
package health
