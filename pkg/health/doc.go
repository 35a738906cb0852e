// Package health serves liveness and readiness probes.
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//		"postgres": db.Healthcheck(pool),
//		"redis":    redis.Healthcheck(client),
//	}))
//
// Responses are plain text ("OK" / "Service Unavailable") unless the client
// asks for JSON via Accept: application/json or ?format=json. Readiness runs
// every check concurrently under one timeout.
package health
