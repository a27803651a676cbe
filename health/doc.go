// Package health reports the protection state of a runtime's dependency
// groups as health check results.
//
// Each circuit breaker maps to one check: a closed breaker is healthy, a
// half-open breaker probing for recovery is degraded, and an open
// breaker is unhealthy. The aggregator folds every group into a single
// process-level verdict, and Handler serves the aggregate as JSON for
// ops tooling.
package health
