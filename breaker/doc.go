// Package breaker provides the failure-percentage circuit breaker and the
// health metrics that drive it.
//
// A Breaker sits in front of one dependency group. While the group is
// healthy every call is admitted. When the rolling error percentage
// crosses the configured threshold the breaker trips and rejects calls
// for a cooldown period, after which exactly one probe call is admitted;
// a successful probe closes the breaker and resets its metrics, a failed
// probe leaves it open for another cooldown.
//
// Configuration is re-read from the config provider on every decision, so
// thresholds and the force-open/force-closed operator overrides take
// effect without restarting.
package breaker
