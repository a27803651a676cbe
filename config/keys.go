package config

// Well-known top-level keys.
const (
	// KeyUseCircuitBreakers is the master enable for circuit breakers.
	KeyUseCircuitBreakers = "mjolnir.useCircuitBreakers"

	// KeyIgnoreTimeouts bypasses timeouts and caller cancellation globally.
	KeyIgnoreTimeouts = "mjolnir.ignoreTimeouts"

	// KeyGaugeIntervalMillis is the gauge publishing period.
	KeyGaugeIntervalMillis = "mjolnir.gaugeIntervalMillis"
)

// CommandTimeoutKey returns the per-command timeout override key,
// command.<name>.Timeout.
func CommandTimeoutKey(name string) string {
	return "command." + name + ".Timeout"
}

// BreakerKey returns mjolnir.breaker.<key>.<field>.
func BreakerKey(key, field string) string {
	return "mjolnir.breaker." + key + "." + field
}

// PoolKey returns mjolnir.pools.<key>.<field>.
func PoolKey(key, field string) string {
	return "mjolnir.pools." + key + "." + field
}

// FallbackKey returns mjolnir.fallback.<key>.<field>.
func FallbackKey(key, field string) string {
	return "mjolnir.fallback." + key + "." + field
}

// Breaker config field names.
const (
	FieldMinimumOperations     = "minimumOperations"
	FieldThresholdPercent      = "thresholdPercent"
	FieldTrippedDurationMillis = "trippedDurationMillis"
	FieldForceTripped          = "forceTripped"
	FieldForceFixed            = "forceFixed"
)

// Pool and fallback config field names.
const (
	FieldThreadCount   = "threadCount"
	FieldQueueLength   = "queueLength"
	FieldMaxConcurrent = "maxConcurrent"
)
