// Package config defines the key to typed-value surface the library reads
// its runtime settings from.
//
// Every admission decision re-reads the provider, so a host that swaps
// values in a live provider changes behavior without restarting anything.
// The library itself ships only a map-backed Static provider; hosts with a
// configuration service implement Provider over it.
//
// # Recognized keys
//
//	mjolnir.useCircuitBreakers              bool   master enable for breakers
//	mjolnir.ignoreTimeouts                  bool   global timeout/cancellation bypass
//	mjolnir.gaugeIntervalMillis             int    gauge publishing period
//	command.<name>.Timeout                  int64  per-command timeout override (ms)
//	mjolnir.breaker.<key>.minimumOperations int
//	mjolnir.breaker.<key>.thresholdPercent  int
//	mjolnir.breaker.<key>.trippedDurationMillis int64
//	mjolnir.breaker.<key>.forceTripped      bool
//	mjolnir.breaker.<key>.forceFixed        bool
//	mjolnir.pools.<key>.threadCount         int    bulkhead max concurrency
//	mjolnir.pools.<key>.queueLength         int    queued-variant queue depth
//	mjolnir.fallback.<key>.maxConcurrent    int
package config
