// Package observe provides the telemetry surfaces the library publishes
// through: a structured logger, an event sink for command and breaker
// statistics, and an OpenTelemetry bootstrap wiring both to exporters.
//
// The event sink is the stable integration point for downstream stats
// consumers. Every event is a (service, state, value) triple where the
// service string names the measured thing, for example:
//
//	mjolnir command test.NoOp execute
//	mjolnir breaker test IsAllowing
//	mjolnir breaker test total
//	mjolnir breaker test error
//	mjolnir pool test activeThreads
//
// Hosts that already run OpenTelemetry hand the sink a Meter; hosts that
// scrape lines use WriterSink; tests use CollectingSink.
package observe
