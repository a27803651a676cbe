// Package bulkhead provides fixed-capacity admission control for one
// dependency group.
//
// Two variants are available. Semaphore admits callers that run the
// command body on their own goroutine and rejects immediately when all
// permits are held. Pool owns a fixed set of worker goroutines and a
// bounded queue, rejecting when the queue is full; it is used when the
// body should run on an owned executor rather than the caller's
// goroutine.
//
// Gate is the small semaphore limiting concurrent fallback executions.
//
// Admission is strictly non-blocking in every variant: a caller either
// gets a slot immediately or is rejected so load sheds at the edge
// instead of queueing callers invisibly.
package bulkhead
