// Package rolling provides a time-bucketed counter of discrete events over
// a bounded window.
//
// The counter keeps a circular queue of buckets, each covering a fixed
// slice of time. Increments land in the bucket for the current instant,
// sliding the queue forward and retiring buckets that have fallen out of
// the window. Reads return the aggregate over the live buckets only, so a
// burst of failures ages out of the total after one window length.
//
// The circuit breaker's health metric is the primary consumer.
package rolling
