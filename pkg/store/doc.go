// Package store defines the contract between the channel protocol and the
// shared store that carries all of its state.
//
// # Overview
//
// The channel core never talks to a concrete store directly; it is handed a
// Store capability and performs every membership, queue, and wakeup operation
// through it. Three implementations live in subpackages:
//
//   - store/redis: the cross-process backend. Independent OS processes on
//     the same host (or network) rendezvous through one Redis instance.
//   - store/pebble: a durable single-host backend on Pebble, for co-resident
//     participants and for tests that want real persistence.
//   - store/memory: a plain in-memory fake used by unit tests.
//
// All three honor the same semantics, in particular the blocking multi-queue
// pop: QueuePopAny parks the caller until one of the named queues holds data,
// pops exactly one element from whichever fired, and tells the caller which
// queue that was. No two concurrent waiters ever receive the same element.
package store
