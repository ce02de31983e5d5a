// Package channel implements a named, multi-party communication channel for
// independent OS processes, with a shared store as the only rendezvous point.
//
// # Overview
//
// Processes join a channel under a small integer id, then exchange opaque
// payloads: send to one, many, or all members; receive selectively from one,
// many, or any sender, with blocking, non-blocking, and bounded-wait
// variants. All state lives in the injected store.Store, keyed per channel:
//
//   - channels                   known channel ids
//   - C{chan}MID                 member id set
//   - C{chan}OID                 OS identity -> member id map
//   - C{chan}{sender}{receiver}  per-pair FIFO message queue
//   - C{chan}WOS{id}             per-receiver wakeup queue (signal only)
//
// # Quick start
//
//	st := memstore.New()
//	ch, _ := channel.Open(ctx, st, 1)
//	_ = ch.Join(ctx, 1)
//	_ = ch.SendToAll(ctx, []byte("hello"))
//	msg, _ := ch.RecvFromAny(ctx, channel.WithTimeout(time.Second))
//
// # The selective receive
//
// A blocking receive waits on one queue per candidate sender plus the
// caller's own wakeup queue, using the store's atomic pop-from-any-of-N
// primitive. The candidate set is a snapshot; a process that joins and sends
// while the receiver is parked has no queue in it. Every send therefore also
// pushes a marker on the destination's wakeup queue, which pops the receiver
// out of its stale wait so it can recompute the candidate set and try again.
// Received wakeup markers are discarded, never surfaced.
//
// Messages between one (sender, receiver) pair arrive in send order. No
// ordering holds across different pairs.
package channel
