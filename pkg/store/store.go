package store

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned by QueuePopAny when the timeout elapses before any
// of the candidate queues receives data. It is an expected outcome for
// bounded waits, not a store failure.
var ErrTimeout = errors.New("store: pop timed out")

// Popped is the result of a successful QueuePopAny: the queue that fired and
// the element removed from it.
type Popped struct {
	Queue string
	Value []byte
}

// Store is the capability the channel protocol is written against. Every
// method is individually atomic; the protocol never needs a multi-call
// critical section.
type Store interface {
	// SetAdd inserts member into the named set. Adding an existing member
	// is a no-op.
	SetAdd(ctx context.Context, set, member string) error
	// SetRemove deletes member from the named set if present.
	SetRemove(ctx context.Context, set, member string) error
	// SetContains reports whether member is in the named set.
	SetContains(ctx context.Context, set, member string) (bool, error)
	// SetMembers enumerates the named set. Order is unspecified.
	SetMembers(ctx context.Context, set string) ([]string, error)

	// MapSet sets field to value on the named map, creating the map if
	// needed.
	MapSet(ctx context.Context, m, field, value string) error
	// MapGet returns the value of field on the named map, and whether the
	// field exists.
	MapGet(ctx context.Context, m, field string) (string, bool, error)
	// MapDelete removes field from the named map if present.
	MapDelete(ctx context.Context, m, field string) error
	// MapEntries returns all field/value pairs of the named map.
	MapEntries(ctx context.Context, m string) (map[string]string, error)

	// QueuePush appends value to the tail of the named queue, creating the
	// queue if needed. Queues drain to length zero on pop but are never
	// deleted as objects; a later push recreates their presence for Exists.
	QueuePush(ctx context.Context, queue string, value []byte) error
	// QueuePopAny blocks until any of the named queues is non-empty, pops
	// one element from the head of whichever fired, and returns it.
	// timeout <= 0 waits indefinitely. On expiry it returns ErrTimeout; on
	// context cancellation it returns ctx.Err(). When several queues hold
	// data, which one fires is unspecified, but the pop is exactly-once
	// across concurrent waiters.
	QueuePopAny(ctx context.Context, queues []string, timeout time.Duration) (Popped, error)

	// Exists reports whether at least one of the keys currently holds data
	// (a non-empty set, map, or queue).
	Exists(ctx context.Context, keys ...string) (bool, error)

	// Flush destroys everything in the store. Test and reset use only.
	Flush(ctx context.Context) error

	// Close releases backend resources. The Store must not be used after.
	Close() error
}
