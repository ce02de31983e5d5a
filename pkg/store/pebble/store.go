// Package pebblestore implements the store contract on a Pebble database.
//
// It gives co-resident participants (goroutines, or processes funneling
// through one owner) a durable store with the same semantics as the Redis
// backend. Sets and maps are presence keys, queues are big-endian-sequenced
// entry keys popped in order, and blocking pops park on a notify channel
// that every push replaces.
package pebblestore

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"

	"github.com/rzbill/crosstalk/pkg/store"
)

// Store implements store.Store on Pebble.
type Store struct {
	db *db

	mu      sync.Mutex
	lastSeq map[string]uint64
	notify  chan struct{}
}

var _ store.Store = (*Store)(nil)

// Open creates or opens a Pebble-backed store at opts.DataDir.
func Open(opts Options) (*Store, error) {
	d, err := openDB(opts)
	if err != nil {
		return nil, err
	}
	return &Store{
		db:      d,
		lastSeq: make(map[string]uint64),
		notify:  make(chan struct{}),
	}, nil
}

func (s *Store) SetAdd(_ context.Context, set, member string) error {
	return s.db.set(keySetMember(set, member), nil)
}

func (s *Store) SetRemove(_ context.Context, set, member string) error {
	return s.db.delete(keySetMember(set, member))
}

func (s *Store) SetContains(_ context.Context, set, member string) (bool, error) {
	_, err := s.db.get(keySetMember(set, member))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Store) SetMembers(_ context.Context, set string) ([]string, error) {
	prefix := keySetPrefix(set)
	iter, err := s.db.newIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: prefixUpperBound(prefix)})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []string
	for ok := iter.First(); ok; ok = iter.Next() {
		out = append(out, string(iter.Key()[len(prefix):]))
	}
	return out, nil
}

func (s *Store) MapSet(_ context.Context, m, field, value string) error {
	return s.db.set(keyMapField(m, field), []byte(value))
}

func (s *Store) MapGet(_ context.Context, m, field string) (string, bool, error) {
	v, err := s.db.get(keyMapField(m, field))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(v), true, nil
}

func (s *Store) MapDelete(_ context.Context, m, field string) error {
	return s.db.delete(keyMapField(m, field))
}

func (s *Store) MapEntries(_ context.Context, m string) (map[string]string, error) {
	prefix := keyMapPrefix(m)
	iter, err := s.db.newIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: prefixUpperBound(prefix)})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	out := make(map[string]string)
	for ok := iter.First(); ok; ok = iter.Next() {
		out[string(iter.Key()[len(prefix):])] = string(iter.Value())
	}
	return out, nil
}

func (s *Store) QueuePush(ctx context.Context, queue string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.nextSeqLocked(queue)
	b := s.db.newBatch()
	defer b.Close()
	if err := b.Set(keyQueueEntry(queue, seq), value, nil); err != nil {
		return err
	}
	var meta [8]byte
	binary.BigEndian.PutUint64(meta[:], seq)
	if err := b.Set(keyQueueMeta(queue), meta[:], nil); err != nil {
		return err
	}
	if err := s.db.commitBatch(ctx, b); err != nil {
		return err
	}

	// wake parked poppers
	close(s.notify)
	s.notify = make(chan struct{})
	return nil
}

// nextSeqLocked advances the cached sequence for queue, loading it from the
// queue metadata key on first use after open.
func (s *Store) nextSeqLocked(queue string) uint64 {
	last, ok := s.lastSeq[queue]
	if !ok {
		if meta, err := s.db.get(keyQueueMeta(queue)); err == nil && len(meta) >= 8 {
			last = binary.BigEndian.Uint64(meta[:8])
		}
	}
	last++
	s.lastSeq[queue] = last
	return last
}

func (s *Store) QueuePopAny(ctx context.Context, queues []string, timeout time.Duration) (store.Popped, error) {
	var timer *time.Timer
	var expired <-chan time.Time
	if timeout > 0 {
		timer = time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}
	for {
		s.mu.Lock()
		popped, ok, err := s.tryPopLocked(queues)
		if err != nil {
			s.mu.Unlock()
			return store.Popped{}, err
		}
		if ok {
			s.mu.Unlock()
			return popped, nil
		}
		wake := s.notify
		s.mu.Unlock()

		select {
		case <-wake:
		case <-expired:
			return store.Popped{}, store.ErrTimeout
		case <-ctx.Done():
			return store.Popped{}, ctx.Err()
		}
	}
}

// tryPopLocked removes and returns the head of the first non-empty queue.
// Caller holds s.mu, which serializes concurrent poppers.
func (s *Store) tryPopLocked(queues []string) (store.Popped, bool, error) {
	for _, q := range queues {
		prefix := keyQueueEntryPrefix(q)
		iter, err := s.db.newIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: prefixUpperBound(prefix)})
		if err != nil {
			return store.Popped{}, false, err
		}
		if !iter.First() {
			iter.Close()
			continue
		}
		key := append([]byte(nil), iter.Key()...)
		val := append([]byte(nil), iter.Value()...)
		iter.Close()

		if err := s.db.delete(key); err != nil {
			return store.Popped{}, false, err
		}
		return store.Popped{Queue: q, Value: val}, true, nil
	}
	return store.Popped{}, false, nil
}

func (s *Store) Exists(_ context.Context, keys ...string) (bool, error) {
	for _, k := range keys {
		for _, prefix := range [][]byte{keySetPrefix(k), keyMapPrefix(k), keyQueueEntryPrefix(k)} {
			iter, err := s.db.newIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: prefixUpperBound(prefix)})
			if err != nil {
				return false, err
			}
			found := iter.First()
			iter.Close()
			if found {
				return true, nil
			}
		}
	}
	return false, nil
}

func (s *Store) Flush(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.db.deleteAll(); err != nil {
		return err
	}
	s.lastSeq = make(map[string]uint64)
	return nil
}

// Close closes the underlying Pebble database.
func (s *Store) Close() error { return s.db.close() }
