// Package memstore is an in-memory Store used by unit tests and by
// single-process demos. It implements the full contract, including the
// blocking multi-queue pop, with plain maps under one mutex.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/rzbill/crosstalk/pkg/store"
)

// Memory implements store.Store entirely in process memory.
type Memory struct {
	mu     sync.Mutex
	sets   map[string]map[string]struct{}
	maps   map[string]map[string]string
	queues map[string][][]byte

	// notify is closed and replaced on every push so that parked poppers
	// re-check their candidate queues.
	notify chan struct{}
}

var _ store.Store = (*Memory)(nil)

// New returns an empty in-memory store.
func New() *Memory {
	return &Memory{
		sets:   make(map[string]map[string]struct{}),
		maps:   make(map[string]map[string]string),
		queues: make(map[string][][]byte),
		notify: make(chan struct{}),
	}
}

func (s *Memory) SetAdd(_ context.Context, set, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.sets[set]
	if !ok {
		m = make(map[string]struct{})
		s.sets[set] = m
	}
	m[member] = struct{}{}
	return nil
}

func (s *Memory) SetRemove(_ context.Context, set, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.sets[set]; ok {
		delete(m, member)
	}
	return nil
}

func (s *Memory) SetContains(_ context.Context, set, member string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sets[set][member]
	return ok, nil
}

func (s *Memory) SetMembers(_ context.Context, set string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.sets[set]
	out := make([]string, 0, len(m))
	for member := range m {
		out = append(out, member)
	}
	return out, nil
}

func (s *Memory) MapSet(_ context.Context, name, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.maps[name]
	if !ok {
		m = make(map[string]string)
		s.maps[name] = m
	}
	m[field] = value
	return nil
}

func (s *Memory) MapGet(_ context.Context, name, field string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.maps[name][field]
	return v, ok, nil
}

func (s *Memory) MapDelete(_ context.Context, name, field string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.maps[name]; ok {
		delete(m, field)
	}
	return nil
}

func (s *Memory) MapEntries(_ context.Context, name string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src := s.maps[name]
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out, nil
}

func (s *Memory) QueuePush(_ context.Context, queue string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := append([]byte(nil), value...)
	s.queues[queue] = append(s.queues[queue], v)
	// wake parked poppers
	close(s.notify)
	s.notify = make(chan struct{})
	return nil
}

func (s *Memory) QueuePopAny(ctx context.Context, queues []string, timeout time.Duration) (store.Popped, error) {
	var timer *time.Timer
	var expired <-chan time.Time
	if timeout > 0 {
		timer = time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}
	for {
		s.mu.Lock()
		for _, q := range queues {
			if buf := s.queues[q]; len(buf) > 0 {
				head := buf[0]
				s.queues[q] = buf[1:]
				s.mu.Unlock()
				return store.Popped{Queue: q, Value: head}, nil
			}
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

func (s *Memory) Exists(_ context.Context, keys ...string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		if len(s.sets[k]) > 0 || len(s.maps[k]) > 0 || len(s.queues[k]) > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (s *Memory) Flush(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets = make(map[string]map[string]struct{})
	s.maps = make(map[string]map[string]string)
	s.queues = make(map[string][][]byte)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Memory) Close() error { return nil }
