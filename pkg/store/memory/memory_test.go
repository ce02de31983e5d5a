package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rzbill/crosstalk/pkg/store"
)

func TestSetOperations(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.SetAdd(ctx, "s", "a"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.SetAdd(ctx, "s", "a"); err != nil {
		t.Fatalf("re-add: %v", err)
	}
	ok, err := s.SetContains(ctx, "s", "a")
	if err != nil || !ok {
		t.Fatalf("contains: %v %v", ok, err)
	}
	members, err := s.SetMembers(ctx, "s")
	if err != nil || len(members) != 1 {
		t.Fatalf("members: %v %v", members, err)
	}
	if err := s.SetRemove(ctx, "s", "a"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if ok, _ := s.SetContains(ctx, "s", "a"); ok {
		t.Fatalf("member should be gone")
	}
}

func TestMapOperations(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.MapSet(ctx, "m", "f", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := s.MapGet(ctx, "m", "f")
	if err != nil || !ok || v != "v" {
		t.Fatalf("get: %q %v %v", v, ok, err)
	}
	entries, err := s.MapEntries(ctx, "m")
	if err != nil || entries["f"] != "v" {
		t.Fatalf("entries: %v %v", entries, err)
	}
	if err := s.MapDelete(ctx, "m", "f"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.MapGet(ctx, "m", "f"); ok {
		t.Fatalf("field should be gone")
	}
}

func TestQueueFIFO(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, v := range []string{"a", "b", "c"} {
		if err := s.QueuePush(ctx, "q", []byte(v)); err != nil {
			t.Fatalf("push: %v", err)
		}
	}
	for _, want := range []string{"a", "b", "c"} {
		p, err := s.QueuePopAny(ctx, []string{"q"}, time.Second)
		if err != nil {
			t.Fatalf("pop: %v", err)
		}
		if p.Queue != "q" || string(p.Value) != want {
			t.Fatalf("expected %q, got (%q, %q)", want, p.Queue, p.Value)
		}
	}
}

func TestPopAnyIdentifiesFiringQueue(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.QueuePush(ctx, "q2", []byte("x")); err != nil {
		t.Fatalf("push: %v", err)
	}
	p, err := s.QueuePopAny(ctx, []string{"q1", "q2", "q3"}, time.Second)
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if p.Queue != "q2" {
		t.Fatalf("expected q2, got %q", p.Queue)
	}
}

func TestPopAnyBlocksUntilPush(t *testing.T) {
	ctx := context.Background()
	s := New()
	done := make(chan store.Popped, 1)
	go func() {
		p, err := s.QueuePopAny(ctx, []string{"q"}, 5*time.Second)
		if err != nil {
			t.Errorf("pop: %v", err)
		}
		done <- p
	}()

	time.Sleep(50 * time.Millisecond)
	if err := s.QueuePush(ctx, "q", []byte("x")); err != nil {
		t.Fatalf("push: %v", err)
	}
	select {
	case p := <-done:
		if string(p.Value) != "x" {
			t.Fatalf("expected x, got %q", p.Value)
		}
	case <-time.After(time.Second):
		t.Fatalf("popper never woke")
	}
}

func TestPopAnyTimeout(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, err := s.QueuePopAny(ctx, []string{"q"}, 50*time.Millisecond)
	if !errors.Is(err, store.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestPopAnyContextCancel(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	_, err := s.QueuePopAny(ctx, []string{"q"}, 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPopExactlyOnce(t *testing.T) {
	ctx := context.Background()
	s := New()
	const n = 50

	var wg sync.WaitGroup
	got := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := s.QueuePopAny(ctx, []string{"q"}, 5*time.Second)
			if err != nil {
				t.Errorf("pop: %v", err)
				return
			}
			got <- string(p.Value)
		}()
	}
	for i := 0; i < n; i++ {
		if err := s.QueuePush(ctx, "q", []byte{byte(i)}); err != nil {
			t.Fatalf("push: %v", err)
		}
	}
	wg.Wait()
	close(got)

	seen := make(map[string]bool)
	for v := range got {
		if seen[v] {
			t.Fatalf("element %q delivered twice", v)
		}
		seen[v] = true
	}
	if len(seen) != n {
		t.Fatalf("expected %d distinct elements, got %d", n, len(seen))
	}
}

func TestExists(t *testing.T) {
	ctx := context.Background()
	s := New()
	ok, err := s.Exists(ctx, "q", "s")
	if err != nil || ok {
		t.Fatalf("empty store: %v %v", ok, err)
	}
	if err := s.QueuePush(ctx, "q", []byte("x")); err != nil {
		t.Fatalf("push: %v", err)
	}
	if ok, _ := s.Exists(ctx, "nope", "q"); !ok {
		t.Fatalf("queue with data should exist")
	}
	// Drained queues no longer report data, but pushing recreates them.
	if _, err := s.QueuePopAny(ctx, []string{"q"}, time.Second); err != nil {
		t.Fatalf("pop: %v", err)
	}
	if ok, _ := s.Exists(ctx, "q"); ok {
		t.Fatalf("drained queue should not exist")
	}
	if err := s.QueuePush(ctx, "q", []byte("y")); err != nil {
		t.Fatalf("repush: %v", err)
	}
	if ok, _ := s.Exists(ctx, "q"); !ok {
		t.Fatalf("repushed queue should exist")
	}
}

func TestFlush(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.SetAdd(ctx, "s", "a")
	_ = s.MapSet(ctx, "m", "f", "v")
	_ = s.QueuePush(ctx, "q", []byte("x"))
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if ok, _ := s.Exists(ctx, "s", "m", "q"); ok {
		t.Fatalf("flush left data behind")
	}
}
