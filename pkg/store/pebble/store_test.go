package pebblestore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rzbill/crosstalk/pkg/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Options{DataDir: t.TempDir(), Fsync: FsyncModeNever})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSetAndMapOperations(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if err := s.SetAdd(ctx, "s", "0001"); err != nil {
		t.Fatalf("sadd: %v", err)
	}
	if err := s.SetAdd(ctx, "s", "0002"); err != nil {
		t.Fatalf("sadd: %v", err)
	}
	ok, err := s.SetContains(ctx, "s", "0001")
	if err != nil || !ok {
		t.Fatalf("contains: %v %v", ok, err)
	}
	members, err := s.SetMembers(ctx, "s")
	if err != nil || len(members) != 2 {
		t.Fatalf("members: %v %v", members, err)
	}
	if err := s.SetRemove(ctx, "s", "0001"); err != nil {
		t.Fatalf("srem: %v", err)
	}
	if ok, _ := s.SetContains(ctx, "s", "0001"); ok {
		t.Fatalf("member should be gone")
	}

	if err := s.MapSet(ctx, "m", "100", "0001"); err != nil {
		t.Fatalf("hset: %v", err)
	}
	v, ok, err := s.MapGet(ctx, "m", "100")
	if err != nil || !ok || v != "0001" {
		t.Fatalf("hget: %q %v %v", v, ok, err)
	}
	entries, err := s.MapEntries(ctx, "m")
	if err != nil || entries["100"] != "0001" {
		t.Fatalf("entries: %v %v", entries, err)
	}
	if err := s.MapDelete(ctx, "m", "100"); err != nil {
		t.Fatalf("hdel: %v", err)
	}
	if _, ok, _ := s.MapGet(ctx, "m", "100"); ok {
		t.Fatalf("field should be gone")
	}
}

func TestQueueFIFOAndPopAny(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for _, v := range []string{"a", "b", "c"} {
		if err := s.QueuePush(ctx, "q1", []byte(v)); err != nil {
			t.Fatalf("push: %v", err)
		}
	}
	if err := s.QueuePush(ctx, "q2", []byte("z")); err != nil {
		t.Fatalf("push: %v", err)
	}

	for _, want := range []string{"a", "b", "c"} {
		p, err := s.QueuePopAny(ctx, []string{"q1"}, time.Second)
		if err != nil {
			t.Fatalf("pop: %v", err)
		}
		if string(p.Value) != want {
			t.Fatalf("expected %q, got %q", want, p.Value)
		}
	}
	p, err := s.QueuePopAny(ctx, []string{"q1", "q2"}, time.Second)
	if err != nil {
		t.Fatalf("pop any: %v", err)
	}
	if p.Queue != "q2" || string(p.Value) != "z" {
		t.Fatalf("expected (q2, z), got (%q, %q)", p.Queue, p.Value)
	}
}

func TestBlockingPopWake(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

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

func TestBlockingPopTimeout(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	_, err := s.QueuePopAny(ctx, []string{"q"}, 50*time.Millisecond)
	if !errors.Is(err, store.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestQueueSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(Options{DataDir: dir, Fsync: FsyncModeAlways})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.QueuePush(ctx, "q", []byte("persisted")); err != nil {
		t.Fatalf("push: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s2, err := Open(Options{DataDir: dir, Fsync: FsyncModeAlways})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = s2.Close() })

	p, err := s2.QueuePopAny(ctx, []string{"q"}, time.Second)
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if string(p.Value) != "persisted" {
		t.Fatalf("expected persisted, got %q", p.Value)
	}
	// The restored sequence must keep appends ordered after old entries.
	if err := s2.QueuePush(ctx, "q", []byte("after")); err != nil {
		t.Fatalf("push: %v", err)
	}
	p, err = s2.QueuePopAny(ctx, []string{"q"}, time.Second)
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if string(p.Value) != "after" {
		t.Fatalf("expected after, got %q", p.Value)
	}
}

func TestExistsAndFlush(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if ok, _ := s.Exists(ctx, "s", "q"); ok {
		t.Fatalf("empty store should have nothing")
	}
	_ = s.SetAdd(ctx, "s", "a")
	_ = s.QueuePush(ctx, "q", []byte("x"))
	if ok, _ := s.Exists(ctx, "q"); !ok {
		t.Fatalf("queue with data should exist")
	}
	if ok, _ := s.Exists(ctx, "s"); !ok {
		t.Fatalf("set with member should exist")
	}
	if _, err := s.QueuePopAny(ctx, []string{"q"}, time.Second); err != nil {
		t.Fatalf("pop: %v", err)
	}
	if ok, _ := s.Exists(ctx, "q"); ok {
		t.Fatalf("drained queue should not exist")
	}

	if err := s.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if ok, _ := s.Exists(ctx, "s", "q"); ok {
		t.Fatalf("flush left data behind")
	}
	// Sequences restart cleanly after a flush.
	if err := s.QueuePush(ctx, "q", []byte("fresh")); err != nil {
		t.Fatalf("push after flush: %v", err)
	}
	p, err := s.QueuePopAny(ctx, []string{"q"}, time.Second)
	if err != nil || string(p.Value) != "fresh" {
		t.Fatalf("pop after flush: %v %q", err, p.Value)
	}
}
