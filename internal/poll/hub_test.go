package poll

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestHubSharesThreadPerKey(t *testing.T) {
	h := NewHub(context.Background())
	src := &fakeSource{}
	var opens atomic.Int32
	open := func(ctx context.Context) (*Thread, error) {
		opens.Add(1)
		return Open(ctx, src, "c1", time.Hour)
	}

	a, releaseA, err := h.Acquire(Key("sid", "c1"), open)
	if err != nil {
		t.Fatal(err)
	}
	b, releaseB, err := h.Acquire(Key("sid", "c1"), open)
	if err != nil {
		t.Fatal(err)
	}
	if a != b || opens.Load() != 1 {
		t.Fatalf("expected one shared thread, opens=%d", opens.Load())
	}

	releaseA()
	releaseA()
	select {
	case <-a.Done():
		t.Fatal("closed while still held")
	default:
	}
	releaseB()
	select {
	case <-a.Done():
	case <-time.After(time.Second):
		t.Fatal("not closed after last release")
	}
	if h.Len() != 0 {
		t.Fatalf("len=%d", h.Len())
	}
}

func TestHubRetainKeepsThreadBriefly(t *testing.T) {
	h := NewHub(context.Background())
	key := Key("sid", "c1")
	th, release, err := h.Acquire(key, func(ctx context.Context) (*Thread, error) {
		return Open(ctx, &fakeSource{}, "c1", time.Hour)
	})
	if err != nil {
		t.Fatal(err)
	}
	h.Retain(key, 20*time.Millisecond)
	release()
	if _, ok := h.Lookup(key); !ok {
		t.Fatal("dropped before retain expired")
	}
	select {
	case <-th.Done():
	case <-time.After(time.Second):
		t.Fatal("retain never released")
	}
}

func TestHubOpenErrorNotRegistered(t *testing.T) {
	h := NewHub(context.Background())
	boom := errors.New("nope")
	_, _, err := h.Acquire("k", func(context.Context) (*Thread, error) { return nil, boom })
	if !errors.Is(err, boom) || h.Len() != 0 {
		t.Fatalf("err=%v len=%d", err, h.Len())
	}
}

func TestHubCloseAll(t *testing.T) {
	h := NewHub(context.Background())
	th, _, err := h.Acquire("k", func(ctx context.Context) (*Thread, error) {
		return Open(ctx, &fakeSource{}, "c1", time.Hour)
	})
	if err != nil {
		t.Fatal(err)
	}
	h.CloseAll()
	select {
	case <-th.Done():
	default:
		t.Fatal("thread still open")
	}
}

func TestHubCloseSession(t *testing.T) {
	h := NewHub(context.Background())
	open := func(ctx context.Context) (*Thread, error) { return Open(ctx, &fakeSource{}, "c1", time.Hour) }
	mine1, _, _ := h.Acquire(Key("sid", "c1"), open)
	mine2, _, _ := h.Acquire(Key("sid", "c2"), open)
	theirs, release, _ := h.Acquire(Key("sid2", "c1"), open)
	defer release()

	h.CloseSession("sid")
	for _, th := range []*Thread{mine1, mine2} {
		select {
		case <-th.Done():
		default:
			t.Fatal("session thread still open")
		}
	}
	select {
	case <-theirs.Done():
		t.Fatal("closed a thread of another session")
	default:
	}
	if h.Len() != 1 {
		t.Fatalf("len=%d", h.Len())
	}
}

func TestHubReplacesStoppedThread(t *testing.T) {
	h := NewHub(context.Background())
	key := Key("sid", "c1")
	open := func(ctx context.Context) (*Thread, error) { return Open(ctx, &fakeSource{}, "c1", time.Hour) }
	first, releaseFirst, err := h.Acquire(key, open)
	if err != nil {
		t.Fatal(err)
	}
	first.Close()

	second, releaseSecond, err := h.Acquire(key, open)
	if err != nil {
		t.Fatal(err)
	}
	if second == first {
		t.Fatal("stopped thread handed out again")
	}
	releaseFirst()
	if th, ok := h.Lookup(key); !ok || th != second {
		t.Fatal("stale release dropped the replacement")
	}
	releaseSecond()
	if h.Len() != 0 {
		t.Fatalf("len=%d", h.Len())
	}
}
