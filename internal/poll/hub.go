package poll

import (
	"context"
	"strings"
	"sync"
	"time"
)

// OpenFunc opens a thread bound to the hub's lifetime context.
type OpenFunc func(ctx context.Context) (*Thread, error)

type hubEntry struct {
	th   *Thread
	refs int
}

// Hub shares one Thread per key (browser session + conversation) among the
// page render and any event streams, and closes it when the last holder
// lets go.
type Hub struct {
	ctx context.Context

	mu      sync.Mutex
	entries map[string]*hubEntry
}

func NewHub(ctx context.Context) *Hub {
	return &Hub{ctx: ctx, entries: map[string]*hubEntry{}}
}

func Key(sid, conversationID string) string { return sid + "|" + conversationID }

// Acquire returns the open thread for key, opening it when absent. The
// returned release func must be called exactly once.
func (h *Hub) Acquire(key string, open OpenFunc) (*Thread, func(), error) {
	h.mu.Lock()
	if e, ok := h.entries[key]; ok {
		if !e.th.stopped() {
			e.refs++
			h.mu.Unlock()
			return e.th, h.releaser(key, e.th), nil
		}
		// stopped on its own (rejected token); holders' releasers become no-ops
		delete(h.entries, key)
	}
	h.mu.Unlock()

	th, err := open(h.ctx)
	if err != nil {
		return nil, nil, err
	}

	h.mu.Lock()
	if e, ok := h.entries[key]; ok {
		// lost the race; keep the thread that is already registered
		e.refs++
		h.mu.Unlock()
		th.Close()
		return e.th, h.releaser(key, e.th), nil
	}
	h.entries[key] = &hubEntry{th: th, refs: 1}
	h.mu.Unlock()
	return th, h.releaser(key, th), nil
}

// Retain holds an extra reference on an open thread for d. Used to bridge
// the gap between a page render and the event stream it starts.
func (h *Hub) Retain(key string, d time.Duration) {
	h.mu.Lock()
	e, ok := h.entries[key]
	if ok {
		e.refs++
	}
	h.mu.Unlock()
	if ok {
		time.AfterFunc(d, h.releaser(key, e.th))
	}
}

// Lookup returns the thread for key when one is open.
func (h *Hub) Lookup(key string) (*Thread, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	e, ok := h.entries[key]
	if !ok {
		return nil, false
	}
	return e.th, true
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

func (h *Hub) releaser(key string, th *Thread) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			e, ok := h.entries[key]
			if !ok || e.th != th {
				h.mu.Unlock()
				return
			}
			e.refs--
			last := e.refs <= 0
			if last {
				delete(h.entries, key)
			}
			h.mu.Unlock()
			if last {
				th.Close()
			}
		})
	}
}

// CloseSession closes every thread opened for sid, whoever holds it.
func (h *Hub) CloseSession(sid string) {
	prefix := Key(sid, "")
	var closing []*Thread
	h.mu.Lock()
	for key, e := range h.entries {
		if strings.HasPrefix(key, prefix) {
			closing = append(closing, e.th)
			delete(h.entries, key)
		}
	}
	h.mu.Unlock()
	for _, th := range closing {
		th.Close()
	}
}

// CloseAll closes every open thread regardless of holders.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	entries := h.entries
	h.entries = map[string]*hubEntry{}
	h.mu.Unlock()
	for _, e := range entries {
		e.th.Close()
	}
}
