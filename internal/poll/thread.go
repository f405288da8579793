// Package poll keeps a conversation view fresh by short polling: the message
// list is re-fetched on a fixed interval for as long as the thread is open.
package poll

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"gopkg.in/tomb.v2"

	"bazaar/internal/api"
	"bazaar/internal/domain"
	applog "bazaar/internal/log"
	"bazaar/internal/metrics"
	"bazaar/internal/validate"
)

const DefaultInterval = 3 * time.Second

var (
	ErrEmptyMessage   = errors.New("message cannot be empty")
	ErrMessageTooLong = errors.New("message is too long")
	ErrClosed         = errors.New("thread closed")
)

// Source is the backend as seen by one viewer of one conversation.
type Source interface {
	Conversation(ctx context.Context, id string) (domain.Conversation, error)
	Messages(ctx context.Context, id string) ([]domain.Message, error)
	Send(ctx context.Context, id, content string) (domain.Message, error)
}

type Snapshot struct {
	Conversation domain.Conversation
	Messages     []domain.Message
	FetchedAt    time.Time
}

type Thread struct {
	id       string
	src      Source
	interval time.Duration

	t   *tomb.Tomb
	ctx context.Context

	sending atomic.Int32

	mu     sync.Mutex
	closed bool
	snap   Snapshot
	subs   map[chan struct{}]struct{}
}

// Open fetches the conversation and its messages once, then polls messages
// every interval until Close is called or ctx is done. A failure of the
// initial fetch is returned and nothing keeps running.
func Open(ctx context.Context, src Source, id string, interval time.Duration) (*Thread, error) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	conv, err := src.Conversation(ctx, id)
	if err != nil {
		metrics.ThreadFetches.WithLabelValues("open", "error").Inc()
		return nil, err
	}
	msgs, err := src.Messages(ctx, id)
	if err != nil {
		metrics.ThreadFetches.WithLabelValues("open", "error").Inc()
		return nil, err
	}
	metrics.ThreadFetches.WithLabelValues("open", "ok").Inc()

	t, tctx := tomb.WithContext(ctx)
	th := &Thread{
		id:       id,
		src:      src,
		interval: interval,
		t:        t,
		ctx:      tctx,
		snap:     Snapshot{Conversation: conv, Messages: msgs, FetchedAt: time.Now()},
		subs:     map[chan struct{}]struct{}{},
	}
	metrics.ThreadsOpen.Inc()
	t.Go(th.loop)
	return th, nil
}

func (th *Thread) ID() string { return th.id }

func (th *Thread) loop() error {
	defer metrics.ThreadsOpen.Dec()
	defer th.markClosed()

	ticker := time.NewTicker(th.interval)
	defer ticker.Stop()
	for {
		select {
		case <-th.t.Dying():
			return nil
		case <-ticker.C:
			if th.sending.Load() > 0 {
				continue
			}
			th.refresh(th.ctx, "tick")
		}
	}
}

// refresh replaces the message list with the latest server snapshot. Errors
// are swallowed since the view already holds a successful load, except a
// rejected token, which stops the thread.
func (th *Thread) refresh(ctx context.Context, trigger string) {
	msgs, err := th.src.Messages(ctx, th.id)
	if err != nil {
		metrics.ThreadFetches.WithLabelValues(trigger, "error").Inc()
		l := applog.Logger()
		if errors.Is(err, api.ErrUnauthorized) {
			l.Info().Str("action", "thread.stop.unauthorized").Str("conversation", th.id).Send()
			th.markClosed()
			th.t.Kill(err)
			return
		}
		l.Debug().Err(err).Str("action", "thread.refresh.fail").Str("conversation", th.id).Msg("")
		return
	}
	th.mu.Lock()
	if th.closed {
		th.mu.Unlock()
		return
	}
	th.snap.Messages = msgs
	th.snap.FetchedAt = time.Now()
	for ch := range th.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	th.mu.Unlock()
	metrics.ThreadFetches.WithLabelValues(trigger, "ok").Inc()
}

func (th *Thread) Snapshot() Snapshot {
	th.mu.Lock()
	defer th.mu.Unlock()
	s := th.snap
	s.Messages = append([]domain.Message(nil), th.snap.Messages...)
	return s
}

// Subscribe returns a channel signalled after each successful refresh. The
// channel is buffered by one, so slow readers see coalesced signals.
func (th *Thread) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	th.mu.Lock()
	th.subs[ch] = struct{}{}
	th.mu.Unlock()
	return ch, func() {
		th.mu.Lock()
		delete(th.subs, ch)
		th.mu.Unlock()
	}
}

// Send posts content and then forces one fetch outside the polling cadence
// so the new message shows up without waiting for the next tick. Ticks are
// skipped while a send is in flight.
func (th *Thread) Send(ctx context.Context, content string) (domain.Message, error) {
	text, err := CheckContent(content)
	if err != nil {
		return domain.Message{}, err
	}
	th.mu.Lock()
	closed := th.closed
	th.mu.Unlock()
	if closed {
		return domain.Message{}, ErrClosed
	}

	th.sending.Add(1)
	defer th.sending.Add(-1)
	m, err := th.src.Send(ctx, th.id, text)
	if err != nil {
		return domain.Message{}, err
	}
	th.refresh(ctx, "send")
	return m, nil
}

// Done is closed once the thread starts shutting down.
func (th *Thread) Done() <-chan struct{} { return th.t.Dying() }

// Close stops polling and waits for the loop to exit. After Close returns no
// further fetch is issued and the snapshot is never written again. Safe to
// call more than once.
func (th *Thread) Close() {
	th.t.Kill(nil)
	th.markClosed()
	_ = th.t.Wait()
}

func (th *Thread) stopped() bool {
	select {
	case <-th.t.Dying():
		return true
	default:
		return false
	}
}

func (th *Thread) markClosed() {
	th.mu.Lock()
	th.closed = true
	th.mu.Unlock()
}

// CheckContent applies the client-side message rules before any network call.
func CheckContent(content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyMessage
	}
	text, ok := validate.Message(content)
	if !ok {
		return "", ErrMessageTooLong
	}
	return text, nil
}
