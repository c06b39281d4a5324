// Package realtime fans out data-change notifications to in-process
// subscribers, such as the dashboard event stream.
package realtime

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// Op is the kind of mutation that produced a Change.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Change describes one committed mutation of a table row.
type Change struct {
	Table    string    `json:"table"`
	Op       Op        `json:"op"`
	UserID   string    `json:"userId"`
	RecordID string    `json:"recordId,omitempty"`
	At       time.Time `json:"at"`
}

// Filter selects changes for a subscriber. Zero fields match everything.
type Filter struct {
	UserID string
	Tables []string
}

// Match reports whether c passes the filter.
func (f Filter) Match(c Change) bool {
	if f.UserID != "" && f.UserID != c.UserID {
		return false
	}
	if len(f.Tables) > 0 && !slices.Contains(f.Tables, c.Table) {
		return false
	}
	return true
}

type subscriber struct {
	filter Filter
	ch     chan Change
	done   chan struct{}
	once   sync.Once
}

func (s *subscriber) stop() {
	s.once.Do(func() { close(s.done) })
}

// Hub delivers published changes to matching subscribers. Each subscriber
// has its own goroutine and bounded buffer; a full buffer drops the change
// for that subscriber only.
type Hub struct {
	mu      sync.RWMutex
	subs    map[*subscriber]struct{}
	buffer  int
	closed  bool
	wg      sync.WaitGroup
	dropped atomic.Uint64
}

// NewHub creates a hub whose subscribers buffer up to bufferSize changes.
func NewHub(bufferSize int) *Hub {
	return &Hub{
		subs:   make(map[*subscriber]struct{}),
		buffer: max(bufferSize, 1),
	}
}

// Subscribe calls fn for every matching change until the returned
// unsubscribe function is called, ctx is cancelled or the hub is closed.
// fn runs on the subscriber's goroutine and must not call Close.
// Unsubscribe is idempotent.
func (h *Hub) Subscribe(ctx context.Context, filter Filter, fn func(Change)) (unsubscribe func()) {
	sub := &subscriber{
		filter: filter,
		ch:     make(chan Change, h.buffer),
		done:   make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		sub.stop()
		return sub.stop
	}
	h.subs[sub] = struct{}{}
	h.wg.Add(1)
	h.mu.Unlock()

	go func() {
		defer h.wg.Done()
		defer h.remove(sub)
		for {
			select {
			case <-sub.done:
				return
			case <-ctx.Done():
				return
			case c := <-sub.ch:
				fn(c)
			}
		}
	}()

	return sub.stop
}

// Publish hands c to every matching subscriber without blocking.
func (h *Hub) Publish(c Change) {
	if c.At.IsZero() {
		c.At = time.Now()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}

	for sub := range h.subs {
		if !sub.filter.Match(c) {
			continue
		}
		select {
		case sub.ch <- c:
		default:
			h.dropped.Add(1)
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped returns how many deliveries were skipped because a subscriber
// buffer was full.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Close stops every subscriber and waits for their goroutines to exit.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	for sub := range h.subs {
		sub.stop()
	}
	h.mu.Unlock()

	h.wg.Wait()
}

func (h *Hub) remove(sub *subscriber) {
	sub.stop()
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
}
