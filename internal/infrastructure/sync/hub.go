package sync

import (
	stdsync "sync"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-taskflow/internal/infrastructure/cache"
)

// DefaultBatchWindow coalesces bursts of change events into one delivery,
// e.g. auto-assignment touching every task of a meeting at once
const DefaultBatchWindow = 100 * time.Millisecond

// How long a consolidated batch stays valid as the key's last-known value
const lastValueTTL = 5 * time.Minute

// Batch is the consolidated delivery for one key
type Batch struct {
	Key    string
	Events []Event
	// Stale marks a batch replayed from the last-known-value cache for a
	// new subscriber, before its first live push
	Stale bool
}

// CancelFunc detaches a subscription. It is synchronous and final: no
// callback fires after it returns.
type CancelFunc func()

// Hub multiplexes feed subscriptions for local observers. Identical
// concurrent subscriptions to one key share a single upstream feed listener;
// events within the batch window coalesce into one consolidated callback.
type Hub struct {
	feed      Feed
	window    time.Duration
	logger    *zap.Logger
	lastValue *cache.MemoryStore

	mu     stdsync.Mutex
	nextID uint64
	keys   map[string]*keyState
}

type keyState struct {
	cancelUpstream func()
	subs           map[uint64]*subscription
	pending        []Event
	timer          *time.Timer
}

type subscription struct {
	// mu serializes callback delivery against cancel: cancel takes it to
	// flip closed, so returning from cancel means no callback is running
	// and none will run
	mu     stdsync.Mutex
	closed bool
	fn     func(Batch)
}

func (s *subscription) deliver(b Batch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.fn(b)
}

// NewHub creates a hub over the given feed
func NewHub(feed Feed, window time.Duration, logger *zap.Logger) *Hub {
	if window <= 0 {
		window = DefaultBatchWindow
	}
	return &Hub{
		feed:      feed,
		window:    window,
		logger:    logger,
		lastValue: cache.NewMemoryStore(),
		keys:      make(map[string]*keyState),
	}
}

// Subscribe registers fn for consolidated updates on key. If a last-known
// value exists for the key the new subscriber receives it immediately,
// marked stale, before any live push.
func (h *Hub) Subscribe(key string, fn func(Batch)) (CancelFunc, error) {
	sub := &subscription{fn: fn}

	h.mu.Lock()
	ks := h.keys[key]
	if ks == nil {
		cancelUpstream, err := h.feed.Subscribe(key, func(ev Event) { h.onEvent(key, ev) })
		if err != nil {
			h.mu.Unlock()
			return nil, err
		}
		ks = &keyState{
			cancelUpstream: cancelUpstream,
			subs:           make(map[uint64]*subscription),
		}
		h.keys[key] = ks
	}
	h.nextID++
	id := h.nextID
	ks.subs[id] = sub
	h.mu.Unlock()

	if v, ok := h.lastValue.Get(key); ok {
		if b, ok := v.(Batch); ok {
			b.Stale = true
			sub.deliver(b)
		}
	}

	var once stdsync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if ks := h.keys[key]; ks != nil {
				delete(ks.subs, id)
				if len(ks.subs) == 0 {
					ks.cancelUpstream()
					if ks.timer != nil {
						ks.timer.Stop()
					}
					delete(h.keys, key)
				}
			}
			h.mu.Unlock()

			sub.mu.Lock()
			sub.closed = true
			sub.mu.Unlock()
		})
	}
	return cancel, nil
}

func (h *Hub) onEvent(key string, ev Event) {
	h.mu.Lock()
	ks := h.keys[key]
	if ks == nil {
		h.mu.Unlock()
		return
	}
	ks.pending = append(ks.pending, ev)
	if ks.timer == nil {
		ks.timer = time.AfterFunc(h.window, func() { h.flush(key) })
	}
	h.mu.Unlock()
}

func (h *Hub) flush(key string) {
	h.mu.Lock()
	ks := h.keys[key]
	if ks == nil {
		h.mu.Unlock()
		return
	}
	events := ks.pending
	ks.pending = nil
	ks.timer = nil
	if len(events) == 0 {
		h.mu.Unlock()
		return
	}
	batch := Batch{Key: key, Events: events}
	subs := make([]*subscription, 0, len(ks.subs))
	for _, s := range ks.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	h.lastValue.Set(key, batch, lastValueTTL)

	if h.logger != nil {
		h.logger.Debug("flushing consolidated batch",
			zap.String("key", key),
			zap.Int("events", len(events)),
			zap.Int("subscribers", len(subs)),
		)
	}

	for _, s := range subs {
		s.deliver(batch)
	}
}

// Close detaches all upstream listeners. Pending batches are dropped.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for key, ks := range h.keys {
		ks.cancelUpstream()
		if ks.timer != nil {
			ks.timer.Stop()
		}
		delete(h.keys, key)
	}
}
