package sync

import (
	"context"
	stdsync "sync"
	"sync/atomic"
	"testing"
	"time"
)

// countingFeed wraps MemoryFeed and counts upstream subscriptions per key
type countingFeed struct {
	*MemoryFeed
	mu       stdsync.Mutex
	upstream map[string]int
}

func newCountingFeed() *countingFeed {
	return &countingFeed{MemoryFeed: NewMemoryFeed(), upstream: make(map[string]int)}
}

func (f *countingFeed) Subscribe(key string, fn func(Event)) (func(), error) {
	f.mu.Lock()
	f.upstream[key]++
	f.mu.Unlock()
	return f.MemoryFeed.Subscribe(key, fn)
}

func (f *countingFeed) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.upstream[key]
}

func publish(t *testing.T, f Feed, key string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := f.Publish(context.Background(), Event{Key: key, Kind: "task_assigned", At: time.Now()}); err != nil {
			t.Fatalf("publish failed: %v", err)
		}
	}
}

func TestHub_BatchesBurstsIntoOneCallback(t *testing.T) {
	feed := NewMemoryFeed()
	hub := NewHub(feed, 50*time.Millisecond, nil)
	defer hub.Close()

	var calls int32
	var gotEvents int32
	cancel, err := hub.Subscribe("meeting-tasks:m1", func(b Batch) {
		atomic.AddInt32(&calls, 1)
		atomic.AddInt32(&gotEvents, int32(len(b.Events)))
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer cancel()

	// Burst of 5 events inside one batch window
	publish(t, feed, "meeting-tasks:m1", 5)

	time.Sleep(200 * time.Millisecond)

	if c := atomic.LoadInt32(&calls); c != 1 {
		t.Fatalf("expected 1 consolidated callback, got %d", c)
	}
	if e := atomic.LoadInt32(&gotEvents); e != 5 {
		t.Fatalf("expected 5 events in batch, got %d", e)
	}
}

func TestHub_DeduplicatesUpstreamSubscriptions(t *testing.T) {
	feed := newCountingFeed()
	hub := NewHub(feed, 20*time.Millisecond, nil)
	defer hub.Close()

	var aCalls, bCalls int32
	cancelA, err := hub.Subscribe("user-tasks:u1", func(Batch) { atomic.AddInt32(&aCalls, 1) })
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer cancelA()
	cancelB, err := hub.Subscribe("user-tasks:u1", func(Batch) { atomic.AddInt32(&bCalls, 1) })
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer cancelB()

	if n := feed.count("user-tasks:u1"); n != 1 {
		t.Fatalf("expected 1 upstream listener for duplicated subscriptions, got %d", n)
	}

	publish(t, feed, "user-tasks:u1", 1)
	time.Sleep(100 * time.Millisecond)

	if atomic.LoadInt32(&aCalls) != 1 || atomic.LoadInt32(&bCalls) != 1 {
		t.Fatalf("both local subscribers should see the event, got a=%d b=%d",
			atomic.LoadInt32(&aCalls), atomic.LoadInt32(&bCalls))
	}
}

func TestHub_CancelIsFinal(t *testing.T) {
	feed := NewMemoryFeed()
	hub := NewHub(feed, 30*time.Millisecond, nil)
	defer hub.Close()

	var calls int32
	cancel, err := hub.Subscribe("user-notifications:u1", func(Batch) { atomic.AddInt32(&calls, 1) })
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	cancel()
	publish(t, feed, "user-notifications:u1", 3)

	// Observe well past the batching window
	time.Sleep(500 * time.Millisecond)

	if c := atomic.LoadInt32(&calls); c != 0 {
		t.Fatalf("no callback may fire after cancel returns, got %d", c)
	}

	// Cancelling twice is harmless
	cancel()
}

func TestHub_NewSubscriberGetsLastKnownValue(t *testing.T) {
	feed := NewMemoryFeed()
	hub := NewHub(feed, 20*time.Millisecond, nil)
	defer hub.Close()

	cancelA, err := hub.Subscribe("team-roster:t1", func(Batch) {})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer cancelA()

	publish(t, feed, "team-roster:t1", 2)
	time.Sleep(100 * time.Millisecond)

	// A late subscriber sees the cached batch immediately, marked stale,
	// with no new publish required
	got := make(chan Batch, 1)
	cancelB, err := hub.Subscribe("team-roster:t1", func(b Batch) { got <- b })
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer cancelB()

	select {
	case b := <-got:
		if !b.Stale {
			t.Fatal("replayed batch should be marked stale")
		}
		if len(b.Events) != 2 {
			t.Fatalf("expected cached batch of 2 events, got %d", len(b.Events))
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("late subscriber did not receive last-known value")
	}
}

func TestHub_SeparateWindowsSeparateBatches(t *testing.T) {
	feed := NewMemoryFeed()
	hub := NewHub(feed, 30*time.Millisecond, nil)
	defer hub.Close()

	var calls int32
	cancel, err := hub.Subscribe("meeting-tasks:m2", func(Batch) { atomic.AddInt32(&calls, 1) })
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer cancel()

	publish(t, feed, "meeting-tasks:m2", 1)
	time.Sleep(120 * time.Millisecond)
	publish(t, feed, "meeting-tasks:m2", 1)
	time.Sleep(120 * time.Millisecond)

	if c := atomic.LoadInt32(&calls); c != 2 {
		t.Fatalf("events in separate windows should flush separately, got %d callbacks", c)
	}
}

func TestMemoryFeed_CancelStopsDelivery(t *testing.T) {
	feed := NewMemoryFeed()
	var calls int32
	cancel, err := feed.Subscribe("k", func(Event) { atomic.AddInt32(&calls, 1) })
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	publish(t, feed, "k", 1)
	cancel()
	publish(t, feed, "k", 1)
	if c := atomic.LoadInt32(&calls); c != 1 {
		t.Fatalf("expected 1 delivery before cancel, got %d", c)
	}
}
