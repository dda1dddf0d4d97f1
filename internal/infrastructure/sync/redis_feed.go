package sync

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const channelPrefix = "taskflow:feed:"

// RedisFeed carries change events across processes via Redis pub/sub.
// Propagation is best-effort within the eventual-consistency window; the
// writer's own process sees its writes through read-after-write reads,
// never through the feed.
type RedisFeed struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisFeed creates a Redis-backed feed
func NewRedisFeed(client *redis.Client, logger *zap.Logger) *RedisFeed {
	return &RedisFeed{client: client, logger: logger}
}

// Publish sends the event on the key's channel
func (f *RedisFeed) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return f.client.Publish(ctx, channelPrefix+ev.Key, payload).Err()
}

// Subscribe listens on the key's channel until cancel is called
func (f *RedisFeed) Subscribe(key string, fn func(Event)) (func(), error) {
	pubsub := f.client.Subscribe(context.Background(), channelPrefix+key)

	// Force the SUBSCRIBE round-trip so a failed connection surfaces here,
	// not on the first missed event
	if _, err := pubsub.Receive(context.Background()); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		ch := pubsub.Channel()
		for {
			select {
			case <-done:
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					if f.logger != nil {
						f.logger.Warn("dropping malformed feed event",
							zap.String("channel", msg.Channel),
							zap.Error(err),
						)
					}
					continue
				}
				fn(ev)
			}
		}
	}()

	return func() {
		close(done)
		_ = pubsub.Close()
	}, nil
}
