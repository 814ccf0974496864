package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const broadcastChannel = "match_broadcast"

// Broadcaster is the low-latency notification path: a fire-and-forget
// pub/sub message published right after a commit, carrying the match plus
// both display names. It is not persisted; the durable feed is the backstop.
type Broadcaster struct {
	rdb *redis.Client
}

// NewBroadcaster creates a new broadcaster
func NewBroadcaster(rdb *redis.Client) *Broadcaster {
	return &Broadcaster{rdb: rdb}
}

// PublishMatch publishes a committed match to the shared notification topic
func (b *Broadcaster) PublishMatch(ctx context.Context, event MatchEvent) error {
	event.Source = SourceBroadcast
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal match event: %w", err)
	}
	if err := b.rdb.Publish(ctx, broadcastChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish match event: %w", err)
	}
	return nil
}

// Run subscribes to the notification topic and forwards every message to
// the hub until the context is canceled
func (b *Broadcaster) Run(ctx context.Context, hub *Hub) {
	sub := b.rdb.Subscribe(ctx, broadcastChannel)
	defer sub.Close()

	// the watcher must not outlive Run: the subscription can also end on its
	// own (client closed), and then nobody cancels ctx
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			sub.Close()
		case <-done:
		}
	}()

	log.Info().Str("channel", broadcastChannel).Msg("Broadcast subscriber started")

	for msg := range sub.Channel() {
		var event MatchEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Error().Err(err).Msg("Failed to parse broadcast payload")
			continue
		}
		event.Source = SourceBroadcast
		hub.DeliverMatch(event)
	}

	log.Info().Msg("Broadcast subscriber stopped")
}
