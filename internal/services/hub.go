package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// EventSource tags which propagation path delivered a match event
type EventSource string

const (
	// SourceFeed is the durable change feed driven by the match insert itself
	SourceFeed EventSource = "feed"
	// SourceBroadcast is the best-effort pub/sub message fired after commit
	SourceBroadcast EventSource = "broadcast"
)

// MatchEvent is the common match payload carried by both notification paths
type MatchEvent struct {
	Source     EventSource `json:"source"`
	MatchID    int64       `json:"match_id"`
	User1ID    string      `json:"user1_id"`
	User2ID    string      `json:"user2_id"`
	User1Name  string      `json:"user1_name"`
	User2Name  string      `json:"user2_name"`
	AgreedHour int         `json:"agreed_hour"`
	CreatedAt  time.Time   `json:"created_at"`
}

// WSMessage represents a WebSocket message pushed to clients
type WSMessage struct {
	Type    string      `json:"type"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// wsConn is the slice of *websocket.Conn the hub writes to
type wsConn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

var _ wsConn = (*websocket.Conn)(nil)

// hubConn wraps a connection with a write mutex and its delivery history.
// gorilla allows at most one concurrent writer per connection, and the feed
// and broadcast goroutines push independently, so every write must go
// through the mutex.
type hubConn struct {
	mu   sync.Mutex
	conn wsConn
	seen map[int64]struct{}
}

func newHubConn(conn wsConn) *hubConn {
	return &hubConn{conn: conn, seen: make(map[int64]struct{})}
}

// write sends one message while holding the connection's write lock
func (c *hubConn) write(message WSMessage) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// deliverOnce sends one match push unless this connection already received
// the match from the other path. The match is marked seen only after the
// write succeeds, so a failed push does not suppress the other path.
func (c *hubConn) deliverOnce(matchID int64, message WSMessage) (bool, error) {
	data, err := json.Marshal(message)
	if err != nil {
		return false, fmt.Errorf("failed to marshal message: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.seen[matchID]; dup {
		return false, nil
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return false, fmt.Errorf("failed to send message: %w", err)
	}
	c.seen[matchID] = struct{}{}
	return true, nil
}

// Hub manages WebSocket connections: one per participant user plus any
// number of live-view observers. Both notification paths feed DeliverMatch,
// which de-duplicates by match id so each destination sees a logical match
// exactly once no matter which path arrives first.
type Hub struct {
	mu           sync.RWMutex
	participants map[string]*hubConn
	observers    map[wsConn]*hubConn
	closed       bool
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		participants: make(map[string]*hubConn),
		observers:    make(map[wsConn]*hubConn),
	}
}

// Register registers a participant connection, replacing any previous one
func (h *Hub) Register(userID string, conn wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		conn.Close()
		return
	}
	if existing, ok := h.participants[userID]; ok {
		existing.conn.Close()
	}
	h.participants[userID] = newHubConn(conn)

	log.Info().Str("user_id", userID).Msg("WebSocket connection registered")
}

// Unregister removes a participant connection and its delivery history
func (h *Hub) Unregister(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.participants[userID]; ok {
		c.conn.Close()
		delete(h.participants, userID)
		log.Info().Str("user_id", userID).Msg("WebSocket connection unregistered")
	}
}

// RegisterObserver adds a live-view connection
func (h *Hub) RegisterObserver(conn wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		conn.Close()
		return
	}
	h.observers[conn] = newHubConn(conn)
	log.Info().Int("observers", len(h.observers)).Msg("Observer connection registered")
}

// UnregisterObserver removes a live-view connection
func (h *Hub) UnregisterObserver(conn wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.observers[conn]; ok {
		conn.Close()
		delete(h.observers, conn)
		log.Info().Int("observers", len(h.observers)).Msg("Observer connection unregistered")
	}
}

// IsOnline checks if a participant is connected
func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.participants[userID]
	return ok
}

// SendToUser sends a message to a specific participant
func (h *Hub) SendToUser(userID string, message WSMessage) error {
	h.mu.RLock()
	c, ok := h.participants[userID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("user %s is not connected", userID)
	}
	return c.write(message)
}

// DeliverMatch pushes a committed match to both participants and to every
// observer. The feed and broadcast paths may both deliver the same match;
// each connection's seen set collapses them into one push.
func (h *Hub) DeliverMatch(event MatchEvent) {
	type push struct {
		conn *hubConn
		msg  WSMessage
	}
	var pushes []push

	h.mu.RLock()
	for _, userID := range []string{event.User1ID, event.User2ID} {
		if c, ok := h.participants[userID]; ok {
			pushes = append(pushes, push{conn: c, msg: participantMessage(userID, event)})
		}
	}
	if len(h.observers) > 0 {
		msg := WSMessage{Type: "match_created", Data: event}
		for _, c := range h.observers {
			pushes = append(pushes, push{conn: c, msg: msg})
		}
	}
	h.mu.RUnlock()

	sent := 0
	for _, p := range pushes {
		delivered, err := p.conn.deliverOnce(event.MatchID, p.msg)
		if err != nil {
			log.Error().Err(err).
				Int64("match_id", event.MatchID).
				Str("source", string(event.Source)).
				Msg("Failed to deliver match event")
			continue
		}
		if delivered {
			sent++
		}
	}

	log.Info().
		Int64("match_id", event.MatchID).
		Str("source", string(event.Source)).
		Int("pushes", sent).
		Msg("Match event handled")
}

// Close tears down every connection; the hub refuses registrations afterwards
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for userID, c := range h.participants {
		c.conn.Close()
		delete(h.participants, userID)
	}
	for conn, c := range h.observers {
		c.conn.Close()
		delete(h.observers, conn)
	}
}

// participantMessage shapes the push for one side of the match, naming the
// other party
func participantMessage(userID string, event MatchEvent) WSMessage {
	partnerID, partnerName := event.User2ID, event.User2Name
	if userID == event.User2ID {
		partnerID, partnerName = event.User1ID, event.User1Name
	}
	return WSMessage{
		Type: "match_found",
		Data: map[string]interface{}{
			"match_id":     event.MatchID,
			"partner_id":   partnerID,
			"partner_name": partnerName,
			"agreed_hour":  event.AgreedHour,
			"created_at":   event.CreatedAt,
			"source":       event.Source,
		},
	}
}
