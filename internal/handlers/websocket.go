package handlers

import (
	"net/http"

	"dating-clock-backend/internal/metrics"
	"dating-clock-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // clients connect from the event network, no origin list
	},
}

// WebSocketHandler handles the real-time push connections
type WebSocketHandler struct {
	hub      *services.Hub
	sessions *services.SessionService
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.Hub, sessions *services.SessionService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:      hub,
		sessions: sessions,
	}
}

// HandleParticipant handles GET /ws: the per-user push channel that carries
// match_found events
func (h *WebSocketHandler) HandleParticipant(w http.ResponseWriter, r *http.Request) {
	sessionToken := r.URL.Query().Get("token")
	if sessionToken == "" {
		respondError(w, "token required", http.StatusUnauthorized)
		return
	}

	userID, err := h.sessions.ValidateJWT(sessionToken)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.hub.Register(userID, conn)
	defer h.hub.Unregister(userID)

	metrics.WSConnected("participant")
	defer metrics.WSDisconnected("participant")

	// Clients only receive on this channel; drain until the peer goes away
	// so pings and close frames are processed.
	h.drain(conn, userID)
}

// HandleObserver handles GET /ws/live: the read-only feed for the TV view
func (h *WebSocketHandler) HandleObserver(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade observer connection")
		return
	}

	h.hub.RegisterObserver(conn)
	defer h.hub.UnregisterObserver(conn)

	metrics.WSConnected("observer")
	defer metrics.WSDisconnected("observer")

	h.drain(conn, "")
}

func (h *WebSocketHandler) drain(conn *websocket.Conn, userID string) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("user_id", userID).Msg("WebSocket error")
			}
			return
		}
	}
}
