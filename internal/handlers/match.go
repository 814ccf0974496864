package handlers

import (
	"encoding/json"
	"net/http"

	"dating-clock-backend/internal/metrics"
	"dating-clock-backend/internal/middleware"
	"dating-clock-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// MatchHandler handles match-related HTTP requests
type MatchHandler struct {
	matches *services.MatchService
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(matches *services.MatchService) *MatchHandler {
	return &MatchHandler{matches: matches}
}

// ScanRequest represents a scanned QR code plus the scanner's local selection
type ScanRequest struct {
	Payload      string `json:"payload" validate:"required"`
	SelectedHour int    `json:"selected_hour"`
}

// Scan handles POST /api/v1/matches/scan
func (h *MatchHandler) Scan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondError(w, "payload is required", http.StatusBadRequest)
		return
	}

	result, err := h.matches.AttemptMatch(ctx, userID, req.SelectedHour, req.Payload)
	if err != nil {
		kind := services.KindOf(err)
		metrics.ObserveMatchAttempt(string(kind))

		event := log.Warn()
		if kind == services.KindStoreFault || kind == services.KindStoreTimeout {
			event = log.Error()
		}
		event.Err(err).
			Str("user_id", userID).
			Int("selected_hour", req.SelectedHour).
			Str("kind", string(kind)).
			Msg("Match attempt rejected")

		respondError(w, services.UserMessage(err), statusForKind(kind))
		return
	}

	metrics.ObserveMatchAttempt("success")
	log.Info().
		Str("user_id", userID).
		Str("peer_id", result.Peer.ID).
		Int64("match_id", result.Match.ID).
		Int("agreed_hour", result.Match.AgreedHour).
		Msg("Match created")

	respondJSON(w, result, http.StatusOK)
}

// List handles GET /api/v1/matches
func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	matches, err := h.matches.ListMatches(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list matches")
		respondError(w, services.UserMessage(err), statusForKind(services.KindOf(err)))
		return
	}

	respondJSON(w, matches, http.StatusOK)
}
