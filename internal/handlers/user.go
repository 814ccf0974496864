package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"dating-clock-backend/internal/middleware"
	"dating-clock-backend/internal/repository"
	"dating-clock-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	sessions    *services.SessionService
	preferences *services.PreferenceService
}

// NewUserHandler creates a new user handler
func NewUserHandler(sessions *services.SessionService, preferences *services.PreferenceService) *UserHandler {
	return &UserHandler{
		sessions:    sessions,
		preferences: preferences,
	}
}

// Me handles GET /api/v1/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	user, err := h.sessions.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, "User not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to get user")
		respondError(w, "Failed to get user", http.StatusInternalServerError)
		return
	}

	respondJSON(w, user, http.StatusOK)
}

// SetPreferenceRequest represents the request body for picking an hour
type SetPreferenceRequest struct {
	Hour int `json:"hour" validate:"required,min=1,max=12"`
}

// SetPreference handles PUT /api/v1/users/me/preference
func (h *UserHandler) SetPreference(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req SetPreferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondError(w, "hour must be between 1 and 12", http.StatusBadRequest)
		return
	}

	if err := h.preferences.SetPreferredHour(ctx, userID, req.Hour); err != nil {
		log.Error().Err(err).Str("user_id", userID).Int("hour", req.Hour).Msg("Failed to set preferred hour")
		respondError(w, services.UserMessage(err), statusForKind(services.KindOf(err)))
		return
	}

	log.Info().Str("user_id", userID).Int("hour", req.Hour).Msg("Preferred hour updated")
	w.WriteHeader(http.StatusNoContent)
}

// MatchedHoursResponse lists the hours already consumed by committed matches
type MatchedHoursResponse struct {
	Hours []int `json:"hours"`
}

// MatchedHours handles GET /api/v1/users/me/matched-hours
func (h *UserHandler) MatchedHours(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	hours, err := h.preferences.MatchedHours(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to get matched hours")
		respondError(w, services.UserMessage(err), statusForKind(services.KindOf(err)))
		return
	}

	respondJSON(w, MatchedHoursResponse{Hours: hours}, http.StatusOK)
}

// QRCodeResponse carries the string payload to render as a QR code
type QRCodeResponse struct {
	Payload string `json:"payload"`
}

// QRCode handles GET /api/v1/users/me/qr
func (h *UserHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	payload, err := h.preferences.IssueToken(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to issue qr token")
		respondError(w, services.UserMessage(err), statusForKind(services.KindOf(err)))
		return
	}

	respondJSON(w, QRCodeResponse{Payload: payload}, http.StatusOK)
}
