package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"dating-clock-backend/internal/models"
	"dating-clock-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// AuthHandler handles login requests
type AuthHandler struct {
	sessions *services.SessionService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(sessions *services.SessionService) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	StudentID string `json:"student_id" validate:"required"`
}

// LoginResponse carries the user row and the session token
type LoginResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondError(w, "student_id is required", http.StatusBadRequest)
		return
	}

	user, sessionToken, err := h.sessions.Login(r.Context(), req.StudentID)
	if err != nil {
		log.Error().Err(err).Str("student_id", req.StudentID).Msg("Login failed")

		switch {
		case errors.Is(err, services.ErrStudentNotFound):
			respondError(w, "Student ID not found.", http.StatusNotFound)
		case errors.Is(err, context.DeadlineExceeded):
			respondError(w, "Student directory timed out, please try again", http.StatusGatewayTimeout)
		default:
			respondError(w, "Login failed, please try again", http.StatusInternalServerError)
		}
		return
	}

	log.Info().
		Str("user_id", user.ID).
		Str("student_id", user.StudentID).
		Msg("User logged in")

	respondJSON(w, LoginResponse{User: user, Token: sessionToken}, http.StatusOK)
}
