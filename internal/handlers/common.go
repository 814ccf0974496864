package handlers

import (
	"encoding/json"
	"net/http"

	"dating-clock-backend/internal/services"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, ErrorResponse{Error: message}, statusCode)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, body interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// statusForKind maps a match engine outcome to an HTTP status
func statusForKind(kind services.ErrorKind) int {
	switch kind {
	case services.KindMissingSelection, services.KindBadToken, services.KindInvalidInput:
		return http.StatusBadRequest
	case services.KindPeerNotFound:
		return http.StatusNotFound
	case services.KindSelfMatch, services.KindStaleToken, services.KindHourMismatch, services.KindAlreadyMatched:
		return http.StatusConflict
	case services.KindStoreTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
