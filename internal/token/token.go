// Package token encodes and decodes the payload embedded in a user's QR code.
// The payload is a small JSON document so unmodified clients can produce and
// consume it; it is a claim, not a fact — the match engine re-verifies every
// field against stored state.
package token

import (
	"encoding/json"
	"fmt"

	"dating-clock-backend/internal/models"
)

// Payload is the QR code contents
type Payload struct {
	UserID string `json:"userId"`
	Hour   int    `json:"time"`
	Name   string `json:"name"`
}

// DecodeError marks a malformed or incomplete QR payload. Callers should
// treat it as "invalid QR code", not as a system fault.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return "invalid qr payload: " + e.Reason
}

// Encode serializes a QR payload for the given user and hour
func Encode(userID string, hour int, name string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("user id is required")
	}
	if hour < models.MinHour || hour > models.MaxHour {
		return "", fmt.Errorf("hour must be between %d and %d", models.MinHour, models.MaxHour)
	}

	data, err := json.Marshal(Payload{UserID: userID, Hour: hour, Name: name})
	if err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}
	return string(data), nil
}

// Decode parses a scanned QR payload. Unknown fields are ignored so a future
// version field can be added without breaking current peers.
func Decode(raw string) (Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Payload{}, &DecodeError{Reason: "not valid JSON"}
	}
	if p.UserID == "" {
		return Payload{}, &DecodeError{Reason: "missing userId"}
	}
	if p.Hour < models.MinHour || p.Hour > models.MaxHour {
		return Payload{}, &DecodeError{Reason: fmt.Sprintf("time %d out of range", p.Hour)}
	}
	return p, nil
}
