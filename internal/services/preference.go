package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dating-clock-backend/internal/models"
	"dating-clock-backend/internal/repository"
	"dating-clock-backend/internal/token"
)

const prefTimeout = 10 * time.Second

// PreferenceService owns a user's current hour preference and the QR token
// derived from it
type PreferenceService struct {
	users   UserStore
	matches MatchStore
}

// NewPreferenceService creates a new preference service
func NewPreferenceService(users UserStore, matches MatchStore) *PreferenceService {
	return &PreferenceService{users: users, matches: matches}
}

// SetPreferredHour overwrites the user's hour preference unconditionally.
// Overwriting abandons any prior not-yet-matched offer; committed matches
// are unaffected.
func (s *PreferenceService) SetPreferredHour(ctx context.Context, userID string, hour int) error {
	if hour < models.MinHour || hour > models.MaxHour {
		return matchError(KindInvalidInput, "Hour must be between %d and %d", models.MinHour, models.MaxHour)
	}

	ctx, cancel := context.WithTimeout(ctx, prefTimeout)
	defer cancel()

	if err := s.users.SetPreferredHour(ctx, userID, hour); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return matchError(KindPeerNotFound, "User not found")
		}
		return storeError("set preferred hour", err)
	}
	return nil
}

// MatchedHours returns every agreed hour of the user's committed matches.
// It feeds the grayed-out slots in the picker; the match engine re-derives
// uniqueness from the match rows, never from this set.
func (s *PreferenceService) MatchedHours(ctx context.Context, userID string) ([]int, error) {
	ctx, cancel := context.WithTimeout(ctx, prefTimeout)
	defer cancel()

	hours, err := s.matches.MatchedHours(ctx, userID)
	if err != nil {
		return nil, storeError("get matched hours", err)
	}
	if hours == nil {
		hours = []int{}
	}
	return hours, nil
}

// IssueToken encodes a QR payload for the user's current stored hour. The
// hour is re-read from the store so the payload always reflects what the
// engine will later verify against.
func (s *PreferenceService) IssueToken(ctx context.Context, userID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, prefTimeout)
	defer cancel()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", matchError(KindPeerNotFound, "User not found")
		}
		return "", storeError("get user", err)
	}
	if user.PreferredHour == nil {
		return "", matchError(KindMissingSelection, "Please select your preferred time first")
	}

	payload, err := token.Encode(user.ID, *user.PreferredHour, user.Name)
	if err != nil {
		return "", fmt.Errorf("failed to encode qr payload: %w", err)
	}
	return payload, nil
}
