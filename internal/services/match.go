package services

import (
	"context"
	"errors"
	"time"

	"dating-clock-backend/internal/models"
	"dating-clock-backend/internal/repository"
	"dating-clock-backend/internal/token"

	"github.com/rs/zerolog/log"
)

const matchTimeout = 10 * time.Second

// MatchResult is a committed match plus the peer's profile, used to drive
// the scanner's "matched" screen
type MatchResult struct {
	Match *models.Match `json:"match"`
	Peer  *models.User  `json:"peer"`
}

// MatchService validates scanned QR tokens and commits match records.
// Every fact asserted by a token is re-verified against stored state: both
// sides are independent, unsynchronized clients, so the token is a claim,
// not a fact.
type MatchService struct {
	users     UserStore
	matches   MatchStore
	publisher MatchPublisher
}

// NewMatchService creates a new match service. The publisher may be nil in
// contexts without a broadcast backend.
func NewMatchService(users UserStore, matches MatchStore, publisher MatchPublisher) *MatchService {
	return &MatchService{
		users:     users,
		matches:   matches,
		publisher: publisher,
	}
}

// AttemptMatch runs the full matching protocol for one scan. Each step is a
// hard precondition that short-circuits with a typed MatchError:
//
//  1. the scanner picked an hour and the payload decodes
//  2. not a self-scan
//  3. the scanned user exists
//  4. the token still matches the peer's current stored hour
//  5. both sides picked the same hour
//  6. the pair has never matched before, in either order
//  7. commit; a store-level duplicate surfaces as "already matched"
//
// On success the committed match is pushed to the broadcast channel
// best-effort; the durable change feed fires from the insert itself.
func (s *MatchService) AttemptMatch(ctx context.Context, userID string, localHour int, rawPayload string) (*MatchResult, error) {
	if localHour == 0 {
		return nil, matchError(KindMissingSelection, "Please select your preferred time first")
	}
	if localHour < models.MinHour || localHour > models.MaxHour {
		return nil, matchError(KindInvalidInput, "Hour must be between %d and %d", models.MinHour, models.MaxHour)
	}

	payload, err := token.Decode(rawPayload)
	if err != nil {
		return nil, &MatchError{Kind: KindBadToken, Message: "Invalid QR code format", cause: err}
	}

	if payload.UserID == userID {
		return nil, matchError(KindSelfMatch, "You can't match with yourself!")
	}

	ctx, cancel := context.WithTimeout(ctx, matchTimeout)
	defer cancel()

	peer, err := s.users.GetByID(ctx, payload.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, matchError(KindPeerNotFound, "User not found - they may not be registered yet")
		}
		return nil, storeError("get peer", err)
	}

	// Freshness: the peer may have changed their mind since generating the
	// QR code, so the hour is checked against their current stored value.
	if peer.PreferredHour == nil || *peer.PreferredHour != payload.Hour {
		return nil, matchError(KindStaleToken, "QR code is outdated or invalid")
	}

	if localHour != payload.Hour {
		return nil, matchError(KindHourMismatch,
			"Time mismatch! You selected %d:00, they selected %d:00", localHour, payload.Hour)
	}

	exists, err := s.matches.ExistsForPair(ctx, userID, peer.ID)
	if err != nil {
		return nil, storeError("check pair", err)
	}
	if exists {
		return nil, matchError(KindAlreadyMatched, "You have already matched with %s", peer.Name)
	}

	match := &models.Match{
		User1ID:    userID,
		User2ID:    peer.ID,
		AgreedHour: localHour,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.matches.Create(ctx, match); err != nil {
		// The pre-check races against concurrent scanners; the unique index
		// on the normalized pair is the backstop and reports the same outcome.
		if errors.Is(err, repository.ErrDuplicatePair) {
			return nil, matchError(KindAlreadyMatched, "You have already matched with %s", peer.Name)
		}
		return nil, storeError("create match", err)
	}

	s.publish(ctx, match, peer)

	return &MatchResult{Match: match, Peer: peer}, nil
}

// ListMatches returns the full match list with participant details for the
// live view
func (s *MatchService) ListMatches(ctx context.Context) ([]models.MatchWithUsers, error) {
	ctx, cancel := context.WithTimeout(ctx, matchTimeout)
	defer cancel()

	matches, err := s.matches.ListWithUsers(ctx)
	if err != nil {
		return nil, storeError("list matches", err)
	}
	if matches == nil {
		matches = []models.MatchWithUsers{}
	}
	return matches, nil
}

// publish fires the low-latency broadcast. Failures are logged, never
// returned: the match is already committed and the durable feed still covers
// delivery.
func (s *MatchService) publish(ctx context.Context, match *models.Match, peer *models.User) {
	if s.publisher == nil {
		return
	}

	event := MatchEvent{
		Source:     SourceBroadcast,
		MatchID:    match.ID,
		User1ID:    match.User1ID,
		User2ID:    match.User2ID,
		User2Name:  peer.Name,
		AgreedHour: match.AgreedHour,
		CreatedAt:  match.CreatedAt,
	}
	if scanner, err := s.users.GetByID(ctx, match.User1ID); err == nil {
		event.User1Name = scanner.Name
	}

	if err := s.publisher.PublishMatch(ctx, event); err != nil {
		log.Error().Err(err).Int64("match_id", match.ID).Msg("Failed to publish match broadcast")
	}
}
