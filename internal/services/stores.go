package services

import (
	"context"

	"dating-clock-backend/internal/models"
)

// UserStore is the slice of the record store the services need for users
type UserStore interface {
	FindOrCreate(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByStudentID(ctx context.Context, studentID string) (*models.User, error)
	SetPreferredHour(ctx context.Context, userID string, hour int) error
}

// MatchStore is the slice of the record store the services need for matches
type MatchStore interface {
	Create(ctx context.Context, match *models.Match) error
	ExistsForPair(ctx context.Context, userAID, userBID string) (bool, error)
	MatchedHours(ctx context.Context, userID string) ([]int, error)
	ListWithUsers(ctx context.Context) ([]models.MatchWithUsers, error)
}

// IdentityResolver resolves an external student id to a directory profile
type IdentityResolver interface {
	Resolve(ctx context.Context, studentID string) (*models.Student, error)
}

// MatchPublisher is the best-effort low-latency notification path fired
// right after a commit
type MatchPublisher interface {
	PublishMatch(ctx context.Context, event MatchEvent) error
}
