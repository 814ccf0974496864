package repository

import (
	"context"
	"errors"
	"fmt"

	"dating-clock-backend/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicatePair marks an insert rejected by the normalized-pair unique
// index. The index is the authoritative uniqueness guarantee; the service
// level pre-check only exists to fail fast with a friendly message.
var ErrDuplicatePair = errors.New("pair already matched")

const uniqueViolation = "23505"

// MatchRepository handles database operations for matches
type MatchRepository struct {
	db *pgxpool.Pool
}

// NewMatchRepository creates a new match repository
func NewMatchRepository(db *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{db: db}
}

// Create inserts a match and fills in the generated id
func (r *MatchRepository) Create(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches (user1_id, user2_id, agreed_hour, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query, match.User1ID, match.User2ID, match.AgreedHour, match.CreatedAt).
		Scan(&match.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s and %s", ErrDuplicatePair, match.User1ID, match.User2ID)
		}
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

// ExistsForPair checks both column orders for an existing match between two users
func (r *MatchRepository) ExistsForPair(ctx context.Context, userAID, userBID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM matches
			WHERE (user1_id = $1 AND user2_id = $2)
			   OR (user1_id = $2 AND user2_id = $1)
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, userAID, userBID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check pair existence: %w", err)
	}
	return exists, nil
}

// MatchedHours returns the distinct agreed hours of every match the user
// participates in, in either role
func (r *MatchRepository) MatchedHours(ctx context.Context, userID string) ([]int, error) {
	query := `
		SELECT DISTINCT agreed_hour
		FROM matches
		WHERE user1_id = $1 OR user2_id = $1
		ORDER BY agreed_hour
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get matched hours: %w", err)
	}
	defer rows.Close()

	var hours []int
	for rows.Next() {
		var hour int
		if err := rows.Scan(&hour); err != nil {
			return nil, fmt.Errorf("failed to scan matched hour: %w", err)
		}
		hours = append(hours, hour)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read matched hours: %w", err)
	}
	return hours, nil
}

// ListWithUsers returns every match joined with both participant profiles,
// newest first. The live view refetches this on each insert event.
func (r *MatchRepository) ListWithUsers(ctx context.Context) ([]models.MatchWithUsers, error) {
	query := `
		SELECT m.id, m.user1_id, m.user2_id, m.agreed_hour, m.created_at,
		       u1.id, u1.student_id, u1.name, u1.department, u1.preferred_hour, u1.created_at,
		       u2.id, u2.student_id, u2.name, u2.department, u2.preferred_hour, u2.created_at
		FROM matches m
		JOIN users u1 ON u1.id = m.user1_id
		JOIN users u2 ON u2.id = m.user2_id
		ORDER BY m.created_at DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var matches []models.MatchWithUsers
	for rows.Next() {
		var m models.MatchWithUsers
		err := rows.Scan(
			&m.ID, &m.User1ID, &m.User2ID, &m.AgreedHour, &m.CreatedAt,
			&m.User1.ID, &m.User1.StudentID, &m.User1.Name, &m.User1.Department, &m.User1.PreferredHour, &m.User1.CreatedAt,
			&m.User2.ID, &m.User2.StudentID, &m.User2.Name, &m.User2.Department, &m.User2.PreferredHour, &m.User2.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read matches: %w", err)
	}
	return matches, nil
}
