package repository

import (
	"context"
	"errors"
	"fmt"

	"dating-clock-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound marks a lookup that matched no row
var ErrNotFound = errors.New("not found")

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// FindOrCreate inserts the user unless a row with the same student_id already
// exists, then returns whichever row won. The conflict clause makes duplicate
// and concurrent logins converge on a single row; an existing row keeps its
// original name and department.
func (r *UserRepository) FindOrCreate(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (id, student_id, name, department, preferred_hour, created_at)
		VALUES ($1, $2, $3, $4, NULL, $5)
		ON CONFLICT (student_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, user.ID, user.StudentID, user.Name, user.Department, user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return r.GetByStudentID(ctx, user.StudentID)
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, student_id, name, department, preferred_hour, created_at
		FROM users
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// GetByStudentID retrieves a user by the external student identifier
func (r *UserRepository) GetByStudentID(ctx context.Context, studentID string) (*models.User, error) {
	query := `
		SELECT id, student_id, name, department, preferred_hour, created_at
		FROM users
		WHERE student_id = $1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, studentID))
}

// SetPreferredHour overwrites the user's current hour preference
func (r *UserRepository) SetPreferredHour(ctx context.Context, userID string, hour int) error {
	query := `UPDATE users SET preferred_hour = $1 WHERE id = $2`
	result, err := r.db.Exec(ctx, query, hour, userID)
	if err != nil {
		return fmt.Errorf("failed to update preferred hour: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return nil
}

func (r *UserRepository) scanOne(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.StudentID, &user.Name, &user.Department, &user.PreferredHour, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
