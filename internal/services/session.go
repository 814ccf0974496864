package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dating-clock-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	jwtExpDays   = 1
	loginTimeout = 10 * time.Second
)

// SessionService logs students in and owns the session tokens
type SessionService struct {
	users     UserStore
	resolver  IdentityResolver
	jwtSecret string
}

// NewSessionService creates a new session service
func NewSessionService(users UserStore, resolver IdentityResolver, jwtSecret string) *SessionService {
	return &SessionService{
		users:     users,
		resolver:  resolver,
		jwtSecret: jwtSecret,
	}
}

// Login resolves the student id against the directory and finds or creates
// the matching user row. Repeat logins return the existing row unchanged;
// the directory profile never overrides stored name/department.
func (s *SessionService) Login(ctx context.Context, studentID string) (*models.User, string, error) {
	ctx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()

	student, err := s.resolver.Resolve(ctx, studentID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve student: %w", err)
	}

	user, err := s.users.FindOrCreate(ctx, &models.User{
		ID:         uuid.New().String(),
		StudentID:  student.StudentID,
		Name:       student.Name,
		Department: student.Department,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to find or create user: %w", err)
	}

	sessionToken, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, sessionToken, nil
}

// GetUser returns the user row for an authenticated session
func (s *SessionService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// GenerateJWT generates a session token for a user
func (s *SessionService) GenerateJWT(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().AddDate(0, 0, jwtExpDays).Unix(),
		"iat":     time.Now().Unix(),
	}

	sessionToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := sessionToken.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// ValidateJWT validates a session token and returns the user ID
func (s *SessionService) ValidateJWT(tokenString string) (string, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !parsed.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", errors.New("user_id not found in token")
	}

	return userID, nil
}
