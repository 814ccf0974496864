package services

import (
	"context"
	"fmt"
	"sync"

	"dating-clock-backend/internal/models"
	"dating-clock-backend/internal/repository"
)

// fakeUserStore is an in-memory UserStore with the same idempotency
// semantics as the SQL implementation
type fakeUserStore struct {
	mu        sync.Mutex
	byID      map[string]*models.User
	byStudent map[string]string
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byID:      make(map[string]*models.User),
		byStudent: make(map[string]string),
	}
}

func (s *fakeUserStore) FindOrCreate(_ context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byStudent[user.StudentID]; ok {
		return copyUser(s.byID[id]), nil
	}
	stored := copyUser(user)
	stored.PreferredHour = nil
	s.byID[stored.ID] = stored
	s.byStudent[stored.StudentID] = stored.ID
	return copyUser(stored), nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
	}
	return copyUser(user), nil
}

func (s *fakeUserStore) GetByStudentID(_ context.Context, studentID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byStudent[studentID]
	if !ok {
		return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
	}
	return copyUser(s.byID[id]), nil
}

func (s *fakeUserStore) SetPreferredHour(_ context.Context, userID string, hour int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[userID]
	if !ok {
		return fmt.Errorf("user %s: %w", userID, repository.ErrNotFound)
	}
	h := hour
	user.PreferredHour = &h
	return nil
}

func (s *fakeUserStore) add(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := copyUser(user)
	s.byID[stored.ID] = stored
	s.byStudent[stored.StudentID] = stored.ID
}

func (s *fakeUserStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

func copyUser(u *models.User) *models.User {
	clone := *u
	if u.PreferredHour != nil {
		h := *u.PreferredHour
		clone.PreferredHour = &h
	}
	return &clone
}

// fakeMatchStore is an in-memory MatchStore whose Create enforces pairwise
// uniqueness atomically, standing in for the normalized-pair unique index
type fakeMatchStore struct {
	mu      sync.Mutex
	matches []*models.Match
	users   *fakeUserStore
	nextID  int64
}

func newFakeMatchStore(users *fakeUserStore) *fakeMatchStore {
	return &fakeMatchStore{users: users}
}

func (s *fakeMatchStore) Create(_ context.Context, match *models.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.matches {
		if samePair(m, match.User1ID, match.User2ID) {
			return fmt.Errorf("%w: %s and %s", repository.ErrDuplicatePair, match.User1ID, match.User2ID)
		}
	}
	s.nextID++
	match.ID = s.nextID
	stored := *match
	s.matches = append(s.matches, &stored)
	return nil
}

func (s *fakeMatchStore) ExistsForPair(_ context.Context, userAID, userBID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.matches {
		if samePair(m, userAID, userBID) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeMatchStore) MatchedHours(_ context.Context, userID string) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[int]struct{})
	var hours []int
	for _, m := range s.matches {
		if !m.HasParticipant(userID) {
			continue
		}
		if _, ok := seen[m.AgreedHour]; ok {
			continue
		}
		seen[m.AgreedHour] = struct{}{}
		hours = append(hours, m.AgreedHour)
	}
	return hours, nil
}

func (s *fakeMatchStore) ListWithUsers(ctx context.Context) ([]models.MatchWithUsers, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.MatchWithUsers
	for i := len(s.matches) - 1; i >= 0; i-- {
		m := s.matches[i]
		entry := models.MatchWithUsers{Match: *m}
		if s.users != nil {
			if u1, ok := s.users.byID[m.User1ID]; ok {
				entry.User1 = *copyUser(u1)
			}
			if u2, ok := s.users.byID[m.User2ID]; ok {
				entry.User2 = *copyUser(u2)
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *fakeMatchStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.matches)
}

func samePair(m *models.Match, userAID, userBID string) bool {
	return (m.User1ID == userAID && m.User2ID == userBID) ||
		(m.User1ID == userBID && m.User2ID == userAID)
}

// fakePublisher records broadcast events
type fakePublisher struct {
	mu     sync.Mutex
	events []MatchEvent
}

func (p *fakePublisher) PublishMatch(_ context.Context, event MatchEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) published() []MatchEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]MatchEvent(nil), p.events...)
}

// fakeResolver is an in-memory IdentityResolver
type fakeResolver struct {
	students map[string]*models.Student
}

func (r *fakeResolver) Resolve(_ context.Context, studentID string) (*models.Student, error) {
	student, ok := r.students[studentID]
	if !ok {
		return nil, fmt.Errorf("student %s: %w", studentID, ErrStudentNotFound)
	}
	return student, nil
}
