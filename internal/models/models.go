package models

import "time"

// Hour slots are stored exactly as shown on the clock face.
const (
	MinHour = 1
	MaxHour = 12
)

// User represents a registered participant
type User struct {
	ID            string    `json:"id"`
	StudentID     string    `json:"student_id"`
	Name          string    `json:"name"`
	Department    string    `json:"department"`
	PreferredHour *int      `json:"preferred_hour"`
	CreatedAt     time.Time `json:"created_at"`
}

// Student is the profile returned by the external student directory
type Student struct {
	StudentID  string `json:"student_id"`
	Name       string `json:"name"`
	Department string `json:"department"`
}

// Match represents a committed pairing between two users
type Match struct {
	ID         int64     `json:"id"`
	User1ID    string    `json:"user1_id"`
	User2ID    string    `json:"user2_id"`
	AgreedHour int       `json:"agreed_hour"`
	CreatedAt  time.Time `json:"created_at"`
}

// MatchWithUsers is a match joined with both participant profiles,
// served to the live view
type MatchWithUsers struct {
	Match
	User1 User `json:"user1"`
	User2 User `json:"user2"`
}

// OtherUser returns the participant on the opposite side of the match
func (m *Match) OtherUser(userID string) string {
	if m.User1ID == userID {
		return m.User2ID
	}
	return m.User1ID
}

// HasParticipant reports whether the user is on either side of the match
func (m *Match) HasParticipant(userID string) bool {
	return m.User1ID == userID || m.User2ID == userID
}
