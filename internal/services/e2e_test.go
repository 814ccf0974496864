package services

import (
	"context"
	"testing"

	"dating-clock-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hubPublisher routes broadcast events straight into the hub, standing in
// for the redis round trip
type hubPublisher struct {
	hub *Hub
}

func (p *hubPublisher) PublishMatch(_ context.Context, event MatchEvent) error {
	event.Source = SourceBroadcast
	p.hub.DeliverMatch(event)
	return nil
}

// TestFullMatchScenario walks the whole flow: two students log in, pick the
// same hour, one shows a QR code, the other scans it, and both sessions plus
// the live view are notified exactly once.
func TestFullMatchScenario(t *testing.T) {
	ctx := context.Background()

	users := newFakeUserStore()
	matches := newFakeMatchStore(users)
	resolver := &fakeResolver{students: map[string]*models.Student{
		"2021-00001": {StudentID: "2021-00001", Name: "A", Department: "CS"},
		"2021-00002": {StudentID: "2021-00002", Name: "B", Department: "IT"},
	}}

	sessions := NewSessionService(users, resolver, "test-secret")
	preferences := NewPreferenceService(users, matches)

	hub := NewHub()
	engine := NewMatchService(users, matches, &hubPublisher{hub: hub})

	// log in and connect both sessions and a TV observer
	userA, _, err := sessions.Login(ctx, "2021-00001")
	require.NoError(t, err)
	userB, _, err := sessions.Login(ctx, "2021-00002")
	require.NoError(t, err)

	connA, connB, tv := &fakeConn{}, &fakeConn{}, &fakeConn{}
	hub.Register(userA.ID, connA)
	hub.Register(userB.ID, connB)
	hub.RegisterObserver(tv)

	// both pick 3 o'clock
	require.NoError(t, preferences.SetPreferredHour(ctx, userA.ID, 3))
	require.NoError(t, preferences.SetPreferredHour(ctx, userB.ID, 3))

	// A shows their code, B scans it
	payload, err := preferences.IssueToken(ctx, userA.ID)
	require.NoError(t, err)

	result, err := engine.AttemptMatch(ctx, userB.ID, 3, payload)
	require.NoError(t, err)
	assert.Equal(t, userB.ID, result.Match.User1ID)
	assert.Equal(t, userA.ID, result.Match.User2ID)
	assert.Equal(t, 3, result.Match.AgreedHour)
	assert.Equal(t, "A", result.Peer.Name)

	// the durable feed delivers the same match again; nobody sees it twice
	hub.DeliverMatch(MatchEvent{
		Source:     SourceFeed,
		MatchID:    result.Match.ID,
		User1ID:    result.Match.User1ID,
		User2ID:    result.Match.User2ID,
		User1Name:  "B",
		User2Name:  "A",
		AgreedHour: result.Match.AgreedHour,
		CreatedAt:  result.Match.CreatedAt,
	})

	msgsA := connA.messages()
	require.Len(t, msgsA, 1)
	dataA := msgsA[0].Data.(map[string]interface{})
	assert.Equal(t, "B", dataA["partner_name"])
	assert.Equal(t, float64(3), dataA["agreed_hour"])

	msgsB := connB.messages()
	require.Len(t, msgsB, 1)
	dataB := msgsB[0].Data.(map[string]interface{})
	assert.Equal(t, "A", dataB["partner_name"])

	require.Len(t, tv.messages(), 1)

	// 3 o'clock is now grayed out for both
	hoursA, err := preferences.MatchedHours(ctx, userA.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, hoursA)

	// and the pair can never match again, even at another hour
	require.NoError(t, preferences.SetPreferredHour(ctx, userA.ID, 9))
	require.NoError(t, preferences.SetPreferredHour(ctx, userB.ID, 9))
	payload, err = preferences.IssueToken(ctx, userB.ID)
	require.NoError(t, err)
	_, err = engine.AttemptMatch(ctx, userA.ID, 9, payload)
	assertKind(t, err, KindAlreadyMatched)
}
