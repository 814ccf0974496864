package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const (
	feedChannel    = "match_events"
	feedRetryDelay = time.Second
)

// MatchFeed is the durable notification path. Every match insert fires a
// pg_notify from the schema trigger; the feed holds a dedicated connection,
// listens for those events and hands them to the hub. Unlike the broadcast
// path it observes the commit itself, so it cannot miss a match that was
// written.
type MatchFeed struct {
	db    *pgxpool.Pool
	users UserStore
	hub   *Hub
}

// NewMatchFeed creates a new durable match feed
func NewMatchFeed(db *pgxpool.Pool, users UserStore, hub *Hub) *MatchFeed {
	return &MatchFeed{db: db, users: users, hub: hub}
}

// feedRow mirrors the row_to_json payload of the insert trigger
type feedRow struct {
	ID         int64     `json:"id"`
	User1ID    string    `json:"user1_id"`
	User2ID    string    `json:"user2_id"`
	AgreedHour int       `json:"agreed_hour"`
	CreatedAt  time.Time `json:"created_at"`
}

// Run listens for match inserts until the context is canceled, re-acquiring
// the connection after failures
func (f *MatchFeed) Run(ctx context.Context) {
	for {
		if err := f.listen(ctx); err != nil {
			if ctx.Err() != nil {
				log.Info().Msg("Match feed stopped")
				return
			}
			log.Error().Err(err).Msg("Match feed connection lost, retrying")
		}

		select {
		case <-ctx.Done():
			log.Info().Msg("Match feed stopped")
			return
		case <-time.After(feedRetryDelay):
		}
	}
}

func (f *MatchFeed) listen(ctx context.Context) error {
	conn, err := f.db.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+feedChannel); err != nil {
		return err
	}
	log.Info().Str("channel", feedChannel).Msg("Match feed listening")

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		f.handle(ctx, notification.Payload)
	}
}

func (f *MatchFeed) handle(ctx context.Context, payload string) {
	var row feedRow
	if err := json.Unmarshal([]byte(payload), &row); err != nil {
		log.Error().Err(err).Str("payload", payload).Msg("Failed to parse match feed payload")
		return
	}

	event := MatchEvent{
		Source:     SourceFeed,
		MatchID:    row.ID,
		User1ID:    row.User1ID,
		User2ID:    row.User2ID,
		AgreedHour: row.AgreedHour,
		CreatedAt:  row.CreatedAt,
	}

	// The trigger payload carries ids only; participant pushes need names.
	if user, err := f.users.GetByID(ctx, row.User1ID); err == nil {
		event.User1Name = user.Name
	}
	if user, err := f.users.GetByID(ctx, row.User2ID); err == nil {
		event.User2Name = user.Name
	}

	f.hub.DeliverMatch(event)
}
