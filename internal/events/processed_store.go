package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ProcessedStore is the consumer-side idempotency ledger for envelopes.
// Rows keep the event type and conversation so redeliveries can be audited
// per chat.
type ProcessedStore struct {
	db pgExecutor
}

func NewProcessedStore(pool *pgxpool.Pool) *ProcessedStore {
	if pool == nil {
		panic("events: pgx pool required")
	}
	return &ProcessedStore{db: pool}
}

func newProcessedStore(db pgExecutor) *ProcessedStore {
	if db == nil {
		panic("events: executor required")
	}
	return &ProcessedStore{db: db}
}

// Seen reports whether consumer already handled env.
func (s *ProcessedStore) Seen(ctx context.Context, consumer string, env Envelope) (bool, error) {
	if err := checkProcessedKey(consumer, env); err != nil {
		return false, err
	}
	var eventType string
	err := s.db.QueryRow(ctx,
		`SELECT event_type FROM processed_events WHERE consumer = $1 AND event_id = $2`,
		consumer, env.EventID.String(),
	).Scan(&eventType)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("events: lookup %s %s: %w", env.EventType, env.EventID, err)
	}
	return true, nil
}

// Record marks env handled by consumer. It returns false when another
// delivery recorded it first.
func (s *ProcessedStore) Record(ctx context.Context, consumer string, env Envelope) (bool, error) {
	if err := checkProcessedKey(consumer, env); err != nil {
		return false, err
	}
	tag, err := s.db.Exec(ctx, `
		INSERT INTO processed_events (consumer, event_id, event_type, conversation_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (consumer, event_id) DO NOTHING
	`, consumer, env.EventID.String(), env.EventType, env.Aggregate)
	if err != nil {
		return false, fmt.Errorf("events: record %s %s: %w", env.EventType, env.EventID, err)
	}
	return tag.RowsAffected() > 0, nil
}

func checkProcessedKey(consumer string, env Envelope) error {
	if consumer == "" {
		return errors.New("events: consumer required")
	}
	if env.EventType == "" || env.EventID == uuid.Nil {
		return errors.New("events: envelope missing id or type")
	}
	return nil
}
