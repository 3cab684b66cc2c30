package conversation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// TranscriptMessage is one archived line of a chat.
type TranscriptMessage struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// ConversationRecord is the durable summary row of a chat.
type ConversationRecord struct {
	ID               string
	Scenario         string
	SessionID        string
	Stage            Stage
	Qualification    Qualification
	Score            int
	ProposedServices []string
	StartedAt        time.Time
}

// Transcripts records chat turns for later review.
type Transcripts interface {
	UpsertConversation(ctx context.Context, rec ConversationRecord) error
	AppendMessages(ctx context.Context, conversationID string, msgs []TranscriptMessage) error
	ListMessages(ctx context.Context, conversationID string) ([]TranscriptMessage, error)
	MarkEnded(ctx context.Context, conversationID string, at time.Time) error
}

// TranscriptStore keeps transcripts in Postgres.
type TranscriptStore struct {
	db *sql.DB
}

func NewTranscriptStore(db *sql.DB) *TranscriptStore {
	return &TranscriptStore{db: db}
}

func (s *TranscriptStore) UpsertConversation(ctx context.Context, rec ConversationRecord) error {
	if rec.ID == "" {
		return errors.New("conversation: transcript conversation id required")
	}
	services := rec.ProposedServices
	if services == nil {
		services = []string{}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, scenario, session_id, stage, qualification, score, proposed_services, started_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (id) DO UPDATE SET
		    stage = EXCLUDED.stage, qualification = EXCLUDED.qualification, score = EXCLUDED.score,
		    session_id = EXCLUDED.session_id, proposed_services = EXCLUDED.proposed_services, updated_at = NOW()`,
		rec.ID, rec.Scenario, rec.SessionID, string(rec.Stage), string(rec.Qualification), rec.Score,
		pq.Array(services), rec.StartedAt)
	if err != nil {
		return fmt.Errorf("conversation: upsert conversation: %w", err)
	}
	return nil
}

func (s *TranscriptStore) AppendMessages(ctx context.Context, conversationID string, msgs []TranscriptMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("conversation: begin transcript tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, msg := range msgs {
		if msg.ID == "" {
			msg.ID = uuid.NewString()
		}
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = time.Now().UTC()
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO conversation_messages (id, conversation_id, role, content, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			msg.ID, conversationID, msg.Role, msg.Content, msg.CreatedAt); err != nil {
			return fmt.Errorf("conversation: append transcript message: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("conversation: commit transcript: %w", err)
	}
	return nil
}

func (s *TranscriptStore) ListMessages(ctx context.Context, conversationID string) ([]TranscriptMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, conversation_id, role, content, created_at
		FROM conversation_messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("conversation: list transcript: %w", err)
	}
	defer rows.Close()

	out := []TranscriptMessage{}
	for rows.Next() {
		var msg TranscriptMessage
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("conversation: scan transcript: %w", err)
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

func (s *TranscriptStore) MarkEnded(ctx context.Context, conversationID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `UPDATE conversations SET ended_at = $2, updated_at = NOW() WHERE id = $1`, conversationID, at)
	if err != nil {
		return fmt.Errorf("conversation: mark conversation ended: %w", err)
	}
	return nil
}
