package leads

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	pool pgxQuerier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

func newPostgresRepositoryWithQuerier(q pgxQuerier) *PostgresRepository {
	if q == nil {
		panic("leads: querier required")
	}
	return &PostgresRepository{pool: q}
}

const leadColumns = `id, scenario, stage, score, qualification, reasons, next_actions,
		destination, dates, travelers, budget, contact_name, phone, email,
		message_count, escalated, created_at, updated_at`

// Upsert writes the latest snapshot for a conversation.
func (r *PostgresRepository) Upsert(ctx context.Context, lead *Lead) error {
	if err := lead.Validate(); err != nil {
		return err
	}
	query := `
		INSERT INTO leads (id, scenario, stage, score, qualification, reasons, next_actions,
		    destination, dates, travelers, budget, contact_name, phone, email, message_count, escalated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
		    stage = EXCLUDED.stage, score = EXCLUDED.score, qualification = EXCLUDED.qualification,
		    reasons = EXCLUDED.reasons, next_actions = EXCLUDED.next_actions,
		    destination = EXCLUDED.destination, dates = EXCLUDED.dates, travelers = EXCLUDED.travelers,
		    budget = EXCLUDED.budget, contact_name = EXCLUDED.contact_name, phone = EXCLUDED.phone,
		    email = EXCLUDED.email, message_count = EXCLUDED.message_count,
		    escalated = leads.escalated OR EXCLUDED.escalated, updated_at = NOW()
	`
	if _, err := r.pool.Exec(ctx, query,
		lead.ID,
		lead.Scenario,
		lead.Stage,
		lead.Score,
		lead.Qualification,
		nonNil(lead.Reasons),
		nonNil(lead.NextActions),
		lead.Destination,
		lead.Dates,
		lead.Travelers,
		lead.Budget,
		lead.ContactName,
		lead.Phone,
		lead.Email,
		lead.MessageCount,
		lead.Escalated,
	); err != nil {
		return fmt.Errorf("leads: upsert failed: %w", err)
	}
	return nil
}

// GetByID fetches one lead.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	lead, err := scanLead(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	return lead, nil
}

// List returns leads ordered by score.
func (r *PostgresRepository) List(ctx context.Context, filter ListLeadsFilter) ([]*Lead, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE ($1 = '' OR qualification = $1) AND ($2 = '' OR scenario = $2)
		ORDER BY score DESC, updated_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, filter.Qualification, filter.Scenario, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	defer rows.Close()

	out := []*Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("leads: scan failed: %w", err)
		}
		out = append(out, lead)
	}
	return out, rows.Err()
}

func scanLead(row pgx.Row) (*Lead, error) {
	var lead Lead
	if err := row.Scan(
		&lead.ID,
		&lead.Scenario,
		&lead.Stage,
		&lead.Score,
		&lead.Qualification,
		&lead.Reasons,
		&lead.NextActions,
		&lead.Destination,
		&lead.Dates,
		&lead.Travelers,
		&lead.Budget,
		&lead.ContactName,
		&lead.Phone,
		&lead.Email,
		&lead.MessageCount,
		&lead.Escalated,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &lead, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
