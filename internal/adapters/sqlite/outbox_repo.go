package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/example/standup/internal/ports/secondary"
)

// OutboxRepository implements secondary.OutboxRepository with SQLite.
// The outbox is append-only; it is the observable send log the digest and
// the ordering tests read.
type OutboxRepository struct {
	db *sql.DB
}

// NewOutboxRepository creates a new SQLite outbox repository.
func NewOutboxRepository(db *sql.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// Append records one outbound send. An empty ID is assigned a fresh uuid.
func (r *OutboxRepository) Append(ctx context.Context, entry *secondary.OutboxEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO outbox (id, kind, survey_id, user_id, chat_id, stage, text, sent_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Kind, entry.SurveyID, entry.UserID, entry.ChatID, entry.Stage, entry.Text, entry.SentAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to append outbox entry: %w", err)
	}
	return nil
}

// ListBySurvey retrieves the sends for a survey in sent_at order.
func (r *OutboxRepository) ListBySurvey(ctx context.Context, surveyID int64) ([]*secondary.OutboxEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kind, survey_id, user_id, chat_id, stage, text, sent_at FROM outbox WHERE survey_id = ? ORDER BY sent_at ASC, id ASC`,
		surveyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list outbox: %w", err)
	}
	defer rows.Close()

	var entries []*secondary.OutboxEntry
	for rows.Next() {
		e := &secondary.OutboxEntry{}
		if err := rows.Scan(&e.ID, &e.Kind, &e.SurveyID, &e.UserID, &e.ChatID, &e.Stage, &e.Text, &e.SentAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox entry: %w", err)
		}
		e.SentAt = e.SentAt.UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Ensure OutboxRepository implements the interface
var _ secondary.OutboxRepository = (*OutboxRepository)(nil)
