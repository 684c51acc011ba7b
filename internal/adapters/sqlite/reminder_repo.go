package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/standup/internal/apperr"
	"github.com/example/standup/internal/models"
	"github.com/example/standup/internal/ports/secondary"
)

// ReminderRepository implements secondary.ReminderRepository with SQLite.
// It owns both the delivery and the reminder ledger; the uniqueness
// constraints on (survey_id, user_id[, stage]) provide the idempotence the
// orchestrator relies on across restarts.
type ReminderRepository struct {
	db *sql.DB
}

// NewReminderRepository creates a new SQLite reminder repository.
func NewReminderRepository(db *sql.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// RecordDelivery records the first send attempt for (survey, user).
// A repeat call bumps the attempt counter but never rewrites delivered_at:
// the first write fixes the attempt record.
func (r *ReminderRepository) RecordDelivery(ctx context.Context, surveyID, userID int64, deliveredAt *time.Time) error {
	var at sql.NullTime
	if deliveredAt != nil {
		at = sql.NullTime{Time: deliveredAt.UTC(), Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO deliveries (survey_id, user_id, delivered_at, attempts) VALUES (?, ?, ?, 1)
		 ON CONFLICT(survey_id, user_id) DO UPDATE SET attempts = attempts + 1`,
		surveyID, userID, at,
	)
	if err != nil {
		return fmt.Errorf("failed to record delivery: %w", err)
	}
	return nil
}

// GetDelivery retrieves the delivery row for (survey, user), or nil.
func (r *ReminderRepository) GetDelivery(ctx context.Context, surveyID, userID int64) (*models.Delivery, error) {
	delivery := &models.Delivery{SurveyID: surveyID, UserID: userID}
	var at sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT delivered_at, attempts FROM deliveries WHERE survey_id = ? AND user_id = ?`,
		surveyID, userID,
	).Scan(&at, &delivery.Attempts)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery: %w", err)
	}
	if at.Valid {
		t := at.Time.UTC()
		delivery.DeliveredAt = &t
	}
	return delivery, nil
}

// ListDeliveries retrieves every delivery row for a survey.
func (r *ReminderRepository) ListDeliveries(ctx context.Context, surveyID int64) ([]*models.Delivery, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, delivered_at, attempts FROM deliveries WHERE survey_id = ? ORDER BY user_id ASC`,
		surveyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []*models.Delivery
	for rows.Next() {
		d := &models.Delivery{SurveyID: surveyID}
		var at sql.NullTime
		if err := rows.Scan(&d.UserID, &at, &d.Attempts); err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}
		if at.Valid {
			t := at.Time.UTC()
			d.DeliveredAt = &t
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}

// UpsertReminder seeds one ladder rung as pending. Re-seeding an existing
// rung is a no-op, which is what makes restart mid-fan-out safe.
func (r *ReminderRepository) UpsertReminder(ctx context.Context, surveyID, userID int64, stage int, dueAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reminders (survey_id, user_id, stage, due_at, status) VALUES (?, ?, ?, ?, 'pending')
		 ON CONFLICT(survey_id, user_id, stage) DO NOTHING`,
		surveyID, userID, stage, dueAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert reminder: %w", err)
	}
	return nil
}

// MarkReminder transitions a rung pending→sent or pending→cancelled via
// CAS. A lost race surfaces as an invariant-violation error the caller
// skips over.
func (r *ReminderRepository) MarkReminder(ctx context.Context, surveyID, userID int64, stage int, status string) error {
	if status != models.ReminderSent && status != models.ReminderCancelled {
		return apperr.New(apperr.KindValidation, "invalid reminder transition to %q", status)
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE reminders SET status = ? WHERE survey_id = ? AND user_id = ? AND stage = ? AND status = 'pending'`,
		status, surveyID, userID, stage,
	)
	if err != nil {
		return fmt.Errorf("failed to mark reminder: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		var current string
		err := r.db.QueryRowContext(ctx,
			`SELECT status FROM reminders WHERE survey_id = ? AND user_id = ? AND stage = ?`,
			surveyID, userID, stage,
		).Scan(&current)
		if err == sql.ErrNoRows {
			return apperr.New(apperr.KindNotFound, "reminder (%d,%d,%d) not found", surveyID, userID, stage)
		}
		if err != nil {
			return fmt.Errorf("failed to inspect reminder: %w", err)
		}
		return apperr.New(apperr.KindInvariantViolation, "reminder (%d,%d,%d) already %s", surveyID, userID, stage, current)
	}
	return nil
}

// CancelPending cancels every pending rung for (survey, user) atomically.
func (r *ReminderRepository) CancelPending(ctx context.Context, surveyID, userID int64) (int, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reminders SET status = 'cancelled' WHERE survey_id = ? AND user_id = ? AND status = 'pending'`,
		surveyID, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel pending reminders: %w", err)
	}
	count, _ := result.RowsAffected()
	return int(count), nil
}

// ListDue returns pending rungs due at or before now, restricted to active
// surveys and unanswered (survey, user) pairs, ordered by due_at. The
// ordering preserves stage monotonicity since later stages are due later.
func (r *ReminderRepository) ListDue(ctx context.Context, now time.Time) ([]*models.DueReminder, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.survey_id, r.user_id, r.stage, r.due_at, r.status, u.chat_id
		 FROM reminders r
		 JOIN surveys s ON s.survey_id = r.survey_id
		 JOIN users u ON u.user_id = r.user_id
		 WHERE r.status = 'pending'
		   AND r.due_at <= ?
		   AND s.state = 'active'
		   AND u.chat_id IS NOT NULL
		   AND NOT EXISTS (
			SELECT 1 FROM responses p WHERE p.survey_id = r.survey_id AND p.user_id = r.user_id
		   )
		 ORDER BY r.due_at ASC, r.survey_id ASC, r.user_id ASC, r.stage ASC`,
		now.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}
	defer rows.Close()

	var due []*models.DueReminder
	for rows.Next() {
		d := &models.DueReminder{}
		if err := rows.Scan(&d.SurveyID, &d.UserID, &d.Stage, &d.DueAt, &d.Status, &d.ChatID); err != nil {
			return nil, fmt.Errorf("failed to scan due reminder: %w", err)
		}
		d.DueAt = d.DueAt.UTC()
		due = append(due, d)
	}
	return due, rows.Err()
}

// ListBySurveyUser retrieves every rung for (survey, user) in stage order.
func (r *ReminderRepository) ListBySurveyUser(ctx context.Context, surveyID, userID int64) ([]*models.Reminder, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT stage, due_at, status FROM reminders WHERE survey_id = ? AND user_id = ? ORDER BY stage ASC`,
		surveyID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer rows.Close()

	var reminders []*models.Reminder
	for rows.Next() {
		rem := &models.Reminder{SurveyID: surveyID, UserID: userID}
		if err := rows.Scan(&rem.Stage, &rem.DueAt, &rem.Status); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		rem.DueAt = rem.DueAt.UTC()
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}

// Ensure ReminderRepository implements the interface
var _ secondary.ReminderRepository = (*ReminderRepository)(nil)
