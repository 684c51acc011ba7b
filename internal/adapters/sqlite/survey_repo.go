// Package sqlite contains SQLite implementations of repository interfaces.
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

// SurveyRepository implements secondary.SurveyRepository with SQLite.
type SurveyRepository struct {
	db *sql.DB
}

// NewSurveyRepository creates a new SQLite survey repository.
func NewSurveyRepository(db *sql.DB) *SurveyRepository {
	return &SurveyRepository{db: db}
}

// Create persists a new survey. AUTOINCREMENT keeps ids monotone.
func (r *SurveyRepository) Create(ctx context.Context, question string, fireAt time.Time, audience models.Audience) (int64, error) {
	var role sql.NullString
	if audience.Kind == models.AudienceRole {
		role = sql.NullString{String: audience.Role, Valid: true}
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO surveys (question, fire_at, audience_role, state, created_at) VALUES (?, ?, ?, 'active', ?)`,
		question, fireAt.UTC(), role, time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create survey: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read survey id: %w", err)
	}
	return id, nil
}

// GetByID retrieves a survey by its id.
func (r *SurveyRepository) GetByID(ctx context.Context, id int64) (*models.Survey, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT survey_id, question, fire_at, audience_role, state, created_at, delivered_at FROM surveys WHERE survey_id = ?`,
		id,
	)
	survey, err := scanSurvey(row)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.KindNotFound, "survey %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}
	return survey, nil
}

// ListActive retrieves active surveys ordered by fire time.
func (r *SurveyRepository) ListActive(ctx context.Context) ([]*models.Survey, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT survey_id, question, fire_at, audience_role, state, created_at, delivered_at FROM surveys WHERE state = 'active' ORDER BY fire_at ASC, survey_id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list active surveys: %w", err)
	}
	defer rows.Close()

	var surveys []*models.Survey
	for rows.Next() {
		survey, err := scanSurvey(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan survey: %w", err)
		}
		surveys = append(surveys, survey)
	}
	return surveys, rows.Err()
}

// MarkDelivered records fan-out completion. The first write wins.
func (r *SurveyRepository) MarkDelivered(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE surveys SET delivered_at = ? WHERE survey_id = ? AND delivered_at IS NULL`,
		at.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark survey delivered: %w", err)
	}
	return nil
}

// Close transitions a survey to 'closed'. Closed is terminal.
func (r *SurveyRepository) Close(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE surveys SET state = 'closed' WHERE survey_id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to close survey: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return apperr.New(apperr.KindNotFound, "survey %d not found", id)
	}
	return nil
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSurvey(s scanner) (*models.Survey, error) {
	var (
		survey      models.Survey
		role        sql.NullString
		deliveredAt sql.NullTime
	)
	err := s.Scan(&survey.ID, &survey.Question, &survey.FireAt, &role, &survey.State, &survey.CreatedAt, &deliveredAt)
	if err != nil {
		return nil, err
	}
	if role.Valid {
		survey.Audience = models.AudienceOfRole(role.String)
	} else {
		survey.Audience = models.EveryoneAudience()
	}
	if deliveredAt.Valid {
		t := deliveredAt.Time.UTC()
		survey.DeliveredAt = &t
	}
	survey.FireAt = survey.FireAt.UTC()
	survey.CreatedAt = survey.CreatedAt.UTC()
	return &survey, nil
}

// Ensure SurveyRepository implements the interface
var _ secondary.SurveyRepository = (*SurveyRepository)(nil)
