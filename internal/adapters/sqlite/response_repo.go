package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/standup/internal/models"
	"github.com/example/standup/internal/ports/secondary"
)

// ResponseRepository implements secondary.ResponseRepository with SQLite.
type ResponseRepository struct {
	db *sql.DB
}

// NewResponseRepository creates a new SQLite response repository.
func NewResponseRepository(db *sql.DB) *ResponseRepository {
	return &ResponseRepository{db: db}
}

// Save creates the response row for (survey, user), or appends to the
// existing answer behind a timestamped marker. The read-modify-write runs
// in one transaction so a concurrent save never loses an append.
func (r *ResponseRepository) Save(ctx context.Context, surveyID, userID int64, answer string, now time.Time) (*models.Response, error) {
	now = now.UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existing string
	var createdAt time.Time
	err = tx.QueryRowContext(ctx,
		`SELECT answer, created_at FROM responses WHERE survey_id = ? AND user_id = ?`,
		surveyID, userID,
	).Scan(&existing, &createdAt)

	resp := &models.Response{SurveyID: surveyID, UserID: userID, UpdatedAt: now}
	switch {
	case err == sql.ErrNoRows:
		resp.Answer = answer
		resp.CreatedAt = now
		_, err = tx.ExecContext(ctx,
			`INSERT INTO responses (survey_id, user_id, answer, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			surveyID, userID, answer, now, now,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert response: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read response: %w", err)
	default:
		resp.Answer = models.AppendAnswer(existing, answer, now)
		resp.CreatedAt = createdAt.UTC()
		_, err = tx.ExecContext(ctx,
			`UPDATE responses SET answer = ?, updated_at = ? WHERE survey_id = ? AND user_id = ?`,
			resp.Answer, now, surveyID, userID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to append response: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit response: %w", err)
	}
	return resp, nil
}

// Get retrieves the response for (survey, user), or nil when unanswered.
func (r *ResponseRepository) Get(ctx context.Context, surveyID, userID int64) (*models.Response, error) {
	resp := &models.Response{SurveyID: surveyID, UserID: userID}
	err := r.db.QueryRowContext(ctx,
		`SELECT answer, created_at, updated_at FROM responses WHERE survey_id = ? AND user_id = ?`,
		surveyID, userID,
	).Scan(&resp.Answer, &resp.CreatedAt, &resp.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get response: %w", err)
	}
	resp.CreatedAt = resp.CreatedAt.UTC()
	resp.UpdatedAt = resp.UpdatedAt.UTC()
	return resp, nil
}

// ListBySurvey retrieves every response for a survey.
func (r *ResponseRepository) ListBySurvey(ctx context.Context, surveyID int64) ([]*models.Response, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, answer, created_at, updated_at FROM responses WHERE survey_id = ? ORDER BY user_id ASC`,
		surveyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	defer rows.Close()

	var responses []*models.Response
	for rows.Next() {
		resp := &models.Response{SurveyID: surveyID}
		if err := rows.Scan(&resp.UserID, &resp.Answer, &resp.CreatedAt, &resp.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		resp.CreatedAt = resp.CreatedAt.UTC()
		resp.UpdatedAt = resp.UpdatedAt.UTC()
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}

// ListAnsweredBy retrieves a user's responses since the given instant,
// newest first.
func (r *ResponseRepository) ListAnsweredBy(ctx context.Context, userID int64, since time.Time) ([]*models.Response, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT survey_id, answer, created_at, updated_at FROM responses WHERE user_id = ? AND created_at >= ? ORDER BY created_at DESC`,
		userID, since.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list answered surveys: %w", err)
	}
	defer rows.Close()

	var responses []*models.Response
	for rows.Next() {
		resp := &models.Response{UserID: userID}
		if err := rows.Scan(&resp.SurveyID, &resp.Answer, &resp.CreatedAt, &resp.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		resp.CreatedAt = resp.CreatedAt.UTC()
		resp.UpdatedAt = resp.UpdatedAt.UTC()
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}

// Ensure ResponseRepository implements the interface
var _ secondary.ResponseRepository = (*ResponseRepository)(nil)
