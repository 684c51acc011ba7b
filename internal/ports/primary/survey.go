// Package primary defines the primary ports (driving adapters) for the
// application: the service interfaces the CLI and the serve loop call.
package primary

import (
	"context"
	"time"
)

// SurveyService defines the primary port for supervisor survey operations.
type SurveyService interface {
	// CreateSurvey validates, persists and schedules a new survey.
	CreateSurvey(ctx context.Context, req CreateSurveyRequest) (*CreateSurveyResponse, error)

	// GetSurvey retrieves one survey.
	GetSurvey(ctx context.Context, surveyID int64) (*Survey, error)

	// ListActiveSurveys lists surveys in state 'active'.
	ListActiveSurveys(ctx context.Context) ([]*Survey, error)

	// CloseSurvey transitions a survey active→closed, suppressing all
	// further reminder sends.
	CloseSurvey(ctx context.Context, surveyID int64) error

	// SurveyDigest builds the per-survey answer digest for supervisors.
	SurveyDigest(ctx context.Context, surveyID int64) (*SurveyDigest, error)
}

// CreateSurveyRequest carries the admin-surface inputs for a new survey.
type CreateSurveyRequest struct {
	Question string
	FireAt   time.Time
	// AudienceRole is empty for an 'all' audience.
	AudienceRole string
	// AcceptEmpty lets the caller schedule a survey whose audience
	// currently resolves to nobody.
	AcceptEmpty bool
}

// CreateSurveyResponse reports the stored survey.
type CreateSurveyResponse struct {
	SurveyID  int64
	Survey    *Survey
	Audience  int // recipients the audience resolves to right now
}

// Survey represents a survey at the port boundary.
type Survey struct {
	ID          int64
	Question    string
	FireAt      string
	Audience    string // "all" or "role:<tag>"
	State       string
	CreatedAt   string
	DeliveredAt string // empty until fan-out completed
}

// DigestRow is one recipient line of a survey digest.
type DigestRow struct {
	UserID        int64
	DisplayName   string
	Delivered     bool
	Answer        string // empty when unanswered
	AnsweredAt    string
	RemindersSent int
}

// SurveyDigest summarizes who answered a survey and who was nagged.
type SurveyDigest struct {
	Survey    *Survey
	Rows      []DigestRow
	Answered  int
	Pending   int
	SendCount int // outbound sends recorded for the survey
}
