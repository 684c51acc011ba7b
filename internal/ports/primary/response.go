package primary

import (
	"context"
	"time"
)

// ResponseService defines the primary port for the answer-amendment flow.
type ResponseService interface {
	// ListMyAnswered lists the surveys a user has answered since the
	// given instant, newest first.
	ListMyAnswered(ctx context.Context, userID int64, since time.Time) ([]*AnsweredSurvey, error)

	// AppendAnswer appends text to a user's existing answer. The
	// underlying save is the same append-only write the ingestor uses.
	AppendAnswer(ctx context.Context, surveyID, userID int64, text string) (*AnsweredSurvey, error)
}

// AnsweredSurvey pairs a survey with the caller's recorded answer.
type AnsweredSurvey struct {
	SurveyID   int64
	Question   string
	Answer     string
	AnsweredAt string
	UpdatedAt  string
}
