package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/standup/internal/apperr"
	"github.com/example/standup/internal/ports/primary"
	"github.com/example/standup/internal/ports/secondary"
)

// ResponseServiceImpl implements the ResponseService interface (the
// "amend my answer" flow).
type ResponseServiceImpl struct {
	surveys   secondary.SurveyRepository
	responses secondary.ResponseRepository
	reminders secondary.ReminderRepository
	clock     secondary.Clock
}

// NewResponseService creates a new ResponseService with injected
// dependencies.
func NewResponseService(
	surveys secondary.SurveyRepository,
	responses secondary.ResponseRepository,
	reminders secondary.ReminderRepository,
	clock secondary.Clock,
) *ResponseServiceImpl {
	return &ResponseServiceImpl{
		surveys:   surveys,
		responses: responses,
		reminders: reminders,
		clock:     clock,
	}
}

// ListMyAnswered lists the surveys a user answered since the given
// instant, newest first.
func (s *ResponseServiceImpl) ListMyAnswered(ctx context.Context, userID int64, since time.Time) ([]*primary.AnsweredSurvey, error) {
	responses, err := s.responses.ListAnsweredBy(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list answered surveys: %w", err)
	}

	out := make([]*primary.AnsweredSurvey, 0, len(responses))
	for _, resp := range responses {
		survey, err := s.surveys.GetByID(ctx, resp.SurveyID)
		if err != nil {
			return nil, err
		}
		out = append(out, &primary.AnsweredSurvey{
			SurveyID:   resp.SurveyID,
			Question:   survey.Question,
			Answer:     resp.Answer,
			AnsweredAt: formatTime(resp.CreatedAt),
			UpdatedAt:  formatTime(resp.UpdatedAt),
		})
	}
	return out, nil
}

// AppendAnswer appends text to a user's recorded answer. The save is the
// same append-only write the ingestor performs; cancelling pending
// reminders afterwards covers the case where the append created the row.
func (s *ResponseServiceImpl) AppendAnswer(ctx context.Context, surveyID, userID int64, text string) (*primary.AnsweredSurvey, error) {
	if text == "" {
		return nil, apperr.New(apperr.KindValidation, "appended text must not be empty")
	}

	survey, err := s.surveys.GetByID(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	resp, err := s.responses.Save(ctx, surveyID, userID, text, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to append answer: %w", err)
	}
	if _, err := s.reminders.CancelPending(ctx, surveyID, userID); err != nil {
		return nil, fmt.Errorf("failed to cancel reminders: %w", err)
	}

	return &primary.AnsweredSurvey{
		SurveyID:   surveyID,
		Question:   survey.Question,
		Answer:     resp.Answer,
		AnsweredAt: formatTime(resp.CreatedAt),
		UpdatedAt:  formatTime(resp.UpdatedAt),
	}, nil
}

// Ensure ResponseServiceImpl implements the interface
var _ primary.ResponseService = (*ResponseServiceImpl)(nil)
