package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/standup/internal/apperr"
	"github.com/example/standup/internal/models"
	"github.com/example/standup/internal/ports/primary"
	"github.com/example/standup/internal/ports/secondary"
)

// maxQuestionLen bounds the free-text question. The transport enforces its
// own limit; this one keeps the store sane.
const maxQuestionLen = 4096

// SurveyServiceImpl implements the SurveyService interface.
type SurveyServiceImpl struct {
	surveys   secondary.SurveyRepository
	reminders secondary.ReminderRepository
	responses secondary.ResponseRepository
	users     secondary.UserRepository
	outbox    secondary.OutboxRepository
	resolver  *AudienceResolver
	notifier  ScheduleNotifier
	clock     secondary.Clock
}

// NewSurveyService creates a new SurveyService with injected dependencies.
func NewSurveyService(
	surveys secondary.SurveyRepository,
	reminders secondary.ReminderRepository,
	responses secondary.ResponseRepository,
	users secondary.UserRepository,
	outbox secondary.OutboxRepository,
	resolver *AudienceResolver,
	notifier ScheduleNotifier,
	clock secondary.Clock,
) *SurveyServiceImpl {
	return &SurveyServiceImpl{
		surveys:   surveys,
		reminders: reminders,
		responses: responses,
		users:     users,
		outbox:    outbox,
		resolver:  resolver,
		notifier:  notifier,
		clock:     clock,
	}
}

// CreateSurvey validates, persists and schedules a new survey. A fire time
// at or before now is delivered by the scheduler's next pass.
func (s *SurveyServiceImpl) CreateSurvey(ctx context.Context, req primary.CreateSurveyRequest) (*primary.CreateSurveyResponse, error) {
	if req.Question == "" {
		return nil, apperr.New(apperr.KindValidation, "question must not be empty")
	}
	if len(req.Question) > maxQuestionLen {
		return nil, apperr.New(apperr.KindValidation, "question exceeds %d bytes", maxQuestionLen)
	}

	audience := models.EveryoneAudience()
	if req.AudienceRole != "" {
		if !models.ValidRole(req.AudienceRole) {
			return nil, apperr.New(apperr.KindValidation, "unknown role %q", req.AudienceRole)
		}
		audience = models.AudienceOfRole(req.AudienceRole)
	}

	// Advisory only: the audience is re-resolved at fire time.
	recipients, err := s.resolver.Resolve(ctx, audience)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 && !req.AcceptEmpty {
		return nil, apperr.New(apperr.KindValidation, "audience %s currently resolves to nobody (pass accept-empty to schedule anyway)", audience.String())
	}

	id, err := s.surveys.Create(ctx, req.Question, req.FireAt, audience)
	if err != nil {
		return nil, fmt.Errorf("failed to create survey: %w", err)
	}
	s.notifier.Notify(req.FireAt)

	survey, err := s.surveys.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &primary.CreateSurveyResponse{
		SurveyID: id,
		Survey:   surveyToPort(survey),
		Audience: len(recipients),
	}, nil
}

// GetSurvey retrieves one survey.
func (s *SurveyServiceImpl) GetSurvey(ctx context.Context, surveyID int64) (*primary.Survey, error) {
	survey, err := s.surveys.GetByID(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	return surveyToPort(survey), nil
}

// ListActiveSurveys lists surveys in state 'active'.
func (s *SurveyServiceImpl) ListActiveSurveys(ctx context.Context) ([]*primary.Survey, error) {
	surveys, err := s.surveys.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active surveys: %w", err)
	}
	out := make([]*primary.Survey, len(surveys))
	for i, survey := range surveys {
		out[i] = surveyToPort(survey)
	}
	return out, nil
}

// CloseSurvey transitions a survey active→closed. No reminder fires for a
// closed survey.
func (s *SurveyServiceImpl) CloseSurvey(ctx context.Context, surveyID int64) error {
	return s.surveys.Close(ctx, surveyID)
}

// SurveyDigest builds the per-survey answer digest.
func (s *SurveyServiceImpl) SurveyDigest(ctx context.Context, surveyID int64) (*primary.SurveyDigest, error) {
	survey, err := s.surveys.GetByID(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	deliveries, err := s.reminders.ListDeliveries(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	responses, err := s.responses.ListBySurvey(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	sends, err := s.outbox.ListBySurvey(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	byUser := make(map[int64]*models.Response, len(responses))
	for _, resp := range responses {
		byUser[resp.UserID] = resp
	}

	digest := &primary.SurveyDigest{
		Survey:    surveyToPort(survey),
		SendCount: len(sends),
	}
	for _, d := range deliveries {
		user, err := s.users.GetByID(ctx, d.UserID)
		if err != nil {
			return nil, err
		}
		rungs, err := s.reminders.ListBySurveyUser(ctx, surveyID, d.UserID)
		if err != nil {
			return nil, err
		}
		sent := 0
		for _, r := range rungs {
			if r.Status == models.ReminderSent {
				sent++
			}
		}

		row := primary.DigestRow{
			UserID:        d.UserID,
			DisplayName:   user.DisplayName,
			Delivered:     d.DeliveredAt != nil,
			RemindersSent: sent,
		}
		if resp, ok := byUser[d.UserID]; ok {
			row.Answer = resp.Answer
			row.AnsweredAt = formatTime(resp.CreatedAt)
			digest.Answered++
		} else {
			digest.Pending++
		}
		digest.Rows = append(digest.Rows, row)
	}
	return digest, nil
}

// Helper methods

func surveyToPort(s *models.Survey) *primary.Survey {
	out := &primary.Survey{
		ID:        s.ID,
		Question:  s.Question,
		FireAt:    formatTime(s.FireAt),
		Audience:  s.Audience.String(),
		State:     s.State,
		CreatedAt: formatTime(s.CreatedAt),
	}
	if s.DeliveredAt != nil {
		out.DeliveredAt = formatTime(*s.DeliveredAt)
	}
	return out
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Ensure SurveyServiceImpl implements the interface
var _ primary.SurveyService = (*SurveyServiceImpl)(nil)
