package app

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/example/standup/internal/apperr"
	"github.com/example/standup/internal/models"
	"github.com/example/standup/internal/ports/secondary"
)

// ResponseIngestor records inbound answers. The write order is load-
// bearing: the response row lands before pending reminders are cancelled,
// so an observer never sees reminders cancelled without a response.
// A reminder tick racing in between cancels on its own; CancelPending is
// idempotent either way.
type ResponseIngestor struct {
	surveys   secondary.SurveyRepository
	users     secondary.UserRepository
	responses secondary.ResponseRepository
	reminders secondary.ReminderRepository
	outbox    secondary.OutboxRepository
	transport secondary.Transport
	clock     secondary.Clock

	sendDeadline time.Duration
	log          *slog.Logger
}

// NewResponseIngestor creates a response ingestor with injected
// dependencies.
func NewResponseIngestor(
	surveys secondary.SurveyRepository,
	users secondary.UserRepository,
	responses secondary.ResponseRepository,
	reminders secondary.ReminderRepository,
	outbox secondary.OutboxRepository,
	transport secondary.Transport,
	clock secondary.Clock,
	sendDeadline time.Duration,
	log *slog.Logger,
) *ResponseIngestor {
	return &ResponseIngestor{
		surveys:      surveys,
		users:        users,
		responses:    responses,
		reminders:    reminders,
		outbox:       outbox,
		transport:    transport,
		clock:        clock,
		sendDeadline: sendDeadline,
		log:          log,
	}
}

// HandleInbound resolves one transport update to (survey, user) and
// ingests it. The dialog layer already correlated the message to a survey;
// here the correlation is the survey id.
func (i *ResponseIngestor) HandleInbound(ctx context.Context, msg secondary.Inbound) error {
	surveyID, err := strconv.ParseInt(msg.Correlation, 10, 64)
	if err != nil {
		return apperr.New(apperr.KindValidation, "unusable correlation %q", msg.Correlation)
	}

	user, err := i.users.GetByChatID(ctx, msg.ChatID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperr.New(apperr.KindNotFound, "no user registered for chat %s", msg.ChatID)
	}

	_, err = i.Ingest(ctx, surveyID, user.ID, msg.Text)
	return err
}

// Ingest saves the answer (creating or appending), cancels pending
// reminders for the pair, and acknowledges. Save strictly precedes cancel.
func (i *ResponseIngestor) Ingest(ctx context.Context, surveyID, userID int64, text string) (*models.Response, error) {
	if text == "" {
		return nil, apperr.New(apperr.KindValidation, "empty answer")
	}

	survey, err := i.surveys.GetByID(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	resp, err := i.responses.Save(ctx, surveyID, userID, text, i.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to save response: %w", err)
	}

	cancelled, err := i.reminders.CancelPending(ctx, surveyID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel reminders: %w", err)
	}
	if cancelled > 0 {
		i.log.Debug("cancelled pending reminders", "survey", surveyID, "user", userID, "count", cancelled)
	}

	i.acknowledge(ctx, survey, userID)
	return resp, nil
}

// acknowledge is best-effort: a failed ack never rolls anything back.
func (i *ResponseIngestor) acknowledge(ctx context.Context, survey *models.Survey, userID int64) {
	user, err := i.users.GetByID(ctx, userID)
	if err != nil || user.ChatID == "" {
		return
	}

	text := fmt.Sprintf("Got it — your answer to survey #%d is recorded.", survey.ID)
	sendCtx, cancel := context.WithTimeout(ctx, i.sendDeadline)
	sendErr := i.transport.Send(sendCtx, user.ChatID, text)
	cancel()
	if sendErr != nil {
		i.log.Warn("ack send failed", "survey", survey.ID, "user", userID, "err", sendErr)
		return
	}

	if err := i.outbox.Append(ctx, &secondary.OutboxEntry{
		Kind:     secondary.OutboxAck,
		SurveyID: survey.ID,
		UserID:   userID,
		ChatID:   user.ChatID,
		Text:     text,
		SentAt:   i.clock.Now(),
	}); err != nil {
		i.log.Warn("outbox append failed", "survey", survey.ID, "user", userID, "err", err)
	}
}
