package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/standup/internal/apperr"
	"github.com/example/standup/internal/models"
	"github.com/example/standup/internal/ports/secondary"
)

// ReminderEngine scans for due reminder rungs on a fixed tick and sends
// them. Stage ordering falls out of the due scan's due_at ordering;
// a response arriving between the scan and the send is caught by the
// per-row re-check.
type ReminderEngine struct {
	surveys   secondary.SurveyRepository
	reminders secondary.ReminderRepository
	responses secondary.ResponseRepository
	outbox    secondary.OutboxRepository
	transport secondary.Transport
	clock     secondary.Clock

	sendDeadline time.Duration
	log          *slog.Logger
}

// NewReminderEngine creates a reminder engine with injected dependencies.
func NewReminderEngine(
	surveys secondary.SurveyRepository,
	reminders secondary.ReminderRepository,
	responses secondary.ResponseRepository,
	outbox secondary.OutboxRepository,
	transport secondary.Transport,
	clock secondary.Clock,
	sendDeadline time.Duration,
	log *slog.Logger,
) *ReminderEngine {
	return &ReminderEngine{
		surveys:      surveys,
		reminders:    reminders,
		responses:    responses,
		outbox:       outbox,
		transport:    transport,
		clock:        clock,
		sendDeadline: sendDeadline,
		log:          log,
	}
}

// Tick processes every reminder due at the current instant. Never sends a
// rung whose due_at is in the future. Transport failures do not halt the
// tick; store failures abort it (the next tick retries).
func (e *ReminderEngine) Tick(ctx context.Context) error {
	now := e.clock.Now()
	due, err := e.reminders.ListDue(ctx, now)
	if err != nil {
		return fmt.Errorf("due scan: %w", err)
	}

	questions := make(map[int64]string, 4)
	for _, rung := range due {
		if err := e.sendOne(ctx, rung, questions); err != nil {
			return err
		}
	}
	return nil
}

func (e *ReminderEngine) sendOne(ctx context.Context, rung *models.DueReminder, questions map[int64]string) error {
	// Re-check: a response may have landed since the scan.
	resp, err := e.responses.Get(ctx, rung.SurveyID, rung.UserID)
	if err != nil {
		return err
	}
	if resp != nil {
		if _, err := e.reminders.CancelPending(ctx, rung.SurveyID, rung.UserID); err != nil {
			return err
		}
		return nil
	}

	question, ok := questions[rung.SurveyID]
	if !ok {
		survey, err := e.surveys.GetByID(ctx, rung.SurveyID)
		if err != nil {
			return err
		}
		question = survey.Question
		questions[rung.SurveyID] = question
	}

	text := reminderText(rung.Stage, question)
	sendCtx, cancel := context.WithTimeout(ctx, e.sendDeadline)
	sendErr := e.transport.Send(sendCtx, rung.ChatID, text)
	cancel()
	if sendErr != nil {
		// Not retried here: the transport is at-least-once and the
		// rung is advanced either way.
		switch apperr.KindOf(sendErr) {
		case apperr.KindPermanentTransport:
			e.log.Info("reminder send failed", "survey", rung.SurveyID, "user", rung.UserID, "stage", rung.Stage, "err", sendErr)
		default:
			e.log.Warn("reminder send failed", "survey", rung.SurveyID, "user", rung.UserID, "stage", rung.Stage, "err", sendErr)
		}
	}

	if err := e.reminders.MarkReminder(ctx, rung.SurveyID, rung.UserID, rung.Stage, models.ReminderSent); err != nil {
		if apperr.Is(err, apperr.KindInvariantViolation) {
			// Another worker won the CAS.
			e.log.Debug("lost reminder CAS", "survey", rung.SurveyID, "user", rung.UserID, "stage", rung.Stage)
			return nil
		}
		return err
	}

	return e.outbox.Append(ctx, &secondary.OutboxEntry{
		Kind:     secondary.OutboxReminder,
		SurveyID: rung.SurveyID,
		UserID:   rung.UserID,
		ChatID:   rung.ChatID,
		Stage:    rung.Stage,
		Text:     text,
		SentAt:   e.clock.Now(),
	})
}

// reminderText renders the stage-appropriate nag. The ladder defaults to
// two stages; any further stage reuses the final wording.
func reminderText(stage int, question string) string {
	switch stage {
	case 1:
		return "Reminder: you haven't answered yet.\n\n" + question
	case 2:
		return "Second reminder: still waiting on your answer.\n\n" + question
	default:
		return "Final reminder: please answer when you can.\n\n" + question
	}
}
