package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/example/standup/internal/apperr"
	"github.com/example/standup/internal/models"
	"github.com/example/standup/internal/ports/secondary"
)

// DeliveryWorker fans a due survey out to its audience. Sends run
// concurrently up to the configured cap; each recipient fails
// independently.
//
// Failure policy: transient and permanent send failures are treated the
// same at this layer. The delivery row is recorded with a null
// delivered_at, the full reminder ladder is still seeded, and the user is
// expected to retrieve the question from transport history.
type DeliveryWorker struct {
	surveys   secondary.SurveyRepository
	reminders secondary.ReminderRepository
	outbox    secondary.OutboxRepository
	transport secondary.Transport
	resolver  *AudienceResolver
	clock     secondary.Clock

	schedule     []time.Duration
	fanout       int
	sendDeadline time.Duration
	log          *slog.Logger
}

// NewDeliveryWorker creates a delivery worker with injected dependencies.
func NewDeliveryWorker(
	surveys secondary.SurveyRepository,
	reminders secondary.ReminderRepository,
	outbox secondary.OutboxRepository,
	transport secondary.Transport,
	resolver *AudienceResolver,
	clock secondary.Clock,
	schedule []time.Duration,
	fanout int,
	sendDeadline time.Duration,
	log *slog.Logger,
) *DeliveryWorker {
	return &DeliveryWorker{
		surveys:      surveys,
		reminders:    reminders,
		outbox:       outbox,
		transport:    transport,
		resolver:     resolver,
		clock:        clock,
		schedule:     schedule,
		fanout:       fanout,
		sendDeadline: sendDeadline,
		log:          log,
	}
}

// Deliver fans the survey out to its audience and seeds the reminder
// ladder. Safe to re-run after a crash: recipients with an existing
// delivery row are not sent to again, and reminder seeding is an upsert.
// A store failure aborts, leaving the survey undelivered for the next
// tick to retry.
func (w *DeliveryWorker) Deliver(ctx context.Context, survey *models.Survey) error {
	recipients, err := w.resolver.Resolve(ctx, survey.Audience)
	if err != nil {
		return fmt.Errorf("survey %d: %w", survey.ID, err)
	}

	if len(recipients) == 0 {
		// Zero recipients: the survey is complete, no deliveries and
		// no reminders.
		w.log.Info("survey has empty audience, marking delivered",
			"survey", survey.ID, "audience", survey.Audience.String())
		return w.surveys.MarkDelivered(ctx, survey.ID, w.clock.Now())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.fanout)
	for _, recipient := range recipients {
		recipient := recipient
		g.Go(func() error {
			return w.deliverOne(gctx, survey, recipient)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("survey %d fan-out: %w", survey.ID, err)
	}

	if err := w.surveys.MarkDelivered(ctx, survey.ID, w.clock.Now()); err != nil {
		return fmt.Errorf("survey %d: %w", survey.ID, err)
	}
	w.log.Info("survey delivered", "survey", survey.ID, "recipients", len(recipients))
	return nil
}

func (w *DeliveryWorker) deliverOne(ctx context.Context, survey *models.Survey, user *models.User) error {
	existing, err := w.reminders.GetDelivery(ctx, survey.ID, user.ID)
	if err != nil {
		return err
	}

	if existing == nil {
		sendCtx, cancel := context.WithTimeout(ctx, w.sendDeadline)
		sendErr := w.transport.Send(sendCtx, user.ChatID, survey.Question)
		cancel()

		var deliveredAt *time.Time
		if sendErr != nil {
			w.logSendFailure("question send failed", sendErr, survey.ID, user.ID)
		} else {
			now := w.clock.Now()
			deliveredAt = &now
		}
		if err := w.reminders.RecordDelivery(ctx, survey.ID, user.ID, deliveredAt); err != nil {
			return err
		}
		if err := w.outbox.Append(ctx, &secondary.OutboxEntry{
			Kind:     secondary.OutboxQuestion,
			SurveyID: survey.ID,
			UserID:   user.ID,
			ChatID:   user.ChatID,
			Text:     survey.Question,
			SentAt:   w.clock.Now(),
		}); err != nil {
			return err
		}
	}

	// Ladder rungs are due relative to fire time, not send time.
	for i, offset := range w.schedule {
		if err := w.reminders.UpsertReminder(ctx, survey.ID, user.ID, i+1, survey.FireAt.Add(offset)); err != nil {
			return err
		}
	}
	return nil
}

func (w *DeliveryWorker) logSendFailure(msg string, err error, surveyID, userID int64) {
	switch apperr.KindOf(err) {
	case apperr.KindPermanentTransport:
		w.log.Info(msg, "survey", surveyID, "user", userID, "err", err)
	default:
		w.log.Warn(msg, "survey", surveyID, "user", userID, "err", err)
	}
}
