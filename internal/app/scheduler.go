package app

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/example/standup/internal/apperr"
	"github.com/example/standup/internal/models"
	"github.com/example/standup/internal/ports/secondary"
)

// ScheduleNotifier is the narrow signal through which the admin surface
// pokes the scheduler after inserting a survey. It breaks the cycle
// between the handlers and the scheduler: the admin side only ever sees
// this interface.
type ScheduleNotifier interface {
	// Notify tells the scheduler a survey with the given fire time now
	// exists. Never blocks.
	Notify(fireAt time.Time)
}

// NopNotifier discards notifications, for contexts with no running
// scheduler (one-shot CLI commands).
type NopNotifier struct{}

func (NopNotifier) Notify(time.Time) {}

// Scheduler is the top loop. It reconciles outstanding surveys on start,
// fires due surveys through the delivery worker, ticks the reminder
// engine, and feeds inbound updates to the ingestor. All durable state
// lives in the store; a restart rebuilds everything from there.
type Scheduler struct {
	surveys  secondary.SurveyRepository
	worker   *DeliveryWorker
	engine   *ReminderEngine
	ingestor *ResponseIngestor
	inbound  secondary.InboundSource
	clock    secondary.Clock

	tick   time.Duration
	notify chan struct{}
	log    *slog.Logger
}

// NewScheduler creates a scheduler with injected dependencies. The inbound
// source may be nil when no transport stream exists (tests driving the
// ingestor directly).
func NewScheduler(
	surveys secondary.SurveyRepository,
	worker *DeliveryWorker,
	engine *ReminderEngine,
	ingestor *ResponseIngestor,
	inbound secondary.InboundSource,
	clock secondary.Clock,
	tick time.Duration,
	log *slog.Logger,
) *Scheduler {
	return &Scheduler{
		surveys:  surveys,
		worker:   worker,
		engine:   engine,
		ingestor: ingestor,
		inbound:  inbound,
		clock:    clock,
		tick:     tick,
		notify:   make(chan struct{}, 1),
		log:      log,
	}
}

// Notify implements ScheduleNotifier. Coalescing through a buffered
// channel keeps it non-blocking.
func (s *Scheduler) Notify(time.Time) {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Run drives the three loops until the context is cancelled. Returning
// nil on cancellation lets callers treat shutdown as clean.
func (s *Scheduler) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.deliveryLoop(gctx) })
	g.Go(func() error { return s.reminderLoop(gctx) })
	if s.inbound != nil {
		g.Go(func() error { return s.ingestLoop(gctx) })
	}
	err := g.Wait()
	if err == context.Canceled {
		return nil
	}
	return err
}

// deliveryLoop fires due surveys, then sleeps until the earliest upcoming
// fire time (capped at one tick so store-level retries are bounded). The
// notify signal re-arms early when a new survey lands.
//
// Startup reconciliation is the first pass of this loop: undelivered
// surveys with a past fire time deliver immediately, partially delivered
// ones complete idempotently, future ones arm the timer.
func (s *Scheduler) deliveryLoop(ctx context.Context) error {
	for {
		wait := s.fireDue(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.notify:
		case <-s.clock.After(wait):
		}
	}
}

// fireDue delivers every due survey and returns how long to sleep until
// the next one.
func (s *Scheduler) fireDue(ctx context.Context) time.Duration {
	surveys, err := s.surveys.ListActive(ctx)
	if err != nil {
		// Transient store trouble: retry a tick later.
		s.log.Warn("failed to list active surveys", "err", err)
		return s.tick
	}

	now := s.clock.Now()
	wait := s.tick
	for _, survey := range surveys {
		if !surveyDue(survey, now) {
			if survey.DeliveredAt == nil {
				if d := survey.FireAt.Sub(now); d < wait {
					wait = d
				}
			}
			continue
		}
		if err := s.worker.Deliver(ctx, survey); err != nil {
			s.log.Warn("delivery failed, will retry", "survey", survey.ID, "err", err)
		}
	}
	return wait
}

// reminderLoop ticks the reminder engine at the configured cadence.
func (s *Scheduler) reminderLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.clock.After(s.tick):
		}

		if err := s.engine.Tick(ctx); err != nil {
			s.log.Warn("reminder tick failed", "err", err)
		}
	}
}

// ingestLoop feeds transport updates to the ingestor, one task per update.
func (s *Scheduler) ingestLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-s.inbound.Updates():
			if !ok {
				return nil
			}
			if err := s.ingestor.HandleInbound(ctx, msg); err != nil {
				s.logIngestFailure(msg, err)
			}
		}
	}
}

func (s *Scheduler) logIngestFailure(msg secondary.Inbound, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindNotFound:
		s.log.Info("inbound message dropped", "chat", msg.ChatID, "err", err)
	default:
		s.log.Warn("ingest failed", "chat", msg.ChatID, "err", err)
	}
}

var _ ScheduleNotifier = (*Scheduler)(nil)

// surveyDue reports whether a survey should fire now. Split out for the
// scheduler tests.
func surveyDue(survey *models.Survey, now time.Time) bool {
	return survey.DeliveredAt == nil && !survey.FireAt.After(now)
}
