// Package wire builds the application object graph. Construction is
// explicit: main opens the store, picks a transport, and everything else
// is injected from here. No package-level state.
package wire

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/example/standup/internal/adapters/sqlite"
	"github.com/example/standup/internal/app"
	"github.com/example/standup/internal/config"
	"github.com/example/standup/internal/db"
	"github.com/example/standup/internal/ports/primary"
	"github.com/example/standup/internal/ports/secondary"
)

// Runtime holds the constructed services and loops. Close releases the
// store handle.
type Runtime struct {
	DB    *sql.DB
	Clock secondary.Clock

	Surveys   primary.SurveyService
	Responses primary.ResponseService
	Directory primary.DirectoryService
	Tracker   primary.TrackerService

	Scheduler *app.Scheduler
	Ingestor  *app.ResponseIngestor
}

// Options selects the pieces that vary per invocation.
type Options struct {
	Config    *config.Config
	Transport secondary.Transport
	Inbound   secondary.InboundSource // may be nil for one-shot commands
	Log       *slog.Logger
}

// New opens the store and wires the full graph. One-shot CLI commands get
// the same graph as `serve`; their scheduler simply never runs, and
// create-survey notifications coalesce harmlessly.
func New(opts Options) (*Runtime, error) {
	cfg := opts.Config
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	conn, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	clock := secondary.NewSystemClock(loc)
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}

	surveyRepo := sqlite.NewSurveyRepository(conn)
	reminderRepo := sqlite.NewReminderRepository(conn)
	responseRepo := sqlite.NewResponseRepository(conn)
	userRepo := sqlite.NewUserRepository(conn)
	outboxRepo := sqlite.NewOutboxRepository(conn)
	trackerRepo := sqlite.NewTrackerRepository(conn)

	resolver := app.NewAudienceResolver(userRepo)
	worker := app.NewDeliveryWorker(
		surveyRepo, reminderRepo, outboxRepo, opts.Transport, resolver, clock,
		cfg.Schedule(), cfg.FanoutConcurrency, cfg.SendDeadline.Std(), log,
	)
	engine := app.NewReminderEngine(
		surveyRepo, reminderRepo, responseRepo, outboxRepo, opts.Transport, clock,
		cfg.SendDeadline.Std(), log,
	)
	ingestor := app.NewResponseIngestor(
		surveyRepo, userRepo, responseRepo, reminderRepo, outboxRepo, opts.Transport, clock,
		cfg.SendDeadline.Std(), log,
	)
	scheduler := app.NewScheduler(
		surveyRepo, worker, engine, ingestor, opts.Inbound, clock,
		cfg.TickInterval.Std(), log,
	)

	return &Runtime{
		DB:        conn,
		Clock:     clock,
		Surveys:   app.NewSurveyService(surveyRepo, reminderRepo, responseRepo, userRepo, outboxRepo, resolver, scheduler, clock),
		Responses: app.NewResponseService(surveyRepo, responseRepo, reminderRepo, clock),
		Directory: app.NewDirectoryService(userRepo),
		Tracker:   app.NewTrackerService(trackerRepo, clock, nil, log),
		Scheduler: scheduler,
		Ingestor:  ingestor,
	}, nil
}

// Close releases the store handle.
func (r *Runtime) Close() error {
	return r.DB.Close()
}
