package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/standup/internal/models"
	"github.com/example/standup/internal/ports/secondary"
)

func TestReminderLadderEscalates(t *testing.T) {
	env := newTestEnv(t, testFireAt)
	ctx := context.Background()

	env.addUser(t, "chat-alice", "Alice", "")
	survey := env.addSurvey(t, "What did you do today?", testFireAt, models.EveryoneAudience())
	require.NoError(t, env.newWorker().Deliver(ctx, survey))

	engine := env.newEngine()

	// Nothing is due before the first offset elapses.
	env.clock.Advance(29 * time.Second)
	require.NoError(t, engine.Tick(ctx))
	assert.Len(t, env.transport.SentTo("chat-alice"), 1)

	env.clock.Advance(2 * time.Second)
	require.NoError(t, engine.Tick(ctx))
	sent := env.transport.SentTo("chat-alice")
	require.Len(t, sent, 2)
	assert.Equal(t, "Reminder: you haven't answered yet.\n\nWhat did you do today?", sent[1].Text)

	env.clock.Advance(30 * time.Second)
	require.NoError(t, engine.Tick(ctx))
	sent = env.transport.SentTo("chat-alice")
	require.Len(t, sent, 3)
	assert.Equal(t, "Second reminder: still waiting on your answer.\n\nWhat did you do today?", sent[2].Text)

	// The ladder is exhausted: later ticks send nothing.
	env.clock.Advance(time.Hour)
	require.NoError(t, engine.Tick(ctx))
	assert.Len(t, env.transport.SentTo("chat-alice"), 3)
}

func TestReminderStageOrderAfterDowntime(t *testing.T) {
	env := newTestEnv(t, testFireAt)
	ctx := context.Background()

	alice := env.addUser(t, "chat-alice", "Alice", "")
	survey := env.addSurvey(t, "What did you do today?", testFireAt, models.EveryoneAudience())
	require.NoError(t, env.newWorker().Deliver(ctx, survey))

	// The process was down past both offsets: one tick catches up and
	// the stages still go out in order.
	env.clock.Advance(2 * time.Minute)
	require.NoError(t, env.newEngine().Tick(ctx))

	entries, err := env.outbox.ListBySurvey(ctx, survey.ID)
	require.NoError(t, err)

	var stages []int
	for _, e := range entries {
		if e.Kind == secondary.OutboxReminder && e.UserID == alice {
			stages = append(stages, e.Stage)
		}
	}
	assert.Equal(t, []int{1, 2}, stages)
}

func TestAnswerCancelsReminders(t *testing.T) {
	env := newTestEnv(t, testFireAt)
	ctx := context.Background()

	alice := env.addUser(t, "chat-alice", "Alice", "")
	survey := env.addSurvey(t, "What did you do today?", testFireAt, models.EveryoneAudience())
	require.NoError(t, env.newWorker().Deliver(ctx, survey))

	env.clock.Advance(10 * time.Second)
	_, err := env.newIngestor().Ingest(ctx, survey.ID, alice, "Shipped the parser")
	require.NoError(t, err)

	env.clock.Advance(2 * time.Minute)
	require.NoError(t, env.newEngine().Tick(ctx))

	// Question plus ack only, never a reminder.
	sent := env.transport.SentTo("chat-alice")
	require.Len(t, sent, 2)

	rungs, err := env.reminders.ListBySurveyUser(ctx, survey.ID, alice)
	require.NoError(t, err)
	for _, r := range rungs {
		assert.Equal(t, models.ReminderCancelled, r.Status)
	}
}

func TestReminderRecheckSkipsFreshAnswer(t *testing.T) {
	env := newTestEnv(t, testFireAt)
	ctx := context.Background()

	alice := env.addUser(t, "chat-alice", "Alice", "")
	survey := env.addSurvey(t, "What did you do today?", testFireAt, models.EveryoneAudience())
	require.NoError(t, env.newWorker().Deliver(ctx, survey))

	// The answer lands through the store without touching the ladder,
	// as if it raced the due scan.
	_, err := env.responses.Save(ctx, survey.ID, alice, "done", env.clock.Now())
	require.NoError(t, err)

	env.clock.Advance(31 * time.Second)
	require.NoError(t, env.newEngine().Tick(ctx))

	assert.Len(t, env.transport.SentTo("chat-alice"), 1)

	rungs, err := env.reminders.ListBySurveyUser(ctx, survey.ID, alice)
	require.NoError(t, err)
	for _, r := range rungs {
		assert.Equal(t, models.ReminderCancelled, r.Status)
	}
}

func TestClosedSurveySendsNoReminders(t *testing.T) {
	env := newTestEnv(t, testFireAt)
	ctx := context.Background()

	env.addUser(t, "chat-alice", "Alice", "")
	survey := env.addSurvey(t, "What did you do today?", testFireAt, models.EveryoneAudience())
	require.NoError(t, env.newWorker().Deliver(ctx, survey))

	require.NoError(t, env.surveys.Close(ctx, survey.ID))

	env.clock.Advance(2 * time.Minute)
	require.NoError(t, env.newEngine().Tick(ctx))

	assert.Len(t, env.transport.SentTo("chat-alice"), 1)
}

func TestReminderSendFailureStillAdvances(t *testing.T) {
	env := newTestEnv(t, testFireAt)
	ctx := context.Background()

	alice := env.addUser(t, "chat-alice", "Alice", "")
	survey := env.addSurvey(t, "What did you do today?", testFireAt, models.EveryoneAudience())
	require.NoError(t, env.newWorker().Deliver(ctx, survey))

	env.transport.FailTransient("chat-alice", 1)
	env.clock.Advance(31 * time.Second)
	require.NoError(t, env.newEngine().Tick(ctx))

	// The rung is marked sent despite the transport failure, so the
	// next tick does not re-send stage 1.
	rungs, err := env.reminders.ListBySurveyUser(ctx, survey.ID, alice)
	require.NoError(t, err)
	require.Len(t, rungs, 2)
	assert.Equal(t, models.ReminderSent, rungs[0].Status)
	assert.Equal(t, models.ReminderPending, rungs[1].Status)

	require.NoError(t, env.newEngine().Tick(ctx))
	assert.Len(t, env.transport.SentTo("chat-alice"), 1)
}
