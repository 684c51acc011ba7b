package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/standup/internal/apperr"
	"github.com/example/standup/internal/models"
	"github.com/example/standup/internal/ports/primary"
)

type recordingNotifier struct {
	fired []time.Time
}

func (n *recordingNotifier) Notify(at time.Time) {
	n.fired = append(n.fired, at)
}

func (e *testEnv) newSurveyService(notifier ScheduleNotifier) *SurveyServiceImpl {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return NewSurveyService(e.surveys, e.reminders, e.responses, e.users,
		e.outbox, e.resolver, notifier, e.clock)
}

func TestCreateSurveyValidation(t *testing.T) {
	env := newTestEnv(t, testFireAt)
	env.addUser(t, "chat-alice", "Alice", "")
	svc := env.newSurveyService(nil)
	ctx := context.Background()

	cases := []struct {
		name string
		req  primary.CreateSurveyRequest
	}{
		{"empty question", primary.CreateSurveyRequest{Question: "", FireAt: testFireAt}},
		{"oversized question", primary.CreateSurveyRequest{Question: strings.Repeat("x", 4097), FireAt: testFireAt}},
		{"unknown role", primary.CreateSurveyRequest{Question: "q", FireAt: testFireAt, AudienceRole: "intern"}},
		{"empty audience", primary.CreateSurveyRequest{Question: "q", FireAt: testFireAt, AudienceRole: models.RoleManager}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateSurvey(ctx, tc.req)
			assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
		})
	}
}

func TestCreateSurveyAcceptEmpty(t *testing.T) {
	env := newTestEnv(t, testFireAt)
	svc := env.newSurveyService(nil)

	resp, err := svc.CreateSurvey(context.Background(), primary.CreateSurveyRequest{
		Question:    "Anyone?",
		FireAt:      testFireAt,
		AcceptEmpty: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Audience)
	assert.Equal(t, "all", resp.Survey.Audience)
}

func TestCreateSurveyNotifiesScheduler(t *testing.T) {
	env := newTestEnv(t, testFireAt)
	env.addUser(t, "chat-alice", "Alice", "")
	notifier := &recordingNotifier{}
	svc := env.newSurveyService(notifier)

	fireAt := testFireAt.Add(time.Hour)
	resp, err := svc.CreateSurvey(context.Background(), primary.CreateSurveyRequest{
		Question: "Plans for tomorrow?",
		FireAt:   fireAt,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Audience)

	require.Len(t, notifier.fired, 1)
	assert.True(t, notifier.fired[0].Equal(fireAt))

	got, err := svc.GetSurvey(context.Background(), resp.SurveyID)
	require.NoError(t, err)
	assert.Equal(t, "Plans for tomorrow?", got.Question)
	assert.Equal(t, models.SurveyStateActive, got.State)
	assert.Equal(t, fireAt.Format(time.RFC3339), got.FireAt)
}

func TestListActiveSurveys(t *testing.T) {
	env := newTestEnv(t, testFireAt)
	svc := env.newSurveyService(nil)
	ctx := context.Background()

	first := env.addSurvey(t, "one", testFireAt, models.EveryoneAudience())
	env.addSurvey(t, "two", testFireAt.Add(time.Hour), models.EveryoneAudience())
	require.NoError(t, svc.CloseSurvey(ctx, first.ID))

	surveys, err := svc.ListActiveSurveys(ctx)
	require.NoError(t, err)
	require.Len(t, surveys, 1)
	assert.Equal(t, "two", surveys[0].Question)
}

func TestSurveyDigest(t *testing.T) {
	env := newTestEnv(t, testFireAt)
	ctx := context.Background()

	alice := env.addUser(t, "chat-alice", "Alice", "")
	env.addUser(t, "chat-bob", "Bob", "")

	survey := env.addSurvey(t, "What did you do today?", testFireAt, models.EveryoneAudience())
	require.NoError(t, env.newWorker().Deliver(ctx, survey))

	// Alice answers; Bob sits through one reminder.
	env.clock.Advance(10 * time.Second)
	_, err := env.newIngestor().Ingest(ctx, survey.ID, alice, "Shipped the parser")
	require.NoError(t, err)

	env.clock.Advance(25 * time.Second)
	require.NoError(t, env.newEngine().Tick(ctx))

	digest, err := env.newSurveyService(nil).SurveyDigest(ctx, survey.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, digest.Answered)
	assert.Equal(t, 1, digest.Pending)
	// Two questions, one ack, one reminder.
	assert.Equal(t, 4, digest.SendCount)

	require.Len(t, digest.Rows, 2)
	byName := map[string]primary.DigestRow{}
	for _, row := range digest.Rows {
		byName[row.DisplayName] = row
	}
	assert.Equal(t, "Shipped the parser", byName["Alice"].Answer)
	assert.Equal(t, 0, byName["Alice"].RemindersSent)
	assert.Empty(t, byName["Bob"].Answer)
	assert.Equal(t, 1, byName["Bob"].RemindersSent)
	assert.True(t, byName["Bob"].Delivered)
}
