package app

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/standup/internal/adapters/sqlite"
	"github.com/example/standup/internal/adapters/transport"
	"github.com/example/standup/internal/db"
	"github.com/example/standup/internal/models"
)

// fakeClock is a settable clock. After fires immediately at now+d, which is
// fine here: the tests drive the loop bodies directly rather than Run.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- c.Now().Add(d)
	return ch
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// testEnv wires the orchestrator components over a real in-memory store
// and a recording transport. Store semantics (CAS, upserts, the due scan)
// are part of what these tests exercise, so nothing is mocked.
type testEnv struct {
	db        *sql.DB
	surveys   *sqlite.SurveyRepository
	reminders *sqlite.ReminderRepository
	responses *sqlite.ResponseRepository
	users     *sqlite.UserRepository
	outbox    *sqlite.OutboxRepository
	tracker   *sqlite.TrackerRepository
	transport *transport.Memory
	clock     *fakeClock
	resolver  *AudienceResolver
	log       *slog.Logger

	schedule []time.Duration
}

const testSendDeadline = 5 * time.Second

func newTestEnv(t *testing.T, start time.Time) *testEnv {
	t.Helper()

	conn, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	_, err = conn.Exec(db.GetSchemaSQL())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	users := sqlite.NewUserRepository(conn)
	env := &testEnv{
		db:        conn,
		surveys:   sqlite.NewSurveyRepository(conn),
		reminders: sqlite.NewReminderRepository(conn),
		responses: sqlite.NewResponseRepository(conn),
		users:     users,
		outbox:    sqlite.NewOutboxRepository(conn),
		tracker:   sqlite.NewTrackerRepository(conn),
		transport: transport.NewMemory(),
		clock:     newFakeClock(start),
		resolver:  NewAudienceResolver(users),
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		schedule:  []time.Duration{30 * time.Second, 60 * time.Second},
	}
	return env
}

func (e *testEnv) newWorker() *DeliveryWorker {
	return NewDeliveryWorker(e.surveys, e.reminders, e.outbox, e.transport,
		e.resolver, e.clock, e.schedule, 8, testSendDeadline, e.log)
}

func (e *testEnv) newEngine() *ReminderEngine {
	return NewReminderEngine(e.surveys, e.reminders, e.responses, e.outbox,
		e.transport, e.clock, testSendDeadline, e.log)
}

func (e *testEnv) newIngestor() *ResponseIngestor {
	return NewResponseIngestor(e.surveys, e.users, e.responses, e.reminders,
		e.outbox, e.transport, e.clock, testSendDeadline, e.log)
}

func (e *testEnv) addUser(t *testing.T, chatID, name, role string) int64 {
	t.Helper()
	if role == "" {
		role = models.RoleWorker
	}
	id, err := e.users.Create(context.Background(), &models.User{
		ChatID:      chatID,
		DisplayName: name,
		Role:        role,
	})
	require.NoError(t, err)
	return id
}

func (e *testEnv) addSurvey(t *testing.T, question string, fireAt time.Time, audience models.Audience) *models.Survey {
	t.Helper()
	id, err := e.surveys.Create(context.Background(), question, fireAt, audience)
	require.NoError(t, err)
	survey, err := e.surveys.GetByID(context.Background(), id)
	require.NoError(t, err)
	return survey
}
