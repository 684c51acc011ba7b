// Package secondary defines the secondary ports (driven adapters) for the
// application. These are the interfaces through which the orchestrator
// drives the store and the chat transport.
package secondary

import (
	"context"
	"time"

	"github.com/example/standup/internal/models"
)

// SurveyRepository defines the secondary port for survey persistence.
type SurveyRepository interface {
	// Create persists a new survey and returns its id. Ids are
	// monotonically increasing.
	Create(ctx context.Context, question string, fireAt time.Time, audience models.Audience) (int64, error)

	// GetByID retrieves a survey by its id.
	GetByID(ctx context.Context, id int64) (*models.Survey, error)

	// ListActive retrieves every survey in state 'active', ordered by
	// fire_at ascending.
	ListActive(ctx context.Context) ([]*models.Survey, error)

	// MarkDelivered records that the fan-out for a survey completed.
	// Idempotent: the first call wins, later calls are no-ops.
	MarkDelivered(ctx context.Context, id int64, at time.Time) error

	// Close transitions a survey active→closed. Closing an already
	// closed survey is a no-op.
	Close(ctx context.Context, id int64) error
}

// ReminderRepository is the delivery and reminder ledger for a survey's
// recipients.
type ReminderRepository interface {
	// RecordDelivery records the first send attempt for (survey, user).
	// Idempotent on the pair: a second call only bumps the attempt
	// counter and never overwrites delivered_at.
	RecordDelivery(ctx context.Context, surveyID, userID int64, deliveredAt *time.Time) error

	// GetDelivery retrieves the delivery row for (survey, user), or nil
	// when no attempt has been recorded.
	GetDelivery(ctx context.Context, surveyID, userID int64) (*models.Delivery, error)

	// ListDeliveries retrieves every delivery row for a survey.
	ListDeliveries(ctx context.Context, surveyID int64) ([]*models.Delivery, error)

	// UpsertReminder seeds one ladder rung with status pending.
	// Idempotent on (survey, user, stage).
	UpsertReminder(ctx context.Context, surveyID, userID int64, stage int, dueAt time.Time) error

	// MarkReminder transitions a rung pending→sent or pending→cancelled
	// via CAS. Any other transition is rejected with an
	// invariant-violation error.
	MarkReminder(ctx context.Context, surveyID, userID int64, stage int, status string) error

	// CancelPending atomically cancels every pending rung for
	// (survey, user) and returns how many were cancelled.
	CancelPending(ctx context.Context, surveyID, userID int64) (int, error)

	// ListDue returns pending rungs with due_at <= now whose survey is
	// active and whose (survey, user) has no response, ordered by
	// due_at ascending.
	ListDue(ctx context.Context, now time.Time) ([]*models.DueReminder, error)

	// ListBySurveyUser retrieves every rung for (survey, user) in stage
	// order, for audit.
	ListBySurveyUser(ctx context.Context, surveyID, userID int64) ([]*models.Reminder, error)
}

// ResponseRepository defines the secondary port for answer persistence.
type ResponseRepository interface {
	// Save creates the response row for (survey, user) or, when one
	// exists, appends answer behind a timestamped marker. Atomic.
	// Returns the resulting row.
	Save(ctx context.Context, surveyID, userID int64, answer string, now time.Time) (*models.Response, error)

	// Get retrieves the response for (survey, user), or nil when the
	// recipient has not answered.
	Get(ctx context.Context, surveyID, userID int64) (*models.Response, error)

	// ListBySurvey retrieves every response for a survey.
	ListBySurvey(ctx context.Context, surveyID int64) ([]*models.Response, error)

	// ListAnsweredBy retrieves the responses a user has recorded since
	// the given instant, newest first.
	ListAnsweredBy(ctx context.Context, userID int64, since time.Time) ([]*models.Response, error)
}

// UserRepository defines the secondary port for the user directory.
// The orchestrator only reads it; writes come from the admin surface.
type UserRepository interface {
	// Create persists a new user and returns its id.
	Create(ctx context.Context, user *models.User) (int64, error)

	// GetByID retrieves a user by id.
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByChatID retrieves the user registered under a chat id, or nil.
	GetByChatID(ctx context.Context, chatID string) (*models.User, error)

	// SetRole updates a user's role tag.
	SetRole(ctx context.Context, id int64, role string) error

	// ListWithChat retrieves every user with a chat id set.
	ListWithChat(ctx context.Context) ([]*models.User, error)

	// ListByRoleWithChat retrieves users with the given role and a chat
	// id set.
	ListByRoleWithChat(ctx context.Context, role string) ([]*models.User, error)

	// ListAll retrieves the whole directory, for the admin surface.
	ListAll(ctx context.Context) ([]*models.User, error)
}

// OutboxEntry is one outbound send as recorded in the transport ledger.
type OutboxEntry struct {
	ID       string // uuid
	Kind     string // 'question', 'reminder', 'ack'
	SurveyID int64
	UserID   int64
	ChatID   string
	Stage    int // 0 for non-reminder sends
	Text     string
	SentAt   time.Time
}

// Outbox kinds.
const (
	OutboxQuestion = "question"
	OutboxReminder = "reminder"
	OutboxAck      = "ack"
)

// OutboxRepository is the append-only ledger of every outbound send the
// orchestrator attempted. One row per application-layer send.
type OutboxRepository interface {
	// Append records one outbound send.
	Append(ctx context.Context, entry *OutboxEntry) error

	// ListBySurvey retrieves the sends for a survey in sent_at order.
	ListBySurvey(ctx context.Context, surveyID int64) ([]*OutboxEntry, error)
}

// TrackerRepository mirrors the external issue tracker. Every write is an
// idempotent upsert keyed by the tracker's own identifiers.
type TrackerRepository interface {
	// ApplySnapshot upserts one decoded sync payload in a single
	// transaction and returns the number of rows written.
	ApplySnapshot(ctx context.Context, snap *models.TrackerSnapshot, now time.Time) (int, error)

	// ListProjects retrieves the mirrored projects.
	ListProjects(ctx context.Context) ([]*models.TrackerProject, error)

	// ListTasksByAssignee retrieves mirrored tasks for a tracker login.
	ListTasksByAssignee(ctx context.Context, login string) ([]*models.TrackerTask, error)
}
