package models

import "time"

// Reminder statuses. The only transitions are pending→sent and
// pending→cancelled; both sent and cancelled are terminal.
const (
	ReminderPending   = "pending"
	ReminderSent      = "sent"
	ReminderCancelled = "cancelled"
)

// Reminder is one rung of the escalation ladder for a (survey, user) pair.
// Stage starts at 1 and due times grow with the stage.
type Reminder struct {
	SurveyID int64
	UserID   int64
	Stage    int
	DueAt    time.Time
	Status   string
}

// DueReminder is a pending rung joined with the recipient's chat id, the
// shape the reminder engine consumes.
type DueReminder struct {
	Reminder
	ChatID string
}

// Delivery is the attempt record for one (survey, recipient). DeliveredAt
// is nil when every attempt so far failed.
type Delivery struct {
	SurveyID    int64
	UserID      int64
	DeliveredAt *time.Time
	Attempts    int
}
