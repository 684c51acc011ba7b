package models

import "time"

// Survey states. Closed is terminal.
const (
	SurveyStateActive = "active"
	SurveyStateClosed = "closed"
)

// AudienceKind tags the audience variant.
type AudienceKind string

const (
	// AudienceAll targets every user with a chat id.
	AudienceAll AudienceKind = "all"
	// AudienceRole targets users carrying one role tag.
	AudienceRole AudienceKind = "role"
)

// Audience is a tagged selector over the user directory. Role is set only
// for the role kind.
type Audience struct {
	Kind AudienceKind
	Role string
}

// EveryoneAudience returns the 'all' audience.
func EveryoneAudience() Audience {
	return Audience{Kind: AudienceAll}
}

// AudienceOfRole returns an audience restricted to one role tag.
func AudienceOfRole(role string) Audience {
	return Audience{Kind: AudienceRole, Role: role}
}

// String renders the audience for logs and listings.
func (a Audience) String() string {
	if a.Kind == AudienceRole {
		return "role:" + a.Role
	}
	return "all"
}

// Survey is one scheduled question. DeliveredAt is nil until fan-out
// completed, including for surveys whose audience resolved empty.
type Survey struct {
	ID          int64
	Question    string
	FireAt      time.Time
	Audience    Audience
	State       string
	CreatedAt   time.Time
	DeliveredAt *time.Time
}

// Active reports whether the survey still accepts answers and reminders.
func (s *Survey) Active() bool {
	return s.State == SurveyStateActive
}
