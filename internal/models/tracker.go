package models

import "time"

// TrackerSnapshot is one export of the external issue tracker, the unit the
// mirror syncs. Field names follow the tracker's JSON export format.
type TrackerSnapshot struct {
	Projects []TrackerProject `json:"projects"`
	Boards   []TrackerBoard   `json:"boards"`
	Sprints  []TrackerSprint  `json:"sprints"`
	Tasks    []TrackerTask    `json:"tasks"`
	Users    []TrackerUser    `json:"users"`
}

// TrackerProject mirrors one tracker project.
type TrackerProject struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"-"`
}

// TrackerBoard mirrors one board inside a project.
type TrackerBoard struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"-"`
}

// TrackerSprint mirrors one sprint. Start and end are nil for backlog
// sprints the tracker has not scheduled.
type TrackerSprint struct {
	ID        int64      `json:"id"`
	BoardID   int64      `json:"board_id"`
	Name      string     `json:"name"`
	State     string     `json:"state"`
	StartsAt  *time.Time `json:"starts_at"`
	EndsAt    *time.Time `json:"ends_at"`
	UpdatedAt time.Time  `json:"-"`
}

// TrackerTask mirrors one task. SprintID is nil for backlog tasks and
// Assignee is empty for unassigned ones.
type TrackerTask struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	SprintID  *int64    `json:"sprint_id"`
	ProjectID int64     `json:"project_id"`
	Summary   string    `json:"summary"`
	Status    string    `json:"status"`
	Assignee  string    `json:"assignee"`
	UpdatedAt time.Time `json:"-"`
}

// TrackerUser mirrors one tracker account.
type TrackerUser struct {
	Login       string    `json:"login"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	UpdatedAt   time.Time `json:"-"`
}
