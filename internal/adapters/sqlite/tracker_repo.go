package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/standup/internal/models"
	"github.com/example/standup/internal/ports/secondary"
)

// TrackerRepository implements secondary.TrackerRepository with SQLite.
type TrackerRepository struct {
	db *sql.DB
}

// NewTrackerRepository creates a new SQLite tracker repository.
func NewTrackerRepository(db *sql.DB) *TrackerRepository {
	return &TrackerRepository{db: db}
}

// ApplySnapshot upserts one sync payload in a single transaction. Rows are
// keyed by the tracker's own identifiers, so re-applying the same snapshot
// is a no-op apart from updated_at.
func (r *TrackerRepository) ApplySnapshot(ctx context.Context, snap *models.TrackerSnapshot, now time.Time) (int, error) {
	now = now.UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	written := 0

	for _, p := range snap.Projects {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tracker_projects (id, key, name, updated_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET key = excluded.key, name = excluded.name, updated_at = excluded.updated_at`,
			p.ID, p.Key, p.Name, now,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to upsert project %s: %w", p.Key, err)
		}
		written++
	}

	for _, b := range snap.Boards {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tracker_boards (id, project_id, name, updated_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET project_id = excluded.project_id, name = excluded.name, updated_at = excluded.updated_at`,
			b.ID, b.ProjectID, b.Name, now,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to upsert board %d: %w", b.ID, err)
		}
		written++
	}

	for _, s := range snap.Sprints {
		var starts, ends sql.NullTime
		if s.StartsAt != nil {
			starts = sql.NullTime{Time: s.StartsAt.UTC(), Valid: true}
		}
		if s.EndsAt != nil {
			ends = sql.NullTime{Time: s.EndsAt.UTC(), Valid: true}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tracker_sprints (id, board_id, name, state, starts_at, ends_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET board_id = excluded.board_id, name = excluded.name, state = excluded.state,
				starts_at = excluded.starts_at, ends_at = excluded.ends_at, updated_at = excluded.updated_at`,
			s.ID, s.BoardID, s.Name, s.State, starts, ends, now,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to upsert sprint %d: %w", s.ID, err)
		}
		written++
	}

	for _, t := range snap.Tasks {
		var sprintID sql.NullInt64
		if t.SprintID != nil {
			sprintID = sql.NullInt64{Int64: *t.SprintID, Valid: true}
		}
		var assignee sql.NullString
		if t.Assignee != "" {
			assignee = sql.NullString{String: t.Assignee, Valid: true}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tracker_tasks (id, key, sprint_id, project_id, summary, status, assignee, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET key = excluded.key, sprint_id = excluded.sprint_id, project_id = excluded.project_id,
				summary = excluded.summary, status = excluded.status, assignee = excluded.assignee, updated_at = excluded.updated_at`,
			t.ID, t.Key, sprintID, t.ProjectID, t.Summary, t.Status, assignee, now,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to upsert task %s: %w", t.Key, err)
		}
		written++
	}

	for _, u := range snap.Users {
		var email sql.NullString
		if u.Email != "" {
			email = sql.NullString{String: u.Email, Valid: true}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tracker_users (login, display_name, email, updated_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(login) DO UPDATE SET display_name = excluded.display_name, email = excluded.email, updated_at = excluded.updated_at`,
			u.Login, u.DisplayName, email, now,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to upsert tracker user %s: %w", u.Login, err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return written, nil
}

// ListProjects retrieves the mirrored projects.
func (r *TrackerRepository) ListProjects(ctx context.Context) ([]*models.TrackerProject, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, key, name, updated_at FROM tracker_projects ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.TrackerProject
	for rows.Next() {
		p := &models.TrackerProject{}
		if err := rows.Scan(&p.ID, &p.Key, &p.Name, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		p.UpdatedAt = p.UpdatedAt.UTC()
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// ListTasksByAssignee retrieves mirrored tasks for a tracker login.
func (r *TrackerRepository) ListTasksByAssignee(ctx context.Context, login string) ([]*models.TrackerTask, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, key, sprint_id, project_id, summary, status, assignee, updated_at FROM tracker_tasks WHERE assignee = ? ORDER BY key ASC`,
		login,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.TrackerTask
	for rows.Next() {
		t := &models.TrackerTask{}
		var sprintID sql.NullInt64
		var assignee sql.NullString
		if err := rows.Scan(&t.ID, &t.Key, &sprintID, &t.ProjectID, &t.Summary, &t.Status, &assignee, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		if sprintID.Valid {
			id := sprintID.Int64
			t.SprintID = &id
		}
		t.Assignee = assignee.String
		t.UpdatedAt = t.UpdatedAt.UTC()
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Ensure TrackerRepository implements the interface
var _ secondary.TrackerRepository = (*TrackerRepository)(nil)
