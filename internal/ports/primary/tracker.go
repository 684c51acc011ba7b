package primary

import "context"

// TrackerService defines the primary port for the tracker-mirror facility.
type TrackerService interface {
	// Sync fetches one snapshot from a file path or http(s) URL and
	// upserts it into the mirror tables.
	Sync(ctx context.Context, source string) (*SyncResult, error)

	// ListProjects lists the mirrored projects.
	ListProjects(ctx context.Context) ([]*TrackerProject, error)
}

// SyncResult reports one mirror refresh.
type SyncResult struct {
	Source      string
	RowsWritten int
}

// TrackerProject represents a mirrored project at the port boundary.
type TrackerProject struct {
	ID        int64
	Key       string
	Name      string
	UpdatedAt string
}
