package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/example/standup/internal/apperr"
	"github.com/example/standup/internal/models"
	"github.com/example/standup/internal/ports/primary"
	"github.com/example/standup/internal/ports/secondary"
)

// trackerMaxSnapshot caps a snapshot payload at 32 MiB.
const trackerMaxSnapshot = 32 << 20

// TrackerServiceImpl implements the TrackerService interface: a thin
// batch mirror of the external issue tracker. The orchestrator only reads
// the mirror tables.
type TrackerServiceImpl struct {
	tracker secondary.TrackerRepository
	clock   secondary.Clock
	client  *http.Client
	log     *slog.Logger
}

// NewTrackerService creates a new TrackerService with injected
// dependencies. A nil client falls back to http.DefaultClient.
func NewTrackerService(tracker secondary.TrackerRepository, clock secondary.Clock, client *http.Client, log *slog.Logger) *TrackerServiceImpl {
	if client == nil {
		client = http.DefaultClient
	}
	return &TrackerServiceImpl{tracker: tracker, clock: clock, client: client, log: log}
}

// Sync fetches one snapshot from a file path or http(s) URL and upserts it
// into the mirror. Re-running with the same snapshot changes nothing but
// the updated_at stamps.
func (s *TrackerServiceImpl) Sync(ctx context.Context, source string) (*primary.SyncResult, error) {
	data, err := s.fetch(ctx, source)
	if err != nil {
		return nil, err
	}

	var snap models.TrackerSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, apperr.New(apperr.KindValidation, "unusable snapshot from %s: %v", source, err)
	}

	written, err := s.tracker.ApplySnapshot(ctx, &snap, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to apply snapshot: %w", err)
	}

	s.log.Info("tracker mirror refreshed", "source", source, "rows", written)
	return &primary.SyncResult{Source: source, RowsWritten: written}, nil
}

// ListProjects lists the mirrored projects.
func (s *TrackerServiceImpl) ListProjects(ctx context.Context) ([]*primary.TrackerProject, error) {
	projects, err := s.tracker.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	out := make([]*primary.TrackerProject, len(projects))
	for i, p := range projects {
		out[i] = &primary.TrackerProject{
			ID:        p.ID,
			Key:       p.Key,
			Name:      p.Name,
			UpdatedAt: formatTime(p.UpdatedAt),
		}
	}
	return out, nil
}

func (s *TrackerServiceImpl) fetch(ctx context.Context, source string) ([]byte, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, apperr.New(apperr.KindValidation, "invalid source %s: %v", source, err)
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch snapshot: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("snapshot fetch returned %s", resp.Status)
		}
		data, err := io.ReadAll(io.LimitReader(resp.Body, trackerMaxSnapshot))
		if err != nil {
			return nil, fmt.Errorf("failed to read snapshot: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	return data, nil
}

// Ensure TrackerServiceImpl implements the interface
var _ primary.TrackerService = (*TrackerServiceImpl)(nil)
