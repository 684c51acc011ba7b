package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/example/standup/internal/adapters/sqlite"
	"github.com/example/standup/internal/ports/secondary"
)

func TestOutboxAppendAssignsID(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewOutboxRepository(testDB)
	ctx := context.Background()

	fireAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	userID := seedUser(t, testDB, "chat-1", "Alice", "")
	surveyID := seedSurvey(t, testDB, "", fireAt, "", "")

	entry := &secondary.OutboxEntry{
		Kind:     secondary.OutboxQuestion,
		SurveyID: surveyID,
		UserID:   userID,
		ChatID:   "chat-1",
		Text:     "What did you do today?",
		SentAt:   fireAt,
	}
	if err := repo.Append(ctx, entry); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if entry.ID == "" {
		t.Error("expected an assigned id")
	}
}

func TestOutboxListBySurveyOrder(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewOutboxRepository(testDB)
	ctx := context.Background()

	fireAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	userID := seedUser(t, testDB, "chat-1", "Alice", "")
	surveyID := seedSurvey(t, testDB, "", fireAt, "", "")
	other := seedSurvey(t, testDB, "", fireAt, "", "")

	sends := []struct {
		kind   string
		stage  int
		sentAt time.Time
	}{
		{secondary.OutboxQuestion, 0, fireAt},
		{secondary.OutboxReminder, 1, fireAt.Add(31 * time.Second)},
		{secondary.OutboxReminder, 2, fireAt.Add(61 * time.Second)},
	}
	for _, s := range sends {
		err := repo.Append(ctx, &secondary.OutboxEntry{
			Kind:     s.kind,
			SurveyID: surveyID,
			UserID:   userID,
			ChatID:   "chat-1",
			Stage:    s.stage,
			Text:     "msg",
			SentAt:   s.sentAt,
		})
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	err := repo.Append(ctx, &secondary.OutboxEntry{
		Kind:     secondary.OutboxQuestion,
		SurveyID: other,
		UserID:   userID,
		ChatID:   "chat-1",
		Text:     "other",
		SentAt:   fireAt,
	})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	entries, err := repo.ListBySurvey(ctx, surveyID)
	if err != nil {
		t.Fatalf("ListBySurvey failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Kind != secondary.OutboxQuestion {
		t.Errorf("expected the question first, got %s", entries[0].Kind)
	}
	if entries[1].Stage != 1 || entries[2].Stage != 2 {
		t.Errorf("expected reminder stages in send order, got [%d %d]", entries[1].Stage, entries[2].Stage)
	}
}
