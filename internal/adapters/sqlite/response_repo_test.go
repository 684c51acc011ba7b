package sqlite_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/example/standup/internal/adapters/sqlite"
)

func TestResponseSaveCreates(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewResponseRepository(testDB)
	ctx := context.Background()

	fireAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	userID := seedUser(t, testDB, "chat-1", "Alice", "")
	surveyID := seedSurvey(t, testDB, "", fireAt, "", "")

	answeredAt := fireAt.Add(10 * time.Second)
	resp, err := repo.Save(ctx, surveyID, userID, "Shipped the parser", answeredAt)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if resp.Answer != "Shipped the parser" {
		t.Errorf("unexpected answer %q", resp.Answer)
	}
	if !resp.CreatedAt.Equal(answeredAt) || !resp.UpdatedAt.Equal(answeredAt) {
		t.Errorf("unexpected timestamps: created %v updated %v", resp.CreatedAt, resp.UpdatedAt)
	}

	got, err := repo.Get(ctx, surveyID, userID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil || got.Answer != "Shipped the parser" {
		t.Errorf("unexpected stored response %+v", got)
	}
}

func TestResponseSaveAppends(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewResponseRepository(testDB)
	ctx := context.Background()

	fireAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	userID := seedUser(t, testDB, "chat-1", "Alice", "")
	surveyID := seedSurvey(t, testDB, "", fireAt, "", "")

	firstAt := fireAt.Add(10 * time.Second)
	if _, err := repo.Save(ctx, surveyID, userID, "Shipped the parser", firstAt); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}

	editAt := fireAt.Add(5 * time.Minute)
	resp, err := repo.Save(ctx, surveyID, userID, "Also reviewed three PRs", editAt)
	if err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	want := fmt.Sprintf("Shipped the parser\n\n[appended %s]: Also reviewed three PRs",
		editAt.Format(time.RFC3339))
	if resp.Answer != want {
		t.Errorf("unexpected appended answer:\ngot  %q\nwant %q", resp.Answer, want)
	}
	// The original answer timestamp survives the edit.
	if !resp.CreatedAt.Equal(firstAt) {
		t.Errorf("expected created_at %v, got %v", firstAt, resp.CreatedAt)
	}
	if !resp.UpdatedAt.Equal(editAt) {
		t.Errorf("expected updated_at %v, got %v", editAt, resp.UpdatedAt)
	}
}

func TestResponseMultipleAppends(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewResponseRepository(testDB)
	ctx := context.Background()

	fireAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	userID := seedUser(t, testDB, "chat-1", "Alice", "")
	surveyID := seedSurvey(t, testDB, "", fireAt, "", "")

	at := fireAt
	for _, text := range []string{"one", "two", "three"} {
		at = at.Add(time.Minute)
		if _, err := repo.Save(ctx, surveyID, userID, text, at); err != nil {
			t.Fatalf("Save %q failed: %v", text, err)
		}
	}

	got, err := repo.Get(ctx, surveyID, userID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	want := fmt.Sprintf("one\n\n[appended %s]: two\n\n[appended %s]: three",
		fireAt.Add(2*time.Minute).Format(time.RFC3339),
		fireAt.Add(3*time.Minute).Format(time.RFC3339))
	if got.Answer != want {
		t.Errorf("unexpected answer:\ngot  %q\nwant %q", got.Answer, want)
	}
}

func TestResponseGetMissing(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewResponseRepository(testDB)

	got, err := repo.Get(context.Background(), 42, 7)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for unanswered pair, got %+v", got)
	}
}

func TestResponseListBySurvey(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewResponseRepository(testDB)
	ctx := context.Background()

	fireAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	alice := seedUser(t, testDB, "chat-alice", "Alice", "")
	bob := seedUser(t, testDB, "chat-bob", "Bob", "")
	surveyID := seedSurvey(t, testDB, "", fireAt, "", "")
	other := seedSurvey(t, testDB, "", fireAt, "", "")

	at := fireAt.Add(time.Minute)
	if _, err := repo.Save(ctx, surveyID, alice, "a", at); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := repo.Save(ctx, surveyID, bob, "b", at); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := repo.Save(ctx, other, alice, "c", at); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	responses, err := repo.ListBySurvey(ctx, surveyID)
	if err != nil {
		t.Fatalf("ListBySurvey failed: %v", err)
	}
	if len(responses) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(responses))
	}
	if responses[0].UserID != alice || responses[1].UserID != bob {
		t.Errorf("unexpected order: [%d %d]", responses[0].UserID, responses[1].UserID)
	}
}

func TestResponseListAnsweredBy(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewResponseRepository(testDB)
	ctx := context.Background()

	fireAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	userID := seedUser(t, testDB, "chat-1", "Alice", "")
	old := seedSurvey(t, testDB, "", fireAt, "", "")
	recent := seedSurvey(t, testDB, "", fireAt, "", "")
	newest := seedSurvey(t, testDB, "", fireAt, "", "")

	if _, err := repo.Save(ctx, old, userID, "old", fireAt.Add(-48*time.Hour)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := repo.Save(ctx, recent, userID, "recent", fireAt.Add(-time.Hour)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := repo.Save(ctx, newest, userID, "newest", fireAt); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	responses, err := repo.ListAnsweredBy(ctx, userID, fireAt.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("ListAnsweredBy failed: %v", err)
	}
	if len(responses) != 2 {
		t.Fatalf("expected 2 responses inside the window, got %d", len(responses))
	}
	if responses[0].SurveyID != newest || responses[1].SurveyID != recent {
		t.Errorf("expected newest first, got [%d %d]", responses[0].SurveyID, responses[1].SurveyID)
	}
}
