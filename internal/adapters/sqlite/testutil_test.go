// Package sqlite_test contains integration tests for SQLite repositories.
//
// This file is the single point where the database schema is loaded for
// tests. All test setup uses db.GetSchemaSQL() so tests run against the
// authoritative schema; do not hardcode CREATE TABLE statements in test
// files.
package sqlite_test

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/standup/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// Every pooled connection would get its own empty in-memory database.
	testDB.SetMaxOpenConns(1)

	// Use the authoritative schema from schema.go
	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedUser inserts a test user and returns its id. An empty chatID stores
// NULL (the user is outside every audience).
func seedUser(t *testing.T, db *sql.DB, chatID, name, role string) int64 {
	t.Helper()
	if name == "" {
		name = "Test User"
	}
	if role == "" {
		role = "worker"
	}
	var chat any
	if chatID != "" {
		chat = chatID
	}
	res, err := db.Exec(
		"INSERT INTO users (chat_id, display_name, role, created_at) VALUES (?, ?, ?, ?)",
		chat, name, role, time.Now().UTC(),
	)
	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// seedSurvey inserts a test survey and returns its id. An empty role means
// an 'all' audience.
func seedSurvey(t *testing.T, db *sql.DB, question string, fireAt time.Time, role, state string) int64 {
	t.Helper()
	if question == "" {
		question = "What did you do today?"
	}
	if state == "" {
		state = "active"
	}
	var audience any
	if role != "" {
		audience = role
	}
	res, err := db.Exec(
		"INSERT INTO surveys (question, fire_at, audience_role, state, created_at) VALUES (?, ?, ?, ?, ?)",
		question, fireAt.UTC(), audience, state, time.Now().UTC(),
	)
	if err != nil {
		t.Fatalf("failed to seed survey: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}
