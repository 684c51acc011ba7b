package db

// SchemaSQL is the complete schema for fresh installs.
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All tests use
// it via GetSchemaSQL(); do not hardcode CREATE TABLE statements in test
// files. Repository code referencing a column that is missing here fails
// immediately with "no such column" at test time.
//
// Every DATETIME value is written in UTC by the repository layer. The
// (survey_id, user_id[, stage]) uniqueness constraints below are what the
// orchestrator's idempotence and CAS guarantees hang off; do not relax them.
const SchemaSQL = `
-- User directory. chat_id is NULL until the user registered on the
-- transport; such users are never part of any audience.
CREATE TABLE IF NOT EXISTS users (
	user_id INTEGER PRIMARY KEY AUTOINCREMENT,
	chat_id TEXT UNIQUE,
	display_name TEXT NOT NULL,
	role TEXT NOT NULL CHECK(role IN ('worker', 'lead', 'manager', 'admin')) DEFAULT 'worker',
	external_identity TEXT,
	created_at DATETIME NOT NULL
);

-- Surveys. audience_role is NULL for an 'all' audience. delivered_at is
-- set once fan-out completed (zero-recipient surveys included).
CREATE TABLE IF NOT EXISTS surveys (
	survey_id INTEGER PRIMARY KEY AUTOINCREMENT,
	question TEXT NOT NULL,
	fire_at DATETIME NOT NULL,
	audience_role TEXT,
	state TEXT NOT NULL CHECK(state IN ('active', 'closed')) DEFAULT 'active',
	created_at DATETIME NOT NULL,
	delivered_at DATETIME
);

-- Delivery ledger: one row per (survey, recipient), created on the first
-- send attempt. delivered_at stays NULL for attempted-but-failed sends.
CREATE TABLE IF NOT EXISTS deliveries (
	survey_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	delivered_at DATETIME,
	attempts INTEGER NOT NULL DEFAULT 1,
	PRIMARY KEY (survey_id, user_id),
	FOREIGN KEY (survey_id) REFERENCES surveys(survey_id),
	FOREIGN KEY (user_id) REFERENCES users(user_id)
);

-- Reminder ladder. status transitions pending→sent / pending→cancelled
-- only, enforced by CAS updates in the repository.
CREATE TABLE IF NOT EXISTS reminders (
	survey_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	stage INTEGER NOT NULL CHECK(stage >= 1),
	due_at DATETIME NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('pending', 'sent', 'cancelled')) DEFAULT 'pending',
	PRIMARY KEY (survey_id, user_id, stage),
	FOREIGN KEY (survey_id) REFERENCES surveys(survey_id),
	FOREIGN KEY (user_id) REFERENCES users(user_id)
);

CREATE INDEX IF NOT EXISTS idx_reminders_due ON reminders(status, due_at);

-- Responses: at most one per (survey, user); edits append to answer.
CREATE TABLE IF NOT EXISTS responses (
	survey_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	answer TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (survey_id, user_id),
	FOREIGN KEY (survey_id) REFERENCES surveys(survey_id),
	FOREIGN KEY (user_id) REFERENCES users(user_id)
);

-- Outbox: append-only ledger of every outbound send the orchestrator
-- attempted, one row per application-layer send.
CREATE TABLE IF NOT EXISTS outbox (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL CHECK(kind IN ('question', 'reminder', 'ack')),
	survey_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	chat_id TEXT NOT NULL,
	stage INTEGER NOT NULL DEFAULT 0,
	text TEXT NOT NULL,
	sent_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_outbox_survey ON outbox(survey_id, sent_at);

-- Tracker mirror (read-side copies of the external issue tracker).
CREATE TABLE IF NOT EXISTS tracker_projects (
	id INTEGER PRIMARY KEY,
	key TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS tracker_boards (
	id INTEGER PRIMARY KEY,
	project_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (project_id) REFERENCES tracker_projects(id)
);

CREATE TABLE IF NOT EXISTS tracker_sprints (
	id INTEGER PRIMARY KEY,
	board_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	state TEXT NOT NULL,
	starts_at DATETIME,
	ends_at DATETIME,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (board_id) REFERENCES tracker_boards(id)
);

CREATE TABLE IF NOT EXISTS tracker_tasks (
	id INTEGER PRIMARY KEY,
	key TEXT NOT NULL UNIQUE,
	sprint_id INTEGER,
	project_id INTEGER NOT NULL,
	summary TEXT NOT NULL,
	status TEXT NOT NULL,
	assignee TEXT,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (project_id) REFERENCES tracker_projects(id)
);

CREATE TABLE IF NOT EXISTS tracker_users (
	login TEXT PRIMARY KEY,
	display_name TEXT NOT NULL,
	email TEXT,
	updated_at DATETIME NOT NULL
);
`
