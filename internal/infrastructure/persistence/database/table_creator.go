package database

import (
	"context"
	"fmt"
	"log/slog"
)

// tableDefinitions are applied in order on startup. All statements are
// idempotent so repeated boots are safe.
var tableDefinitions = []struct {
	name string
	ddl  string
}{
	{
		name: "universities",
		ddl: `CREATE TABLE IF NOT EXISTS universities (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			city TEXT NOT NULL DEFAULT '',
			aliases TEXT NOT NULL DEFAULT '[]'
		)`,
	},
	{
		name: "departments",
		ddl: `CREATE TABLE IF NOT EXISTS departments (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			aliases TEXT NOT NULL DEFAULT '[]'
		)`,
	},
	{
		name: "score_records",
		ddl: `CREATE TABLE IF NOT EXISTS score_records (
			id TEXT PRIMARY KEY,
			university TEXT NOT NULL,
			department TEXT NOT NULL,
			score_type TEXT NOT NULL,
			year INTEGER NOT NULL,
			min_score REAL NOT NULL,
			min_rank INTEGER NOT NULL DEFAULT 0,
			quota INTEGER NOT NULL DEFAULT 0,
			imported_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(university, department, score_type, year)
		)`,
	},
	{
		name: "chat_sessions",
		ddl: `CREATE TABLE IF NOT EXISTS chat_sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_activity TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	{
		name: "chat_messages",
		ddl: `CREATE TABLE IF NOT EXISTS chat_messages (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			body TEXT NOT NULL,
			intent TEXT NOT NULL DEFAULT '',
			entities TEXT NOT NULL DEFAULT '{}',
			confidence REAL NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(session_id) REFERENCES chat_sessions(id)
		)`,
	},
}

var indexDefinitions = []string{
	`CREATE INDEX IF NOT EXISTS idx_score_records_placement
		ON score_records(university, department)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_messages_session
		ON chat_messages(session_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_sessions_activity
		ON chat_sessions(last_activity)`,
}

// CreateTables applies the schema and indexes
func (d *Database) CreateTables(ctx context.Context) error {
	for _, table := range tableDefinitions {
		if _, err := d.Exec(ctx, table.ddl); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	for _, ddl := range indexDefinitions {
		if _, err := d.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	if d.logger != nil {
		d.logger.Database().Info("Schema verified",
			slog.Int("tables", len(tableDefinitions)),
			slog.Int("indexes", len(indexDefinitions)))
	}
	return nil
}
