package repository

import "context"

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		display_name TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		size TEXT NOT NULL,
		points INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		confidence INTEGER NOT NULL,
		similar_tasks JSONB,
		feedback TEXT,
		session_id TEXT,
		is_finalized BOOLEAN NOT NULL DEFAULT FALSE,
		votes JSONB,
		average_size TEXT NOT NULL,
		average_points INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS tasks_session_id_idx ON tasks (session_id)`,
	`CREATE INDEX IF NOT EXISTS tasks_is_finalized_idx ON tasks (is_finalized)`,
}

// InitSchema creates the tables and indexes if they do not exist yet.
func (r *PostgresStore) InitSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
