package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	conn.SetMaxOpenConns(10)
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return conn, nil
}

// migrations are idempotent so startup can run them unconditionally. The seq
// columns give alternatives and votes a stable insertion order without
// leaning on timestamps.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users (id)
	)`,
	`CREATE TABLE IF NOT EXISTS issues (
		id UUID PRIMARY KEY,
		seq BIGSERIAL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT 'notstarted',
		max_voters INTEGER NOT NULL DEFAULT 10,
		show_distribution BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS alternatives (
		id UUID PRIMARY KEY,
		seq BIGSERIAL,
		issue_id UUID NOT NULL REFERENCES issues (id),
		title TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS votes (
		id UUID PRIMARY KEY,
		seq BIGSERIAL,
		alternative_id UUID NOT NULL REFERENCES alternatives (id),
		issue_id UUID NOT NULL REFERENCES issues (id),
		user_id UUID NOT NULL,
		UNIQUE (issue_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS audit_events (
		seq BIGSERIAL PRIMARY KEY,
		event_type TEXT NOT NULL,
		actor TEXT NOT NULL DEFAULT '',
		subject TEXT NOT NULL DEFAULT '',
		occurred_at TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate applies the schema. Safe to call on every startup.
func Migrate(ctx context.Context, conn *sql.DB) error {
	for _, stmt := range migrations {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
