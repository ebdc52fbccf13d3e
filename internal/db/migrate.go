package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Schema statements are applied one by one because the pool uses the
// extended protocol, which rejects multi-statement commands.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		display_name TEXT NOT NULL,
		verified BOOLEAN NOT NULL DEFAULT FALSE,
		suspended BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS emails (
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		address TEXT NOT NULL,
		is_primary BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (user_id, address)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_emails_address ON emails (lower(address))`,

	`CREATE TABLE IF NOT EXISTS jobs (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id),
		status TEXT NOT NULL DEFAULT 'new',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS threads (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id),
		job_id INTEGER REFERENCES jobs(id),
		status TEXT NOT NULL DEFAULT 'active',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	// One active thread per user and job. NULL job ids collapse to 0 so
	// the general thread is covered by the same constraint.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_threads_one_active
		ON threads (user_id, COALESCE(job_id, 0)) WHERE status = 'active'`,

	`CREATE TABLE IF NOT EXISTS messages (
		id SERIAL PRIMARY KEY,
		thread_id INTEGER NOT NULL REFERENCES threads(id) ON DELETE CASCADE,
		content TEXT NOT NULL,
		subject TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL,
		sender TEXT NOT NULL,
		sender_email TEXT,
		status TEXT NOT NULL DEFAULT 'unseen',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_messages_thread ON messages (thread_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS auto_reply_rules (
		id SERIAL PRIMARY KEY,
		enabled BOOLEAN NOT NULL DEFAULT TRUE,
		priority INTEGER NOT NULL DEFAULT 100,
		rule_type TEXT NOT NULL,
		start_date DATE,
		end_date DATE,
		day_mask INTEGER NOT NULL DEFAULT 0,
		start_minute SMALLINT,
		end_minute SMALLINT,
		subject TEXT NOT NULL DEFAULT '',
		body TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS response_drafts (
		id SERIAL PRIMARY KEY,
		thread_id INTEGER NOT NULL REFERENCES threads(id) ON DELETE CASCADE,
		content TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS notification_logs (
		id SERIAL PRIMARY KEY,
		kind TEXT NOT NULL,
		entity_id INTEGER NOT NULL,
		recipient TEXT NOT NULL,
		subject TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_notification_logs_entity ON notification_logs (kind, entity_id)`,
}

// Migrate applies the schema. Every statement is idempotent, so running
// it on every startup is safe.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	logger.Info("Database schema is up to date", zap.Int("statements", len(schemaStatements)))
	return nil
}
