package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied at startup. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS candidates (
		id                  UUID PRIMARY KEY,
		full_name           VARCHAR(255) NOT NULL,
		email               VARCHAR(254) NOT NULL,
		date_of_birth       DATE NOT NULL,
		years_of_experience INTEGER NOT NULL CHECK (years_of_experience >= 0),
		department          VARCHAR(20) NOT NULL CHECK (department IN ('IT', 'HR', 'FINANCE')),
		resume_key          TEXT NOT NULL,
		resume_filename     TEXT NOT NULL,
		resume_content_type TEXT NOT NULL,
		resume_size         BIGINT NOT NULL,
		current_status      VARCHAR(30) NOT NULL DEFAULT 'SUBMITTED',
		version             BIGINT NOT NULL DEFAULT 1,
		created_at          TIMESTAMPTZ NOT NULL,
		updated_at          TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_candidates_email ON candidates (email)`,
	`CREATE INDEX IF NOT EXISTS idx_candidates_listing ON candidates (created_at DESC, id DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_candidates_department ON candidates (department)`,
	`CREATE TABLE IF NOT EXISTS status_changes (
		id              UUID PRIMARY KEY,
		candidate_id    UUID NOT NULL REFERENCES candidates (id) ON DELETE CASCADE,
		position        BIGINT NOT NULL,
		previous_status VARCHAR(30),
		new_status      VARCHAR(30) NOT NULL,
		feedback        TEXT NOT NULL DEFAULT '',
		admin_user      VARCHAR(150) NOT NULL DEFAULT '',
		created_at      TIMESTAMPTZ NOT NULL,
		UNIQUE (candidate_id, position)
	)`,
}

// EnsureSchema creates the tables and indexes if they are missing.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	for i, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
