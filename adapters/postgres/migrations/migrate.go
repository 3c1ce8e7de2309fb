// Package migrations applies the statflow schema.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied idempotently; every statement is IF NOT EXISTS
var schema = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'draft',
		dataset_id TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_owner ON projects (owner_id)`,

	`CREATE TABLE IF NOT EXISTS datasets (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects (id),
		source_ref TEXT NOT NULL,
		record_count INTEGER,
		field_count INTEGER,
		profiles JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_datasets_project ON datasets (project_id)`,

	`CREATE TABLE IF NOT EXISTS variable_groups (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects (id),
		name TEXT NOT NULL,
		group_type TEXT NOT NULL,
		display_order INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_variable_groups_project ON variable_groups (project_id)`,

	`CREATE TABLE IF NOT EXISTS variables (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects (id),
		column_name TEXT NOT NULL,
		semantic_name TEXT,
		is_demographic BOOLEAN NOT NULL DEFAULT FALSE,
		demographic_type TEXT,
		group_id TEXT REFERENCES variable_groups (id) ON DELETE SET NULL,
		role_tags JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (project_id, column_name)
	)`,

	`CREATE TABLE IF NOT EXISTS demographic_ranks (
		variable_id TEXT NOT NULL REFERENCES variables (id) ON DELETE CASCADE,
		rank_order INTEGER NOT NULL,
		label TEXT NOT NULL,
		min_value DOUBLE PRECISION NOT NULL DEFAULT 0,
		max_value DOUBLE PRECISION NOT NULL DEFAULT 0,
		open_lower BOOLEAN NOT NULL DEFAULT FALSE,
		open_upper BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (variable_id, rank_order)
	)`,

	`CREATE TABLE IF NOT EXISTS demographic_categories (
		variable_id TEXT NOT NULL REFERENCES variables (id) ON DELETE CASCADE,
		order_index INTEGER NOT NULL,
		raw_value TEXT NOT NULL,
		display_label TEXT NOT NULL,
		PRIMARY KEY (variable_id, order_index)
	)`,

	`CREATE TABLE IF NOT EXISTS analysis_results (
		project_id TEXT NOT NULL REFERENCES projects (id),
		analysis_type TEXT NOT NULL,
		result JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (project_id, analysis_type)
	)`,

	`CREATE TABLE IF NOT EXISTS analysis_configs (
		project_id TEXT NOT NULL REFERENCES projects (id),
		analysis_type TEXT NOT NULL,
		config JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (project_id, analysis_type)
	)`,
}

// Migrator applies the schema
type Migrator struct {
	db *sql.DB
}

// NewMigrator creates a new migrator
func NewMigrator(db *sql.DB) *Migrator {
	return &Migrator{db: db}
}

// Up applies all schema statements
func (m *Migrator) Up(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
