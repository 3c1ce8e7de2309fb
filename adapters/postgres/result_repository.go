package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"statflow/domain/analysis"
	"statflow/domain/core"
	"statflow/ports"
)

// resultRepository implements the ResultRepository interface
type resultRepository struct {
	db *sqlx.DB
}

// NewResultRepository creates a new result repository
func NewResultRepository(db *sqlx.DB) ports.ResultRepository {
	return &resultRepository{db: db}
}

// SaveBatch persists one batch of per-type results in a single transaction.
// Rows are keyed by (project_id, analysis_type): re-executions overwrite
// rather than accumulate.
func (r *resultRepository) SaveBatch(ctx context.Context, projectID core.ProjectID, results []analysis.Result) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin result batch: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO analysis_results (project_id, analysis_type, result, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (project_id, analysis_type)
		DO UPDATE SET result = EXCLUDED.result, created_at = EXCLUDED.created_at`

	for _, result := range results {
		payload, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to marshal %s result: %w", result.AnalysisType(), err)
		}
		if _, err := tx.ExecContext(ctx, query,
			projectID, string(result.AnalysisType()), payload, time.Now()); err != nil {
			return fmt.Errorf("failed to save %s result: %w", result.AnalysisType(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit result batch: %w", err)
	}
	return nil
}

// ListByProject returns the stored results of a project in insertion order
func (r *resultRepository) ListByProject(ctx context.Context, projectID core.ProjectID) ([]analysis.Result, error) {
	query := `SELECT result FROM analysis_results WHERE project_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []analysis.Result
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		var result analysis.Result
		if err := json.Unmarshal(payload, &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result: %w", err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

// configRepository implements the ConfigRepository interface
type configRepository struct {
	db *sqlx.DB
}

// NewConfigRepository creates a new analysis config repository
func NewConfigRepository(db *sqlx.DB) ports.ConfigRepository {
	return &configRepository{db: db}
}

// Get returns the stored configuration for a type, or nil when none exists
func (r *configRepository) Get(ctx context.Context, projectID core.ProjectID, t analysis.Type) (*analysis.Config, error) {
	query := `SELECT config FROM analysis_configs WHERE project_id = $1 AND analysis_type = $2`

	var payload []byte
	err := r.db.QueryRowContext(ctx, query, projectID, string(t)).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s config: %w", t, err)
	}

	var cfg analysis.Config
	if err := json.Unmarshal(payload, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s config: %w", t, err)
	}
	return &cfg, nil
}

// Save upserts the configuration for a type
func (r *configRepository) Save(ctx context.Context, projectID core.ProjectID, cfg analysis.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal %s config: %w", cfg.Type, err)
	}

	query := `INSERT INTO analysis_configs (project_id, analysis_type, config, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (project_id, analysis_type)
		DO UPDATE SET config = EXCLUDED.config, updated_at = EXCLUDED.updated_at`

	if _, err := r.db.ExecContext(ctx, query, projectID, string(cfg.Type), payload, time.Now()); err != nil {
		return fmt.Errorf("failed to save %s config: %w", cfg.Type, err)
	}
	return nil
}
