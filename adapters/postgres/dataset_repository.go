package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"statflow/domain/core"
	"statflow/domain/dataset"
	"statflow/internal/errors"
	"statflow/ports"
)

// datasetRepository implements the DatasetRepository interface
type datasetRepository struct {
	db *sqlx.DB
}

// NewDatasetRepository creates a new dataset repository
func NewDatasetRepository(db *sqlx.DB) ports.DatasetRepository {
	return &datasetRepository{db: db}
}

// Create inserts a new dataset record
func (r *datasetRepository) Create(ctx context.Context, ds *dataset.Dataset) error {
	profilesJSON, err := json.Marshal(ds.Profiles)
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}

	query := `INSERT INTO datasets (id, project_id, source_ref, record_count, field_count, profiles, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = r.db.ExecContext(ctx, query,
		ds.ID, ds.ProjectID, ds.SourceRef, ds.RecordCount, ds.FieldCount, profilesJSON, ds.CreatedAt, ds.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create dataset: %w", err)
	}
	return nil
}

// GetByProject retrieves the dataset attached to a project
func (r *datasetRepository) GetByProject(ctx context.Context, projectID core.ProjectID) (*dataset.Dataset, error) {
	query := `SELECT id, project_id, source_ref, COALESCE(record_count, 0) as record_count,
		COALESCE(field_count, 0) as field_count, profiles, created_at, updated_at
		FROM datasets WHERE project_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	var ds dataset.Dataset
	var profilesJSON []byte

	err := r.db.QueryRowContext(ctx, query, projectID).Scan(
		&ds.ID, &ds.ProjectID, &ds.SourceRef, &ds.RecordCount, &ds.FieldCount, &profilesJSON, &ds.CreatedAt, &ds.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("dataset")
		}
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}

	if len(profilesJSON) > 0 {
		if err := json.Unmarshal(profilesJSON, &ds.Profiles); err != nil {
			return nil, fmt.Errorf("failed to unmarshal profiles: %w", err)
		}
	}
	return &ds, nil
}
