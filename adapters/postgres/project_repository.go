package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"statflow/domain/core"
	"statflow/domain/project"
	"statflow/internal/errors"
	"statflow/ports"
)

// projectRepository implements the ProjectRepository interface
type projectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sqlx.DB) ports.ProjectRepository {
	return &projectRepository{db: db}
}

// Create inserts a new project
func (r *projectRepository) Create(ctx context.Context, p *project.Project) error {
	query := `INSERT INTO projects (id, owner_id, name, status, dataset_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.OwnerID, p.Name, p.Status, p.DatasetID, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// GetOwned retrieves a project scoped by owner. A project that exists but
// belongs to someone else surfaces as NotFound, never Forbidden, so callers
// cannot probe for existence.
func (r *projectRepository) GetOwned(ctx context.Context, id core.ProjectID, owner core.OwnerID) (*project.Project, error) {
	query := `SELECT id, owner_id, name, status, COALESCE(dataset_id, '') as dataset_id, created_at, updated_at
		FROM projects WHERE id = $1 AND owner_id = $2`

	var p project.Project
	err := r.db.QueryRowContext(ctx, query, id, owner).Scan(
		&p.ID, &p.OwnerID, &p.Name, &p.Status, &p.DatasetID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("project")
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &p, nil
}

// UpdateStatus sets the project lifecycle status
func (r *projectRepository) UpdateStatus(ctx context.Context, id core.ProjectID, status project.Status) error {
	query := `UPDATE projects SET status = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check status update: %w", err)
	}
	if affected == 0 {
		return errors.NotFound("project")
	}
	return nil
}
