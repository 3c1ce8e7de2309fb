package ports

import (
	"context"

	"statflow/domain/core"
	"statflow/domain/project"
)

// ProjectRepository persists projects and their lifecycle status
type ProjectRepository interface {
	Create(ctx context.Context, p *project.Project) error
	// GetOwned returns the project only when it exists and belongs to the
	// owner; the two cases are indistinguishable to the caller.
	GetOwned(ctx context.Context, id core.ProjectID, owner core.OwnerID) (*project.Project, error)
	UpdateStatus(ctx context.Context, id core.ProjectID, status project.Status) error
}
