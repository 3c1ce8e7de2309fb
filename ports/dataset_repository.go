package ports

import (
	"context"

	"statflow/domain/core"
	"statflow/domain/dataset"
)

// DatasetRepository persists dataset records (source reference + profiles)
type DatasetRepository interface {
	Create(ctx context.Context, ds *dataset.Dataset) error
	GetByProject(ctx context.Context, projectID core.ProjectID) (*dataset.Dataset, error)
}
