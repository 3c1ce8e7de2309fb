package ports

import (
	"context"

	"statflow/domain/analysis"
	"statflow/domain/core"
)

// ResultRepository persists per-type analysis results. Rows are keyed by
// (project id, analysis type): re-executing a type for the same project
// overwrites the previous row rather than accumulating duplicates.
type ResultRepository interface {
	SaveBatch(ctx context.Context, projectID core.ProjectID, results []analysis.Result) error
	ListByProject(ctx context.Context, projectID core.ProjectID) ([]analysis.Result, error)
}

// ConfigRepository stores the per-type analysis configuration of a project
type ConfigRepository interface {
	Get(ctx context.Context, projectID core.ProjectID, t analysis.Type) (*analysis.Config, error)
	Save(ctx context.Context, projectID core.ProjectID, cfg analysis.Config) error
}
