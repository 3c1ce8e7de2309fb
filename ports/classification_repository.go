package ports

import (
	"context"

	"statflow/domain/classify"
	"statflow/domain/core"
)

// ClassificationRepository persists variables, groups and demographic
// definitions for a project. Replace operations are destructive syncs:
// delete matching rows, then insert the new set, inside one transaction, so
// a partial failure cannot leave a mixture of old and new state.
type ClassificationRepository interface {
	ListVariables(ctx context.Context, projectID core.ProjectID) ([]classify.Variable, error)
	UpsertVariables(ctx context.Context, projectID core.ProjectID, vars []classify.Variable) error

	ListGroups(ctx context.Context, projectID core.ProjectID) ([]classify.VariableGroup, error)
	// ReplaceGroups clears all groups for the project, inserts the new set,
	// and rewrites every variable's group assignment: variables not
	// referenced by any incoming group become ungrouped.
	ReplaceGroups(ctx context.Context, projectID core.ProjectID, groups []classify.VariableGroup) error

	ListDemographics(ctx context.Context, projectID core.ProjectID) ([]classify.DemographicDefinition, error)
	// ReplaceDemographics replaces, per referenced variable, its rank or
	// ordinal-category set wholesale, and clears the demographic flag on any
	// previously-demographic variable absent from the incoming set.
	ReplaceDemographics(ctx context.Context, projectID core.ProjectID, defs []classify.DemographicDefinition) error
}
