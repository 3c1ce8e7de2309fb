// Package classify holds the user-assigned semantic classification of
// dataset columns: construct groups, demographic typing and role tags.
package classify

import (
	"fmt"
	"time"

	"statflow/domain/core"
)

// DemographicType describes how a demographic variable is measured
type DemographicType string

const (
	DemographicCategorical DemographicType = "categorical"
	DemographicOrdinal     DemographicType = "ordinal"
	DemographicContinuous  DemographicType = "continuous"
)

// GroupType categorizes a variable group
type GroupType string

const (
	GroupConstruct   GroupType = "construct"
	GroupDemographic GroupType = "demographic"
	GroupControl     GroupType = "control"
)

// Variable references one dataset column plus its mutable classification
// metadata. Variables are created when columns are first profiled and are
// never independently deleted; removal happens by clearing fields.
type Variable struct {
	ID              core.ID         `json:"id"`
	ProjectID       core.ProjectID  `json:"project_id"`
	ColumnName      string          `json:"column_name"`
	SemanticName    string          `json:"semantic_name,omitempty"`
	IsDemographic   bool            `json:"is_demographic"`
	DemographicType DemographicType `json:"demographic_type,omitempty"`
	GroupID         *core.GroupID   `json:"group_id,omitempty"`
	RoleTags        []string        `json:"role_tags,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// VariableGroup is a named cluster of variables. Membership is exclusive:
// assigning a variable to one group removes it from any other group in the
// same save pass.
type VariableGroup struct {
	ID           core.GroupID   `json:"id"`
	ProjectID    core.ProjectID `json:"project_id"`
	Name         string         `json:"name"`
	GroupType    GroupType      `json:"group_type"`
	DisplayOrder int            `json:"display_order"`
	VariableIDs  []core.ID      `json:"variable_ids"`
}

// Rank defines one bin of a continuous demographic. Open-ended flags mark
// bins with no lower or upper bound.
type Rank struct {
	Label     string  `json:"label"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	OpenLower bool    `json:"open_lower"`
	OpenUpper bool    `json:"open_upper"`
	// Count is 0 at definition time and populated during analysis execution
	Count int `json:"count"`
}

// OrdinalCategory defines one level of an ordinal/categorical demographic
type OrdinalCategory struct {
	OrderIndex   int    `json:"order_index"`
	RawValue     string `json:"raw_value"`
	DisplayLabel string `json:"display_label"`
	Count        int    `json:"count"`
}

// DemographicDefinition attaches measurement detail to a demographic
// variable. Exactly one of Ranks or Categories is populated, never both.
type DemographicDefinition struct {
	VariableID core.ID           `json:"variable_id"`
	Type       DemographicType   `json:"type"`
	Ranks      []Rank            `json:"ranks,omitempty"`
	Categories []OrdinalCategory `json:"categories,omitempty"`
}

// Validate enforces the rank-xor-category invariant
func (d *DemographicDefinition) Validate() error {
	if d.VariableID.IsEmpty() {
		return fmt.Errorf("demographic definition requires a variable reference")
	}
	hasRanks := len(d.Ranks) > 0
	hasCategories := len(d.Categories) > 0
	if hasRanks && hasCategories {
		return fmt.Errorf("demographic definition for %s has both ranks and categories", d.VariableID)
	}
	if !hasRanks && !hasCategories {
		return fmt.Errorf("demographic definition for %s has neither ranks nor categories", d.VariableID)
	}
	if hasRanks && d.Type != DemographicContinuous {
		return fmt.Errorf("ranked demographic %s must be continuous, got %s", d.VariableID, d.Type)
	}
	if hasCategories && d.Type == DemographicContinuous {
		return fmt.Errorf("categorical demographic %s cannot be continuous", d.VariableID)
	}
	return nil
}
