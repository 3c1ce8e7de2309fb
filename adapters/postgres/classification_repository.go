package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"statflow/domain/classify"
	"statflow/domain/core"
	"statflow/ports"
)

// classificationRepository implements the ClassificationRepository interface
type classificationRepository struct {
	db *sqlx.DB
}

// NewClassificationRepository creates a new classification repository
func NewClassificationRepository(db *sqlx.DB) ports.ClassificationRepository {
	return &classificationRepository{db: db}
}

// ListVariables returns all variables of a project
func (r *classificationRepository) ListVariables(ctx context.Context, projectID core.ProjectID) ([]classify.Variable, error) {
	query := `SELECT id, project_id, column_name, COALESCE(semantic_name, '') as semantic_name,
		is_demographic, COALESCE(demographic_type, '') as demographic_type,
		group_id, COALESCE(role_tags, '[]') as role_tags, created_at, updated_at
		FROM variables WHERE project_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query variables: %w", err)
	}
	defer rows.Close()

	var variables []classify.Variable
	for rows.Next() {
		var v classify.Variable
		var groupID *string
		var tagsJSON []byte

		if err := rows.Scan(&v.ID, &v.ProjectID, &v.ColumnName, &v.SemanticName,
			&v.IsDemographic, &v.DemographicType, &groupID, &tagsJSON, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan variable: %w", err)
		}
		if groupID != nil {
			gid := core.GroupID(*groupID)
			v.GroupID = &gid
		}
		if len(tagsJSON) > 0 {
			if err := json.Unmarshal(tagsJSON, &v.RoleTags); err != nil {
				return nil, fmt.Errorf("failed to unmarshal role tags: %w", err)
			}
		}
		variables = append(variables, v)
	}
	return variables, rows.Err()
}

// UpsertVariables inserts or refreshes the variables created at profiling
// time. Existing classification fields are preserved on conflict.
func (r *classificationRepository) UpsertVariables(ctx context.Context, projectID core.ProjectID, vars []classify.Variable) error {
	query := `INSERT INTO variables (id, project_id, column_name, semantic_name, is_demographic, demographic_type, group_id, role_tags, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), $7, $8, $9, $10)
		ON CONFLICT (project_id, column_name) DO UPDATE SET updated_at = EXCLUDED.updated_at`

	for _, v := range vars {
		tagsJSON, err := json.Marshal(v.RoleTags)
		if err != nil {
			return fmt.Errorf("failed to marshal role tags: %w", err)
		}
		var groupID *string
		if v.GroupID != nil {
			s := v.GroupID.String()
			groupID = &s
		}
		if _, err := r.db.ExecContext(ctx, query,
			v.ID, projectID, v.ColumnName, v.SemanticName, v.IsDemographic,
			string(v.DemographicType), groupID, tagsJSON, v.CreatedAt, v.UpdatedAt); err != nil {
			return fmt.Errorf("failed to upsert variable %s: %w", v.ColumnName, err)
		}
	}
	return nil
}

// ListGroups returns all variable groups of a project with their members
func (r *classificationRepository) ListGroups(ctx context.Context, projectID core.ProjectID) ([]classify.VariableGroup, error) {
	query := `SELECT id, project_id, name, group_type, display_order
		FROM variable_groups WHERE project_id = $1 ORDER BY display_order`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	var groups []classify.VariableGroup
	for rows.Next() {
		var g classify.VariableGroup
		if err := rows.Scan(&g.ID, &g.ProjectID, &g.Name, &g.GroupType, &g.DisplayOrder); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	memberQuery := `SELECT id FROM variables WHERE project_id = $1 AND group_id = $2 ORDER BY created_at`
	for i := range groups {
		memberRows, err := r.db.QueryContext(ctx, memberQuery, projectID, groups[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to query group members: %w", err)
		}
		for memberRows.Next() {
			var id core.ID
			if err := memberRows.Scan(&id); err != nil {
				memberRows.Close()
				return nil, fmt.Errorf("failed to scan group member: %w", err)
			}
			groups[i].VariableIDs = append(groups[i].VariableIDs, id)
		}
		if err := memberRows.Err(); err != nil {
			memberRows.Close()
			return nil, err
		}
		memberRows.Close()
	}
	return groups, nil
}

// ReplaceGroups is a destructive sync in one transaction: delete the
// project's groups, insert the new set, rewrite every variable's group
// assignment. Variables not referenced by any incoming group end up
// ungrouped. A mid-sync failure rolls back to the previous state whole.
func (r *classificationRepository) ReplaceGroups(ctx context.Context, projectID core.ProjectID, groups []classify.VariableGroup) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin group sync: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE variables SET group_id = NULL, updated_at = $2 WHERE project_id = $1`,
		projectID, time.Now()); err != nil {
		return fmt.Errorf("failed to clear group assignments: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM variable_groups WHERE project_id = $1`, projectID); err != nil {
		return fmt.Errorf("failed to clear groups: %w", err)
	}

	insertGroup := `INSERT INTO variable_groups (id, project_id, name, group_type, display_order)
		VALUES ($1, $2, $3, $4, $5)`
	assign := `UPDATE variables SET group_id = $3, updated_at = $4 WHERE project_id = $1 AND id = $2`

	for _, g := range groups {
		if _, err := tx.ExecContext(ctx, insertGroup,
			g.ID, projectID, g.Name, g.GroupType, g.DisplayOrder); err != nil {
			return fmt.Errorf("failed to insert group %s: %w", g.Name, err)
		}
		for _, variableID := range g.VariableIDs {
			if _, err := tx.ExecContext(ctx, assign, projectID, variableID, g.ID, time.Now()); err != nil {
				return fmt.Errorf("failed to assign variable %s to group %s: %w", variableID, g.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit group sync: %w", err)
	}
	return nil
}

// ListDemographics returns the demographic definitions of a project
func (r *classificationRepository) ListDemographics(ctx context.Context, projectID core.ProjectID) ([]classify.DemographicDefinition, error) {
	varQuery := `SELECT id, COALESCE(demographic_type, '') FROM variables
		WHERE project_id = $1 AND is_demographic = TRUE ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, varQuery, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query demographic variables: %w", err)
	}
	defer rows.Close()

	var defs []classify.DemographicDefinition
	for rows.Next() {
		var def classify.DemographicDefinition
		var demographicType string
		if err := rows.Scan(&def.VariableID, &demographicType); err != nil {
			return nil, fmt.Errorf("failed to scan demographic variable: %w", err)
		}
		def.Type = classify.DemographicType(demographicType)
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range defs {
		if defs[i].Type == classify.DemographicContinuous {
			if defs[i].Ranks, err = r.listRanks(ctx, defs[i].VariableID); err != nil {
				return nil, err
			}
			continue
		}
		if defs[i].Categories, err = r.listCategories(ctx, defs[i].VariableID); err != nil {
			return nil, err
		}
	}
	return defs, nil
}

func (r *classificationRepository) listRanks(ctx context.Context, variableID core.ID) ([]classify.Rank, error) {
	query := `SELECT label, min_value, max_value, open_lower, open_upper
		FROM demographic_ranks WHERE variable_id = $1 ORDER BY rank_order`

	rows, err := r.db.QueryContext(ctx, query, variableID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranks: %w", err)
	}
	defer rows.Close()

	var ranks []classify.Rank
	for rows.Next() {
		var rank classify.Rank
		if err := rows.Scan(&rank.Label, &rank.Min, &rank.Max, &rank.OpenLower, &rank.OpenUpper); err != nil {
			return nil, fmt.Errorf("failed to scan rank: %w", err)
		}
		ranks = append(ranks, rank)
	}
	return ranks, rows.Err()
}

func (r *classificationRepository) listCategories(ctx context.Context, variableID core.ID) ([]classify.OrdinalCategory, error) {
	query := `SELECT order_index, raw_value, display_label
		FROM demographic_categories WHERE variable_id = $1 ORDER BY order_index`

	rows, err := r.db.QueryContext(ctx, query, variableID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []classify.OrdinalCategory
	for rows.Next() {
		var c classify.OrdinalCategory
		if err := rows.Scan(&c.OrderIndex, &c.RawValue, &c.DisplayLabel); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ReplaceDemographics replaces rank/category sets wholesale per referenced
// variable inside one transaction, and clears the demographic flag on any
// previously-demographic variable absent from the incoming set.
func (r *classificationRepository) ReplaceDemographics(ctx context.Context, projectID core.ProjectID, defs []classify.DemographicDefinition) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin demographic sync: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM demographic_ranks WHERE variable_id IN
			(SELECT id FROM variables WHERE project_id = $1)`, projectID); err != nil {
		return fmt.Errorf("failed to clear ranks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM demographic_categories WHERE variable_id IN
			(SELECT id FROM variables WHERE project_id = $1)`, projectID); err != nil {
		return fmt.Errorf("failed to clear categories: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE variables SET is_demographic = FALSE, demographic_type = NULL, updated_at = $2
		WHERE project_id = $1`, projectID, time.Now()); err != nil {
		return fmt.Errorf("failed to clear demographic flags: %w", err)
	}

	flag := `UPDATE variables SET is_demographic = TRUE, demographic_type = $3, updated_at = $4
		WHERE project_id = $1 AND id = $2`
	insertRank := `INSERT INTO demographic_ranks (variable_id, label, min_value, max_value, open_lower, open_upper, rank_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	insertCategory := `INSERT INTO demographic_categories (variable_id, order_index, raw_value, display_label)
		VALUES ($1, $2, $3, $4)`

	for _, def := range defs {
		if _, err := tx.ExecContext(ctx, flag, projectID, def.VariableID, string(def.Type), time.Now()); err != nil {
			return fmt.Errorf("failed to flag demographic variable %s: %w", def.VariableID, err)
		}
		for order, rank := range def.Ranks {
			if _, err := tx.ExecContext(ctx, insertRank,
				def.VariableID, rank.Label, rank.Min, rank.Max, rank.OpenLower, rank.OpenUpper, order); err != nil {
				return fmt.Errorf("failed to insert rank %s: %w", rank.Label, err)
			}
		}
		for _, c := range def.Categories {
			if _, err := tx.ExecContext(ctx, insertCategory,
				def.VariableID, c.OrderIndex, c.RawValue, c.DisplayLabel); err != nil {
				return fmt.Errorf("failed to insert category %s: %w", c.RawValue, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit demographic sync: %w", err)
	}
	return nil
}
