package dispatch

import (
	"strconv"
	"strings"

	"statflow/domain/classify"
	"statflow/domain/core"
	"statflow/domain/dataset"
)

// populateDemographicCounts fills in per-rank and per-category counts from
// the parsed table. Definitions are created at configuration time with
// count = 0; counting happens only here, during analysis execution.
func populateDemographicCounts(table *dataset.Table, variables []classify.Variable, defs []classify.DemographicDefinition) {
	columnByVariable := make(map[core.ID]string, len(variables))
	for _, v := range variables {
		columnByVariable[v.ID] = v.ColumnName
	}

	for di := range defs {
		def := &defs[di]
		column, ok := columnByVariable[def.VariableID]
		if !ok {
			continue
		}
		values := columnValues(table, column)

		if len(def.Ranks) > 0 {
			countRanks(def.Ranks, values)
			continue
		}
		countCategories(def.Categories, values)
	}
}

func countRanks(ranks []classify.Rank, values []string) {
	for ri := range ranks {
		ranks[ri].Count = 0
	}
	for _, raw := range values {
		v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
		if err != nil {
			continue
		}
		for ri := range ranks {
			r := &ranks[ri]
			aboveLower := r.OpenLower || v >= r.Min
			belowUpper := r.OpenUpper || v <= r.Max
			if aboveLower && belowUpper {
				r.Count++
				break
			}
		}
	}
}

func countCategories(categories []classify.OrdinalCategory, values []string) {
	for ci := range categories {
		categories[ci].Count = 0
	}
	for _, raw := range values {
		for ci := range categories {
			if categories[ci].RawValue == raw {
				categories[ci].Count++
				break
			}
		}
	}
}

func columnValues(table *dataset.Table, column string) []string {
	col := -1
	for i, h := range table.Headers {
		if h == column {
			col = i
			break
		}
	}
	if col < 0 {
		return nil
	}
	var values []string
	for _, row := range table.Rows {
		if row[col] != "" {
			values = append(values, row[col])
		}
	}
	return values
}
