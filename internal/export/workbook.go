package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"statflow/domain/analysis"
	"statflow/domain/project"
)

const overviewSheet = "Overview"

// BuildWorkbook renders one overview sheet plus one sheet per result. Error
// results get an error row instead of a formatted payload.
func BuildWorkbook(proj *project.Project, results []analysis.Result) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", overviewSheet); err != nil {
		return nil, fmt.Errorf("failed to create overview sheet: %w", err)
	}

	if err := writeOverview(f, proj, results); err != nil {
		return nil, err
	}

	for _, r := range results {
		sheet := sheetName(r.AnalysisType())
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
		if err := writeResultSheet(f, sheet, r); err != nil {
			return nil, err
		}
	}

	return f, nil
}

func writeOverview(f *excelize.File, proj *project.Project, results []analysis.Result) error {
	succeeded, failed := 0, 0
	for _, r := range results {
		if r.IsError() {
			failed++
		} else {
			succeeded++
		}
	}

	rows := [][]interface{}{
		{"Project", proj.Name},
		{"Status", string(proj.Status)},
		{"Exported", time.Now().Format(time.RFC3339)},
		{"Analyses run", len(results)},
		{"Succeeded", succeeded},
		{"Failed", failed},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(overviewSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write overview row: %w", err)
		}
	}
	return nil
}

func writeResultSheet(f *excelize.File, sheet string, r analysis.Result) error {
	if r.IsError() {
		return writeRows(f, sheet, [][]interface{}{
			{"Error"},
			{r.Failure().Message},
		})
	}

	switch r.AnalysisType() {
	case analysis.TypeDescriptive:
		if p, ok := parseDescriptive(r); ok {
			rows := [][]interface{}{{"Variable", "N", "Mean", "SD", "Min", "Max", "Skewness", "Kurtosis"}}
			for _, v := range p.Variables {
				rows = append(rows, []interface{}{v.Variable, v.N, v.Mean, v.SD, v.Min, v.Max, v.Skewness, v.Kurtosis})
			}
			return writeRows(f, sheet, rows)
		}
	case analysis.TypeReliability:
		if p, ok := parseReliability(r); ok {
			rows := [][]interface{}{{"Group", "Cronbach's Alpha", "Item", "Item-Total Correlation"}}
			for _, g := range p.Groups {
				if len(g.Items) == 0 {
					rows = append(rows, []interface{}{g.Group, g.Alpha, "", ""})
					continue
				}
				for _, item := range g.Items {
					rows = append(rows, []interface{}{g.Group, g.Alpha, item.Item, item.ItemTotal})
				}
			}
			return writeRows(f, sheet, rows)
		}
	case analysis.TypeCorrelation:
		if pairs, ok := parseCorrelation(r); ok {
			rows := [][]interface{}{{"Variable 1", "Variable 2", "r"}}
			for _, p := range pairs {
				rows = append(rows, []interface{}{p.X, p.Y, p.R})
			}
			return writeRows(f, sheet, rows)
		}
	}

	// Unknown or unhandled shape: raw structured dump
	return writeRows(f, sheet, [][]interface{}{
		{"Raw result"},
		{rawDump(r.Payload())},
	})
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d on %s: %w", i+1, sheet, err)
		}
	}
	return nil
}

func sheetName(t analysis.Type) string {
	// Excel sheet names are limited to 31 characters; analysis type tags
	// are all well under that.
	return string(t)
}
