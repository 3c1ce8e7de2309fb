package ingest

import (
	"testing"

	"statflow/domain/dataset"
)

func mustParse(t *testing.T, raw string) *dataset.Table {
	t.Helper()
	table, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return table
}

// TestProfileTable_MissingValues verifies empty cells count as missing and
// are excluded from the numeric summary
func TestProfileTable_MissingValues(t *testing.T) {
	table := mustParse(t, "name,age\nAlice,30\nBob,\n")

	profiles := ProfileTable(table)
	if len(profiles) != 2 {
		t.Fatalf("Expected 2 profiles, got %d", len(profiles))
	}

	age := profiles[1]
	if age.Name != "age" {
		t.Fatalf("Expected profile for 'age', got %q", age.Name)
	}
	if age.Type != dataset.ColumnNumeric {
		t.Errorf("Expected numeric column, got %s", age.Type)
	}
	if age.MissingCount != 1 {
		t.Errorf("Expected 1 missing value, got %d", age.MissingCount)
	}
	if age.Mean != 30 {
		t.Errorf("Mean should skip missing cells, expected 30, got %f", age.Mean)
	}
	if age.Min != 30 || age.Max != 30 {
		t.Errorf("Expected min/max 30/30, got %f/%f", age.Min, age.Max)
	}
}

func TestProfileTable_CommaDecimals(t *testing.T) {
	// Semicolon-delimited file where ',' is the decimal separator
	table := mustParse(t, "score;other\n1,5;x\n2,5;y\n")

	profiles := ProfileTable(table)
	score := profiles[0]
	if score.Type != dataset.ColumnNumeric {
		t.Fatalf("Comma decimals should still profile as numeric, got %s", score.Type)
	}
	if score.Mean != 2.0 {
		t.Errorf("Expected mean 2.0, got %f", score.Mean)
	}
}

func TestProfileTable_DateDetection(t *testing.T) {
	table := mustParse(t, "joined\n2024-01-15\n2024/02/01\n15-03-2024\n")

	profiles := ProfileTable(table)
	if profiles[0].Type != dataset.ColumnDate {
		t.Errorf("Expected date column, got %s", profiles[0].Type)
	}
}

func TestProfileTable_CategoricalVsText(t *testing.T) {
	// 2 distinct values over 12 rows: ratio <= 0.2 → categorical
	raw := "group\n"
	for i := 0; i < 6; i++ {
		raw += "control\ntreatment\n"
	}
	table := mustParse(t, raw)
	profiles := ProfileTable(table)
	if profiles[0].Type != dataset.ColumnCategorical {
		t.Errorf("Expected categorical column, got %s", profiles[0].Type)
	}
	if profiles[0].UniqueCount != 2 {
		t.Errorf("Expected 2 unique values, got %d", profiles[0].UniqueCount)
	}

	// All-distinct free text stays text
	table = mustParse(t, "comment\nfirst remark\nsecond remark\nthird remark\n")
	profiles = ProfileTable(table)
	if profiles[0].Type != dataset.ColumnText {
		t.Errorf("Expected text column, got %s", profiles[0].Type)
	}
}

func TestNumericColumn(t *testing.T) {
	table := mustParse(t, "name,age\nAlice,30\nBob,\nCara,oops\nDan,40\n")

	values := NumericColumn(table, "age")
	if len(values) != 2 || values[0] != 30 || values[1] != 40 {
		t.Errorf("Expected [30 40], got %v", values)
	}

	if got := NumericColumn(table, "missing"); got != nil {
		t.Errorf("Unknown column should yield nil, got %v", got)
	}
}
