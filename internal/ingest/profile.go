package ingest

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"statflow/domain/dataset"
	"statflow/domain/stats"
)

// Columns with at most this many distinct values, relative to row count,
// are treated as categorical rather than free text.
const categoricalRatio = 0.2

var datePattern = regexp.MustCompile(
	`^(\d{4}[-/]\d{1,2}[-/]\d{1,2}|\d{1,2}[-/]\d{1,2}[-/]\d{4})([ T].*)?$`)

// ProfileTable derives a profile per column. Column profiling is CPU-bound
// and independent per column, so it fans out across columns.
func ProfileTable(table *dataset.Table) []dataset.ColumnProfile {
	profiles := make([]dataset.ColumnProfile, len(table.Headers))

	var g errgroup.Group
	for i := range table.Headers {
		i := i
		g.Go(func() error {
			profiles[i] = profileColumn(table, i)
			return nil
		})
	}
	// Workers never return errors; Wait only joins them.
	_ = g.Wait()

	return profiles
}

func profileColumn(table *dataset.Table, col int) dataset.ColumnProfile {
	profile := dataset.ColumnProfile{Name: table.Headers[col]}

	unique := make(map[string]struct{})
	var numeric []float64
	allNumeric := true
	allDates := true
	present := 0

	for _, row := range table.Rows {
		v := row[col]
		if v == "" {
			profile.MissingCount++
			continue
		}
		present++
		unique[v] = struct{}{}

		if f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64); err == nil {
			numeric = append(numeric, f)
		} else {
			allNumeric = false
		}
		if !datePattern.MatchString(v) {
			allDates = false
		}
	}
	profile.UniqueCount = len(unique)

	switch {
	case present > 0 && allNumeric:
		profile.Type = dataset.ColumnNumeric
		profile.Min = stats.Min(numeric)
		profile.Max = stats.Max(numeric)
		profile.Mean = stats.Mean(numeric)
	case present > 0 && allDates:
		profile.Type = dataset.ColumnDate
	case present > 0 && isCategorical(len(unique), present):
		profile.Type = dataset.ColumnCategorical
	default:
		profile.Type = dataset.ColumnText
	}

	return profile
}

func isCategorical(uniqueCount, presentCount int) bool {
	if presentCount == 0 {
		return false
	}
	if uniqueCount <= 1 {
		return true
	}
	return float64(uniqueCount)/float64(presentCount) <= categoricalRatio
}

// NumericColumn extracts the parsed numeric values of one column, skipping
// missing and unparseable cells.
func NumericColumn(table *dataset.Table, name string) []float64 {
	col := -1
	for i, h := range table.Headers {
		if h == name {
			col = i
			break
		}
	}
	if col < 0 {
		return nil
	}
	var values []float64
	for _, row := range table.Rows {
		v := row[col]
		if v == "" {
			continue
		}
		if f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64); err == nil {
			values = append(values, f)
		}
	}
	return values
}
