// Package ingest parses raw delimited text into typed tables and derives
// per-column profiles for the data-health pre-check.
package ingest

import (
	"strings"

	"statflow/domain/dataset"
	"statflow/internal/errors"
)

// PreviewRowCount is how many leading rows are kept as the preview slice
const PreviewRowCount = 5

// Parse converts raw delimited text into a Table. The delimiter is sniffed
// once from the header line (';' when present, ',' otherwise) and applied
// uniformly to the whole file.
func Parse(raw string) (*dataset.Table, error) {
	lines := splitNonEmptyLines(raw)
	if len(lines) < 2 {
		return nil, errors.MalformedInput("file must contain a header row and at least one data row")
	}

	delimiter := ","
	if strings.Contains(lines[0], ";") {
		delimiter = ";"
	}

	headers := parseLine(lines[0], delimiter)
	nonEmpty := 0
	for _, h := range headers {
		if h != "" {
			nonEmpty++
		}
	}
	if nonEmpty == 0 {
		return nil, errors.MalformedInput("header row contains no column names")
	}

	rows := make([][]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		row := parseLine(line, delimiter)
		// Pad short rows so every row is as wide as the header
		for len(row) < len(headers) {
			row = append(row, "")
		}
		rows = append(rows, row[:len(headers)])
	}

	preview := rows
	if len(preview) > PreviewRowCount {
		preview = preview[:PreviewRowCount]
	}

	return &dataset.Table{
		Headers:     headers,
		Rows:        rows,
		PreviewRows: preview,
	}, nil
}

func splitNonEmptyLines(raw string) []string {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func parseLine(line, delimiter string) []string {
	fields := strings.Split(line, delimiter)
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = cleanValue(f)
	}
	return out
}

// cleanValue trims whitespace and strips a single layer of matching or
// unmatched leading/trailing quote characters.
func cleanValue(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 2 {
		first, last := v[0], v[len(v)-1]
		if (first == '"' || first == '\'') && first == last {
			return strings.TrimSpace(v[1 : len(v)-1])
		}
	}
	if len(v) >= 1 && (v[0] == '"' || v[0] == '\'') {
		v = v[1:]
	}
	if len(v) >= 1 && (v[len(v)-1] == '"' || v[len(v)-1] == '\'') {
		v = v[:len(v)-1]
	}
	return strings.TrimSpace(v)
}
