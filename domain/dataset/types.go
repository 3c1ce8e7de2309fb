package dataset

import (
	"strings"
	"time"

	"statflow/domain/core"
)

// ColumnType is the inferred semantic type of a profiled column
type ColumnType string

const (
	ColumnNumeric     ColumnType = "numeric"
	ColumnCategorical ColumnType = "categorical"
	ColumnText        ColumnType = "text"
	ColumnDate        ColumnType = "date"
)

// ColumnProfile summarizes one column at ingestion time. Profiles are
// created once and never mutated; classification metadata is layered on top
// as Variables rather than edited in place.
type ColumnProfile struct {
	Name         string     `json:"name"`
	Type         ColumnType `json:"type"`
	MissingCount int        `json:"missing_count"`
	UniqueCount  int        `json:"unique_count"`

	// Populated for numeric columns only
	Min  float64 `json:"min,omitempty"`
	Max  float64 `json:"max,omitempty"`
	Mean float64 `json:"mean,omitempty"`
}

// Table is the immutable parsed form of an uploaded file
type Table struct {
	Headers     []string   `json:"headers"`
	Rows        [][]string `json:"rows"`
	PreviewRows [][]string `json:"preview_rows"`
}

// InlineMarker prefixes a source reference whose remainder is literal CSV
// content rather than a storage path.
const InlineMarker = "inline:"

// Dataset is a persisted dataset record. SourceRef is either a storage path
// or an inline payload carrying the InlineMarker prefix.
type Dataset struct {
	ID          core.DatasetID  `json:"id"`
	ProjectID   core.ProjectID  `json:"project_id"`
	SourceRef   string          `json:"source_ref"`
	RecordCount int             `json:"record_count"`
	FieldCount  int             `json:"field_count"`
	Profiles    []ColumnProfile `json:"profiles"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// IsInline reports whether SourceRef carries literal CSV content
func (d *Dataset) IsInline() bool {
	return strings.HasPrefix(d.SourceRef, InlineMarker)
}

// InlineContent returns the literal CSV content after the marker.
// Only meaningful when IsInline is true.
func (d *Dataset) InlineContent() string {
	return strings.TrimPrefix(d.SourceRef, InlineMarker)
}

// ProfileByName returns the profile for the named column, if present
func (d *Dataset) ProfileByName(name string) (ColumnProfile, bool) {
	for _, p := range d.Profiles {
		if p.Name == name {
			return p, true
		}
	}
	return ColumnProfile{}, false
}
