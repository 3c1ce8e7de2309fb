package project

import (
	"time"

	"statflow/domain/core"
)

// Status represents the configuration/analysis lifecycle of a project
type Status string

const (
	StatusDraft      Status = "draft"
	StatusConfigured Status = "configured"
	StatusAnalyzing  Status = "analyzing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Project is the unit of ownership for a dataset and its analysis runs
type Project struct {
	ID        core.ProjectID `json:"id" db:"id"`
	OwnerID   core.OwnerID   `json:"owner_id" db:"owner_id"`
	Name      string         `json:"name" db:"name"`
	Status    Status         `json:"status" db:"status"`
	DatasetID core.DatasetID `json:"dataset_id,omitempty" db:"dataset_id"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}
