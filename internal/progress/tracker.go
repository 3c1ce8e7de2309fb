// Package progress exposes the running/completed/errored state of a batch
// of dispatched analyses for polling clients.
package progress

import (
	"context"
	"math"

	"statflow/domain/analysis"
	"statflow/domain/core"
	"statflow/domain/project"
	"statflow/ports"
)

// Progress counts completed analyses against the requested total
type Progress struct {
	Completed  int     `json:"completed"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// Report is the poll response: project status plus per-type results
type Report struct {
	Status   project.Status    `json:"status"`
	Progress Progress          `json:"progress"`
	Results  []analysis.Result `json:"results"`
}

// Tracker is a stateless projection over persisted data. It holds no
// independent state or timers: every Report is computed fresh from the last
// completed write, so concurrent pollers never observe partial state.
type Tracker struct {
	projectRepo ports.ProjectRepository
	resultRepo  ports.ResultRepository
}

// NewTracker creates a progress tracker
func NewTracker(projectRepo ports.ProjectRepository, resultRepo ports.ResultRepository) *Tracker {
	return &Tracker{projectRepo: projectRepo, resultRepo: resultRepo}
}

// Report projects the current job state for a project. The expected total
// is the number of requested analysis types; callers that dispatched the
// batch pass it through, others pass 0 to derive it from stored results.
func (t *Tracker) Report(ctx context.Context, ownerID core.OwnerID, projectID core.ProjectID, expectedTotal int) (*Report, error) {
	proj, err := t.projectRepo.GetOwned(ctx, projectID, ownerID)
	if err != nil {
		return nil, err
	}

	results, err := t.resultRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	total := expectedTotal
	if total <= 0 {
		total = len(results)
	}
	completed := len(results)
	if completed > total {
		total = completed
	}

	percentage := 0.0
	if total > 0 {
		percentage = math.Round(float64(completed)/float64(total)*1000) / 10
	}

	return &Report{
		Status: proj.Status,
		Progress: Progress{
			Completed:  completed,
			Total:      total,
			Percentage: percentage,
		},
		Results: results,
	}, nil
}
