// Package dispatch assembles analysis jobs and executes them against the
// external computation service through the resilience gateway.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"statflow/domain/analysis"
	"statflow/domain/classify"
	"statflow/domain/core"
	"statflow/domain/dataset"
	"statflow/domain/project"
	"statflow/internal/errors"
	"statflow/internal/ingest"
	"statflow/internal/logging"
	"statflow/internal/resilience"
	"statflow/ports"
)

// ExecuteResponse reports the outcome of one batch execution
type ExecuteResponse struct {
	Success           bool   `json:"success"`
	JobID             string `json:"jobId"`
	ExecutionTimeMs   int64  `json:"executionTimeMs"`
	ResultsCount      int    `json:"resultsCount"`
	RServiceAvailable bool   `json:"rServiceAvailable"`
}

// Service orchestrates analysis dispatch for a project
type Service struct {
	projectRepo        ports.ProjectRepository
	datasetRepo        ports.DatasetRepository
	classificationRepo ports.ClassificationRepository
	configRepo         ports.ConfigRepository
	resultRepo         ports.ResultRepository
	fileStore          ports.FileStore
	gateway            *resilience.Gateway
	logger             *logging.Logger
}

// NewService wires the dispatch service
func NewService(
	projectRepo ports.ProjectRepository,
	datasetRepo ports.DatasetRepository,
	classificationRepo ports.ClassificationRepository,
	configRepo ports.ConfigRepository,
	resultRepo ports.ResultRepository,
	fileStore ports.FileStore,
	gateway *resilience.Gateway,
	logger *logging.Logger,
) *Service {
	if logger == nil {
		logger = logging.DefaultLogger
	}
	return &Service{
		projectRepo:        projectRepo,
		datasetRepo:        datasetRepo,
		classificationRepo: classificationRepo,
		configRepo:         configRepo,
		resultRepo:         resultRepo,
		fileStore:          fileStore,
		gateway:            gateway,
		logger:             logger,
	}
}

// Execute runs the requested analysis types for a project. Per-type
// failures are recorded as error results and never abort sibling types: a
// batch that dispatched is a completed job even with mixed results. Only a
// failure before dispatch begins errors the job itself.
func (s *Service) Execute(ctx context.Context, ownerID core.OwnerID, projectID core.ProjectID, types []analysis.Type) (*ExecuteResponse, error) {
	start := time.Now()

	if len(types) == 0 {
		return nil, errors.InvalidArgument("at least one analysis type is required")
	}
	for _, t := range types {
		if !t.IsValid() {
			return nil, errors.InvalidArgument(fmt.Sprintf("unknown analysis type %q", t))
		}
	}

	// Ownership check deliberately surfaces NotFound rather than Forbidden
	// so callers cannot probe for the existence of other tenants' projects.
	if _, err := s.projectRepo.GetOwned(ctx, projectID, ownerID); err != nil {
		return nil, err
	}

	if err := s.projectRepo.UpdateStatus(ctx, projectID, project.StatusAnalyzing); err != nil {
		return nil, errors.Wrap(err, "failed to mark project analyzing")
	}

	job, err := s.prepareJob(ctx, projectID, types)
	if err != nil {
		// Startup failure: the job itself could not begin
		if statusErr := s.projectRepo.UpdateStatus(ctx, projectID, project.StatusError); statusErr != nil {
			s.logger.Error("[Dispatch] failed to mark project %s errored: %v", projectID, statusErr)
		}
		return nil, errors.JobStartup("analysis job could not start", err)
	}

	healthy := s.gateway.Healthy(ctx)
	if !healthy {
		s.logger.Warn("[Dispatch] computation service unhealthy, degrading to mock results for project %s", projectID)
	}

	results := make([]analysis.Result, 0, len(types))
	for _, t := range types {
		results = append(results, s.executeOne(ctx, job, t, healthy))
	}

	if err := s.resultRepo.SaveBatch(ctx, projectID, results); err != nil {
		if statusErr := s.projectRepo.UpdateStatus(ctx, projectID, project.StatusError); statusErr != nil {
			s.logger.Error("[Dispatch] failed to mark project %s errored: %v", projectID, statusErr)
		}
		return nil, errors.Wrap(err, "failed to persist analysis results")
	}

	// Individual per-type errors do not demote the job: the batch executed.
	if err := s.projectRepo.UpdateStatus(ctx, projectID, project.StatusCompleted); err != nil {
		return nil, errors.Wrap(err, "failed to mark project completed")
	}

	return &ExecuteResponse{
		Success:           true,
		JobID:             core.NewID().String(),
		ExecutionTimeMs:   time.Since(start).Milliseconds(),
		ResultsCount:      len(results),
		RServiceAvailable: healthy,
	}, nil
}

// job holds everything loaded before per-type dispatch begins
type job struct {
	projectID    core.ProjectID
	table        *dataset.Table
	variables    []classify.Variable
	groups       []classify.VariableGroup
	demographics []classify.DemographicDefinition
	configs      map[analysis.Type]analysis.Config
}

// prepareJob loads the dataset and classification state. Any error here is
// a startup failure, not a per-type one.
func (s *Service) prepareJob(ctx context.Context, projectID core.ProjectID, types []analysis.Type) (*job, error) {
	ds, err := s.datasetRepo.GetByProject(ctx, projectID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load dataset")
	}

	var raw string
	if ds.IsInline() {
		// The reference carries the CSV content itself, not a path
		raw = ds.InlineContent()
	} else {
		content, err := s.fileStore.Read(ctx, ds.SourceRef)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read dataset content")
		}
		raw = string(content)
	}

	table, err := ingest.Parse(raw)
	if err != nil {
		return nil, err
	}

	variables, err := s.classificationRepo.ListVariables(ctx, projectID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load variables")
	}
	groups, err := s.classificationRepo.ListGroups(ctx, projectID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load groups")
	}
	demographics, err := s.classificationRepo.ListDemographics(ctx, projectID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load demographics")
	}
	// Rank and category counts are defined with count = 0 and populated
	// here, at execution time.
	populateDemographicCounts(table, variables, demographics)

	configs := make(map[analysis.Type]analysis.Config, len(types))
	for _, t := range types {
		cfg, err := s.configRepo.Get(ctx, projectID, t)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load %s configuration", t)
		}
		if cfg == nil {
			configs[t] = analysis.EmptyConfig(t)
		} else {
			configs[t] = *cfg
		}
	}

	return &job{
		projectID:    projectID,
		table:        table,
		variables:    variables,
		groups:       groups,
		demographics: demographics,
		configs:      configs,
	}, nil
}

// executeOne runs a single analysis type and always returns a Result:
// either the structured payload or the error arm, never a thrown failure.
func (s *Service) executeOne(ctx context.Context, j *job, t analysis.Type, healthy bool) analysis.Result {
	start := time.Now()

	if !healthy {
		payload := MockPayload(t)
		return analysis.NewSuccess(t, payload, time.Since(start), time.Now())
	}

	params, err := s.buildParams(j, t)
	if err != nil {
		s.logger.Error("[Dispatch] failed to build %s payload for project %s: %v", t, j.projectID, err)
		return analysis.NewFailure(t, err.Error(), time.Since(start), time.Now())
	}

	resp, err := s.gateway.Execute(ctx, resilience.Request{
		Endpoint:  "/analyze/" + string(t),
		Method:    http.MethodPost,
		Params:    params,
		ProjectID: j.projectID.String(),
		UseCache:  true,
	})
	elapsed := time.Since(start)
	if err != nil {
		s.logger.Warn("[Dispatch] %s analysis failed for project %s after %s: %v", t, j.projectID, elapsed, err)
		return analysis.NewFailure(t, err.Error(), elapsed, time.Now())
	}

	s.logger.Info("[Dispatch] %s analysis completed for project %s in %s (cached=%v)", t, j.projectID, elapsed, resp.Cached)
	return analysis.NewSuccess(t, resp.Data, elapsed, time.Now())
}

// buildParams assembles the per-type request payload: rows plus variable
// metadata, groups, demographics and the type-specific configuration.
func (s *Service) buildParams(j *job, t analysis.Type) (map[string]interface{}, error) {
	cfg := j.configs[t]
	cfgParams, err := cfg.Params()
	if err != nil {
		return nil, err
	}

	var cfgObj map[string]interface{}
	if err := json.Unmarshal(cfgParams, &cfgObj); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"analysis_type": string(t),
		"headers":       j.table.Headers,
		"rows":          j.table.Rows,
		"variables":     j.variables,
		"groups":        j.groups,
		"demographics":  j.demographics,
		"config":        cfgObj,
	}, nil
}
