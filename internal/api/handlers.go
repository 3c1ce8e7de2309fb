package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"statflow/domain/analysis"
	"statflow/domain/classify"
	"statflow/domain/core"
	"statflow/domain/dataset"
	"statflow/domain/project"
	svcclassify "statflow/internal/classify"
	"statflow/internal/errors"
	"statflow/internal/export"
	"statflow/internal/ingest"
	"statflow/internal/resilience"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "ok",
		"rServiceAvailable": s.deps.Gateway.Healthy(r.Context()),
	})
}

func (s *Server) handleGatewayStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Gateway.Status())
}

// handleGateway proxies an arbitrary computation-service request through
// the resilience layer.
func (s *Server) handleGateway(w http.ResponseWriter, r *http.Request) {
	var req resilience.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.MalformedInput("invalid gateway request body"))
		return
	}
	if req.Endpoint == "" {
		writeError(w, errors.InvalidArgument("endpoint is required"))
		return
	}

	resp, err := s.deps.Gateway.Execute(r.Context(), req)
	if err != nil {
		if errors.GetCode(err) == errors.CodeServiceUnavailable {
			status := s.deps.Gateway.Status()
			writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"success":      false,
				"error":        err.Error(),
				"circuitState": status.Circuit.State,
				"retryAfter":   status.RetryAfterMs,
			})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCreateProject registers a new project owned by the caller.
func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.MalformedInput("invalid project request body"))
		return
	}
	if req.Name == "" {
		writeError(w, errors.InvalidArgument("name is required"))
		return
	}

	now := time.Now()
	p := &project.Project{
		ID:        core.ProjectID(core.NewID()),
		OwnerID:   ownerFrom(r),
		Name:      req.Name,
		Status:    project.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.deps.ProjectRepo.Create(r.Context(), p); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// handleRegisterDataset accepts raw CSV content, profiles it and persists
// the dataset record plus one variable per column.
func (s *Server) handleRegisterDataset(w http.ResponseWriter, r *http.Request) {
	projectID := core.ProjectID(chi.URLParam(r, "projectID"))
	owner := ownerFrom(r)

	if _, err := s.deps.ProjectRepo.GetOwned(r.Context(), projectID, owner); err != nil {
		writeError(w, err)
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 32<<20))
	if err != nil {
		writeError(w, errors.MalformedInput("failed to read upload body"))
		return
	}

	table, err := ingest.Parse(string(raw))
	if err != nil {
		writeError(w, err)
		return
	}
	profiles := ingest.ProfileTable(table)

	now := time.Now()
	ds := &dataset.Dataset{
		ID:          core.DatasetID(core.NewID()),
		ProjectID:   projectID,
		SourceRef:   dataset.InlineMarker + string(raw),
		RecordCount: len(table.Rows),
		FieldCount:  len(table.Headers),
		Profiles:    profiles,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.deps.DatasetRepo.Create(r.Context(), ds); err != nil {
		writeError(w, errors.Wrap(err, "failed to store dataset"))
		return
	}

	variables := make([]classify.Variable, len(profiles))
	for i, p := range profiles {
		variables[i] = classify.Variable{
			ID:         core.NewID(),
			ProjectID:  projectID,
			ColumnName: p.Name,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	}
	if err := s.deps.ClassificationRepo.UpsertVariables(r.Context(), projectID, variables); err != nil {
		writeError(w, errors.Wrap(err, "failed to create variables"))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":     true,
		"datasetId":   ds.ID,
		"headers":     table.Headers,
		"recordCount": ds.RecordCount,
		"previewRows": table.PreviewRows,
		"profiles":    profiles,
	})
}

type classificationRequest struct {
	Groups       *[]classify.VariableGroup         `json:"groups,omitempty"`
	Demographics *[]classify.DemographicDefinition `json:"demographics,omitempty"`
}

func (s *Server) handleSaveClassification(w http.ResponseWriter, r *http.Request) {
	projectID := core.ProjectID(chi.URLParam(r, "projectID"))

	var req classificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.MalformedInput("invalid classification body"))
		return
	}

	err := s.deps.ClassifyService.Save(r.Context(), ownerFrom(r), projectID, svcclassify.SaveInput{
		Groups:       req.Groups,
		Demographics: req.Demographics,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

type analyzeRequest struct {
	AnalysisTypes []analysis.Type `json:"analysisTypes"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	projectID := core.ProjectID(chi.URLParam(r, "projectID"))

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.MalformedInput("invalid analyze body"))
		return
	}

	resp, err := s.deps.DispatchService.Execute(r.Context(), ownerFrom(r), projectID, req.AnalysisTypes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	projectID := core.ProjectID(chi.URLParam(r, "projectID"))

	total := 0
	if v := r.URL.Query().Get("total"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			total = parsed
		}
	}

	report, err := s.deps.ProgressTracker.Report(r.Context(), ownerFrom(r), projectID, total)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) loadExportInputs(r *http.Request) (*project.Project, []analysis.Result, error) {
	projectID := core.ProjectID(chi.URLParam(r, "projectID"))

	proj, err := s.deps.ProjectRepo.GetOwned(r.Context(), projectID, ownerFrom(r))
	if err != nil {
		return nil, nil, err
	}
	results, err := s.deps.ResultRepo.ListByProject(r.Context(), projectID)
	if err != nil {
		return nil, nil, err
	}
	return proj, results, nil
}

func (s *Server) handleExportWorkbook(w http.ResponseWriter, r *http.Request) {
	proj, results, err := s.loadExportInputs(r)
	if err != nil {
		writeError(w, err)
		return
	}

	workbook, err := export.BuildWorkbook(proj, results)
	if err != nil {
		writeError(w, errors.Wrap(err, "failed to build workbook"))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="analysis-results.xlsx"`)
	if err := workbook.Write(w); err != nil {
		s.logger.Error("[API] failed to stream workbook: %v", err)
	}
}

func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	proj, results, err := s.loadExportInputs(r)
	if err != nil {
		writeError(w, err)
		return
	}

	report := export.BuildReport(proj, results)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(report.HTML())
}
