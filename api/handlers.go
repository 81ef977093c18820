/*
handlers.go - HTTP API handlers for the statement engine

PURPOSE:
  Exposes the calculation pipeline and validation engine via REST.
  Handles HTTP request/response, JSON serialization, and delegates to
  the engine; no calculation logic lives here.

ENDPOINTS:
  Runs:
    POST   /api/runs                  Process a batch and persist it
    POST   /api/preview               Process a batch without persisting
    GET    /api/runs?project_id=&scenario_id=  List runs
    GET    /api/runs/{id}             Full run payload
    GET    /api/runs/{id}/validation  Re-validate (mode=aggregate|latest)
    DELETE /api/runs/{id}             Remove a run

  Configuration:
    GET    /api/presets               List config presets

  Scenarios:
    GET    /api/scenarios             List demo scenarios
    POST   /api/scenarios/load        Process a demo scenario

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid JSON, batch validation failures (with the aggregated
         per-period problem list), bad config documents
  - 404: Run or scenario not found
  - 500: Storage failures

SEE ALSO:
  - dto.go: request/response data structures
  - scenarios.go: demo scenario definitions
  - server.go: router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warp/statement-engine/engine"
	"github.com/warp/statement-engine/factory"
	"github.com/warp/statement-engine/store/sqlite"
	"github.com/warp/statement-engine/validation"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     *sqlite.Store
	Factory   *factory.ConfigFactory
	Validator *validation.Validator
}

// NewHandler creates a handler backed by the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store:     store,
		Factory:   factory.NewConfigFactory(),
		Validator: validation.NewValidator(),
	}
}

// resolveConfig applies the request's config priority: inline document,
// then preset name, then defaults.
func (h *Handler) resolveConfig(req ProcessRunRequest) (engine.Config, error) {
	if req.Config != nil && len(req.Config.Raw) > 0 {
		return h.Factory.ParseConfig(string(req.Config.Raw))
	}
	if req.ConfigPreset != "" {
		return h.Factory.Preset(req.ConfigPreset)
	}
	return engine.DefaultConfig(), nil
}

// process runs the pipeline and both validation modes for a request.
func (h *Handler) process(req ProcessRunRequest) (*RunResponse, error) {
	cfg, err := h.resolveConfig(req)
	if err != nil {
		return nil, err
	}

	inputs := make([]engine.PeriodInput, len(req.Periods))
	for i, dto := range req.Periods {
		inputs[i] = dto.ToEngine()
	}

	orch := engine.NewOrchestrator(cfg)
	results, err := orch.ProcessPeriods(inputs, engine.PeriodType(req.PeriodType))
	if err != nil {
		return nil, err
	}

	return &RunResponse{
		ProjectID:  req.ProjectID,
		ScenarioID: req.ScenarioID,
		PeriodType: req.PeriodType,
		Results:    results,
		Aggregate:  h.Validator.ValidateAll(results),
		Focused:    h.Validator.ValidateLatest(results),
	}, nil
}

// =============================================================================
// RUN HANDLERS
// =============================================================================

// ProcessRun computes a batch and persists the results.
func (h *Handler) ProcessRun(w http.ResponseWriter, r *http.Request) {
	var req ProcessRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.ProjectID == "" {
		writeError(w, http.StatusBadRequest, "project_id is required")
		return
	}

	resp, err := h.process(req)
	if err != nil {
		writeProcessError(w, err)
		return
	}

	record := &sqlite.RunRecord{
		ProjectID:  req.ProjectID,
		ScenarioID: req.ScenarioID,
		PeriodType: engine.PeriodType(req.PeriodType),
		Results:    resp.Results,
	}
	if err := h.Store.SaveRun(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to persist run: "+err.Error())
		return
	}
	resp.RunID = record.ID

	writeJSON(w, http.StatusCreated, resp)
}

// PreviewRun computes a batch without persisting anything.
func (h *Handler) PreviewRun(w http.ResponseWriter, r *http.Request) {
	var req ProcessRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	resp, err := h.process(req)
	if err != nil {
		writeProcessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListRuns lists run summaries for a project.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("project_id")
	if projectID == "" {
		writeError(w, http.StatusBadRequest, "project_id query parameter is required")
		return
	}

	summaries, err := h.Store.ListRuns(r.Context(), projectID, r.URL.Query().Get("scenario_id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	dtos := make([]RunSummaryDTO, len(summaries))
	for i, s := range summaries {
		dtos[i] = RunSummaryDTO{
			ID:          s.ID,
			ProjectID:   s.ProjectID,
			ScenarioID:  s.ScenarioID,
			PeriodType:  string(s.PeriodType),
			PeriodCount: s.PeriodCount,
			CreatedAt:   s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetRun returns a persisted run with fresh validation reports.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.Store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, sqlite.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, RunResponse{
		RunID:      run.ID,
		ProjectID:  run.ProjectID,
		ScenarioID: run.ScenarioID,
		PeriodType: string(run.PeriodType),
		Results:    run.Results,
		Aggregate:  h.Validator.ValidateAll(run.Results),
		Focused:    h.Validator.ValidateLatest(run.Results),
	})
}

// ValidateRun re-runs validation over a persisted run.
// mode=aggregate (default) or mode=latest.
func (h *Handler) ValidateRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.Store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, sqlite.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	switch r.URL.Query().Get("mode") {
	case "latest":
		writeJSON(w, http.StatusOK, h.Validator.ValidateLatest(run.Results))
	default:
		writeJSON(w, http.StatusOK, h.Validator.ValidateAll(run.Results))
	}
}

// DeleteRun removes a run.
func (h *Handler) DeleteRun(w http.ResponseWriter, r *http.Request) {
	err := h.Store.DeleteRun(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, sqlite.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPresets returns the available configuration presets.
func (h *Handler) ListPresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Factory.PresetNames())
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeProcessError maps pipeline errors to HTTP responses. Batch
// validation failures carry the full per-period problem list.
func writeProcessError(w http.ResponseWriter, err error) {
	var batchErr *engine.BatchValidationError
	if errors.As(err, &batchErr) {
		problems := make([]string, len(batchErr.Problems))
		for i, p := range batchErr.Problems {
			problems[i] = p.String()
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:    "period input validation failed",
			Problems: problems,
		})
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}
