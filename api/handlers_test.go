/*
handlers_test.go - Unit tests for API handlers

Tests for:
- Run processing, persistence and retrieval
- Batch validation error payloads
- Preview (non-persisting) mode
- Re-validation modes, presets and demo scenarios
- Override coercion at the DTO boundary
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/warp/statement-engine/engine"
	"github.com/warp/statement-engine/store/sqlite"
	"github.com/warp/statement-engine/validation"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	srv := httptest.NewServer(NewRouter(NewHandler(store)))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return out
}

func sampleRequest() ProcessRunRequest {
	m := func(v float64) *float64 { return &v }
	return ProcessRunRequest{
		ProjectID:  "proj-1",
		ScenarioID: "base-case",
		PeriodType: "MONTHLY",
		Periods: []PeriodInputDTO{
			{Label: "Jan", Revenue: 800000, GrossMarginPct: m(40), OperatingExpenses: 180000},
			{Label: "Feb", Revenue: 1000000, GrossMarginPct: m(42), OperatingExpenses: 200000},
		},
	}
}

// =============================================================================
// RUN PROCESSING
// =============================================================================

func TestProcessRun_PersistsAndReturnsRun(t *testing.T) {
	// GIVEN: A valid two-period batch
	srv := newTestServer(t)

	// WHEN: Processing it
	resp := postJSON(t, srv.URL+"/api/runs", sampleRequest())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	run := decodeBody[RunResponse](t, resp)

	// THEN: The run is assigned an id and carries both periods
	if run.RunID == "" {
		t.Fatal("expected a run id")
	}
	if len(run.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(run.Results))
	}
	if run.Results[1].Trends.RevenueGrowthPct != 25 {
		t.Errorf("expected revenue growth 25%%, got %v", run.Results[1].Trends.RevenueGrowthPct)
	}

	// AND: It can be fetched back with fresh validation
	getResp, err := http.Get(srv.URL + "/api/runs/" + run.RunID)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", getResp.StatusCode)
	}
	loaded := decodeBody[RunResponse](t, getResp)
	if loaded.RunID != run.RunID || len(loaded.Results) != 2 {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

func TestProcessRun_RequiresProjectID(t *testing.T) {
	srv := newTestServer(t)

	req := sampleRequest()
	req.ProjectID = ""

	resp := postJSON(t, srv.URL+"/api/runs", req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestProcessRun_ReturnsAggregatedProblems(t *testing.T) {
	// GIVEN: A batch with two invalid periods
	srv := newTestServer(t)

	req := sampleRequest()
	req.Periods[0].Revenue = -5
	bad := 150.0
	req.Periods[1].GrossMarginPct = &bad

	// WHEN: Processing it
	resp := postJSON(t, srv.URL+"/api/runs", req)

	// THEN: Every problem comes back in one 400 payload
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	errResp := decodeBody[ErrorResponse](t, resp)
	if len(errResp.Problems) != 2 {
		t.Errorf("expected 2 problems, got %v", errResp.Problems)
	}
}

func TestProcessRun_InlineConfigBeatsPreset(t *testing.T) {
	srv := newTestServer(t)

	req := sampleRequest()
	req.ConfigPreset = "brazil-services"
	req.Config = &ConfigDocument{Raw: []byte(`{"default_capex_pct_revenue": 0}`)}

	resp := postJSON(t, srv.URL+"/api/runs", req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	run := decodeBody[RunResponse](t, resp)
	if run.Results[0].CashFlow.Capex != 0 {
		t.Errorf("inline config should zero capex, got %v", run.Results[0].CashFlow.Capex)
	}
}

func TestProcessRun_BadConfigDocument(t *testing.T) {
	srv := newTestServer(t)

	req := sampleRequest()
	req.Config = &ConfigDocument{Raw: []byte(`{"asset_turnover": -1}`)}

	resp := postJSON(t, srv.URL+"/api/runs", req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestPreviewRun_DoesNotPersist(t *testing.T) {
	// GIVEN: A valid batch sent to the preview endpoint
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/preview", sampleRequest())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	run := decodeBody[RunResponse](t, resp)
	if run.RunID != "" {
		t.Errorf("preview must not assign a run id, got %q", run.RunID)
	}

	// THEN: Nothing was stored for the project
	listResp, err := http.Get(srv.URL + "/api/runs?project_id=proj-1")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if got := decodeBody[[]RunSummaryDTO](t, listResp); len(got) != 0 {
		t.Errorf("expected no persisted runs, got %v", got)
	}
}

// =============================================================================
// LISTING, VALIDATION AND DELETION
// =============================================================================

func TestListRuns_RequiresProjectID(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/runs")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestGetRun_NotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/runs/no-such-run")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestValidateRun_Modes(t *testing.T) {
	srv := newTestServer(t)

	created := decodeBody[RunResponse](t, postJSON(t, srv.URL+"/api/runs", sampleRequest()))

	// Default mode: aggregate buckets.
	resp, err := http.Get(fmt.Sprintf("%s/api/runs/%s/validation", srv.URL, created.RunID))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	_ = decodeBody[validation.AggregateReport](t, resp)

	// Latest mode: the focused report names the final period.
	resp, err = http.Get(fmt.Sprintf("%s/api/runs/%s/validation?mode=latest", srv.URL, created.RunID))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	focused := decodeBody[validation.FocusedReport](t, resp)
	if focused.PeriodLabel != "Feb" {
		t.Errorf("expected focus on Feb, got %q", focused.PeriodLabel)
	}
}

func TestDeleteRun(t *testing.T) {
	srv := newTestServer(t)

	created := decodeBody[RunResponse](t, postJSON(t, srv.URL+"/api/runs", sampleRequest()))

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/runs/"+created.RunID, nil)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Second delete: gone.
	resp, err = http.DefaultClient.Do(req.Clone(req.Context()))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

// =============================================================================
// PRESETS AND SCENARIOS
// =============================================================================

func TestListPresets(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/presets")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if names := decodeBody[[]string](t, resp); len(names) != 3 {
		t.Errorf("expected 3 presets, got %v", names)
	}
}

func TestListScenarios(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/scenarios")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	scenarios := decodeBody[[]ScenarioDTO](t, resp)
	if len(scenarios) != 3 {
		t.Fatalf("expected 3 scenarios, got %d", len(scenarios))
	}
}

func TestLoadScenario_PersistsUnderDemoProject(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/scenarios/load", LoadScenarioRequest{ID: "supplier-financed"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	run := decodeBody[RunResponse](t, resp)
	if run.ProjectID != "demo" {
		t.Errorf("expected demo project, got %q", run.ProjectID)
	}

	// The negative cash conversion cycle surfaces as a success note.
	if len(run.Aggregate.Successes) == 0 {
		t.Error("expected the negative-cycle success note")
	}

	listResp, err := http.Get(srv.URL + "/api/runs?project_id=demo")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if got := decodeBody[[]RunSummaryDTO](t, listResp); len(got) != 1 {
		t.Errorf("expected 1 persisted demo run, got %v", got)
	}
}

func TestLoadScenario_Unknown(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/scenarios/load", LoadScenarioRequest{ID: "nope"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

// =============================================================================
// OVERRIDE COERCION
// =============================================================================

func TestPeriodInputDTO_OverrideCoercion(t *testing.T) {
	// GIVEN: Overrides mixing numbers, numeric strings and junk values
	dto := PeriodInputDTO{
		Revenue: 100000,
		Overrides: map[string]any{
			"ebitda":       42000.0,
			"depreciation": "1200.50",
			"ebit":         "",
			"total_tax":    nil,
			"net_income":   "not-a-number",
		},
	}

	// WHEN: Converting to the engine model
	in := dto.ToEngine()

	// THEN: Only the coercible values survive
	if len(in.Overrides) != 2 {
		t.Fatalf("expected 2 coerced overrides, got %v", in.Overrides)
	}
	if v, ok := in.Overrides.Get(engine.OverrideEBITDA); !ok || v != 42000 {
		t.Errorf("expected ebitda 42000, got %v (%v)", v, ok)
	}
	if v, ok := in.Overrides.Get(engine.OverrideDepreciation); !ok || v != 1200.50 {
		t.Errorf("expected depreciation 1200.50, got %v (%v)", v, ok)
	}
}

func TestPeriodInputDTO_UnknownOverrideKeyIsLoud(t *testing.T) {
	// Unknown KEYS are not silently dropped at the boundary; the batch
	// validation rejects them.
	srv := newTestServer(t)

	req := sampleRequest()
	req.Periods[0].Overrides = map[string]any{"ebitda_margin": 12.0}

	resp := postJSON(t, srv.URL+"/api/runs", req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	errResp := decodeBody[ErrorResponse](t, resp)
	if len(errResp.Problems) != 1 {
		t.Errorf("expected 1 problem, got %v", errResp.Problems)
	}
}
