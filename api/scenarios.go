/*
scenarios.go - Demo scenarios

PURPOSE:
  Ready-made period batches that exercise interesting corners of the
  pipeline, for demos and exploratory use of the API. Each scenario is
  a named input batch; loading one processes it with the default
  configuration and persists the run under the "demo" project.

SCENARIOS:
  growth-retailer:    Two quarters of margin expansion; the healthy case.
  tight-cash:         Rising inventory and negative free cash flow; trips
                      the working-capital and cash-flow detectors.
  supplier-financed:  Negative cash conversion cycle; the positive note.

SEE ALSO:
  - handlers.go: ListScenarios / LoadScenario endpoints
*/
package api

import (
	"encoding/json"
	"net/http"

	"github.com/warp/statement-engine/engine"
	"github.com/warp/statement-engine/store/sqlite"
)

// demoScenario is one named input batch.
type demoScenario struct {
	ID          string
	Name        string
	Description string
	PeriodType  engine.PeriodType
	Inputs      []engine.PeriodInput
}

func f(v float64) *float64 { return &v }

func demoScenarios() []demoScenario {
	return []demoScenario{
		{
			ID:          "growth-retailer",
			Name:        "Growth retailer",
			Description: "Two quarters of revenue growth with expanding margin",
			PeriodType:  engine.PeriodQuarterly,
			Inputs: []engine.PeriodInput{
				{
					Label: "Q1", Revenue: 2400000, GrossMarginPct: f(40),
					OperatingExpenses: 540000,
				},
				{
					Label: "Q2", Revenue: 3000000, GrossMarginPct: f(42),
					OperatingExpenses: 600000,
				},
			},
		},
		{
			ID:          "tight-cash",
			Name:        "Tight cash",
			Description: "Inventory build-up, heavy capex, persistent negative free cash flow",
			PeriodType:  engine.PeriodMonthly,
			Inputs: []engine.PeriodInput{
				{
					Label: "Jan", Revenue: 400000, GrossMarginPct: f(25),
					OperatingExpenses: 90000, InventoryDays: f(95),
					Capex: f(80000),
				},
				{
					Label: "Feb", Revenue: 390000, GrossMarginPct: f(24),
					OperatingExpenses: 92000, InventoryDays: f(115),
					Capex: f(75000),
				},
				{
					Label: "Mar", Revenue: 385000, GrossMarginPct: f(23),
					OperatingExpenses: 95000, InventoryDays: f(140),
					Capex: f(70000),
				},
			},
		},
		{
			ID:          "supplier-financed",
			Name:        "Supplier financed",
			Description: "Long payment terms make the cash conversion cycle negative",
			PeriodType:  engine.PeriodMonthly,
			Inputs: []engine.PeriodInput{
				{
					Label: "Jan", Revenue: 900000, GrossMarginPct: f(35),
					OperatingExpenses: 190000,
					ReceivableDays:    f(10), InventoryDays: f(12), PayableDays: f(55),
				},
				{
					Label: "Feb", Revenue: 950000, GrossMarginPct: f(35),
					OperatingExpenses: 195000,
					ReceivableDays:    f(10), InventoryDays: f(12), PayableDays: f(55),
				},
			},
		},
	}
}

// ListScenarios lists the available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios := demoScenarios()
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = ScenarioDTO{
			ID:          s.ID,
			Name:        s.Name,
			Description: s.Description,
			PeriodType:  string(s.PeriodType),
			PeriodCount: len(s.Inputs),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// LoadScenario processes a demo scenario with the default configuration
// and persists the run under the "demo" project.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	var scenario *demoScenario
	for _, s := range demoScenarios() {
		if s.ID == req.ID {
			scenario = &s
			break
		}
	}
	if scenario == nil {
		writeError(w, http.StatusNotFound, "unknown scenario "+req.ID)
		return
	}

	orch := engine.NewOrchestrator(engine.DefaultConfig())
	results, err := orch.ProcessPeriods(scenario.Inputs, scenario.PeriodType)
	if err != nil {
		writeProcessError(w, err)
		return
	}

	record := &sqlite.RunRecord{
		ProjectID:  "demo",
		ScenarioID: scenario.ID,
		PeriodType: scenario.PeriodType,
		Results:    results,
	}
	if err := h.Store.SaveRun(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to persist run: "+err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, RunResponse{
		RunID:      record.ID,
		ProjectID:  record.ProjectID,
		ScenarioID: record.ScenarioID,
		PeriodType: string(scenario.PeriodType),
		Results:    results,
		Aggregate:  h.Validator.ValidateAll(results),
		Focused:    h.Validator.ValidateLatest(results),
	})
}
