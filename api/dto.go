/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types
  decouple the engine's input model from the external contract and
  centralize the override coercion rules at the boundary.

OVERRIDE COERCION:
  Overrides arrive as a JSON object of field -> value. Values are
  numeric-coerced: JSON numbers pass through, numeric strings are
  parsed, and null / empty-string / non-numeric values are ignored
  silently (NOT treated as zero). Unknown field KEYS are not dropped
  here - they flow into the engine's batch validation, which rejects
  them with an aggregated error, so a typo is loud instead of silent.

NAMING CONVENTION:
  - *DTO: payload types shared by requests and responses
  - *Request: request body types from clients
  - *Response: response wrappers

SEE ALSO:
  - handlers.go: uses these types
  - engine/types.go: the internal input model
*/
package api

import (
	"strconv"

	"github.com/warp/statement-engine/engine"
	"github.com/warp/statement-engine/validation"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// PeriodInputDTO is the wire form of one period's raw drivers.
type PeriodInputDTO struct {
	Label string `json:"label,omitempty"`

	Revenue           float64  `json:"revenue"`
	CostOfGoods       *float64 `json:"cost_of_goods,omitempty"`
	GrossMarginPct    *float64 `json:"gross_margin_pct,omitempty"`
	OperatingExpenses float64  `json:"operating_expenses"`
	Depreciation      *float64 `json:"depreciation,omitempty"`
	FinancialRevenue  float64  `json:"financial_revenue,omitempty"`
	FinancialExpense  float64  `json:"financial_expense,omitempty"`

	ReceivableDays  *float64 `json:"receivable_days,omitempty"`
	InventoryDays   *float64 `json:"inventory_days,omitempty"`
	PayableDays     *float64 `json:"payable_days,omitempty"`
	ReceivableValue *float64 `json:"receivable_value,omitempty"`
	InventoryValue  *float64 `json:"inventory_value,omitempty"`
	PayableValue    *float64 `json:"payable_value,omitempty"`

	Capex        *float64 `json:"capex,omitempty"`
	DebtChange   float64  `json:"debt_change,omitempty"`
	EquityChange float64  `json:"equity_change,omitempty"`
	Dividends    float64  `json:"dividends,omitempty"`

	AssetTurnover *float64 `json:"asset_turnover,omitempty"`

	Overrides map[string]any `json:"overrides,omitempty"`
}

// ToEngine converts the DTO to the engine's input model, applying the
// override coercion rules.
func (d PeriodInputDTO) ToEngine() engine.PeriodInput {
	return engine.PeriodInput{
		Label: d.Label,

		Revenue:           d.Revenue,
		CostOfGoods:       d.CostOfGoods,
		GrossMarginPct:    d.GrossMarginPct,
		OperatingExpenses: d.OperatingExpenses,
		Depreciation:      d.Depreciation,
		FinancialRevenue:  d.FinancialRevenue,
		FinancialExpense:  d.FinancialExpense,

		ReceivableDays:  d.ReceivableDays,
		InventoryDays:   d.InventoryDays,
		PayableDays:     d.PayableDays,
		ReceivableValue: d.ReceivableValue,
		InventoryValue:  d.InventoryValue,
		PayableValue:    d.PayableValue,

		Capex:        d.Capex,
		DebtChange:   d.DebtChange,
		EquityChange: d.EquityChange,
		Dividends:    d.Dividends,

		AssetTurnover: d.AssetTurnover,

		Overrides: coerceOverrides(d.Overrides),
	}
}

// coerceOverrides applies the boundary coercion rules: numbers pass,
// numeric strings parse, everything else is ignored silently.
func coerceOverrides(raw map[string]any) engine.Overrides {
	if len(raw) == 0 {
		return nil
	}
	out := make(engine.Overrides, len(raw))
	for key, val := range raw {
		switch v := val.(type) {
		case float64:
			out[engine.OverrideField(key)] = v
		case string:
			if v == "" {
				continue
			}
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				out[engine.OverrideField(key)] = parsed
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ProcessRunRequest asks for a batch to be computed. Config is resolved
// with priority: inline document > preset name > engine defaults.
type ProcessRunRequest struct {
	ProjectID    string           `json:"project_id"`
	ScenarioID   string           `json:"scenario_id"`
	PeriodType   string           `json:"period_type"`
	ConfigPreset string           `json:"config_preset,omitempty"`
	Config       *ConfigDocument  `json:"config,omitempty"`
	Periods      []PeriodInputDTO `json:"periods"`
}

// ConfigDocument carries an inline configuration as raw JSON for the
// factory to parse.
type ConfigDocument struct {
	Raw []byte
}

// UnmarshalJSON keeps the document raw.
func (c *ConfigDocument) UnmarshalJSON(data []byte) error {
	c.Raw = append(c.Raw[:0], data...)
	return nil
}

// MarshalJSON emits the raw document.
func (c ConfigDocument) MarshalJSON() ([]byte, error) {
	if len(c.Raw) == 0 {
		return []byte("null"), nil
	}
	return c.Raw, nil
}

// RunResponse is the full outcome of a processed batch.
type RunResponse struct {
	RunID      string                     `json:"run_id,omitempty"`
	ProjectID  string                     `json:"project_id,omitempty"`
	ScenarioID string                     `json:"scenario_id,omitempty"`
	PeriodType string                     `json:"period_type"`
	Results    []engine.PeriodResult      `json:"results"`
	Aggregate  validation.AggregateReport `json:"aggregate_report"`
	Focused    validation.FocusedReport   `json:"focused_report"`
}

// RunSummaryDTO is a listing row.
type RunSummaryDTO struct {
	ID          string `json:"id"`
	ProjectID   string `json:"project_id"`
	ScenarioID  string `json:"scenario_id"`
	PeriodType  string `json:"period_type"`
	PeriodCount int    `json:"period_count"`
	CreatedAt   string `json:"created_at"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
}

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PeriodType  string `json:"period_type"`
	PeriodCount int    `json:"period_count"`
}

// LoadScenarioRequest loads a demo scenario by id.
type LoadScenarioRequest struct {
	ID string `json:"id"`
}
