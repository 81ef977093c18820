/*
Package engine derives interlocking financial statements from sparse
period inputs.

PURPOSE:
  This package contains the calculation pipeline for SME financial
  modeling: income statement, working-capital schedule, cash-flow
  statement, estimated balance sheet, ratios, and period-over-period
  trends. Each deriver is a deterministic pure function of its inputs
  and an explicit Config - no globals, no I/O, no hidden state.

KEY CONCEPTS IN THIS FILE (types.go):
  - PeriodInput: raw business drivers for one period, immutable once
    submitted. Optional drivers are pointers: nil means "use the
    configured default or derive it".
  - Overrides: an explicit map keyed by a known field enum. A present
    override shadows the computed value and is recorded in the audit
    trail.
  - AuditTrail: a tagged sequence of {step, formula, inputs, value}
    records explaining how each subtotal was computed.
  - PeriodResult: the bundle of all five statements plus trends for
    one period index.

DESIGN PRINCIPLES:
  1. Forward-only data flow: input -> income -> working capital ->
     cash flow (+ prior period) -> balance sheet -> ratios -> trends.
  2. Recompute from scratch on every run; prior results are read,
     never mutated.
  3. Defined numbers everywhere: see guard.go.

SEE ALSO:
  - config.go: tunable defaults (tax scheme, day counts, heuristics)
  - orchestrator.go: sequencing across an ordered list of periods
*/
package engine

import "time"

// =============================================================================
// PERIOD TYPES
// =============================================================================

// PeriodType labels the granularity of every period in a run.
type PeriodType string

const (
	PeriodMonthly   PeriodType = "MONTHLY"
	PeriodQuarterly PeriodType = "QUARTERLY"
	PeriodYearly    PeriodType = "YEARLY"
)

// DaysInPeriod resolves the modeling day-count for a period type.
// Unknown labels fall back to monthly.
func (pt PeriodType) DaysInPeriod() float64 {
	switch pt {
	case PeriodMonthly:
		return 30
	case PeriodQuarterly:
		return 90
	case PeriodYearly:
		return 365
	default:
		return 30
	}
}

// MonthsInPeriod resolves how many months a period spans, used to prorate
// the progressive-tax threshold.
func (pt PeriodType) MonthsInPeriod() float64 {
	switch pt {
	case PeriodMonthly:
		return 1
	case PeriodQuarterly:
		return 3
	case PeriodYearly:
		return 12
	default:
		return 1
	}
}

// =============================================================================
// OVERRIDES - Explicit, enum-keyed field shadowing
// =============================================================================

// OverrideField identifies a derivable field that callers may pin to an
// explicit value. Keeping this a closed enum (rather than free-form
// "override_<field>" strings) means a typo is a validation error at the
// boundary instead of a silently ignored key.
type OverrideField string

const (
	OverrideRevenue           OverrideField = "revenue"
	OverrideCostOfGoods       OverrideField = "cost_of_goods"
	OverrideGrossProfit       OverrideField = "gross_profit"
	OverrideOperatingExpenses OverrideField = "operating_expenses"
	OverrideEBITDA            OverrideField = "ebitda"
	OverrideDepreciation      OverrideField = "depreciation"
	OverrideEBIT              OverrideField = "ebit"
	OverrideTotalTax          OverrideField = "total_tax"
	OverrideNetIncome         OverrideField = "net_income"
)

// KnownOverrideFields lists every accepted override key, for boundary
// validation.
var KnownOverrideFields = []OverrideField{
	OverrideRevenue,
	OverrideCostOfGoods,
	OverrideGrossProfit,
	OverrideOperatingExpenses,
	OverrideEBITDA,
	OverrideDepreciation,
	OverrideEBIT,
	OverrideTotalTax,
	OverrideNetIncome,
}

// IsKnownOverrideField reports whether f is part of the accepted enum.
func IsKnownOverrideField(f OverrideField) bool {
	for _, k := range KnownOverrideFields {
		if k == f {
			return true
		}
	}
	return false
}

// Overrides maps a field to the value that shadows its computed result.
type Overrides map[OverrideField]float64

// Get returns the override for f, if present.
func (o Overrides) Get(f OverrideField) (float64, bool) {
	if o == nil {
		return 0, false
	}
	v, ok := o[f]
	return v, ok
}

// =============================================================================
// PERIOD INPUT - Raw drivers for one period
// =============================================================================

// PeriodInput carries the raw business drivers for a single period.
// It is immutable once submitted to the pipeline.
//
// Optional fields are pointers: nil means "not supplied". For cost of
// goods, at most one of CostOfGoods / GrossMarginPct is expected; when
// both are present the explicit cost wins.
type PeriodInput struct {
	// Label identifies the period in results and validation findings
	// (e.g. "2025-01", "Q1/2025"). Optional; the orchestrator fills in
	// a positional label when empty.
	Label string

	// P&L drivers
	Revenue           float64
	CostOfGoods       *float64
	GrossMarginPct    *float64
	OperatingExpenses float64
	Depreciation      *float64
	FinancialRevenue  float64
	FinancialExpense  float64

	// Working-capital drivers. For each pair, value wins over days;
	// neither supplied means the configured default day-count.
	ReceivableDays  *float64
	InventoryDays   *float64
	PayableDays     *float64
	ReceivableValue *float64
	InventoryValue  *float64
	PayableValue    *float64

	// Cash-flow drivers
	Capex        *float64
	DebtChange   float64
	EquityChange float64
	Dividends    float64

	// Balance-sheet heuristic knob. nil means Config.AssetTurnover.
	AssetTurnover *float64

	// Explicit per-field overrides, applied after derivation.
	Overrides Overrides
}

// =============================================================================
// AUDIT TRAIL - How a statement was computed
// =============================================================================

// CalculationStep records one named derivation: the formula applied, the
// operand values, and the result. Steps are appended in derivation order.
type CalculationStep struct {
	Step    string             `json:"step"`
	Formula string             `json:"formula"`
	Inputs  map[string]float64 `json:"inputs,omitempty"`
	Value   float64            `json:"value"`
}

// AuditTrail explains an income statement: the input snapshot, every
// override that was applied, the derivation steps, and any out-of-range
// input notes. Notes are embedded rather than thrown - a margin above
// 100% still produces a statement, plus a note.
type AuditTrail struct {
	ComputedAt       time.Time          `json:"computed_at"`
	InputSnapshot    PeriodInput        `json:"input_snapshot"`
	OverridesApplied map[string]float64 `json:"overrides_applied,omitempty"`
	Steps            []CalculationStep  `json:"steps"`
	Notes            []string           `json:"notes,omitempty"`
}

// Step returns the first calculation step with the given name, if any.
func (a AuditTrail) Step(name string) (CalculationStep, bool) {
	for _, s := range a.Steps {
		if s.Step == name {
			return s, true
		}
	}
	return CalculationStep{}, false
}

// =============================================================================
// STATEMENTS
// =============================================================================

// TaxBreakdown details the progressive tax on positive pre-tax earnings.
// All components are 0 when earnings before tax are 0 or negative.
type TaxBreakdown struct {
	CSLL             float64 `json:"csll"`
	IRPJBase         float64 `json:"irpj_base"`
	IRPJSurtax       float64 `json:"irpj_surtax"`
	IRPJ             float64 `json:"irpj"`
	Total            float64 `json:"total"`
	EffectiveRatePct float64 `json:"effective_rate_pct"`
}

// IncomeStatement is the derived P&L for one period. Every subtotal
// equals the algebraic sum of its declared components within rounding
// tolerance; the validation engine re-derives each one.
type IncomeStatement struct {
	Revenue            float64      `json:"revenue"`
	CostOfGoods        float64      `json:"cost_of_goods"`
	GrossProfit        float64      `json:"gross_profit"`
	GrossMarginPct     float64      `json:"gross_margin_pct"`
	OperatingExpenses  float64      `json:"operating_expenses"`
	EBITDA             float64      `json:"ebitda"`
	Depreciation       float64      `json:"depreciation"`
	EBIT               float64      `json:"ebit"`
	FinancialRevenue   float64      `json:"financial_revenue"`
	FinancialExpense   float64      `json:"financial_expense"`
	NetFinancialResult float64      `json:"net_financial_result"`
	EarningsBeforeTax  float64      `json:"earnings_before_tax"`
	Tax                TaxBreakdown `json:"tax"`
	NetIncome          float64      `json:"net_income"`

	Audit AuditTrail `json:"audit"`
}

// WorkingCapitalMetrics holds the (days, value) pairs for receivables,
// inventory and payables, plus the derived cycle figures. Value and days
// are mutually derivable given the period's revenue / cost of goods;
// whichever was supplied determined the other.
type WorkingCapitalMetrics struct {
	ReceivableDays  float64 `json:"receivable_days"` // DSO
	InventoryDays   float64 `json:"inventory_days"`  // DIO
	PayableDays     float64 `json:"payable_days"`    // DPO
	ReceivableValue float64 `json:"receivable_value"`
	InventoryValue  float64 `json:"inventory_value"`
	PayableValue    float64 `json:"payable_value"`

	// DSO + DIO - DPO. Negative is a desirable financing pattern,
	// not an error.
	CashConversionCycle float64 `json:"cash_conversion_cycle"`

	WorkingCapitalValue      float64 `json:"working_capital_value"`
	WorkingCapitalPctRevenue float64 `json:"working_capital_pct_revenue"`
}

// CashFlowStatement is the derived cash flow for one period. Opening and
// closing cash are threaded by the orchestrator: the first period opens
// at Config.OpeningCash, subsequent periods open at the prior close.
type CashFlowStatement struct {
	OperatingCashFlow    float64 `json:"operating_cash_flow"`
	WorkingCapitalChange float64 `json:"working_capital_change"`

	Capex             float64 `json:"capex"`
	InvestingCashFlow float64 `json:"investing_cash_flow"`
	FreeCashFlow      float64 `json:"free_cash_flow"`

	DebtChange        float64 `json:"debt_change"`
	EquityChange      float64 `json:"equity_change"`
	Dividends         float64 `json:"dividends"`
	FinancingCashFlow float64 `json:"financing_cash_flow"`

	NetCashFlow float64 `json:"net_cash_flow"`
	OpeningCash float64 `json:"opening_cash"`
	ClosingCash float64 `json:"closing_cash"`

	// OCF over net income, as a percentage. Sign-sensitive: a profitable
	// period with negative OCF yields a negative rate.
	CashConversionRatePct float64 `json:"cash_conversion_rate_pct"`
}

// BalanceSheet is a heuristic reconstruction, not a ledger-derived
// statement: total assets are estimated from revenue via an
// asset-turnover ratio and the remaining lines are allocated so the
// accounting equation holds by construction. BalanceCheck documents the
// residual rounding error and must stay near 0.
type BalanceSheet struct {
	Cash          float64 `json:"cash"`
	Receivables   float64 `json:"receivables"`
	Inventory     float64 `json:"inventory"`
	CurrentAssets float64 `json:"current_assets"`

	NonCurrentAssets float64 `json:"non_current_assets"`
	TotalAssets      float64 `json:"total_assets"`

	Payables           float64 `json:"payables"`
	ShortTermDebt      float64 `json:"short_term_debt"`
	AccruedExpenses    float64 `json:"accrued_expenses"`
	CurrentLiabilities float64 `json:"current_liabilities"`

	LongTermDebt     float64 `json:"long_term_debt"`
	TotalLiabilities float64 `json:"total_liabilities"`

	Equity float64 `json:"equity"`

	BalanceCheck      float64 `json:"balance_check"`
	AssetTurnoverUsed float64 `json:"asset_turnover_used"`
}

// FinancialRatios are pure arithmetic over the three statements above.
// Zero denominators yield 0, never an error.
type FinancialRatios struct {
	// Liquidity
	CurrentRatio float64 `json:"current_ratio"`
	QuickRatio   float64 `json:"quick_ratio"`
	CashRatio    float64 `json:"cash_ratio"`

	// Leverage
	DebtToEquity float64 `json:"debt_to_equity"`
	DebtRatio    float64 `json:"debt_ratio"`
	EquityRatio  float64 `json:"equity_ratio"`

	// Profitability (percent)
	ReturnOnEquityPct          float64 `json:"return_on_equity_pct"`
	ReturnOnAssetsPct          float64 `json:"return_on_assets_pct"`
	ReturnOnInvestedCapitalPct float64 `json:"return_on_invested_capital_pct"`

	// Efficiency
	AssetTurnover float64 `json:"asset_turnover"`
}

// =============================================================================
// PERIOD RESULT - One period's full bundle
// =============================================================================

// Trends holds period-over-period deltas versus the immediately preceding
// period. HasPrior is false (and all deltas zero) for the first period.
type Trends struct {
	HasPrior bool `json:"has_prior"`

	RevenueGrowthPct    float64 `json:"revenue_growth_pct"`
	GrossMarginDeltaPts float64 `json:"gross_margin_delta_pts"`

	// Profit growth uses the prior period's absolute net income as the
	// growth base so it stays defined through sign changes.
	ProfitGrowthPct float64 `json:"profit_growth_pct"`
}

// PeriodResult bundles the five derived statements plus trends for one
// period index. Results are produced once per run and never mutated.
type PeriodResult struct {
	Index        int        `json:"index"`
	Label        string     `json:"label"`
	PeriodType   PeriodType `json:"period_type"`
	DaysInPeriod float64    `json:"days_in_period"`

	Input          PeriodInput           `json:"input"`
	Income         IncomeStatement       `json:"income"`
	WorkingCapital WorkingCapitalMetrics `json:"working_capital"`
	CashFlow       CashFlowStatement     `json:"cash_flow"`
	BalanceSheet   BalanceSheet          `json:"balance_sheet"`
	Ratios         FinancialRatios       `json:"ratios"`
	Trends         Trends                `json:"trends"`
}
