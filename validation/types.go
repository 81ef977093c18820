/*
Package validation audits orchestrated period results.

PURPOSE:
  A second, read-only pass over a []engine.PeriodResult that flags
  numerical inconsistencies and business-risk patterns. Findings are
  DATA, never errors: even a critical issue is returned to the caller
  as an Issue record, and neither entry point can fail.

KEY CONCEPTS IN THIS FILE (types.go):
  - Issue: one finding, produced once and never mutated. Attached to a
    single period, or consolidated across periods (consolidated issues
    carry the list of affected period labels).
  - Severity: critical | warning | info | success. A "success" is a
    positive observation (e.g. a negative cash-conversion cycle).
  - AggregateReport / FocusedReport: the two usage modes' outputs.
  - Tolerance: the magnitude-scaled comparison threshold used by every
    numeric check.

DESIGN PRINCIPLES:
  1. Read-only: the validator never touches the results it audits.
  2. Independent checks: each check stands alone; one finding never
     suppresses another.
  3. Scaled tolerance: max(|amount| * 0.5%, absolute floor), so large
     companies aren't flagged for rounding dust and small companies
     still surface real issues.

SEE ALSO:
  - checks.go: the individual per-period checks
  - engine.go: aggregate and latest-period-focused entry points
*/
package validation

import "math"

// =============================================================================
// SEVERITY
// =============================================================================

// Severity ranks a finding. Critical findings bucket as errors in the
// aggregate report.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
	SeveritySuccess  Severity = "success"
)

// =============================================================================
// ISSUE TYPES - snake_case codes, stable across releases
// =============================================================================

const (
	// Internal-consistency signal: the stored balance check disagrees
	// with the independently recomputed difference. This is a
	// calculation bug, distinct from a genuine imbalance.
	TypeInternalBalanceCheckMismatch = "internal_balance_check_mismatch"

	TypeBalanceSheetInconsistent = "balance_sheet_inconsistent"
	TypeBalanceSheetDrift        = "balance_sheet_drift"
	TypeBalanceDriftWorsening    = "balance_drift_worsening"

	TypeInventoryDaysExtreme     = "inventory_days_extreme"
	TypeInventoryDaysImplausible = "inventory_days_implausible"
	TypeInventoryValueExcessive  = "inventory_value_excessive"

	TypeInsolvencyRisk = "insolvency_risk"

	TypeFreeCashFlowNegativeTrend = "free_cash_flow_negative_trend"

	TypeNegativeCashCycle = "negative_cash_cycle"
	TypeLongCashCycle     = "long_cash_cycle"

	TypePnLEquationViolation      = "pnl_equation_violation"
	TypeBalanceComponentViolation = "balance_component_violation"

	TypeOverrideConflict   = "override_conflict"
	TypeExcessiveOverrides = "excessive_overrides"
)

// Issue categories group findings for presentation.
const (
	CategoryInternal       = "internal"
	CategoryBalanceSheet   = "balance_sheet"
	CategoryWorkingCapital = "working_capital"
	CategoryLiquidity      = "liquidity"
	CategoryCashFlow       = "cash_flow"
	CategoryIncome         = "income_statement"
	CategoryOverrides      = "overrides"
)

// =============================================================================
// ISSUE
// =============================================================================

// Issue is a single validation finding.
type Issue struct {
	Type     string   `json:"type"`
	Category string   `json:"category"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`

	// Field names the offending field(s); comma-joined when a check
	// flags several at once.
	Field string `json:"field,omitempty"`

	// Period labels the single period this issue is attached to.
	// Empty for consolidated and trend issues.
	Period string `json:"period,omitempty"`

	Suggestion string `json:"suggestion,omitempty"`

	// AffectedPeriods is set on consolidated and trend issues.
	AffectedPeriods []string `json:"affected_periods,omitempty"`
}

// =============================================================================
// REPORTS
// =============================================================================

// AggregateReport buckets every finding over every period by severity,
// independent of period order.
type AggregateReport struct {
	Errors    []Issue `json:"errors"`
	Warnings  []Issue `json:"warnings"`
	Infos     []Issue `json:"infos"`
	Successes []Issue `json:"successes"`
}

// Total returns the total number of findings in the report.
func (r AggregateReport) Total() int {
	return len(r.Errors) + len(r.Warnings) + len(r.Infos) + len(r.Successes)
}

// FocusedReport treats the final period as "current": its critical
// issues surface individually, multi-period warning patterns collapse
// into consolidated entries, and trend detectors run over the whole
// sequence.
type FocusedReport struct {
	PeriodLabel string `json:"period_label"`

	Critical     []Issue `json:"critical"`
	Consolidated []Issue `json:"consolidated"`
	Trends       []Issue `json:"trends"`

	// Notes carries the latest period's info and success findings.
	Notes []Issue `json:"notes"`
}

// =============================================================================
// TOLERANCE
// =============================================================================

// Tolerance returns the comparison threshold for a given magnitude:
// max(|amount| * 0.5%, floor). Scales with transaction size while still
// catching issues in small companies.
func Tolerance(amount, floor float64) float64 {
	return math.Max(math.Abs(amount)*0.005, floor)
}
