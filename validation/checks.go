/*
checks.go - Per-period validation checks

PURPOSE:
  Each check inspects one PeriodResult and returns zero or more Issues.
  Checks are independent: they never read each other's findings and one
  violation never suppresses another.

CHECK INVENTORY:
  checkInternalConsistency  stored vs recomputed balance difference
  checkBalanceMateriality   two-tier materiality on the imbalance
  checkInventoryDays        >365d critical, <1d implausible, value share
  checkInsolvency           negative closing cash AND negative EBIT
  checkCashCycle            negative cycle note, long cycle note
  checkPnLEquations         each subtotal re-derived and compared
  checkBalanceComponents    components must not exceed their totals
  checkOverrides            mutual arithmetic + excessive-override count

SEE ALSO:
  - engine.go: runs the inventory over sequences of periods
*/
package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/warp/statement-engine/engine"
)

// Validator holds the tunable thresholds for every check. Zero-config
// callers use NewValidator.
type Validator struct {
	// Balance materiality tiers: critical beyond
	// max(CriticalPct% of assets, CriticalFloor); warning beyond
	// max(WarningPct% of assets, WarningFloor).
	BalanceCriticalPct   float64
	BalanceCriticalFloor float64
	BalanceWarningPct    float64
	BalanceWarningFloor  float64

	// Absolute floor for P&L equation tolerances.
	PnLFloor float64

	// Inventory thresholds.
	InventoryDaysCritical  float64
	InventoryValueSharePct float64

	// Working-capital cycle note threshold (days).
	LongCycleDays float64

	// Trend detectors.
	FCFNegativeShare float64 // share of periods with negative FCF
	DriftFloor       float64 // materiality floor for worsening drift

	// Override checks.
	MaxOverrides int
}

// NewValidator returns a validator with the default thresholds.
func NewValidator() *Validator {
	return &Validator{
		BalanceCriticalPct:   2,
		BalanceCriticalFloor: 100,
		BalanceWarningPct:    1,
		BalanceWarningFloor:  1,

		PnLFloor: 1,

		InventoryDaysCritical:  365,
		InventoryValueSharePct: 75,

		LongCycleDays: 120,

		FCFNegativeShare: 0.6,
		DriftFloor:       100,

		MaxOverrides: 7,
	}
}

// checkPeriod runs every per-period check.
func (v *Validator) checkPeriod(r engine.PeriodResult) []Issue {
	var issues []Issue
	issues = append(issues, v.checkInternalConsistency(r)...)
	issues = append(issues, v.checkBalanceMateriality(r)...)
	issues = append(issues, v.checkInventoryDays(r)...)
	issues = append(issues, v.checkInsolvency(r)...)
	issues = append(issues, v.checkCashCycle(r)...)
	issues = append(issues, v.checkPnLEquations(r)...)
	issues = append(issues, v.checkBalanceComponents(r)...)
	issues = append(issues, v.checkOverrides(r)...)
	return issues
}

// recomputedImbalance independently re-derives assets - (liabilities +
// equity) from the stored components.
func recomputedImbalance(bs engine.BalanceSheet) float64 {
	return bs.TotalAssets - (bs.TotalLiabilities + bs.Equity)
}

// checkInternalConsistency flags a stored balance check that disagrees
// with the recomputed imbalance. A mismatch here means the pipeline
// itself miscalculated, which is a different problem from a genuinely
// unbalanced sheet.
func (v *Validator) checkInternalConsistency(r engine.PeriodResult) []Issue {
	recomputed := recomputedImbalance(r.BalanceSheet)
	if math.Abs(r.BalanceSheet.BalanceCheck-recomputed) <= 1 {
		return nil
	}
	return []Issue{{
		Type:     TypeInternalBalanceCheckMismatch,
		Category: CategoryInternal,
		Severity: SeverityCritical,
		Field:    "balance_check",
		Period:   r.Label,
		Message: fmt.Sprintf(
			"stored balance check %.2f disagrees with recomputed difference %.2f; internal calculation bug",
			r.BalanceSheet.BalanceCheck, recomputed),
		Suggestion: "recompute the run; report this result set if the mismatch persists",
	}}
}

// checkBalanceMateriality applies the two-tier materiality policy to the
// recomputed imbalance.
func (v *Validator) checkBalanceMateriality(r engine.PeriodResult) []Issue {
	bs := r.BalanceSheet
	diff := math.Abs(recomputedImbalance(bs))

	critical := math.Max(math.Abs(bs.TotalAssets)*v.BalanceCriticalPct/100, v.BalanceCriticalFloor)
	warning := math.Max(math.Abs(bs.TotalAssets)*v.BalanceWarningPct/100, v.BalanceWarningFloor)

	switch {
	case diff > critical:
		return []Issue{{
			Type:     TypeBalanceSheetInconsistent,
			Category: CategoryBalanceSheet,
			Severity: SeverityCritical,
			Field:    "total_assets",
			Period:   r.Label,
			Message: fmt.Sprintf(
				"balance sheet difference %.2f exceeds materiality threshold %.2f",
				diff, critical),
			Suggestion: "review working-capital inputs and overrides for this period",
		}}
	case diff > warning:
		return []Issue{{
			Type:     TypeBalanceSheetDrift,
			Category: CategoryBalanceSheet,
			Severity: SeverityWarning,
			Field:    "total_assets",
			Period:   r.Label,
			Message: fmt.Sprintf(
				"balance sheet difference %.2f above warning threshold %.2f",
				diff, warning),
		}}
	}
	return nil
}

// checkInventoryDays flags extreme or implausible inventory holding
// periods and an inventory value out of proportion to revenue.
func (v *Validator) checkInventoryDays(r engine.PeriodResult) []Issue {
	wc := r.WorkingCapital
	income := r.Income
	var issues []Issue

	if wc.InventoryDays > v.InventoryDaysCritical {
		issues = append(issues, Issue{
			Type:     TypeInventoryDaysExtreme,
			Category: CategoryWorkingCapital,
			Severity: SeverityCritical,
			Field:    "inventory_days",
			Period:   r.Label,
			Message: fmt.Sprintf("inventory days %.2f exceed %.0f; stock turns less than once a year",
				wc.InventoryDays, v.InventoryDaysCritical),
			Suggestion: "check the inventory value or cost-of-goods basis",
		})
	}
	if wc.InventoryDays < 1 && wc.InventoryValue > 0 && income.CostOfGoods > 0 {
		issues = append(issues, Issue{
			Type:     TypeInventoryDaysImplausible,
			Category: CategoryWorkingCapital,
			Severity: SeverityWarning,
			Field:    "inventory_days",
			Period:   r.Label,
			Message: fmt.Sprintf("inventory days %.2f below 1 while inventory value %.2f is positive",
				wc.InventoryDays, wc.InventoryValue),
		})
	}
	if income.Revenue > 0 && wc.InventoryValue > income.Revenue*v.InventoryValueSharePct/100 {
		issues = append(issues, Issue{
			Type:     TypeInventoryValueExcessive,
			Category: CategoryWorkingCapital,
			Severity: SeverityWarning,
			Field:    "inventory_value",
			Period:   r.Label,
			Message: fmt.Sprintf("inventory value %.2f exceeds %.0f%% of revenue",
				wc.InventoryValue, v.InventoryValueSharePct),
		})
	}
	return issues
}

// checkInsolvency requires BOTH negative closing cash and negative EBIT;
// a single negative metric does not trigger it.
func (v *Validator) checkInsolvency(r engine.PeriodResult) []Issue {
	if r.CashFlow.ClosingCash >= 0 || r.Income.EBIT >= 0 {
		return nil
	}
	return []Issue{{
		Type:     TypeInsolvencyRisk,
		Category: CategoryLiquidity,
		Severity: SeverityCritical,
		Field:    "closing_cash, ebit",
		Period:   r.Label,
		Message: fmt.Sprintf(
			"closing cash %.2f and EBIT %.2f are both negative; operating losses are consuming cash",
			r.CashFlow.ClosingCash, r.Income.EBIT),
		Suggestion: "model a financing injection or cost reduction for this period",
	}}
}

// checkCashCycle emits a positive note for a negative cycle and an
// optimization note for a very long one.
func (v *Validator) checkCashCycle(r engine.PeriodResult) []Issue {
	ccc := r.WorkingCapital.CashConversionCycle
	switch {
	case ccc < 0:
		return []Issue{{
			Type:     TypeNegativeCashCycle,
			Category: CategoryWorkingCapital,
			Severity: SeveritySuccess,
			Field:    "cash_conversion_cycle",
			Period:   r.Label,
			Message: fmt.Sprintf(
				"cash conversion cycle of %.2f days: suppliers finance the operation", ccc),
		}}
	case ccc > v.LongCycleDays:
		return []Issue{{
			Type:     TypeLongCashCycle,
			Category: CategoryWorkingCapital,
			Severity: SeverityInfo,
			Field:    "cash_conversion_cycle",
			Period:   r.Label,
			Message: fmt.Sprintf(
				"cash conversion cycle of %.2f days exceeds %.0f; cash is tied up in operations",
				ccc, v.LongCycleDays),
			Suggestion: "negotiate payment terms or reduce inventory days",
		}}
	}
	return nil
}

// checkPnLEquations re-derives each P&L subtotal and compares it to the
// stored value within scaled tolerance. All offending fields are
// attached to a single issue.
func (v *Validator) checkPnLEquations(r engine.PeriodResult) []Issue {
	is := r.Income

	type equation struct {
		field     string
		stored    float64
		rederived float64
	}
	equations := []equation{
		{"gross_profit", is.GrossProfit, is.Revenue - is.CostOfGoods},
		{"ebitda", is.EBITDA, is.GrossProfit - is.OperatingExpenses},
		{"ebit", is.EBIT, is.EBITDA - is.Depreciation},
		{"earnings_before_tax", is.EarningsBeforeTax, is.EBIT + is.NetFinancialResult},
		{"net_income", is.NetIncome, is.EarningsBeforeTax - is.Tax.Total},
	}

	var fields []string
	for _, eq := range equations {
		if math.Abs(eq.stored-eq.rederived) > Tolerance(eq.rederived, v.PnLFloor) {
			fields = append(fields, eq.field)
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return []Issue{{
		Type:     TypePnLEquationViolation,
		Category: CategoryIncome,
		Severity: SeverityCritical,
		Field:    strings.Join(fields, ", "),
		Period:   r.Label,
		Message: fmt.Sprintf(
			"stored subtotals disagree with their components: %s", strings.Join(fields, ", ")),
		Suggestion: "conflicting overrides are the usual cause; review the audit trail",
	}}
}

// checkBalanceComponents verifies current assets and liabilities do not
// exceed their respective totals.
func (v *Validator) checkBalanceComponents(r engine.PeriodResult) []Issue {
	bs := r.BalanceSheet

	var fields []string
	if bs.CurrentAssets > bs.TotalAssets+Tolerance(bs.TotalAssets, v.PnLFloor) {
		fields = append(fields, "current_assets")
	}
	if bs.CurrentLiabilities > bs.TotalLiabilities+Tolerance(bs.TotalLiabilities, v.PnLFloor) {
		fields = append(fields, "current_liabilities")
	}
	if len(fields) == 0 {
		return nil
	}
	return []Issue{{
		Type:     TypeBalanceComponentViolation,
		Category: CategoryBalanceSheet,
		Severity: SeverityCritical,
		Field:    strings.Join(fields, ", "),
		Period:   r.Label,
		Message: fmt.Sprintf(
			"balance sheet components exceed their totals: %s", strings.Join(fields, ", ")),
	}}
}

// checkOverrides verifies the mutual arithmetic of simultaneously
// supplied overrides and flags excessive override counts.
func (v *Validator) checkOverrides(r engine.PeriodResult) []Issue {
	ov := r.Input.Overrides
	if len(ov) == 0 {
		return nil
	}

	var issues []Issue

	revenue := r.Income.Revenue
	cogs, hasCogs := ov.Get(engine.OverrideCostOfGoods)
	gp, hasGP := ov.Get(engine.OverrideGrossProfit)
	if hasCogs && hasGP {
		if math.Abs((cogs+gp)-revenue) > Tolerance(revenue, v.PnLFloor) {
			issues = append(issues, Issue{
				Type:     TypeOverrideConflict,
				Category: CategoryOverrides,
				Severity: SeverityCritical,
				Field:    "cost_of_goods, gross_profit",
				Period:   r.Label,
				Message: fmt.Sprintf(
					"override cost of goods %.2f + override gross profit %.2f = %.2f, but revenue is %.2f",
					cogs, gp, cogs+gp, revenue),
				Suggestion: "drop one of the two overrides, or align them with revenue",
			})
		}
	}

	ebitda, hasEBITDA := ov.Get(engine.OverrideEBITDA)
	ebit, hasEBIT := ov.Get(engine.OverrideEBIT)
	dep, hasDep := ov.Get(engine.OverrideDepreciation)
	if hasEBITDA && hasEBIT && hasDep {
		if math.Abs((ebitda-dep)-ebit) > Tolerance(ebit, v.PnLFloor) {
			issues = append(issues, Issue{
				Type:     TypeOverrideConflict,
				Category: CategoryOverrides,
				Severity: SeverityCritical,
				Field:    "ebitda, depreciation, ebit",
				Period:   r.Label,
				Message: fmt.Sprintf(
					"override EBITDA %.2f - depreciation %.2f = %.2f, but override EBIT is %.2f",
					ebitda, dep, ebitda-dep, ebit),
			})
		}
	}

	if len(ov) > v.MaxOverrides {
		issues = append(issues, Issue{
			Type:     TypeExcessiveOverrides,
			Category: CategoryOverrides,
			Severity: SeverityWarning,
			Field:    "overrides",
			Period:   r.Label,
			Message: fmt.Sprintf(
				"%d overrides supplied; with more than %d the derived statements mostly restate the inputs",
				len(ov), v.MaxOverrides),
			Suggestion: "prefer adjusting the raw drivers over pinning derived fields",
		})
	}

	return issues
}
