/*
engine.go - Validation entry points

PURPOSE:
  Two usage modes over the same period sequence:

  ValidateAll (aggregate mode):
    Runs every check over every period and buckets findings by
    severity, independent of period order.

  ValidateLatest (latest-period-focused mode):
    Treats the final period as "current". Its critical issues surface
    individually; warning patterns recurring across periods collapse
    into single consolidated entries carrying the affected period list;
    trend detectors run over the whole sequence (persistent negative
    free cash flow, monotonically worsening balance drift).

  Both are pure, read-only, and never fail - an empty input yields an
  empty report.

SEE ALSO:
  - checks.go: the per-period check inventory and thresholds
*/
package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/warp/statement-engine/engine"
)

// ValidateAll runs aggregate mode with default thresholds.
func ValidateAll(results []engine.PeriodResult) AggregateReport {
	return NewValidator().ValidateAll(results)
}

// ValidateLatest runs latest-period-focused mode with default thresholds.
func ValidateLatest(results []engine.PeriodResult) FocusedReport {
	return NewValidator().ValidateLatest(results)
}

// ValidateAll buckets every finding over every period by severity.
func (v *Validator) ValidateAll(results []engine.PeriodResult) AggregateReport {
	var report AggregateReport
	for _, r := range results {
		for _, issue := range v.checkPeriod(r) {
			switch issue.Severity {
			case SeverityCritical:
				report.Errors = append(report.Errors, issue)
			case SeverityWarning:
				report.Warnings = append(report.Warnings, issue)
			case SeverityInfo:
				report.Infos = append(report.Infos, issue)
			case SeveritySuccess:
				report.Successes = append(report.Successes, issue)
			}
		}
	}
	return report
}

// ValidateLatest focuses on the final period and consolidates
// multi-period patterns.
func (v *Validator) ValidateLatest(results []engine.PeriodResult) FocusedReport {
	if len(results) == 0 {
		return FocusedReport{}
	}
	latest := results[len(results)-1]
	report := FocusedReport{PeriodLabel: latest.Label}

	// Warnings grouped by type across the whole sequence, preserving
	// first-seen order of types.
	warningPeriods := make(map[string][]string)
	warningSample := make(map[string]Issue)
	var warningOrder []string

	for _, r := range results {
		for _, issue := range v.checkPeriod(r) {
			isLatest := r.Label == latest.Label && r.Index == latest.Index

			switch issue.Severity {
			case SeverityCritical:
				if isLatest {
					report.Critical = append(report.Critical, issue)
				}
			case SeverityWarning:
				if _, seen := warningPeriods[issue.Type]; !seen {
					warningOrder = append(warningOrder, issue.Type)
					warningSample[issue.Type] = issue
				}
				warningPeriods[issue.Type] = append(warningPeriods[issue.Type], r.Label)
			case SeverityInfo, SeveritySuccess:
				if isLatest {
					report.Notes = append(report.Notes, issue)
				}
			}
		}
	}

	for _, typ := range warningOrder {
		periods := warningPeriods[typ]
		sample := warningSample[typ]
		if len(periods) == 1 {
			// No pattern; keep only when it concerns the current period.
			if periods[0] == latest.Label {
				report.Consolidated = append(report.Consolidated, sample)
			}
			continue
		}
		report.Consolidated = append(report.Consolidated, Issue{
			Type:     sample.Type,
			Category: sample.Category,
			Severity: SeverityWarning,
			Field:    sample.Field,
			Message: fmt.Sprintf("recurring in %d of %d periods: %s",
				len(periods), len(results), sample.Message),
			Suggestion:      sample.Suggestion,
			AffectedPeriods: periods,
		})
	}

	report.Trends = append(report.Trends, v.detectNegativeFCFTrend(results)...)
	report.Trends = append(report.Trends, v.detectWorseningDrift(results)...)

	return report
}

// detectNegativeFCFTrend flags free cash flow negative in at least the
// configured share of periods.
func (v *Validator) detectNegativeFCFTrend(results []engine.PeriodResult) []Issue {
	var negative []string
	for _, r := range results {
		if r.CashFlow.FreeCashFlow < 0 {
			negative = append(negative, r.Label)
		}
	}
	if len(results) == 0 || float64(len(negative))/float64(len(results)) < v.FCFNegativeShare {
		return nil
	}
	return []Issue{{
		Type:     TypeFreeCashFlowNegativeTrend,
		Category: CategoryCashFlow,
		Severity: SeverityWarning,
		Field:    "free_cash_flow",
		Message: fmt.Sprintf(
			"free cash flow negative in %d of %d periods (%s)",
			len(negative), len(results), strings.Join(negative, ", ")),
		Suggestion:      "the business consumes cash faster than it generates it; review capex and working-capital growth",
		AffectedPeriods: negative,
	}}
}

// detectWorseningDrift flags a balance-sheet difference that worsens
// monotonically over the last three periods and ends beyond the
// materiality floor.
func (v *Validator) detectWorseningDrift(results []engine.PeriodResult) []Issue {
	if len(results) < 3 {
		return nil
	}
	last3 := results[len(results)-3:]

	diffs := make([]float64, 3)
	labels := make([]string, 3)
	for i, r := range last3 {
		diffs[i] = math.Abs(recomputedImbalance(r.BalanceSheet))
		labels[i] = r.Label
	}
	if !(diffs[0] < diffs[1] && diffs[1] < diffs[2]) {
		return nil
	}
	if diffs[2] <= v.DriftFloor {
		return nil
	}
	return []Issue{{
		Type:     TypeBalanceDriftWorsening,
		Category: CategoryBalanceSheet,
		Severity: SeverityWarning,
		Field:    "total_assets",
		Message: fmt.Sprintf(
			"balance sheet difference worsening over the last three periods: %.2f -> %.2f -> %.2f",
			diffs[0], diffs[1], diffs[2]),
		Suggestion:      "a systematically growing imbalance usually points at a mis-specified input series",
		AffectedPeriods: labels,
	}}
}
