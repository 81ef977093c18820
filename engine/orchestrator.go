/*
orchestrator.go - Period sequencing

PURPOSE:
  Runs the five derivers across an ordered list of periods, threading
  prior-period results (working capital and closing cash) into each
  next period, and computes period-over-period trends.

VALIDATION FIRST:
  The raw batch is validated before ANY computation: revenue must be
  non-negative, a supplied gross margin percentage must be in [0, 100],
  and override keys must be part of the known field enum. Every problem
  across the whole batch is collected into a single
  BatchValidationError, so partial results are never produced for an
  invalid batch.

DETERMINISM:
  Identical input batches yield identical results. The only timestamp
  anywhere is inside the audit trail; no monetary field depends on the
  clock, and no state survives between runs.

SEE ALSO:
  - async.go: background-worker offload of an entire run
  - validation/: second, read-only pass over the results
*/
package engine

import (
	"fmt"
	"math"
)

// Orchestrator sequences the calculation pipeline over ordered periods.
// It is stateless; a single Orchestrator may run concurrent batches.
type Orchestrator struct {
	Config Config
}

// NewOrchestrator returns an orchestrator using the given configuration.
func NewOrchestrator(cfg Config) *Orchestrator {
	return &Orchestrator{Config: cfg}
}

// ProcessPeriods derives the full statement bundle for every period, in
// order. It returns a BatchValidationError listing every invalid period
// before computing anything; after validation passes it never fails.
func (o *Orchestrator) ProcessPeriods(inputs []PeriodInput, periodType PeriodType) ([]PeriodResult, error) {
	if len(inputs) == 0 {
		return nil, ErrEmptyBatch
	}
	if err := o.validateBatch(inputs); err != nil {
		return nil, err
	}

	days := periodType.DaysInPeriod()
	months := periodType.MonthsInPeriod()

	results := make([]PeriodResult, 0, len(inputs))
	openingCash := o.Config.OpeningCash
	var prior *PeriodResult

	for i, in := range inputs {
		label := in.Label
		if label == "" {
			label = fmt.Sprintf("P%d", i+1)
		}

		income := DeriveIncomeStatement(o.Config, in, months)
		wc := DeriveWorkingCapital(o.Config, in, income, days)

		var priorWC *WorkingCapitalMetrics
		if prior != nil {
			priorWC = &prior.WorkingCapital
		}
		cashFlow := DeriveCashFlow(o.Config, in, income, wc, priorWC, openingCash)

		bs := EstimateBalanceSheet(o.Config, in, income, wc)
		ratios := ComputeRatios(income, bs)

		result := PeriodResult{
			Index:        i,
			Label:        label,
			PeriodType:   periodType,
			DaysInPeriod: days,

			Input:          in,
			Income:         income,
			WorkingCapital: wc,
			CashFlow:       cashFlow,
			BalanceSheet:   bs,
			Ratios:         ratios,
			Trends:         deriveTrends(prior, income),
		}

		results = append(results, result)
		openingCash = cashFlow.ClosingCash
		prior = &results[len(results)-1]
	}

	return results, nil
}

// validateBatch collects every fatal input problem across the batch.
func (o *Orchestrator) validateBatch(inputs []PeriodInput) error {
	var problems []InputProblem

	add := func(i int, label, field, msg string) {
		problems = append(problems, InputProblem{
			PeriodIndex: i, PeriodLabel: label, Field: field, Message: msg,
		})
	}

	for i, in := range inputs {
		if in.Revenue < 0 {
			add(i, in.Label, "revenue",
				fmt.Sprintf("must be >= 0, got %.2f", in.Revenue))
		}
		if in.GrossMarginPct != nil {
			if m := *in.GrossMarginPct; m < 0 || m > 100 {
				add(i, in.Label, "gross_margin_pct",
					fmt.Sprintf("must be within [0, 100], got %.2f", m))
			}
		}
		for field := range in.Overrides {
			if !IsKnownOverrideField(field) {
				add(i, in.Label, "overrides",
					fmt.Sprintf("unknown override field %q", field))
			}
		}
	}

	if len(problems) > 0 {
		return &BatchValidationError{Problems: problems}
	}
	return nil
}

// deriveTrends computes deltas versus the immediately preceding period.
func deriveTrends(prior *PeriodResult, income IncomeStatement) Trends {
	if prior == nil {
		return Trends{}
	}

	prev := prior.Income
	return Trends{
		HasPrior: true,

		RevenueGrowthPct: Round2(
			SafeDivide(income.Revenue-prev.Revenue, prev.Revenue) * 100),
		GrossMarginDeltaPts: Round2(income.GrossMarginPct - prev.GrossMarginPct),

		// Absolute prior net income keeps the base defined through
		// sign changes.
		ProfitGrowthPct: Round2(
			SafeDivide(income.NetIncome-prev.NetIncome, math.Abs(prev.NetIncome)) * 100),
	}
}
