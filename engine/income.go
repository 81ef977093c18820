/*
income.go - Income statement derivation

PURPOSE:
  Computes the P&L for one period from revenue plus either explicit cost
  of goods or a margin percentage, applies the progressive tax scheme,
  and records an audit trail of every derivation step.

COST OF GOODS RESOLUTION (priority order):
  1. Explicit override (Overrides[cost_of_goods])
  2. Explicit cost value (PeriodInput.CostOfGoods)
  3. Computed from margin: revenue * (1 - margin/100)
  4. Computed from the configured default margin

  The gross margin percentage in the output is always back-computed from
  the resulting gross profit, not echoed, so it stays consistent even
  with zero revenue or conflicting overrides.

TAX SCHEME:
  CSLL on all positive pre-tax earnings, IRPJ base rate on the portion
  up to threshold * months, surtax above it. Exactly 0 on losses.

ERROR POLICY:
  Out-of-range inputs (margin above 100%, negative margin) are recorded
  as notes in the audit trail, never thrown. The orchestrator rejects
  them up front for batch runs; a directly-called deriver still produces
  a statement.

SEE ALSO:
  - config.go: TaxConfig and P&L defaults
  - types.go: AuditTrail structure
*/
package engine

import (
	"fmt"
	"math"
	"time"
)

// DeriveIncomeStatement computes the P&L for a single period.
// monthsInPeriod prorates the progressive-tax threshold.
func DeriveIncomeStatement(cfg Config, in PeriodInput, monthsInPeriod float64) IncomeStatement {
	trail := AuditTrail{
		ComputedAt:    time.Now().UTC(),
		InputSnapshot: in,
	}
	applied := make(map[string]float64)

	shadow := func(f OverrideField, computed float64) float64 {
		if v, ok := in.Overrides.Get(f); ok {
			applied[string(f)] = v
			return v
		}
		return computed
	}
	step := func(name, formula string, inputs map[string]float64, value float64) {
		trail.Steps = append(trail.Steps, CalculationStep{
			Step: name, Formula: formula, Inputs: inputs, Value: value,
		})
	}

	revenue := Round2(shadow(OverrideRevenue, in.Revenue))

	// Cost of goods: override > explicit value > margin > default margin.
	var cogs float64
	if v, ok := in.Overrides.Get(OverrideCostOfGoods); ok {
		applied[string(OverrideCostOfGoods)] = v
		cogs = v
	} else if in.CostOfGoods != nil {
		cogs = *in.CostOfGoods
	} else {
		margin := cfg.DefaultGrossMarginPct
		if in.GrossMarginPct != nil {
			margin = *in.GrossMarginPct
			if margin < 0 || margin > 100 {
				trail.Notes = append(trail.Notes,
					fmt.Sprintf("gross margin %.2f%% outside [0, 100]", margin))
			}
		}
		cogs = revenue * (1 - margin/100)
	}
	cogs = Round2(cogs)

	grossProfit := Round2(shadow(OverrideGrossProfit, revenue-cogs))
	step("gross_profit", "revenue - cost_of_goods",
		map[string]float64{"revenue": revenue, "cost_of_goods": cogs}, grossProfit)

	// Back-computed, never echoed.
	grossMarginPct := Round2(SafeDivide(grossProfit, revenue) * 100)

	opex := Round2(shadow(OverrideOperatingExpenses, in.OperatingExpenses))

	ebitda := Round2(shadow(OverrideEBITDA, grossProfit-opex))
	step("ebitda", "gross_profit - operating_expenses",
		map[string]float64{"gross_profit": grossProfit, "operating_expenses": opex}, ebitda)

	depreciation := revenue * cfg.DefaultDepreciationPctRevenue / 100
	if in.Depreciation != nil {
		depreciation = *in.Depreciation
	}
	depreciation = Round2(shadow(OverrideDepreciation, depreciation))

	ebit := Round2(shadow(OverrideEBIT, ebitda-depreciation))
	step("ebit", "ebitda - depreciation",
		map[string]float64{"ebitda": ebitda, "depreciation": depreciation}, ebit)

	netFinancial := Round2(in.FinancialRevenue - in.FinancialExpense)
	ebt := Round2(ebit + netFinancial)

	tax := deriveTax(cfg.Tax, ebt, monthsInPeriod)
	step("csll", "ebt * csll_rate (when ebt > 0)",
		map[string]float64{"ebt": ebt, "csll_rate_pct": cfg.Tax.CSLLRatePct}, tax.CSLL)
	step("irpj", "base_rate up to threshold + surtax above",
		map[string]float64{
			"ebt":       ebt,
			"threshold": cfg.Tax.IRPJMonthlyThreshold * monthsInPeriod,
		}, tax.IRPJ)

	if v, ok := in.Overrides.Get(OverrideTotalTax); ok {
		applied[string(OverrideTotalTax)] = v
		tax.Total = Round2(v)
		tax.EffectiveRatePct = Round2(SafeDivide(tax.Total, ebt) * 100)
	}
	step("total_tax", "csll + irpj",
		map[string]float64{"csll": tax.CSLL, "irpj": tax.IRPJ}, tax.Total)

	netIncome := Round2(shadow(OverrideNetIncome, ebt-tax.Total))
	step("net_income", "ebt - total_tax",
		map[string]float64{"ebt": ebt, "total_tax": tax.Total}, netIncome)

	if len(applied) > 0 {
		trail.OverridesApplied = applied
	}

	return IncomeStatement{
		Revenue:            revenue,
		CostOfGoods:        cogs,
		GrossProfit:        grossProfit,
		GrossMarginPct:     grossMarginPct,
		OperatingExpenses:  opex,
		EBITDA:             ebitda,
		Depreciation:       depreciation,
		EBIT:               ebit,
		FinancialRevenue:   Round2(in.FinancialRevenue),
		FinancialExpense:   Round2(in.FinancialExpense),
		NetFinancialResult: netFinancial,
		EarningsBeforeTax:  ebt,
		Tax:                tax,
		NetIncome:          netIncome,
		Audit:              trail,
	}
}

// deriveTax applies the progressive scheme to positive pre-tax earnings.
// No tax benefit accrues on losses: everything is 0 when ebt <= 0.
func deriveTax(tc TaxConfig, ebt, monthsInPeriod float64) TaxBreakdown {
	if ebt <= 0 {
		return TaxBreakdown{}
	}

	csll := Round2(ebt * tc.CSLLRatePct / 100)

	threshold := tc.IRPJMonthlyThreshold * monthsInPeriod
	base := Round2(math.Min(ebt, threshold) * tc.IRPJBaseRatePct / 100)
	surtax := Round2(math.Max(ebt-threshold, 0) * tc.IRPJSurtaxRatePct / 100)
	irpj := Round2(base + surtax)

	total := Round2(csll + irpj)
	return TaxBreakdown{
		CSLL:             csll,
		IRPJBase:         base,
		IRPJSurtax:       surtax,
		IRPJ:             irpj,
		Total:            total,
		EffectiveRatePct: Round2(SafeDivide(total, ebt) * 100),
	}
}
