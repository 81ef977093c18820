/*
balancesheet.go - Balance sheet estimation

PURPOSE:
  Reconstructs an internally-balanced balance sheet from revenue and the
  working-capital schedule. This is a heuristic model, NOT a ledger
  statement: total assets are estimated from revenue via an asset
  turnover ratio, and the remaining lines are allocated so the
  accounting equation holds by construction.

ESTIMATION STEPS:
  1. assetEstimate = revenue / assetTurnover (per-period override or
     configured default; the ratio used is reported back in
     AssetTurnoverUsed).
  2. Non-current assets take the configured non-current share of the
     estimate; the current share is the target for current assets.
  3. Cash absorbs whatever the current-asset target leaves after
     receivables and inventory, floored at 0 - it is never negative.
     When AR + inventory exceed the target, current assets grow past
     the target rather than forcing negative cash.
  4. Current liabilities = payables + modeled short-term debt + modeled
     accrued expenses (both revenue percentages).
  5. Long-term debt and equity split the residual of total assets minus
     current liabilities at the target debt/equity ratio, so
     assets = liabilities + equity by construction.

  BalanceCheck documents the residual rounding error and must stay
  near 0; the validation engine treats a larger stored-vs-recomputed
  mismatch as an internal calculation bug.

SEE ALSO:
  - config.go: allocation heuristics (treat as parameters, not rules)
  - ratios.go: consumes the estimated sheet
*/
package engine

import "math"

// EstimateBalanceSheet reconstructs the balance sheet for one period.
func EstimateBalanceSheet(cfg Config, in PeriodInput, income IncomeStatement, wc WorkingCapitalMetrics) BalanceSheet {
	turnover := cfg.AssetTurnover
	if in.AssetTurnover != nil {
		turnover = *in.AssetTurnover
	}

	assetEstimate := SafeDivide(income.Revenue, turnover)

	nonCurrent := Round2(assetEstimate * cfg.NonCurrentAssetSharePct / 100)
	currentTarget := assetEstimate * cfg.CurrentAssetSharePct / 100

	receivables := wc.ReceivableValue
	inventory := wc.InventoryValue
	cash := Round2(math.Max(currentTarget-receivables-inventory, 0))

	currentAssets := Round2(cash + receivables + inventory)
	totalAssets := Round2(currentAssets + nonCurrent)

	payables := wc.PayableValue
	shortTermDebt := Round2(income.Revenue * cfg.ShortTermDebtPctRevenue / 100)
	accrued := Round2(income.Revenue * cfg.AccruedExpensePctRevenue / 100)
	currentLiabilities := Round2(payables + shortTermDebt + accrued)

	// Split the residual at the target debt/equity ratio; equity may go
	// negative when liabilities exceed assets.
	residual := totalAssets - currentLiabilities
	equity := Round2(SafeDivide(residual, 1+cfg.TargetDebtToEquity))
	longTermDebt := Round2(residual - equity)

	totalLiabilities := Round2(currentLiabilities + longTermDebt)

	return BalanceSheet{
		Cash:          cash,
		Receivables:   Round2(receivables),
		Inventory:     Round2(inventory),
		CurrentAssets: currentAssets,

		NonCurrentAssets: nonCurrent,
		TotalAssets:      totalAssets,

		Payables:           Round2(payables),
		ShortTermDebt:      shortTermDebt,
		AccruedExpenses:    accrued,
		CurrentLiabilities: currentLiabilities,

		LongTermDebt:     longTermDebt,
		TotalLiabilities: totalLiabilities,

		Equity: equity,

		BalanceCheck:      Round2(totalAssets - (totalLiabilities + equity)),
		AssetTurnoverUsed: turnover,
	}
}
