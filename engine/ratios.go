/*
ratios.go - Financial ratio calculation

PURPOSE:
  Pure arithmetic over the income statement, cash flow and balance
  sheet. No state, no defaults beyond what the upstream statements
  already filled in. Zero denominators yield 0, not an error.

SEE ALSO:
  - guard.go: SafeDivide used for every division here
*/
package engine

// ComputeRatios derives liquidity, leverage, profitability and
// efficiency ratios from the three statements.
func ComputeRatios(income IncomeStatement, bs BalanceSheet) FinancialRatios {
	// NOPAT approximation for ROIC: EBIT less the period's total tax.
	nopat := income.EBIT - income.Tax.Total
	investedCapital := bs.Equity + bs.ShortTermDebt + bs.LongTermDebt

	return FinancialRatios{
		CurrentRatio: Round2(SafeDivide(bs.CurrentAssets, bs.CurrentLiabilities)),
		QuickRatio:   Round2(SafeDivide(bs.CurrentAssets-bs.Inventory, bs.CurrentLiabilities)),
		CashRatio:    Round2(SafeDivide(bs.Cash, bs.CurrentLiabilities)),

		DebtToEquity: Round2(SafeDivide(bs.TotalLiabilities, bs.Equity)),
		DebtRatio:    Round2(SafeDivide(bs.TotalLiabilities, bs.TotalAssets)),
		EquityRatio:  Round2(SafeDivide(bs.Equity, bs.TotalAssets)),

		ReturnOnEquityPct:          Round2(SafeDivide(income.NetIncome, bs.Equity) * 100),
		ReturnOnAssetsPct:          Round2(SafeDivide(income.NetIncome, bs.TotalAssets) * 100),
		ReturnOnInvestedCapitalPct: Round2(SafeDivide(nopat, investedCapital) * 100),

		AssetTurnover: Round2(SafeDivide(income.Revenue, bs.TotalAssets)),
	}
}
