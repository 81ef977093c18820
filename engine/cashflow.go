/*
cashflow.go - Cash flow derivation

PURPOSE:
  Computes operating, investing and financing cash flow for one period
  from the period's income statement and working capital, plus the prior
  period's working capital when one exists.

WORKING-CAPITAL CHANGE - TWO REGIMES:
  First period (no prior supplied):
    The entire opening receivables + inventory - payables balance is a
    one-time cash investment:
      change = -(AR + inventory - AP)

  Subsequent periods:
    Only the delta of each component versus the prior period matters:
      change = -((dAR) + (dInventory) - (dAP))

CASH CONVERSION RATE:
  operatingCashFlow / netIncome, as a percentage. The sign convention is
  deliberate: a profitable period with negative OCF yields a negative
  rate, and a loss-making period flips the sign. Flagged as observed
  behavior, not an accepted ratio convention.

SEE ALSO:
  - orchestrator.go: threads prior working capital and opening cash
  - validation/engine.go: free-cash-flow trend detector
*/
package engine

// DeriveCashFlow computes the cash flow statement for one period.
// priorWC is nil for the first period of a run; openingCash is the prior
// period's closing cash (or the configured opening balance).
func DeriveCashFlow(cfg Config, in PeriodInput, income IncomeStatement, wc WorkingCapitalMetrics, priorWC *WorkingCapitalMetrics, openingCash float64) CashFlowStatement {
	var wcChange float64
	if priorWC == nil {
		// Opening balance treated as a one-time cash investment.
		wcChange = -(wc.ReceivableValue + wc.InventoryValue - wc.PayableValue)
	} else {
		deltaAR := wc.ReceivableValue - priorWC.ReceivableValue
		deltaInv := wc.InventoryValue - priorWC.InventoryValue
		deltaAP := wc.PayableValue - priorWC.PayableValue
		wcChange = -(deltaAR + deltaInv - deltaAP)
	}
	wcChange = Round2(wcChange)

	operating := Round2(income.NetIncome + income.Depreciation + wcChange)

	capex := income.Revenue * cfg.DefaultCapexPctRevenue / 100
	if in.Capex != nil {
		capex = *in.Capex
	}
	capex = Round2(capex)
	investing := Round2(-capex)
	freeCashFlow := Round2(operating + investing)

	financing := Round2(in.DebtChange + in.EquityChange - in.Dividends)

	net := Round2(operating + investing + financing)

	return CashFlowStatement{
		OperatingCashFlow:    operating,
		WorkingCapitalChange: wcChange,

		Capex:             capex,
		InvestingCashFlow: investing,
		FreeCashFlow:      freeCashFlow,

		DebtChange:        Round2(in.DebtChange),
		EquityChange:      Round2(in.EquityChange),
		Dividends:         Round2(in.Dividends),
		FinancingCashFlow: financing,

		NetCashFlow: net,
		OpeningCash: Round2(openingCash),
		ClosingCash: Round2(openingCash + net),

		CashConversionRatePct: Round2(SafeDivide(operating, income.NetIncome) * 100),
	}
}
