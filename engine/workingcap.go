/*
workingcap.go - Working capital derivation

PURPOSE:
  Resolves a (days, value) pair for each of receivables, inventory and
  payables. The two representations are mutually derivable given the
  period length and a base figure (revenue for receivables, cost of
  goods for inventory and payables); whichever the caller supplied
  determines the other.

RESOLUTION PRIORITY (per component):
  1. Explicit value  -> days derived:  days = value / (base / daysInPeriod)
  2. Explicit days   -> value derived: value = (base / daysInPeriod) * days
  3. Default days (configurable; 45/30/60 for AR/inventory/AP)

CYCLE FIGURES:
  Cash-conversion cycle = DSO + DIO - DPO. A negative cycle means
  suppliers finance the operation; that is a desirable pattern, and the
  validation engine reports it as a positive note.

SEE ALSO:
  - cashflow.go: consumes component values for the WC change
  - balancesheet.go: consumes component values for asset allocation
*/
package engine

// DeriveWorkingCapital resolves the working-capital schedule for one
// period. The income statement must be the one derived for the same
// input, since its revenue and cost of goods are the day-count bases.
func DeriveWorkingCapital(cfg Config, in PeriodInput, income IncomeStatement, daysInPeriod float64) WorkingCapitalMetrics {
	dso, arValue := resolveComponent(in.ReceivableValue, in.ReceivableDays,
		cfg.DefaultReceivableDays, income.Revenue, daysInPeriod)
	dio, invValue := resolveComponent(in.InventoryValue, in.InventoryDays,
		cfg.DefaultInventoryDays, income.CostOfGoods, daysInPeriod)
	dpo, apValue := resolveComponent(in.PayableValue, in.PayableDays,
		cfg.DefaultPayableDays, income.CostOfGoods, daysInPeriod)

	wcValue := Round2(arValue + invValue - apValue)

	return WorkingCapitalMetrics{
		ReceivableDays:  dso,
		InventoryDays:   dio,
		PayableDays:     dpo,
		ReceivableValue: arValue,
		InventoryValue:  invValue,
		PayableValue:    apValue,

		CashConversionCycle: Round2(dso + dio - dpo),

		WorkingCapitalValue:      wcValue,
		WorkingCapitalPctRevenue: Round2(SafeDivide(wcValue, income.Revenue) * 100),
	}
}

// resolveComponent resolves one (days, value) pair. dailyBase is the
// base figure spread over the period; a zero base yields zero for the
// derived member.
func resolveComponent(value, days *float64, defaultDays, base, daysInPeriod float64) (float64, float64) {
	perDay := SafeDivide(base, daysInPeriod)

	switch {
	case value != nil:
		v := Round2(*value)
		return Round2(SafeDivide(v, perDay)), v
	case days != nil:
		return Round2(*days), Round2(perDay * *days)
	default:
		return Round2(defaultDays), Round2(perDay * defaultDays)
	}
}
