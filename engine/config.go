/*
config.go - Tunable pipeline defaults

PURPOSE:
  Every constant the pipeline relies on (tax scheme, default margins and
  day counts, balance-sheet allocation heuristics) lives in an explicit
  Config passed to the orchestrator. Runs with different jurisdictions or
  heuristics execute side-by-side with zero shared state.

HEURISTIC CONSTANTS:
  The balance-sheet allocation percentages (60% current assets, 40%
  non-current, 5% short-term debt, 2% accrued expenses) are SME modeling
  heuristics with no documented derivation. They are parameters here, not
  business rules; callers modeling other segments should tune them.

SEE ALSO:
  - factory/config.go: JSON presets -> Config
  - income.go: tax scheme consumer
  - balancesheet.go: allocation heuristics consumer
*/
package engine

// TaxConfig describes a progressive corporate tax scheme: a flat social
// contribution on all positive pre-tax earnings, a base income-tax rate
// up to a period-prorated threshold, and a surtax above it. Tax is
// exactly 0 when pre-tax earnings are 0 or negative; losses carry no
// tax benefit here.
type TaxConfig struct {
	CSLLRatePct       float64 `json:"csll_rate_pct"`
	IRPJBaseRatePct   float64 `json:"irpj_base_rate_pct"`
	IRPJSurtaxRatePct float64 `json:"irpj_surtax_rate_pct"`

	// Threshold per month; prorated by the period's month count.
	IRPJMonthlyThreshold float64 `json:"irpj_monthly_threshold"`
}

// Config carries all tunable defaults for a run.
type Config struct {
	Tax TaxConfig `json:"tax"`

	// P&L defaults
	DefaultGrossMarginPct         float64 `json:"default_gross_margin_pct"`
	DefaultDepreciationPctRevenue float64 `json:"default_depreciation_pct_revenue"`

	// Working-capital default day counts
	DefaultReceivableDays float64 `json:"default_receivable_days"`
	DefaultInventoryDays  float64 `json:"default_inventory_days"`
	DefaultPayableDays    float64 `json:"default_payable_days"`

	// Cash-flow defaults
	DefaultCapexPctRevenue float64 `json:"default_capex_pct_revenue"`
	OpeningCash            float64 `json:"opening_cash"`

	// Balance-sheet estimation heuristics
	AssetTurnover            float64 `json:"asset_turnover"`
	CurrentAssetSharePct     float64 `json:"current_asset_share_pct"`
	NonCurrentAssetSharePct  float64 `json:"non_current_asset_share_pct"`
	ShortTermDebtPctRevenue  float64 `json:"short_term_debt_pct_revenue"`
	AccruedExpensePctRevenue float64 `json:"accrued_expense_pct_revenue"`
	TargetDebtToEquity       float64 `json:"target_debt_to_equity"`
}

// DefaultConfig returns the Brazilian-SME defaults the engine was
// originally modeled for.
func DefaultConfig() Config {
	return Config{
		Tax: TaxConfig{
			CSLLRatePct:          9,
			IRPJBaseRatePct:      15,
			IRPJSurtaxRatePct:    10,
			IRPJMonthlyThreshold: 20000,
		},
		DefaultGrossMarginPct:         40,
		DefaultDepreciationPctRevenue: 2,
		DefaultReceivableDays:         45,
		DefaultInventoryDays:          30,
		DefaultPayableDays:            60,
		DefaultCapexPctRevenue:        5,
		OpeningCash:                   0,
		AssetTurnover:                 2.5,
		CurrentAssetSharePct:          60,
		NonCurrentAssetSharePct:       40,
		ShortTermDebtPctRevenue:       5,
		AccruedExpensePctRevenue:      2,
		TargetDebtToEquity:            0.5,
	}
}
