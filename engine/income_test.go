package engine_test

import (
	"testing"

	"github.com/warp/statement-engine/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func f(v float64) *float64 { return &v }

func plainInput(revenue float64) engine.PeriodInput {
	return engine.PeriodInput{
		Revenue:           revenue,
		OperatingExpenses: 0,
		CostOfGoods:       f(0),
		Depreciation:      f(0),
	}
}

// =============================================================================
// COGS RESOLUTION AND MARGIN
// =============================================================================

func TestIncome_DefaultMargin(t *testing.T) {
	// GIVEN: Revenue with neither explicit COGS nor a margin percentage
	// WHEN: Deriving the income statement
	// THEN: COGS falls back to the configured default margin (40%)

	cfg := engine.DefaultConfig()
	in := engine.PeriodInput{Revenue: 100000, OperatingExpenses: 20000}

	is := engine.DeriveIncomeStatement(cfg, in, 1)

	if is.CostOfGoods != 60000 {
		t.Errorf("expected COGS 60000, got %v", is.CostOfGoods)
	}
	if is.GrossProfit != 40000 {
		t.Errorf("expected gross profit 40000, got %v", is.GrossProfit)
	}
	if is.GrossMarginPct != 40 {
		t.Errorf("expected gross margin 40%%, got %v", is.GrossMarginPct)
	}
}

func TestIncome_ExplicitMarginBeatsDefault(t *testing.T) {
	cfg := engine.DefaultConfig()
	in := engine.PeriodInput{Revenue: 1000000, GrossMarginPct: f(42)}

	is := engine.DeriveIncomeStatement(cfg, in, 1)

	if is.CostOfGoods != 580000 {
		t.Errorf("expected COGS 580000, got %v", is.CostOfGoods)
	}
	if is.GrossProfit != 420000 {
		t.Errorf("expected gross profit 420000, got %v", is.GrossProfit)
	}
}

func TestIncome_ExplicitCOGSBeatsMargin(t *testing.T) {
	// Explicit value wins over the percentage when both are supplied.
	cfg := engine.DefaultConfig()
	in := engine.PeriodInput{Revenue: 1000000, CostOfGoods: f(700000), GrossMarginPct: f(42)}

	is := engine.DeriveIncomeStatement(cfg, in, 1)

	if is.CostOfGoods != 700000 {
		t.Errorf("expected COGS 700000, got %v", is.CostOfGoods)
	}
	if is.GrossMarginPct != 30 {
		t.Errorf("expected back-computed margin 30%%, got %v", is.GrossMarginPct)
	}
}

func TestIncome_ZeroRevenueMarginIsZero(t *testing.T) {
	cfg := engine.DefaultConfig()
	in := engine.PeriodInput{Revenue: 0, CostOfGoods: f(5000)}

	is := engine.DeriveIncomeStatement(cfg, in, 1)

	if is.GrossMarginPct != 0 {
		t.Errorf("expected margin 0 on zero revenue, got %v", is.GrossMarginPct)
	}
}

func TestIncome_DefaultDepreciation(t *testing.T) {
	cfg := engine.DefaultConfig()
	in := engine.PeriodInput{Revenue: 500000}

	is := engine.DeriveIncomeStatement(cfg, in, 1)

	// 2% of revenue when not supplied.
	if is.Depreciation != 10000 {
		t.Errorf("expected depreciation 10000, got %v", is.Depreciation)
	}
	if is.EBIT != engine.Round2(is.EBITDA-is.Depreciation) {
		t.Errorf("EBIT %v should equal EBITDA %v minus depreciation %v", is.EBIT, is.EBITDA, is.Depreciation)
	}
}

// =============================================================================
// PROGRESSIVE TAX
// =============================================================================

func TestIncome_TaxBelowSurtaxThreshold(t *testing.T) {
	// GIVEN: EBT of 240,000 over a 12-month period (threshold = 240,000)
	// WHEN: Deriving tax
	// THEN: IRPJ is flat 15% with no surtax, CSLL is 9%

	cfg := engine.DefaultConfig()
	is := engine.DeriveIncomeStatement(cfg, plainInput(240000), 12)

	if is.Tax.IRPJBase != 36000 {
		t.Errorf("expected IRPJ base 36000, got %v", is.Tax.IRPJBase)
	}
	if is.Tax.IRPJSurtax != 0 {
		t.Errorf("expected no surtax, got %v", is.Tax.IRPJSurtax)
	}
	if is.Tax.CSLL != 21600 {
		t.Errorf("expected CSLL 21600, got %v", is.Tax.CSLL)
	}
	if is.Tax.Total != 57600 {
		t.Errorf("expected total tax 57600, got %v", is.Tax.Total)
	}
	if is.NetIncome != 182400 {
		t.Errorf("expected net income 182400, got %v", is.NetIncome)
	}
}

func TestIncome_TaxAboveSurtaxThreshold(t *testing.T) {
	// GIVEN: EBT of 500,000 over 12 months
	// WHEN: Deriving tax
	// THEN: 10% surtax applies to the 260,000 above the threshold

	cfg := engine.DefaultConfig()
	is := engine.DeriveIncomeStatement(cfg, plainInput(500000), 12)

	// 15% on the first 240,000 plus 10% on the 260,000 above it.
	if is.Tax.IRPJBase != 36000 {
		t.Errorf("expected IRPJ base 36000, got %v", is.Tax.IRPJBase)
	}
	if is.Tax.IRPJSurtax != 26000 {
		t.Errorf("expected surtax 26000, got %v", is.Tax.IRPJSurtax)
	}
	if is.Tax.IRPJ != 62000 {
		t.Errorf("expected combined IRPJ 62000, got %v", is.Tax.IRPJ)
	}
	if is.Tax.CSLL != 45000 {
		t.Errorf("expected CSLL 45000, got %v", is.Tax.CSLL)
	}
	if is.Tax.Total != 107000 {
		t.Errorf("expected total tax 107000, got %v", is.Tax.Total)
	}
}

func TestIncome_NoTaxOnLoss(t *testing.T) {
	cfg := engine.DefaultConfig()
	in := engine.PeriodInput{Revenue: 100000, OperatingExpenses: 150000, CostOfGoods: f(0), Depreciation: f(0)}

	is := engine.DeriveIncomeStatement(cfg, in, 1)

	if is.EarningsBeforeTax >= 0 {
		t.Fatalf("expected a loss, got EBT %v", is.EarningsBeforeTax)
	}
	if is.Tax.Total != 0 {
		t.Errorf("expected zero tax on a loss, got %v", is.Tax.Total)
	}
	if is.NetIncome != is.EarningsBeforeTax {
		t.Errorf("net income %v should equal EBT %v on a loss", is.NetIncome, is.EarningsBeforeTax)
	}
}

func TestIncome_MonthlySurtaxThreshold(t *testing.T) {
	// GIVEN: EBT of 50,000 in a single month (threshold = 20,000)
	// WHEN: Deriving tax
	// THEN: Surtax applies to the 30,000 above the monthly threshold

	cfg := engine.DefaultConfig()
	is := engine.DeriveIncomeStatement(cfg, plainInput(50000), 1)

	if is.Tax.IRPJBase != 3000 {
		t.Errorf("expected IRPJ base 3000, got %v", is.Tax.IRPJBase)
	}
	if is.Tax.IRPJSurtax != 3000 {
		t.Errorf("expected surtax 3000, got %v", is.Tax.IRPJSurtax)
	}
}

// =============================================================================
// OVERRIDES AND AUDIT TRAIL
// =============================================================================

func TestIncome_OverrideReplacesDerivedValue(t *testing.T) {
	cfg := engine.DefaultConfig()
	in := engine.PeriodInput{
		Revenue:   100000,
		Overrides: engine.Overrides{engine.OverrideEBITDA: 99999},
	}

	is := engine.DeriveIncomeStatement(cfg, in, 1)

	if is.EBITDA != 99999 {
		t.Errorf("expected overridden EBITDA 99999, got %v", is.EBITDA)
	}
	// Downstream lines derive from the overridden value.
	if is.EBIT != engine.Round2(99999-is.Depreciation) {
		t.Errorf("EBIT %v should derive from the overridden EBITDA", is.EBIT)
	}
}

func TestIncome_AuditTrailRecordsSteps(t *testing.T) {
	cfg := engine.DefaultConfig()
	is := engine.DeriveIncomeStatement(cfg, plainInput(240000), 12)

	for _, name := range []string{"gross_profit", "ebitda", "ebit", "total_tax", "net_income"} {
		if _, ok := is.Audit.Step(name); !ok {
			t.Errorf("expected audit step %q", name)
		}
	}
	step, ok := is.Audit.Step("total_tax")
	if !ok {
		t.Fatal("missing total_tax step")
	}
	if step.Value != is.Tax.Total {
		t.Errorf("audit value %v should match statement value %v", step.Value, is.Tax.Total)
	}
	if step.Formula == "" {
		t.Error("expected a formula on the tax step")
	}
}
