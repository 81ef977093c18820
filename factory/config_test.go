package factory_test

import (
	"strings"
	"testing"

	"github.com/warp/statement-engine/engine"
	"github.com/warp/statement-engine/factory"
)

func TestParseConfig_EmptyDocumentKeepsDefaults(t *testing.T) {
	f := factory.NewConfigFactory()

	cfg, err := f.ParseConfig(`{}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != engine.DefaultConfig() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestParseConfig_PartialOverride(t *testing.T) {
	// GIVEN: A document setting only the asset turnover
	// WHEN: Parsing
	// THEN: That field changes and everything else keeps its default

	f := factory.NewConfigFactory()

	cfg, err := f.ParseConfig(`{"asset_turnover": 4}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AssetTurnover != 4 {
		t.Errorf("expected turnover 4, got %v", cfg.AssetTurnover)
	}
	if cfg.Tax.CSLLRatePct != 9 {
		t.Errorf("expected default CSLL rate, got %v", cfg.Tax.CSLLRatePct)
	}
	if cfg.DefaultReceivableDays != 45 {
		t.Errorf("expected default DSO, got %v", cfg.DefaultReceivableDays)
	}
}

func TestParseConfig_NestedTax(t *testing.T) {
	f := factory.NewConfigFactory()

	cfg, err := f.ParseConfig(`{"tax": {"irpj_monthly_threshold": 25000}}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Tax.IRPJMonthlyThreshold != 25000 {
		t.Errorf("expected threshold 25000, got %v", cfg.Tax.IRPJMonthlyThreshold)
	}
	if cfg.Tax.IRPJBaseRatePct != 15 {
		t.Errorf("expected default base rate kept, got %v", cfg.Tax.IRPJBaseRatePct)
	}
}

func TestParseConfig_MalformedJSON(t *testing.T) {
	f := factory.NewConfigFactory()
	if _, err := f.ParseConfig(`{"asset_turnover": `); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestParseConfig_RejectsOutOfRangeValues(t *testing.T) {
	f := factory.NewConfigFactory()

	cases := []struct {
		doc  string
		want string
	}{
		{`{"asset_turnover": -1}`, "asset_turnover"},
		{`{"asset_turnover": 0}`, "asset_turnover"},
		{`{"default_gross_margin_pct": 150}`, "default_gross_margin_pct"},
		{`{"tax": {"csll_rate_pct": -5}}`, "csll_rate_pct"},
		{`{"target_debt_to_equity": -0.5}`, "target_debt_to_equity"},
		{`{"default_inventory_days": -10}`, "day counts"},
	}
	for _, c := range cases {
		_, err := f.ParseConfig(c.doc)
		if err == nil {
			t.Errorf("%s: expected error", c.doc)
			continue
		}
		if !strings.Contains(err.Error(), c.want) {
			t.Errorf("%s: expected %q in error, got %v", c.doc, c.want, err)
		}
	}
}

func TestPreset_Builtin(t *testing.T) {
	f := factory.NewConfigFactory()

	base, err := f.Preset("brazil-sme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if base != engine.DefaultConfig() {
		t.Error("brazil-sme should be identical to the engine defaults")
	}

	services, err := f.Preset("brazil-services")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if services.DefaultGrossMarginPct != 60 {
		t.Errorf("expected services margin 60, got %v", services.DefaultGrossMarginPct)
	}
	if services.DefaultInventoryDays != 5 {
		t.Errorf("expected services DIO 5, got %v", services.DefaultInventoryDays)
	}

	conservative, err := f.Preset("brazil-sme-conservative")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conservative.AssetTurnover != 1.5 {
		t.Errorf("expected conservative turnover 1.5, got %v", conservative.AssetTurnover)
	}
}

func TestPreset_Unknown(t *testing.T) {
	f := factory.NewConfigFactory()
	if _, err := f.Preset("no-such-preset"); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestPresetNames(t *testing.T) {
	names := factory.NewConfigFactory().PresetNames()
	if len(names) != 3 {
		t.Fatalf("expected 3 presets, got %v", names)
	}
	found := map[string]bool{}
	for _, n := range names {
		found[n] = true
	}
	for _, want := range []string{"brazil-sme", "brazil-sme-conservative", "brazil-services"} {
		if !found[want] {
			t.Errorf("missing preset %q", want)
		}
	}
}
