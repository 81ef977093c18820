/*
Package factory provides JSON to engine.Config conversion.

PURPOSE:
  Converts JSON configuration documents into engine.Config values. This
  enables jurisdiction and heuristic tuning without code changes -
  analysts can store configuration documents alongside scenarios, and
  the factory produces the proper Go struct with validated ranges and
  sensible defaults for anything omitted.

JSON SCHEMA (all fields optional; omitted fields keep defaults):
  {
    "tax": {
      "csll_rate_pct": 9,
      "irpj_base_rate_pct": 15,
      "irpj_surtax_rate_pct": 10,
      "irpj_monthly_threshold": 20000
    },
    "default_gross_margin_pct": 40,
    "default_receivable_days": 45,
    "default_inventory_days": 30,
    "default_payable_days": 60,
    "default_capex_pct_revenue": 5,
    "asset_turnover": 2.5,
    "target_debt_to_equity": 0.5,
    "opening_cash": 0
  }

PRESETS:
  Named presets ship with the factory. "brazil-sme" is the default
  scheme; "brazil-sme-conservative" tightens the balance-sheet
  heuristics for asset-heavy businesses.

USAGE:
  f := factory.NewConfigFactory()
  cfg, err := f.ParseConfig(jsonString)

  cfg, err := f.Preset("brazil-sme")

SEE ALSO:
  - engine/config.go: Config definition and defaults
  - api/handlers.go: accepts a preset name or inline document per run
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/warp/statement-engine/engine"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// TaxJSON is the JSON representation of a tax scheme. Pointer fields
// distinguish "omitted" from "zero".
type TaxJSON struct {
	CSLLRatePct          *float64 `json:"csll_rate_pct,omitempty"`
	IRPJBaseRatePct      *float64 `json:"irpj_base_rate_pct,omitempty"`
	IRPJSurtaxRatePct    *float64 `json:"irpj_surtax_rate_pct,omitempty"`
	IRPJMonthlyThreshold *float64 `json:"irpj_monthly_threshold,omitempty"`
}

// ConfigJSON is the JSON representation of an engine configuration.
type ConfigJSON struct {
	Tax *TaxJSON `json:"tax,omitempty"`

	DefaultGrossMarginPct         *float64 `json:"default_gross_margin_pct,omitempty"`
	DefaultDepreciationPctRevenue *float64 `json:"default_depreciation_pct_revenue,omitempty"`

	DefaultReceivableDays *float64 `json:"default_receivable_days,omitempty"`
	DefaultInventoryDays  *float64 `json:"default_inventory_days,omitempty"`
	DefaultPayableDays    *float64 `json:"default_payable_days,omitempty"`

	DefaultCapexPctRevenue *float64 `json:"default_capex_pct_revenue,omitempty"`
	OpeningCash            *float64 `json:"opening_cash,omitempty"`

	AssetTurnover            *float64 `json:"asset_turnover,omitempty"`
	CurrentAssetSharePct     *float64 `json:"current_asset_share_pct,omitempty"`
	NonCurrentAssetSharePct  *float64 `json:"non_current_asset_share_pct,omitempty"`
	ShortTermDebtPctRevenue  *float64 `json:"short_term_debt_pct_revenue,omitempty"`
	AccruedExpensePctRevenue *float64 `json:"accrued_expense_pct_revenue,omitempty"`
	TargetDebtToEquity       *float64 `json:"target_debt_to_equity,omitempty"`
}

// =============================================================================
// FACTORY
// =============================================================================

// ConfigFactory converts JSON documents and preset names into
// engine.Config values.
type ConfigFactory struct {
	presets map[string]ConfigJSON
}

// NewConfigFactory creates a factory with the built-in presets.
func NewConfigFactory() *ConfigFactory {
	return &ConfigFactory{presets: builtinPresets()}
}

// ParseConfig parses a JSON document into a validated engine.Config.
// Omitted fields keep engine defaults.
func (f *ConfigFactory) ParseConfig(jsonStr string) (engine.Config, error) {
	var doc ConfigJSON
	if err := json.Unmarshal([]byte(jsonStr), &doc); err != nil {
		return engine.Config{}, fmt.Errorf("invalid config JSON: %w", err)
	}
	return f.build(doc)
}

// Preset returns the named built-in configuration.
func (f *ConfigFactory) Preset(name string) (engine.Config, error) {
	doc, ok := f.presets[name]
	if !ok {
		return engine.Config{}, fmt.Errorf("unknown config preset %q", name)
	}
	return f.build(doc)
}

// PresetNames lists the available presets.
func (f *ConfigFactory) PresetNames() []string {
	names := make([]string, 0, len(f.presets))
	for name := range f.presets {
		names = append(names, name)
	}
	return names
}

// build applies the document over defaults and validates ranges.
func (f *ConfigFactory) build(doc ConfigJSON) (engine.Config, error) {
	cfg := engine.DefaultConfig()

	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}

	if doc.Tax != nil {
		set(&cfg.Tax.CSLLRatePct, doc.Tax.CSLLRatePct)
		set(&cfg.Tax.IRPJBaseRatePct, doc.Tax.IRPJBaseRatePct)
		set(&cfg.Tax.IRPJSurtaxRatePct, doc.Tax.IRPJSurtaxRatePct)
		set(&cfg.Tax.IRPJMonthlyThreshold, doc.Tax.IRPJMonthlyThreshold)
	}
	set(&cfg.DefaultGrossMarginPct, doc.DefaultGrossMarginPct)
	set(&cfg.DefaultDepreciationPctRevenue, doc.DefaultDepreciationPctRevenue)
	set(&cfg.DefaultReceivableDays, doc.DefaultReceivableDays)
	set(&cfg.DefaultInventoryDays, doc.DefaultInventoryDays)
	set(&cfg.DefaultPayableDays, doc.DefaultPayableDays)
	set(&cfg.DefaultCapexPctRevenue, doc.DefaultCapexPctRevenue)
	set(&cfg.OpeningCash, doc.OpeningCash)
	set(&cfg.AssetTurnover, doc.AssetTurnover)
	set(&cfg.CurrentAssetSharePct, doc.CurrentAssetSharePct)
	set(&cfg.NonCurrentAssetSharePct, doc.NonCurrentAssetSharePct)
	set(&cfg.ShortTermDebtPctRevenue, doc.ShortTermDebtPctRevenue)
	set(&cfg.AccruedExpensePctRevenue, doc.AccruedExpensePctRevenue)
	set(&cfg.TargetDebtToEquity, doc.TargetDebtToEquity)

	if err := validate(cfg); err != nil {
		return engine.Config{}, err
	}
	return cfg, nil
}

// validate rejects configurations the pipeline cannot sensibly run with.
func validate(cfg engine.Config) error {
	pct := func(name string, v float64) error {
		if v < 0 || v > 100 {
			return fmt.Errorf("config: %s must be within [0, 100], got %.2f", name, v)
		}
		return nil
	}

	checks := []error{
		pct("tax.csll_rate_pct", cfg.Tax.CSLLRatePct),
		pct("tax.irpj_base_rate_pct", cfg.Tax.IRPJBaseRatePct),
		pct("tax.irpj_surtax_rate_pct", cfg.Tax.IRPJSurtaxRatePct),
		pct("default_gross_margin_pct", cfg.DefaultGrossMarginPct),
		pct("current_asset_share_pct", cfg.CurrentAssetSharePct),
		pct("non_current_asset_share_pct", cfg.NonCurrentAssetSharePct),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}

	if cfg.Tax.IRPJMonthlyThreshold < 0 {
		return fmt.Errorf("config: tax.irpj_monthly_threshold must be >= 0, got %.2f",
			cfg.Tax.IRPJMonthlyThreshold)
	}
	if cfg.AssetTurnover <= 0 {
		return fmt.Errorf("config: asset_turnover must be > 0, got %.2f", cfg.AssetTurnover)
	}
	if cfg.TargetDebtToEquity < 0 {
		return fmt.Errorf("config: target_debt_to_equity must be >= 0, got %.2f",
			cfg.TargetDebtToEquity)
	}
	if cfg.DefaultReceivableDays < 0 || cfg.DefaultInventoryDays < 0 || cfg.DefaultPayableDays < 0 {
		return fmt.Errorf("config: default day counts must be >= 0")
	}
	return nil
}

// =============================================================================
// PRESETS
// =============================================================================

func builtinPresets() map[string]ConfigJSON {
	f := func(v float64) *float64 { return &v }

	return map[string]ConfigJSON{
		// The scheme the engine was originally modeled for; identical
		// to engine.DefaultConfig().
		"brazil-sme": {},

		// Asset-heavy variant: slower turnover, more non-current
		// assets, less leverage.
		"brazil-sme-conservative": {
			AssetTurnover:           f(1.5),
			CurrentAssetSharePct:    f(50),
			NonCurrentAssetSharePct: f(50),
			TargetDebtToEquity:      f(0.3),
		},

		// Service businesses: little inventory, fast collection.
		"brazil-services": {
			DefaultGrossMarginPct: f(60),
			DefaultInventoryDays:  f(5),
			DefaultReceivableDays: f(30),
			AssetTurnover:         f(3.5),
		},
	}
}
