package factory

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/warp/hr-engine/settlement"
)

// SettlementConfigJSON is the JSON representation of settlement.Config.
// Omitted fields keep their DefaultConfig value.
type SettlementConfigJSON struct {
	NoticePeriodDays       *int     `json:"notice_period_days,omitempty"`
	DailyRateDivisor       *int     `json:"daily_rate_divisor,omitempty"`
	GratuityMinTenureYears *float64 `json:"gratuity_min_tenure_years,omitempty"`
	GratuityDaysPerYear    *int     `json:"gratuity_days_per_year,omitempty"`
	GratuityDivisor        *int     `json:"gratuity_divisor,omitempty"`
	DaysPerYear            *int     `json:"days_per_year,omitempty"`
}

// ParseSettlementConfig parses JSON overrides on top of settlement.DefaultConfig.
// An empty string yields the defaults.
func ParseSettlementConfig(jsonStr string) (settlement.Config, error) {
	if jsonStr == "" {
		return settlement.DefaultConfig(), nil
	}
	var cj SettlementConfigJSON
	if err := json.Unmarshal([]byte(jsonStr), &cj); err != nil {
		return settlement.Config{}, fmt.Errorf("failed to parse settlement config JSON: %w", err)
	}
	return SettlementConfigFromJSON(cj)
}

func SettlementConfigFromJSON(cj SettlementConfigJSON) (settlement.Config, error) {
	cfg := settlement.DefaultConfig()
	setInt(&cfg.NoticePeriodDays, cj.NoticePeriodDays)
	setInt(&cfg.DailyRateDivisor, cj.DailyRateDivisor)
	setInt(&cfg.GratuityDaysPerYear, cj.GratuityDaysPerYear)
	setInt(&cfg.GratuityDivisor, cj.GratuityDivisor)
	setInt(&cfg.DaysPerYear, cj.DaysPerYear)
	if cj.GratuityMinTenureYears != nil {
		cfg.GratuityMinTenureYears = decimal.NewFromFloat(*cj.GratuityMinTenureYears)
	}
	if err := cfg.Validate(); err != nil {
		return settlement.Config{}, err
	}
	return cfg, nil
}

func SettlementConfigToJSON(cfg settlement.Config) SettlementConfigJSON {
	minTenure, _ := cfg.GratuityMinTenureYears.Float64()
	return SettlementConfigJSON{
		NoticePeriodDays:       &cfg.NoticePeriodDays,
		DailyRateDivisor:       &cfg.DailyRateDivisor,
		GratuityMinTenureYears: &minTenure,
		GratuityDaysPerYear:    &cfg.GratuityDaysPerYear,
		GratuityDivisor:        &cfg.GratuityDivisor,
		DaysPerYear:            &cfg.DaysPerYear,
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
