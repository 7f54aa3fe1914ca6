package models

import "time"

// RegimeType is one of the five macro-environment classifications
type RegimeType string

const (
	RegimeInflationaryGrowth    RegimeType = "inflationary_growth"
	RegimeRiskOff               RegimeType = "risk_off"
	RegimeTightening            RegimeType = "tightening"
	RegimeDisinflationaryGrowth RegimeType = "disinflationary_growth"
	RegimeUncertain             RegimeType = "uncertain"
)

// Indicator bucket states
const (
	IndicatorStrong  = "strong"
	IndicatorWeak    = "weak"
	IndicatorMixed   = "mixed"
	IndicatorRising  = "rising"
	IndicatorFalling = "falling"
	IndicatorStable  = "stable"
	IndicatorUnknown = "unknown"
)

// RegimeIndicators holds the reduced state of the three macro buckets
type RegimeIndicators struct {
	USD    string `json:"USD,omitempty"`
	Rates  string `json:"Rates,omitempty"`
	Growth string `json:"Growth,omitempty"`
}

// AllKnown reports whether every bucket produced a directional reading
func (ri RegimeIndicators) AllKnown() bool {
	return ri.USD != IndicatorUnknown && ri.USD != "" &&
		ri.Rates != IndicatorUnknown && ri.Rates != "" &&
		ri.Growth != IndicatorUnknown && ri.Growth != ""
}

// Regime is a macro-environment classification derived from USD, rates and
// growth signal buckets
type Regime struct {
	Type         RegimeType        `json:"regime_type"`
	Description  string            `json:"description"`
	Indicators   RegimeIndicators  `json:"indicators"`
	Impact       map[string]string `json:"impact"`
	DetectedDate time.Time         `json:"detected_date"`
	Confidence   Confidence        `json:"confidence"`
}

// ImpactOn returns the expected impact of the regime on a market group
// (energy, metals, ags)
func (r *Regime) ImpactOn(marketGroup string) string {
	if impact, ok := r.Impact[marketGroup]; ok {
		return impact
	}
	return "Impact uncertain"
}

// RegimeTransition describes a change of regime type between two dates
type RegimeTransition struct {
	From        RegimeType `json:"from_regime"`
	To          RegimeType `json:"to_regime"`
	Description string     `json:"description"`
	Date        time.Time  `json:"date"`
}
