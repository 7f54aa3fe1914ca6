// Package regime classifies the macro environment from macro-category
// signals using a fixed decision table over USD, rates and growth buckets.
package regime

import (
	"time"

	"github.com/selivandex/market-intel/pkg/models"
)

// Classify detects the current macro regime from the given signal set.
// Classification is stateless per call: the same signals always produce the
// same regime, and any macro signal set (including the empty one) maps to
// exactly one of the five regime types.
func Classify(signals []models.Signal, now time.Time) models.Regime {
	macro := make([]models.Signal, 0)
	for _, s := range signals {
		if s.Category == "Macro" {
			macro = append(macro, s)
		}
	}

	today := models.DateOnly(now)

	if len(macro) == 0 {
		return models.Regime{
			Type:         models.RegimeUncertain,
			Description:  "Unable to classify regime - no macro signals available",
			Indicators:   models.RegimeIndicators{},
			Impact:       map[string]string{},
			DetectedDate: today,
			Confidence:   models.ConfidenceLow,
		}
	}

	indicators := models.RegimeIndicators{
		USD:    reduceBucket(usdBucket(macro), IndicatorSetStrength),
		Rates:  reduceBucket(ratesBucket(macro), IndicatorSetRates),
		Growth: reduceBucket(growthBucket(macro), IndicatorSetStrength),
	}

	allKnown := indicators.AllKnown()

	knownConfidence := models.ConfidenceMedium
	if allKnown {
		knownConfidence = models.ConfidenceHigh
	}

	// Rule 1: Inflationary growth (USD weak, rates rising, growth strong)
	if indicators.USD == models.IndicatorWeak &&
		indicators.Rates == models.IndicatorRising &&
		indicators.Growth == models.IndicatorStrong {
		return models.Regime{
			Type: models.RegimeInflationaryGrowth,
			Description: "Inflationary growth regime: Weak USD, rising rates, and strong growth " +
				"suggest commodities should perform well, especially energy and industrial metals.",
			Indicators: indicators,
			Impact: map[string]string{
				"energy": "Bullish - strong demand and weak USD support prices",
				"metals": "Bullish - industrial metals benefit from growth, precious metals benefit from inflation",
				"ags":    "Mixed - strong demand but potential cost pressures",
			},
			DetectedDate: today,
			Confidence:   knownConfidence,
		}
	}

	// Rule 2: Risk-off (USD strong, rates falling, growth weak)
	if indicators.USD == models.IndicatorStrong &&
		indicators.Rates == models.IndicatorFalling &&
		indicators.Growth == models.IndicatorWeak {
		return models.Regime{
			Type: models.RegimeRiskOff,
			Description: "Risk-off regime: Strong USD, falling rates, and weak growth suggest " +
				"defensive positioning. Precious metals may outperform, while industrial commodities face headwinds.",
			Indicators: indicators,
			Impact: map[string]string{
				"energy": "Bearish - weak demand and strong USD pressure prices",
				"metals": "Mixed - precious metals benefit from safe-haven flows, industrial metals suffer",
				"ags":    "Bearish - weak demand and strong USD pressure prices",
			},
			DetectedDate: today,
			Confidence:   knownConfidence,
		}
	}

	// Rule 3: Tightening (USD strong, rates rising, growth mixed or unknown)
	if indicators.USD == models.IndicatorStrong &&
		indicators.Rates == models.IndicatorRising &&
		(indicators.Growth == models.IndicatorMixed || indicators.Growth == models.IndicatorUnknown) {
		confidence := models.ConfidenceMedium
		if indicators.USD != models.IndicatorUnknown && indicators.Rates != models.IndicatorUnknown {
			confidence = models.ConfidenceHigh
		}
		return models.Regime{
			Type: models.RegimeTightening,
			Description: "Tightening regime: Strong USD and rising rates suggest monetary tightening. " +
				"Commodities face headwinds from stronger dollar and higher financing costs.",
			Indicators: indicators,
			Impact: map[string]string{
				"energy": "Bearish - strong USD and higher rates pressure prices",
				"metals": "Bearish - strong USD and higher rates pressure prices",
				"ags":    "Bearish - strong USD and higher rates pressure prices",
			},
			DetectedDate: today,
			Confidence:   confidence,
		}
	}

	// Rule 4: Disinflationary growth (USD mixed/unknown, rates stable, growth strong)
	if (indicators.USD == models.IndicatorMixed || indicators.USD == models.IndicatorUnknown) &&
		indicators.Rates == models.IndicatorStable &&
		indicators.Growth == models.IndicatorStrong {
		confidence := models.ConfidenceMedium
		if indicators.Growth == models.IndicatorStrong && indicators.Rates == models.IndicatorStable {
			confidence = models.ConfidenceHigh
		}
		return models.Regime{
			Type: models.RegimeDisinflationaryGrowth,
			Description: "Disinflationary growth regime: Strong growth with stable rates suggests healthy " +
				"expansion without inflation pressures. Commodities benefit from demand but face less inflation support.",
			Indicators: indicators,
			Impact: map[string]string{
				"energy": "Bullish - strong demand supports prices",
				"metals": "Bullish - industrial metals benefit from growth",
				"ags":    "Bullish - strong demand supports prices",
			},
			DetectedDate: today,
			Confidence:   confidence,
		}
	}

	// Default: Uncertain
	return models.Regime{
		Type:        models.RegimeUncertain,
		Description: "Uncertain regime: Signal patterns do not clearly match any defined regime classification.",
		Indicators:  indicators,
		Impact: map[string]string{
			"energy": "Uncertain - mixed signals",
			"metals": "Uncertain - mixed signals",
			"ags":    "Uncertain - mixed signals",
		},
		DetectedDate: today,
		Confidence:   models.ConfidenceLow,
	}
}

// Transition returns a transition description only when the regime type
// actually changed between the previous and current classification
func Transition(current models.Regime, previous *models.Regime) *models.RegimeTransition {
	if previous == nil || previous.Type == current.Type {
		return nil
	}
	return &models.RegimeTransition{
		From: previous.Type,
		To:   current.Type,
		Description: "Regime transition detected: " + string(previous.Type) +
			" -> " + string(current.Type),
		Date: current.DetectedDate,
	}
}
