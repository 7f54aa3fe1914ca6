package regime

import (
	"strings"

	"github.com/selivandex/market-intel/pkg/models"
)

// Bucket membership is matched on signal names. This is a fragile naming
// convention heuristic kept for compatibility with the upstream signal set;
// swapping it for an explicit macro-factor tag only requires replacing these
// three functions.

func usdBucket(macro []models.Signal) []models.Signal {
	var out []models.Signal
	for _, s := range macro {
		if strings.Contains(s.Name, "USD") || strings.Contains(s.Name, "DXY") {
			out = append(out, s)
		}
	}
	return out
}

func ratesBucket(macro []models.Signal) []models.Signal {
	var out []models.Signal
	for _, s := range macro {
		lower := strings.ToLower(s.Name)
		if strings.Contains(lower, "rate") || strings.Contains(lower, "yield") ||
			strings.Contains(s.Name, "10Y") {
			out = append(out, s)
		}
	}
	return out
}

func growthBucket(macro []models.Signal) []models.Signal {
	var out []models.Signal
	for _, s := range macro {
		lower := strings.ToLower(s.Name)
		if strings.Contains(lower, "growth") || strings.Contains(lower, "copper") ||
			strings.Contains(lower, "equity") {
			out = append(out, s)
		}
	}
	return out
}

// indicatorSet selects the vocabulary a bucket reduces into
type indicatorSet int

const (
	// IndicatorSetStrength reduces to strong/weak/mixed (USD and growth buckets)
	IndicatorSetStrength indicatorSet = iota
	// IndicatorSetRates reduces to rising/falling/stable
	IndicatorSetRates
)

// reduceBucket collapses a bucket's signal directions into one state.
// Bullish takes precedence over bearish, which takes precedence over mixed;
// mixed is only assigned when no directional signal exists in the bucket.
func reduceBucket(bucket []models.Signal, set indicatorSet) string {
	if len(bucket) == 0 {
		return models.IndicatorUnknown
	}

	hasBullish, hasBearish := false, false
	for _, s := range bucket {
		switch s.Direction {
		case models.DirectionBullish:
			hasBullish = true
		case models.DirectionBearish:
			hasBearish = true
		}
	}

	switch set {
	case IndicatorSetRates:
		switch {
		case hasBullish:
			return models.IndicatorRising
		case hasBearish:
			return models.IndicatorFalling
		default:
			return models.IndicatorStable
		}
	default:
		switch {
		case hasBullish:
			return models.IndicatorStrong
		case hasBearish:
			return models.IndicatorWeak
		default:
			return models.IndicatorMixed
		}
	}
}
