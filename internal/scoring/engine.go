// Package scoring maps a signal's direction and confidence to a bounded
// score in [-1, 1]. Scores are transparent and never replace explanations.
package scoring

import (
	"fmt"

	"github.com/selivandex/market-intel/pkg/models"
)

// DirectionValue returns the numeric value of a direction:
// bullish +1, bearish -1, neutral 0
func DirectionValue(d models.Direction) float64 {
	switch d {
	case models.DirectionBullish:
		return 1.0
	case models.DirectionBearish:
		return -1.0
	default:
		return 0.0
	}
}

// Score computes the normalized signal score: direction value times the
// confidence multiplier, clamped to [-1, 1]
func Score(signal models.Signal) float64 {
	score := DirectionValue(signal.Direction) * signal.Confidence.Weight()
	return clamp(score)
}

// Breakdown explains how a signal's score is calculated
type Breakdown struct {
	Score                float64           `json:"score"`
	Direction            models.Direction  `json:"direction"`
	DirectionValue       float64           `json:"direction_value"`
	Confidence           models.Confidence `json:"confidence"`
	ConfidenceMultiplier float64           `json:"confidence_multiplier"`
	Calculation          string            `json:"calculation"`
	Interpretation       string            `json:"interpretation"`
}

// Explain returns the two scoring factors, the arithmetic, and a bucketed
// interpretation of the result
func Explain(signal models.Signal) Breakdown {
	directionValue := DirectionValue(signal.Direction)
	multiplier := signal.Confidence.Weight()
	score := clamp(directionValue * multiplier)

	return Breakdown{
		Score:                score,
		Direction:            signal.Direction,
		DirectionValue:       directionValue,
		Confidence:           signal.Confidence,
		ConfidenceMultiplier: multiplier,
		Calculation:          fmt.Sprintf("%.1f * %.1f = %.3f", directionValue, multiplier, score),
		Interpretation:       Interpret(score),
	}
}

// Interpret buckets a score into a human-readable reading
func Interpret(score float64) string {
	switch {
	case score >= 0.7:
		return "Strongly bullish"
	case score >= 0.3:
		return "Moderately bullish"
	case score >= -0.3:
		return "Neutral"
	case score >= -0.7:
		return "Moderately bearish"
	default:
		return "Strongly bearish"
	}
}

func clamp(score float64) float64 {
	if score > 1.0 {
		return 1.0
	}
	if score < -1.0 {
		return -1.0
	}
	return score
}
