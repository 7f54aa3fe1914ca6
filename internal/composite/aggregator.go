// Package composite synthesizes a single weighted score for a market from
// its per-pillar signal averages. A composite is never a bare number: every
// result carries the full pillar trace that produced it.
package composite

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/selivandex/market-intel/internal/scoring"
	"github.com/selivandex/market-intel/pkg/models"
)

// DefaultPillarWeights order the pillars by how much they usually drive a
// market: macro first, then fundamentals, technicals for timing, sentiment last
var DefaultPillarWeights = map[string]float64{
	"Macro":       0.35,
	"Fundamental": 0.30,
	"Technical":   0.20,
	"Sentiment":   0.15,
}

// unknownPillarWeight is assigned to categories outside the default table
// before renormalization
const unknownPillarWeight = 0.25

// DefaultMinSignalsPerPillar is the minimum signal count for a pillar to
// contribute to the composite
const DefaultMinSignalsPerPillar = 1

// PillarContribution is one pillar's share of a composite result
type PillarContribution struct {
	Pillar      string            `json:"pillar"`
	Score       float64           `json:"score"`
	Direction   models.Direction  `json:"direction"`
	Confidence  models.Confidence `json:"confidence"`
	Weight      float64           `json:"weight"`
	SignalCount int               `json:"signal_count"`
}

// Result is a composite signal for one market with its full pillar breakdown
type Result struct {
	Market              string               `json:"market"`
	CompositeScore      float64              `json:"composite_score"`
	CompositeDirection  models.Direction     `json:"composite_direction"`
	CompositeConfidence models.Confidence    `json:"composite_confidence"`
	PillarBreakdown     []PillarContribution `json:"pillar_breakdown"`
	Explanation         string               `json:"explanation"`
	PillarCount         int                  `json:"pillar_count"`
	TotalSignals        int                  `json:"total_signals"`
	CalculatedAt        time.Time            `json:"calculated_at"`
}

// Options tune composite aggregation; zero values give the defaults
type Options struct {
	PillarWeights       map[string]float64
	MinSignalsPerPillar int
}

// Composite aggregates one market's signals into a weighted composite score.
// It returns nil when fewer than two pillars qualify — a valid, common
// outcome that callers must treat as "insufficient data", not an error.
func Composite(signals []models.Signal, market string, opts Options) *Result {
	if len(signals) == 0 {
		return nil
	}

	weights := opts.PillarWeights
	if weights == nil {
		weights = DefaultPillarWeights
	}
	minPerPillar := opts.MinSignalsPerPillar
	if minPerPillar <= 0 {
		minPerPillar = DefaultMinSignalsPerPillar
	}

	byPillar := make(map[string][]models.Signal)
	for _, s := range signals {
		byPillar[s.Category] = append(byPillar[s.Category], s)
	}
	if len(byPillar) < 2 {
		return nil
	}

	pillars := make([]string, 0, len(byPillar))
	for pillar, pillarSignals := range byPillar {
		if len(pillarSignals) >= minPerPillar {
			pillars = append(pillars, pillar)
		}
	}
	if len(pillars) < 2 {
		return nil
	}
	sort.Strings(pillars)

	// Renormalize configured weights over only the pillars actually present
	totalWeight := 0.0
	rawWeights := make(map[string]float64, len(pillars))
	for _, pillar := range pillars {
		w, ok := weights[pillar]
		if !ok {
			w = unknownPillarWeight
		}
		rawWeights[pillar] = w
		totalWeight += w
	}
	if totalWeight == 0 {
		return nil
	}

	breakdown := make([]PillarContribution, 0, len(pillars))
	compositeScore := 0.0
	weightedConfidence := 0.0

	for _, pillar := range pillars {
		pillarSignals := byPillar[pillar]
		weight := rawWeights[pillar] / totalWeight

		// Signal scores already carry the confidence multiplier; averaging
		// them keeps the pillar score confidence-weighted without counting
		// confidence twice.
		scoreSum := 0.0
		rankSum := 0.0
		bullish, bearish := 0, 0
		for _, s := range pillarSignals {
			scoreSum += scoring.Score(s)
			rankSum += s.Confidence.Rank()
			switch s.Direction {
			case models.DirectionBullish:
				bullish++
			case models.DirectionBearish:
				bearish++
			}
		}
		pillarScore := scoreSum / float64(len(pillarSignals))

		direction := models.DirectionNeutral
		if bullish > bearish {
			direction = models.DirectionBullish
		} else if bearish > bullish {
			direction = models.DirectionBearish
		}

		confidence := models.ConfidenceFromRank(rankSum / float64(len(pillarSignals)))

		compositeScore += pillarScore * weight
		weightedConfidence += confidence.Rank() * weight

		breakdown = append(breakdown, PillarContribution{
			Pillar:      pillar,
			Score:       pillarScore,
			Direction:   direction,
			Confidence:  confidence,
			Weight:      weight,
			SignalCount: len(pillarSignals),
		})
	}

	compositeDirection := models.DirectionNeutral
	if compositeScore >= 0.3 {
		compositeDirection = models.DirectionBullish
	} else if compositeScore <= -0.3 {
		compositeDirection = models.DirectionBearish
	}

	parts := make([]string, 0, len(breakdown))
	for _, p := range breakdown {
		parts = append(parts, fmt.Sprintf("%s (%s)", p.Pillar, p.Direction))
	}
	explanation := fmt.Sprintf("Composite signal combining %d pillars: %s",
		len(breakdown), strings.Join(parts, ", "))

	return &Result{
		Market:              market,
		CompositeScore:      compositeScore,
		CompositeDirection:  compositeDirection,
		CompositeConfidence: models.ConfidenceFromRank(weightedConfidence),
		PillarBreakdown:     breakdown,
		Explanation:         explanation,
		PillarCount:         len(breakdown),
		TotalSignals:        len(signals),
		CalculatedAt:        time.Now().UTC(),
	}
}
