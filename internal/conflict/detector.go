// Package conflict evaluates a fixed rule table over a signal set and
// reports contradictions between concurrently active signals. Detection is
// stateless: conflicts are recomputed on every query and never persisted.
package conflict

import (
	"fmt"
	"sort"

	"github.com/selivandex/market-intel/pkg/models"
)

// Detect runs all three conflict rules over the signal set. A signal set may
// match several rules; every match is returned. Output order is rule order,
// then market name order — a contract for deterministic results, not an
// accident.
func Detect(signals []models.Signal) []models.Conflict {
	byMarket := groupByMarket(signals)
	markets := sortedMarkets(byMarket)

	conflicts := []models.Conflict{}
	for _, market := range markets {
		if c := oppositeDirection(market, byMarket[market]); c != nil {
			conflicts = append(conflicts, *c)
		}
	}
	for _, market := range markets {
		if c := structuralTacticalMismatch(market, byMarket[market]); c != nil {
			conflicts = append(conflicts, *c)
		}
	}
	for _, market := range markets {
		if c := timeframeMismatch(market, byMarket[market]); c != nil {
			conflicts = append(conflicts, *c)
		}
	}
	return conflicts
}

// ForMarket runs the rule table over one market's signals only
func ForMarket(market string, signals []models.Signal) []models.Conflict {
	filtered := make([]models.Signal, 0)
	for _, s := range signals {
		if s.Market == market {
			filtered = append(filtered, s)
		}
	}
	return Detect(filtered)
}

// oppositeDirection fires when one market holds both high-confidence bullish
// and high-confidence bearish signals
func oppositeDirection(market string, signals []models.Signal) *models.Conflict {
	if len(signals) < 2 {
		return nil
	}

	var bullishHigh, bearishHigh []models.Signal
	for _, s := range signals {
		if s.Confidence != models.ConfidenceHigh {
			continue
		}
		switch s.Direction {
		case models.DirectionBullish:
			bullishHigh = append(bullishHigh, s)
		case models.DirectionBearish:
			bearishHigh = append(bearishHigh, s)
		}
	}

	if len(bullishHigh) == 0 || len(bearishHigh) == 0 {
		return nil
	}

	return &models.Conflict{
		ConflictingSignalIDs: signalIDs(bullishHigh, bearishHigh),
		Type:                 models.ConflictOppositeDirection,
		Description: fmt.Sprintf(
			"High confidence signals in %s show opposite directions: %d bullish vs %d bearish",
			market, len(bullishHigh), len(bearishHigh)),
		Market: market,
	}
}

// structuralTacticalMismatch fires when structural and tactical signals in
// one market pull in opposite directions. Only the first matching branch is
// reported even when both hold: the structural-bullish case wins. That
// asymmetry is preserved behavior, pinned by tests.
func structuralTacticalMismatch(market string, signals []models.Signal) *models.Conflict {
	if len(signals) < 2 {
		return nil
	}

	var structuralBullish, tacticalBearish, structuralBearish, tacticalBullish []models.Signal
	for _, s := range signals {
		switch {
		case s.SignalType == models.SignalTypeStructural && s.Direction == models.DirectionBullish:
			structuralBullish = append(structuralBullish, s)
		case s.SignalType == models.SignalTypeTactical && s.Direction == models.DirectionBearish:
			tacticalBearish = append(tacticalBearish, s)
		case s.SignalType == models.SignalTypeStructural && s.Direction == models.DirectionBearish:
			structuralBearish = append(structuralBearish, s)
		case s.SignalType == models.SignalTypeTactical && s.Direction == models.DirectionBullish:
			tacticalBullish = append(tacticalBullish, s)
		}
	}

	var ids []string
	var tension string
	switch {
	case len(structuralBullish) > 0 && len(tacticalBearish) > 0:
		ids = signalIDs(structuralBullish, tacticalBearish)
		tension = "Structural bullish forces conflict with tactical bearish signals"
	case len(structuralBearish) > 0 && len(tacticalBullish) > 0:
		ids = signalIDs(structuralBearish, tacticalBullish)
		tension = "Structural bearish forces conflict with tactical bullish signals"
	default:
		return nil
	}

	return &models.Conflict{
		ConflictingSignalIDs: ids,
		Type:                 models.ConflictStructuralTacticalMismatch,
		Description: fmt.Sprintf(
			"Structural vs tactical mismatch in %s: %s", market, tension),
		Market:                market,
		StructuralVsTransient: tension,
	}
}

// timeframeMismatch fires when short-term signals (intraday/daily validity)
// and structural-validity signals in one market carry opposing directions
func timeframeMismatch(market string, signals []models.Signal) *models.Conflict {
	if len(signals) < 2 {
		return nil
	}

	var shortTerm, structural []models.Signal
	for _, s := range signals {
		switch s.ValidityWindow {
		case models.ValidityIntraday, models.ValidityDaily:
			shortTerm = append(shortTerm, s)
		case models.ValidityStructural:
			structural = append(structural, s)
		}
	}

	if len(shortTerm) == 0 || len(structural) == 0 {
		return nil
	}

	shortBullish := countDirection(shortTerm, models.DirectionBullish)
	shortBearish := countDirection(shortTerm, models.DirectionBearish)
	structBullish := countDirection(structural, models.DirectionBullish)
	structBearish := countDirection(structural, models.DirectionBearish)

	var mismatch string
	switch {
	case shortBullish > 0 && structBearish > 0:
		mismatch = "Short-term bullish signals conflict with structural bearish trend"
	case shortBearish > 0 && structBullish > 0:
		mismatch = "Short-term bearish signals conflict with structural bullish trend"
	default:
		return nil
	}

	return &models.Conflict{
		ConflictingSignalIDs: signalIDs(shortTerm, structural),
		Type:                 models.ConflictTimeframeMismatch,
		Description: fmt.Sprintf(
			"Timeframe mismatch in %s: %s", market, mismatch),
		Market:            market,
		TimeframeMismatch: mismatch,
	}
}

func groupByMarket(signals []models.Signal) map[string][]models.Signal {
	byMarket := make(map[string][]models.Signal)
	for _, s := range signals {
		byMarket[s.Market] = append(byMarket[s.Market], s)
	}
	return byMarket
}

func sortedMarkets(byMarket map[string][]models.Signal) []string {
	markets := make([]string, 0, len(byMarket))
	for market := range byMarket {
		markets = append(markets, market)
	}
	sort.Strings(markets)
	return markets
}

func signalIDs(groups ...[]models.Signal) []string {
	var ids []string
	for _, group := range groups {
		for _, s := range group {
			ids = append(ids, s.SignalID)
		}
	}
	return ids
}

func countDirection(signals []models.Signal, d models.Direction) int {
	n := 0
	for _, s := range signals {
		if s.Direction == d {
			n++
		}
	}
	return n
}
