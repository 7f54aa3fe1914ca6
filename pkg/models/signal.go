package models

import (
	"fmt"
	"strings"
	"time"
)

// Direction represents the directional call of a signal
type Direction string

const (
	DirectionBullish Direction = "Bullish"
	DirectionBearish Direction = "Bearish"
	DirectionNeutral Direction = "Neutral"
)

// ParseDirection converts external input to a Direction, failing fast on unknown values
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bullish":
		return DirectionBullish, nil
	case "bearish":
		return DirectionBearish, nil
	case "neutral":
		return DirectionNeutral, nil
	default:
		return "", fmt.Errorf("unknown direction: %q", s)
	}
}

// Valid reports whether the direction is one of the known values
func (d Direction) Valid() bool {
	return d == DirectionBullish || d == DirectionBearish || d == DirectionNeutral
}

// Confidence represents how much conviction stands behind a signal
type Confidence string

const (
	ConfidenceLow    Confidence = "Low"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceHigh   Confidence = "High"
)

// ParseConfidence converts external input to a Confidence, failing fast on unknown values
func ParseConfidence(s string) (Confidence, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return ConfidenceLow, nil
	case "medium":
		return ConfidenceMedium, nil
	case "high":
		return ConfidenceHigh, nil
	default:
		return "", fmt.Errorf("unknown confidence: %q", s)
	}
}

// Valid reports whether the confidence is one of the known values
func (c Confidence) Valid() bool {
	return c == ConfidenceLow || c == ConfidenceMedium || c == ConfidenceHigh
}

// Weight returns the confidence multiplier used for scoring and aggregation
func (c Confidence) Weight() float64 {
	switch c {
	case ConfidenceHigh:
		return 1.0
	case ConfidenceMedium:
		return 0.6
	default:
		return 0.3
	}
}

// Rank returns the numeric bucket value used for averaging confidences
func (c Confidence) Rank() float64 {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	default:
		return 1
	}
}

// ConfidenceFromRank buckets a weighted numeric average back into a Confidence
func ConfidenceFromRank(rank float64) Confidence {
	switch {
	case rank >= 2.5:
		return ConfidenceHigh
	case rank >= 1.5:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// SignalType distinguishes long-lived structural calls from tactical ones
type SignalType string

const (
	SignalTypeStructural SignalType = "structural"
	SignalTypeTactical   SignalType = "tactical"
)

// ParseSignalType converts external input to a SignalType, failing fast on unknown values
func ParseSignalType(s string) (SignalType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "structural":
		return SignalTypeStructural, nil
	case "tactical":
		return SignalTypeTactical, nil
	default:
		return "", fmt.Errorf("unknown signal type: %q", s)
	}
}

// ValidityWindow is the declared lifespan class of a signal
type ValidityWindow string

const (
	ValidityIntraday   ValidityWindow = "intraday"
	ValidityDaily      ValidityWindow = "daily"
	ValidityWeekly     ValidityWindow = "weekly"
	ValidityStructural ValidityWindow = "structural"
)

// ParseValidityWindow converts external input to a ValidityWindow, failing fast on unknown values
func ParseValidityWindow(s string) (ValidityWindow, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "intraday":
		return ValidityIntraday, nil
	case "daily":
		return ValidityDaily, nil
	case "weekly":
		return ValidityWeekly, nil
	case "structural":
		return ValidityStructural, nil
	default:
		return "", fmt.Errorf("unknown validity window: %q", s)
	}
}

// StalenessThresholdDays returns how many days a signal of this window
// may go without an update before it is considered stale
func (v ValidityWindow) StalenessThresholdDays() int {
	switch v {
	case ValidityIntraday:
		return 1
	case ValidityDaily:
		return 2
	case ValidityWeekly:
		return 8
	case ValidityStructural:
		return 30
	default:
		return 7
	}
}

// DataFreshness classifies how recent a signal's underlying data is
type DataFreshness string

const (
	FreshnessFresh   DataFreshness = "fresh"
	FreshnessStale   DataFreshness = "stale"
	FreshnessUnknown DataFreshness = "unknown"
)

// Signal is a directional, confidence-scored observation about a commodity market
type Signal struct {
	SignalID string `json:"signal_id"`
	Version  string `json:"version"`

	Market         string         `json:"market"`
	Category       string         `json:"category"`
	Name           string         `json:"name"`
	SignalType     SignalType     `json:"signal_type"`
	ValidityWindow ValidityWindow `json:"validity_window"`

	Direction  Direction  `json:"direction"`
	Confidence Confidence `json:"confidence"`
	Score      float64    `json:"score"`

	LastUpdated time.Time `json:"last_updated"`
	DataAsOf    time.Time `json:"data_asof"`

	Explanation   string `json:"explanation"`
	Definition    string `json:"definition"`
	Source        string `json:"source"`
	KeyDriver     string `json:"key_driver"`
	DecayBehavior string `json:"decay_behavior"`

	RelatedSignalIDs []string `json:"related_signal_ids,omitempty"`
	RelatedMarkets   []string `json:"related_markets,omitempty"`
}

// Validate checks the invariants enforced at the boundary where external
// data enters the core
func (s *Signal) Validate() error {
	if s.SignalID == "" {
		return fmt.Errorf("signal_id is required")
	}
	if s.Market == "" {
		return fmt.Errorf("signal %s: market is required", s.SignalID)
	}
	if s.Category == "" {
		return fmt.Errorf("signal %s: category is required", s.SignalID)
	}
	if !s.Direction.Valid() {
		return fmt.Errorf("signal %s: unknown direction %q", s.SignalID, s.Direction)
	}
	if !s.Confidence.Valid() {
		return fmt.Errorf("signal %s: unknown confidence %q", s.SignalID, s.Confidence)
	}
	if s.SignalType != SignalTypeStructural && s.SignalType != SignalTypeTactical {
		return fmt.Errorf("signal %s: unknown signal type %q", s.SignalID, s.SignalType)
	}
	switch s.ValidityWindow {
	case ValidityIntraday, ValidityDaily, ValidityWeekly, ValidityStructural:
	default:
		return fmt.Errorf("signal %s: unknown validity window %q", s.SignalID, s.ValidityWindow)
	}
	if len(strings.TrimSpace(s.Explanation)) < 10 {
		return fmt.Errorf("signal %s: explanation must be at least 10 characters", s.SignalID)
	}
	if !s.DataAsOf.IsZero() && !s.LastUpdated.IsZero() && s.DataAsOf.After(s.LastUpdated) {
		return fmt.Errorf("signal %s: data_asof is after last_updated", s.SignalID)
	}
	return nil
}

// AgeDays returns full days elapsed since the signal was last updated
func (s *Signal) AgeDays(now time.Time) int {
	if s.LastUpdated.IsZero() {
		return 0
	}
	days := int(DateOnly(now).Sub(DateOnly(s.LastUpdated)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Freshness classifies the signal's underlying data age as of now
func (s *Signal) Freshness(now time.Time) DataFreshness {
	if s.DataAsOf.IsZero() {
		return FreshnessUnknown
	}
	if DateOnly(now).Sub(DateOnly(s.DataAsOf)).Hours()/24 < 2 {
		return FreshnessFresh
	}
	return FreshnessStale
}

// IsStale reports whether the signal has exceeded the staleness threshold
// of its validity window
func (s *Signal) IsStale(now time.Time) bool {
	return s.AgeDays(now) > s.ValidityWindow.StalenessThresholdDays()
}

// DateOnly truncates a timestamp to its calendar date in UTC
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateKey formats a date as the canonical YYYY-MM-DD storage key
func DateKey(t time.Time) string {
	return DateOnly(t).Format("2006-01-02")
}
