package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// AlertType identifies which predicate an alert evaluates
type AlertType string

const (
	AlertDirectionChange  AlertType = "direction_change"
	AlertConfidenceChange AlertType = "confidence_change"
	AlertNewConflict      AlertType = "new_conflict"
	AlertRegimeTransition AlertType = "regime_transition"
	AlertStaleSignal      AlertType = "stale_signal"
)

// ParseAlertType converts external input to an AlertType, failing fast on unknown values
func ParseAlertType(s string) (AlertType, error) {
	switch AlertType(s) {
	case AlertDirectionChange, AlertConfidenceChange, AlertNewConflict,
		AlertRegimeTransition, AlertStaleSignal:
		return AlertType(s), nil
	default:
		return "", fmt.Errorf("unknown alert type: %q", s)
	}
}

// AlertConditions is the typed parameter set of one alert. Each alert type
// has its own variant, resolved by type switch in the evaluator.
type AlertConditions interface {
	AlertType() AlertType
	Validate() error
}

// DirectionChangeConditions fires when the configured signal changed direction
type DirectionChangeConditions struct {
	SignalID string `json:"signal_id"`
}

func (c DirectionChangeConditions) AlertType() AlertType { return AlertDirectionChange }

func (c DirectionChangeConditions) Validate() error {
	if c.SignalID == "" {
		return fmt.Errorf("direction_change alert requires signal_id")
	}
	return nil
}

// ConfidenceChangeConditions fires when the configured signal changed confidence
type ConfidenceChangeConditions struct {
	SignalID string `json:"signal_id"`
}

func (c ConfidenceChangeConditions) AlertType() AlertType { return AlertConfidenceChange }

func (c ConfidenceChangeConditions) Validate() error {
	if c.SignalID == "" {
		return fmt.Errorf("confidence_change alert requires signal_id")
	}
	return nil
}

// NewConflictConditions fires when any conflict is present, optionally
// filtered to one market
type NewConflictConditions struct {
	Market string `json:"market,omitempty"`
}

func (c NewConflictConditions) AlertType() AlertType { return AlertNewConflict }

func (c NewConflictConditions) Validate() error { return nil }

// RegimeTransitionConditions fires when the regime type changed since yesterday
type RegimeTransitionConditions struct{}

func (c RegimeTransitionConditions) AlertType() AlertType { return AlertRegimeTransition }

func (c RegimeTransitionConditions) Validate() error { return nil }

// StaleSignalConditions fires when any signal exceeds its staleness
// threshold, optionally filtered to one market
type StaleSignalConditions struct {
	Market string `json:"market,omitempty"`
}

func (c StaleSignalConditions) AlertType() AlertType { return AlertStaleSignal }

func (c StaleSignalConditions) Validate() error { return nil }

// Alert is a user-defined condition evaluated against current signal state.
// LastTriggered is written only by the alert store after evaluation.
type Alert struct {
	AlertID       string          `json:"alert_id"`
	Name          string          `json:"name"`
	Type          AlertType       `json:"alert_type"`
	Conditions    AlertConditions `json:"conditions"`
	Enabled       bool            `json:"enabled"`
	LastTriggered time.Time       `json:"last_triggered,omitempty"`
	CreatedAt     time.Time       `json:"created_at,omitempty"`
}

// Validate checks the alert's shape and its type-specific conditions
func (a *Alert) Validate() error {
	if a.AlertID == "" {
		return fmt.Errorf("alert_id is required")
	}
	if _, err := ParseAlertType(string(a.Type)); err != nil {
		return fmt.Errorf("alert %s: %w", a.AlertID, err)
	}
	if a.Conditions == nil {
		return fmt.Errorf("alert %s: conditions are required", a.AlertID)
	}
	if a.Conditions.AlertType() != a.Type {
		return fmt.Errorf("alert %s: conditions are for type %s, alert is %s",
			a.AlertID, a.Conditions.AlertType(), a.Type)
	}
	if err := a.Conditions.Validate(); err != nil {
		return fmt.Errorf("alert %s: %w", a.AlertID, err)
	}
	return nil
}

// alertEnvelope is the wire form of an Alert; conditions are decoded
// according to alert_type
type alertEnvelope struct {
	AlertID       string          `json:"alert_id"`
	Name          string          `json:"name"`
	Type          AlertType       `json:"alert_type"`
	Conditions    json.RawMessage `json:"conditions"`
	Enabled       bool            `json:"enabled"`
	LastTriggered time.Time       `json:"last_triggered,omitempty"`
	CreatedAt     time.Time       `json:"created_at,omitempty"`
}

// MarshalJSON encodes the alert with its typed conditions inline
func (a Alert) MarshalJSON() ([]byte, error) {
	conditions, err := json.Marshal(a.Conditions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal alert conditions: %w", err)
	}
	return json.Marshal(alertEnvelope{
		AlertID:       a.AlertID,
		Name:          a.Name,
		Type:          a.Type,
		Conditions:    conditions,
		Enabled:       a.Enabled,
		LastTriggered: a.LastTriggered,
		CreatedAt:     a.CreatedAt,
	})
}

// UnmarshalJSON decodes the alert, resolving the conditions variant from alert_type
func (a *Alert) UnmarshalJSON(data []byte) error {
	var env alertEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	conditions, err := decodeConditions(env.Type, env.Conditions)
	if err != nil {
		return fmt.Errorf("alert %s: %w", env.AlertID, err)
	}

	a.AlertID = env.AlertID
	a.Name = env.Name
	a.Type = env.Type
	a.Conditions = conditions
	a.Enabled = env.Enabled
	a.LastTriggered = env.LastTriggered
	a.CreatedAt = env.CreatedAt
	return nil
}

func decodeConditions(alertType AlertType, raw json.RawMessage) (AlertConditions, error) {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	switch alertType {
	case AlertDirectionChange:
		var c DirectionChangeConditions
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	case AlertConfidenceChange:
		var c ConfidenceChangeConditions
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	case AlertNewConflict:
		var c NewConflictConditions
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	case AlertRegimeTransition:
		return RegimeTransitionConditions{}, nil
	case AlertStaleSignal:
		var c StaleSignalConditions
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown alert type: %q", alertType)
	}
}

// StaleSignalInfo identifies one stale signal inside a trigger payload
type StaleSignalInfo struct {
	SignalID   string `json:"signal_id"`
	SignalName string `json:"signal_name"`
	Market     string `json:"market"`
	AgeDays    int    `json:"age_days"`
}

// TriggerPayload is returned when an alert fires
type TriggerPayload struct {
	AlertID   string    `json:"alert_id"`
	AlertName string    `json:"alert_name"`
	Type      AlertType `json:"alert_type"`
	Reason    string    `json:"trigger_reason"`
	FiredAt   time.Time `json:"fired_at"`

	// Per-type detail, populated only by the matching alert type
	Change       *SignalChange     `json:"change,omitempty"`
	Conflicts    []Conflict        `json:"conflicts,omitempty"`
	Transition   *RegimeTransition `json:"transition,omitempty"`
	StaleSignals []StaleSignalInfo `json:"stale_signals,omitempty"`
}
