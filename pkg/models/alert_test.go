package models

import (
	"encoding/json"
	"testing"
)

func TestAlert_Validate(t *testing.T) {
	t.Run("valid alert passes", func(t *testing.T) {
		a := Alert{
			AlertID:    "a1",
			Name:       "WTI direction watch",
			Type:       AlertDirectionChange,
			Conditions: DirectionChangeConditions{SignalID: "wti-inventory-draw"},
			Enabled:    true,
		}
		if err := a.Validate(); err != nil {
			t.Errorf("expected valid alert, got %v", err)
		}
	})

	t.Run("missing conditions", func(t *testing.T) {
		a := Alert{AlertID: "a1", Type: AlertDirectionChange}
		if err := a.Validate(); err == nil {
			t.Error("expected error for nil conditions")
		}
	})

	t.Run("conditions type mismatch", func(t *testing.T) {
		a := Alert{
			AlertID:    "a1",
			Type:       AlertDirectionChange,
			Conditions: NewConflictConditions{Market: "WTI"},
		}
		if err := a.Validate(); err == nil {
			t.Error("expected error for mismatched conditions type")
		}
	})

	t.Run("direction change requires signal_id", func(t *testing.T) {
		a := Alert{
			AlertID:    "a1",
			Type:       AlertDirectionChange,
			Conditions: DirectionChangeConditions{},
		}
		if err := a.Validate(); err == nil {
			t.Error("expected error for empty signal_id")
		}
	})
}

func TestAlert_JSONRoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		alert Alert
	}{
		{
			name: "direction change",
			alert: Alert{
				AlertID:    "a1",
				Name:       "WTI direction",
				Type:       AlertDirectionChange,
				Conditions: DirectionChangeConditions{SignalID: "wti-inventory-draw"},
				Enabled:    true,
			},
		},
		{
			name: "new conflict with market filter",
			alert: Alert{
				AlertID:    "a2",
				Name:       "Gold conflicts",
				Type:       AlertNewConflict,
				Conditions: NewConflictConditions{Market: "Gold"},
				Enabled:    true,
			},
		},
		{
			name: "regime transition",
			alert: Alert{
				AlertID:    "a3",
				Name:       "Regime watch",
				Type:       AlertRegimeTransition,
				Conditions: RegimeTransitionConditions{},
				Enabled:    true,
			},
		},
		{
			name: "stale signal unfiltered",
			alert: Alert{
				AlertID:    "a4",
				Name:       "Staleness sweep",
				Type:       AlertStaleSignal,
				Conditions: StaleSignalConditions{},
				Enabled:    false,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.alert)
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}

			var decoded Alert
			if err := json.Unmarshal(data, &decoded); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}

			if decoded.AlertID != tc.alert.AlertID {
				t.Errorf("alert_id = %q, want %q", decoded.AlertID, tc.alert.AlertID)
			}
			if decoded.Type != tc.alert.Type {
				t.Errorf("alert_type = %q, want %q", decoded.Type, tc.alert.Type)
			}
			if decoded.Conditions == nil {
				t.Fatal("conditions lost in round trip")
			}
			if decoded.Conditions.AlertType() != tc.alert.Type {
				t.Errorf("conditions decoded for type %q, want %q",
					decoded.Conditions.AlertType(), tc.alert.Type)
			}
			if decoded.Conditions != tc.alert.Conditions {
				t.Errorf("conditions = %#v, want %#v", decoded.Conditions, tc.alert.Conditions)
			}
		})
	}
}

func TestAlert_UnmarshalUnknownType(t *testing.T) {
	data := []byte(`{"alert_id":"a1","alert_type":"price_spike","conditions":{}}`)

	var decoded Alert
	if err := json.Unmarshal(data, &decoded); err == nil {
		t.Error("expected error for unknown alert type")
	}
}
