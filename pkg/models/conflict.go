package models

// ConflictType identifies which detection rule produced a conflict
type ConflictType string

const (
	ConflictOppositeDirection          ConflictType = "opposite_direction"
	ConflictStructuralTacticalMismatch ConflictType = "structural_tactical_mismatch"
	ConflictTimeframeMismatch          ConflictType = "timeframe_mismatch"
)

// Conflict is a detected contradiction between concurrently active signals
// in one market. Conflicts are derived on every query and never persisted.
type Conflict struct {
	ConflictingSignalIDs []string     `json:"conflicting_signals"`
	Type                 ConflictType `json:"conflict_type"`
	Description          string       `json:"description"`
	Market               string       `json:"market"`

	// Sub-explanations, populated only by the rule that uses them
	StructuralVsTransient string `json:"structural_vs_transient,omitempty"`
	TimeframeMismatch     string `json:"timeframe_mismatch,omitempty"`
}
