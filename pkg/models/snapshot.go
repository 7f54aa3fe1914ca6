package models

import "time"

// SignalSnapshot is an immutable capture of a signal's full state on a
// specific calendar date. At most one snapshot exists per (signal_id, date).
type SignalSnapshot struct {
	SignalID     string    `json:"signal_id"`
	SnapshotDate time.Time `json:"snapshot_date"`
	Signal       Signal    `json:"signal"`
}

// SignalChange records one signal's movement between two points in time
type SignalChange struct {
	SignalID   string `json:"signal_id"`
	SignalName string `json:"signal_name"`
	Market     string `json:"market"`

	Direction  Direction  `json:"direction,omitempty"`
	Confidence Confidence `json:"confidence,omitempty"`

	OldDirection  Direction  `json:"old_direction,omitempty"`
	NewDirection  Direction  `json:"new_direction,omitempty"`
	OldConfidence Confidence `json:"old_confidence,omitempty"`
	NewConfidence Confidence `json:"new_confidence,omitempty"`
}

// ChangeReport groups signal changes since a reference date into the four
// disjoint buckets. Direction and confidence changes may both list the same
// signal; no signal appears in more than one of new/removed/changed.
type ChangeReport struct {
	SinceDate         time.Time      `json:"since_date"`
	NewSignals        []SignalChange `json:"new_signals"`
	RemovedSignals    []SignalChange `json:"removed_signals"`
	ChangedDirection  []SignalChange `json:"changed_direction"`
	ChangedConfidence []SignalChange `json:"changed_confidence"`
}

// Empty reports whether the comparison found no movement at all
func (r *ChangeReport) Empty() bool {
	return len(r.NewSignals) == 0 &&
		len(r.RemovedSignals) == 0 &&
		len(r.ChangedDirection) == 0 &&
		len(r.ChangedConfidence) == 0
}
