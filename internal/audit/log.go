// Package audit keeps a bounded, append-only trail of signal and regime
// changes: what changed, when, and why.
package audit

import (
	"sort"
	"sync"
	"time"
)

// DefaultCapacity bounds the in-memory trail; older entries are dropped
const DefaultCapacity = 1000

// ChangeType classifies what an audit entry records
type ChangeType string

const (
	ChangeSignalCreated     ChangeType = "signal_created"
	ChangeSignalUpdated     ChangeType = "signal_updated"
	ChangeSignalDeleted     ChangeType = "signal_deleted"
	ChangeDirectionChanged  ChangeType = "direction_changed"
	ChangeConfidenceChanged ChangeType = "confidence_changed"
	ChangeRegimeChanged     ChangeType = "regime_changed"
	ChangeConflictDetected  ChangeType = "conflict_detected"
)

// Entry is a single audit record
type Entry struct {
	ChangeType  ChangeType     `json:"change_type"`
	EntityID    string         `json:"entity_id"`
	EntityType  string         `json:"entity_type"`
	Description string         `json:"description"`
	OldValue    map[string]any `json:"old_value,omitempty"`
	NewValue    map[string]any `json:"new_value,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

// Sink receives every recorded entry, e.g. for archival. Sinks must not block.
type Sink interface {
	Archive(entry Entry)
}

// Log is a capped ring of audit entries
type Log struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int
	sinks    []Sink
	now      func() time.Time
}

// NewLog creates an audit log with the default capacity
func NewLog(sinks ...Sink) *Log {
	return &Log{
		capacity: DefaultCapacity,
		sinks:    sinks,
		now:      time.Now,
	}
}

// Record appends an entry, stamping it when no timestamp is set, and drops
// the oldest entry once the ring is full
func (l *Log) Record(entry Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now().UTC()
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	if len(l.entries) > l.capacity {
		l.entries = l.entries[len(l.entries)-l.capacity:]
	}
	l.mu.Unlock()

	for _, sink := range l.sinks {
		sink.Archive(entry)
	}
}

// Filter narrows an Entries query; zero fields match everything
type Filter struct {
	EntityID   string
	EntityType string
	ChangeType ChangeType
	StartDate  *time.Time
	EndDate    *time.Time
}

// Entries returns matching audit records, newest first
func (l *Log) Entries(filter Filter) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		if filter.EntityID != "" && e.EntityID != filter.EntityID {
			continue
		}
		if filter.EntityType != "" && e.EntityType != filter.EntityType {
			continue
		}
		if filter.ChangeType != "" && e.ChangeType != filter.ChangeType {
			continue
		}
		if filter.StartDate != nil && e.Timestamp.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && e.Timestamp.After(*filter.EndDate) {
			continue
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// Len returns the number of retained entries
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
