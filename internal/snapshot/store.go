// Package snapshot persists one immutable signal capture per
// (signal identity, calendar date) and reconstructs point-in-time views.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/market-intel/internal/signalsource"
	"github.com/selivandex/market-intel/internal/storage"
	"github.com/selivandex/market-intel/pkg/logger"
	"github.com/selivandex/market-intel/pkg/models"
)

// Store owns the snapshot table. All reads run against a stable view under
// the read lock, so a concurrent Capture can never produce a mixed-date
// result from AsOf or History.
type Store struct {
	provider signalsource.Provider
	records  storage.RecordStore

	mu        sync.RWMutex
	snapshots map[string]models.SignalSnapshot // key: dateKey|signalID
}

func snapshotKey(signalID string, date time.Time) string {
	return models.DateKey(date) + "|" + signalID
}

// NewStore creates a snapshot store backed by the given record store and
// loads any previously persisted snapshots
func NewStore(ctx context.Context, provider signalsource.Provider, records storage.RecordStore) (*Store, error) {
	s := &Store{
		provider:  provider,
		records:   records,
		snapshots: make(map[string]models.SignalSnapshot),
	}

	persisted, err := records.List(ctx, storage.KindSnapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted snapshots: %w", err)
	}
	for key, value := range persisted {
		var snap models.SignalSnapshot
		if err := json.Unmarshal(value, &snap); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot %s: %w", key, err)
		}
		s.snapshots[key] = snap
	}

	if len(s.snapshots) > 0 {
		logger.Info("snapshot store loaded",
			zap.Int("snapshots", len(s.snapshots)),
		)
	}
	return s, nil
}

// Capture stores a snapshot of every current signal under the given date.
// Capturing the same date again overwrites that date's snapshots (idempotent
// upsert), never duplicates them.
func (s *Store) Capture(ctx context.Context, date time.Time) ([]models.SignalSnapshot, error) {
	signals, err := s.provider.CurrentSignals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current signals: %w", err)
	}

	date = models.DateOnly(date)
	created := make([]models.SignalSnapshot, 0, len(signals))

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, signal := range signals {
		snap := models.SignalSnapshot{
			SignalID:     signal.SignalID,
			SnapshotDate: date,
			Signal:       signal,
		}
		key := snapshotKey(signal.SignalID, date)
		s.snapshots[key] = snap
		created = append(created, snap)

		value, err := json.Marshal(snap)
		if err != nil {
			return nil, fmt.Errorf("failed to encode snapshot %s: %w", key, err)
		}
		if err := s.records.Put(ctx, storage.KindSnapshot, key, value); err != nil {
			return nil, fmt.Errorf("failed to persist snapshot %s: %w", key, err)
		}
	}

	logger.Info("snapshot captured",
		zap.String("date", models.DateKey(date)),
		zap.Int("signals", len(created)),
	)
	return created, nil
}

// History returns all snapshots for a signal within the optional inclusive
// date range, ascending by date
func (s *Store) History(ctx context.Context, signalID string, start, end *time.Time) ([]models.SignalSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.SignalSnapshot
	for _, snap := range s.snapshots {
		if snap.SignalID != signalID {
			continue
		}
		if start != nil && snap.SnapshotDate.Before(models.DateOnly(*start)) {
			continue
		}
		if end != nil && snap.SnapshotDate.After(models.DateOnly(*end)) {
			continue
		}
		out = append(out, snap)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].SnapshotDate.Before(out[j].SnapshotDate)
	})
	return out, nil
}

// AsOf reconstructs the signal set as it was on the given date: for every
// signal identity, the latest snapshot at or before that date. When nothing
// was captured at or before the date, the live current set is returned as a
// deliberate fallback policy, never an empty result.
func (s *Store) AsOf(ctx context.Context, date time.Time) ([]models.Signal, error) {
	date = models.DateOnly(date)

	s.mu.RLock()
	latest := make(map[string]models.SignalSnapshot)
	for _, snap := range s.snapshots {
		if snap.SnapshotDate.After(date) {
			continue
		}
		best, ok := latest[snap.SignalID]
		if !ok || snap.SnapshotDate.After(best.SnapshotDate) {
			latest[snap.SignalID] = snap
		}
	}
	s.mu.RUnlock()

	if len(latest) == 0 {
		return s.provider.CurrentSignals(ctx)
	}

	signals := make([]models.Signal, 0, len(latest))
	for _, snap := range latest {
		signals = append(signals, snap.Signal)
	}
	sort.Slice(signals, func(i, j int) bool {
		return signals[i].SignalID < signals[j].SignalID
	})
	return signals, nil
}

// SnapshotsOn returns the signals captured exactly on the given date,
// keyed by signal id. No fallback: an uncaptured date yields an empty map.
func (s *Store) SnapshotsOn(date time.Time) map[string]models.Signal {
	date = models.DateOnly(date)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]models.Signal)
	for _, snap := range s.snapshots {
		if snap.SnapshotDate.Equal(date) {
			out[snap.SignalID] = snap.Signal
		}
	}
	return out
}

// Count returns the number of stored snapshots
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}
