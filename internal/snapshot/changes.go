package snapshot

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/selivandex/market-intel/internal/signalsource"
	"github.com/selivandex/market-intel/pkg/models"
)

// ChangeDetector diffs the current live signal set against the snapshots
// captured on one exact date
type ChangeDetector struct {
	provider signalsource.Provider
	store    *Store
}

// NewChangeDetector creates a change detector over the given store
func NewChangeDetector(provider signalsource.Provider, store *Store) *ChangeDetector {
	return &ChangeDetector{provider: provider, store: store}
}

// ChangesSince compares the current signal set against the snapshot set
// captured exactly on the given date and buckets every moved signal.
// When no snapshot exists on that exact date, the whole current set is
// reported as new: the comparison deliberately does not fall back to the
// nearest prior snapshot the way AsOf does.
func (d *ChangeDetector) ChangesSince(ctx context.Context, since time.Time) (*models.ChangeReport, error) {
	signals, err := d.provider.CurrentSignals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current signals: %w", err)
	}

	current := make(map[string]models.Signal, len(signals))
	for _, signal := range signals {
		current[signal.SignalID] = signal
	}
	historical := d.store.SnapshotsOn(since)

	report := &models.ChangeReport{
		SinceDate:         models.DateOnly(since),
		NewSignals:        []models.SignalChange{},
		RemovedSignals:    []models.SignalChange{},
		ChangedDirection:  []models.SignalChange{},
		ChangedConfidence: []models.SignalChange{},
	}

	for _, id := range sortedIDs(current) {
		signal := current[id]
		old, existed := historical[id]
		if !existed {
			report.NewSignals = append(report.NewSignals, models.SignalChange{
				SignalID:   id,
				SignalName: signal.Name,
				Market:     signal.Market,
				Direction:  signal.Direction,
				Confidence: signal.Confidence,
			})
			continue
		}

		if signal.Direction != old.Direction {
			report.ChangedDirection = append(report.ChangedDirection, models.SignalChange{
				SignalID:     id,
				SignalName:   signal.Name,
				Market:       signal.Market,
				OldDirection: old.Direction,
				NewDirection: signal.Direction,
			})
		}
		if signal.Confidence != old.Confidence {
			report.ChangedConfidence = append(report.ChangedConfidence, models.SignalChange{
				SignalID:      id,
				SignalName:    signal.Name,
				Market:        signal.Market,
				OldConfidence: old.Confidence,
				NewConfidence: signal.Confidence,
			})
		}
	}

	for _, id := range sortedIDs(historical) {
		if _, stillPresent := current[id]; stillPresent {
			continue
		}
		old := historical[id]
		report.RemovedSignals = append(report.RemovedSignals, models.SignalChange{
			SignalID:   id,
			SignalName: old.Name,
			Market:     old.Market,
			Direction:  old.Direction,
			Confidence: old.Confidence,
		})
	}

	return report, nil
}

func sortedIDs(signals map[string]models.Signal) []string {
	ids := make([]string, 0, len(signals))
	for id := range signals {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
