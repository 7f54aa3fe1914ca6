package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/selivandex/market-intel/internal/signalsource"
	"github.com/selivandex/market-intel/internal/storage"
	"github.com/selivandex/market-intel/pkg/models"
)

func testSignal(id, market string, direction models.Direction, confidence models.Confidence) models.Signal {
	return models.Signal{
		SignalID:       id,
		Version:        "v1",
		Market:         market,
		Category:       "Fundamental",
		Name:           id,
		SignalType:     models.SignalTypeTactical,
		ValidityWindow: models.ValidityDaily,
		Direction:      direction,
		Confidence:     confidence,
		Explanation:    "test signal explanation text",
	}
}

func day(yyyy int, mm time.Month, dd int) time.Time {
	return time.Date(yyyy, mm, dd, 0, 0, 0, 0, time.UTC)
}

func newTestStore(t *testing.T, signals []models.Signal) (*Store, *signalsource.Static) {
	t.Helper()
	provider := signalsource.NewStatic(signals)
	store, err := NewStore(context.Background(), provider, storage.NewMemory())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store, provider
}

func TestStore_Capture(t *testing.T) {
	ctx := context.Background()
	signals := []models.Signal{
		testSignal("s1", "WTI", models.DirectionBullish, models.ConfidenceHigh),
		testSignal("s2", "Gold", models.DirectionBearish, models.ConfidenceMedium),
	}
	store, _ := newTestStore(t, signals)

	t.Run("captures all current signals", func(t *testing.T) {
		created, err := store.Capture(ctx, day(2025, 6, 10))
		if err != nil {
			t.Fatalf("Capture failed: %v", err)
		}
		if len(created) != 2 {
			t.Errorf("captured %d snapshots, want 2", len(created))
		}
		if store.Count() != 2 {
			t.Errorf("Count = %d, want 2", store.Count())
		}
	})

	t.Run("recapturing same date is idempotent", func(t *testing.T) {
		if _, err := store.Capture(ctx, day(2025, 6, 10)); err != nil {
			t.Fatalf("Capture failed: %v", err)
		}
		if store.Count() != 2 {
			t.Errorf("Count = %d after recapture, want 2", store.Count())
		}
	})

	t.Run("new date adds snapshots", func(t *testing.T) {
		if _, err := store.Capture(ctx, day(2025, 6, 11)); err != nil {
			t.Fatalf("Capture failed: %v", err)
		}
		if store.Count() != 4 {
			t.Errorf("Count = %d, want 4", store.Count())
		}
	})
}

func TestStore_AsOf(t *testing.T) {
	ctx := context.Background()
	s1 := testSignal("s1", "WTI", models.DirectionBullish, models.ConfidenceHigh)
	store, provider := newTestStore(t, []models.Signal{s1})

	if _, err := store.Capture(ctx, day(2025, 6, 10)); err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	// Flip direction and capture a later date
	s1Flipped := s1
	s1Flipped.Direction = models.DirectionBearish
	provider.SetSignals([]models.Signal{s1Flipped})
	if _, err := store.Capture(ctx, day(2025, 6, 12)); err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	t.Run("exact snapshot date", func(t *testing.T) {
		signals, err := store.AsOf(ctx, day(2025, 6, 10))
		if err != nil {
			t.Fatalf("AsOf failed: %v", err)
		}
		if len(signals) != 1 || signals[0].Direction != models.DirectionBullish {
			t.Errorf("AsOf(6-10) = %+v, want bullish s1", signals)
		}
	})

	t.Run("date between snapshots resolves to prior", func(t *testing.T) {
		signals, err := store.AsOf(ctx, day(2025, 6, 11))
		if err != nil {
			t.Fatalf("AsOf failed: %v", err)
		}
		if len(signals) != 1 || signals[0].Direction != models.DirectionBullish {
			t.Errorf("AsOf(6-11) should return the 6-10 capture, got %+v", signals)
		}
	})

	t.Run("date after latest snapshot resolves to latest", func(t *testing.T) {
		signals, err := store.AsOf(ctx, day(2025, 6, 20))
		if err != nil {
			t.Fatalf("AsOf failed: %v", err)
		}
		if len(signals) != 1 || signals[0].Direction != models.DirectionBearish {
			t.Errorf("AsOf(6-20) should return the 6-12 capture, got %+v", signals)
		}
	})

	t.Run("date before all snapshots falls back to live set", func(t *testing.T) {
		signals, err := store.AsOf(ctx, day(2025, 6, 1))
		if err != nil {
			t.Fatalf("AsOf failed: %v", err)
		}
		if len(signals) != 1 || signals[0].Direction != models.DirectionBearish {
			t.Errorf("AsOf(6-1) should fall back to current signals, got %+v", signals)
		}
	})
}

func TestStore_History(t *testing.T) {
	ctx := context.Background()
	s1 := testSignal("s1", "WTI", models.DirectionBullish, models.ConfidenceHigh)
	store, _ := newTestStore(t, []models.Signal{s1})

	for _, d := range []time.Time{day(2025, 6, 10), day(2025, 6, 11), day(2025, 6, 12)} {
		if _, err := store.Capture(ctx, d); err != nil {
			t.Fatalf("Capture failed: %v", err)
		}
	}

	t.Run("full history ascending", func(t *testing.T) {
		snaps, err := store.History(ctx, "s1", nil, nil)
		if err != nil {
			t.Fatalf("History failed: %v", err)
		}
		if len(snaps) != 3 {
			t.Fatalf("history length = %d, want 3", len(snaps))
		}
		for i := 1; i < len(snaps); i++ {
			if snaps[i].SnapshotDate.Before(snaps[i-1].SnapshotDate) {
				t.Error("history is not ascending by date")
			}
		}
	})

	t.Run("date range is inclusive", func(t *testing.T) {
		start, end := day(2025, 6, 11), day(2025, 6, 12)
		snaps, err := store.History(ctx, "s1", &start, &end)
		if err != nil {
			t.Fatalf("History failed: %v", err)
		}
		if len(snaps) != 2 {
			t.Errorf("ranged history length = %d, want 2", len(snaps))
		}
	})

	t.Run("unknown signal yields empty history", func(t *testing.T) {
		snaps, err := store.History(ctx, "nope", nil, nil)
		if err != nil {
			t.Fatalf("History failed: %v", err)
		}
		if len(snaps) != 0 {
			t.Errorf("expected empty history, got %d", len(snaps))
		}
	})
}

func TestStore_PersistenceReload(t *testing.T) {
	ctx := context.Background()
	records := storage.NewMemory()
	s1 := testSignal("s1", "WTI", models.DirectionBullish, models.ConfidenceHigh)
	provider := signalsource.NewStatic([]models.Signal{s1})

	store, err := NewStore(ctx, provider, records)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if _, err := store.Capture(ctx, day(2025, 6, 10)); err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	// A fresh store over the same record store sees the old snapshots
	reloaded, err := NewStore(ctx, provider, records)
	if err != nil {
		t.Fatalf("NewStore reload failed: %v", err)
	}
	if reloaded.Count() != 1 {
		t.Errorf("reloaded Count = %d, want 1", reloaded.Count())
	}
	snaps, err := reloaded.History(ctx, "s1", nil, nil)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(snaps) != 1 || !snaps[0].SnapshotDate.Equal(day(2025, 6, 10)) {
		t.Errorf("reloaded history = %+v", snaps)
	}
}
