package regime

import (
	"context"
	"testing"
	"time"

	"github.com/selivandex/market-intel/internal/storage"
	"github.com/selivandex/market-intel/pkg/models"
)

func storedRegime(regimeType models.RegimeType, date time.Time) models.Regime {
	return models.Regime{
		Type:         regimeType,
		Description:  "test regime",
		DetectedDate: models.DateOnly(date),
		Confidence:   models.ConfidenceMedium,
	}
}

func TestHistory_SaveAndAt(t *testing.T) {
	ctx := context.Background()
	h, err := NewHistory(ctx, storage.NewMemory())
	if err != nil {
		t.Fatalf("NewHistory failed: %v", err)
	}

	d1 := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)

	if err := h.Save(ctx, storedRegime(models.RegimeTightening, d1)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := h.Save(ctx, storedRegime(models.RegimeRiskOff, d2)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Run("exact date", func(t *testing.T) {
		got := h.At(d1)
		if got == nil || got.Type != models.RegimeTightening {
			t.Errorf("At(d1) = %+v, want tightening", got)
		}
	})

	t.Run("date between entries resolves to prior", func(t *testing.T) {
		got := h.At(d1.AddDate(0, 0, 1))
		if got == nil || got.Type != models.RegimeTightening {
			t.Errorf("At(d1+1) = %+v, want tightening", got)
		}
	})

	t.Run("date after all entries resolves to latest", func(t *testing.T) {
		got := h.At(d2.AddDate(0, 0, 10))
		if got == nil || got.Type != models.RegimeRiskOff {
			t.Errorf("At(d2+10) = %+v, want risk_off", got)
		}
	})

	t.Run("date before all entries is nil", func(t *testing.T) {
		if got := h.At(d1.AddDate(0, 0, -1)); got != nil {
			t.Errorf("At(d1-1) = %+v, want nil", got)
		}
	})
}

func TestHistory_SaveDeduplicates(t *testing.T) {
	ctx := context.Background()
	records := storage.NewMemory()
	h, err := NewHistory(ctx, records)
	if err != nil {
		t.Fatalf("NewHistory failed: %v", err)
	}

	d := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	first := storedRegime(models.RegimeTightening, d)
	first.Description = "original"
	if err := h.Save(ctx, first); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Same type on the same date is a no-op
	second := storedRegime(models.RegimeTightening, d)
	second.Description = "should not overwrite"
	if err := h.Save(ctx, second); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got := h.At(d)
	if got == nil || got.Description != "original" {
		t.Errorf("repeated same-type save overwrote the stored regime: %+v", got)
	}

	// A different type on the same date replaces it
	if err := h.Save(ctx, storedRegime(models.RegimeRiskOff, d)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got = h.At(d)
	if got == nil || got.Type != models.RegimeRiskOff {
		t.Errorf("type change on same date was not stored: %+v", got)
	}
}

func TestHistory_Range(t *testing.T) {
	ctx := context.Background()
	h, err := NewHistory(ctx, storage.NewMemory())
	if err != nil {
		t.Fatalf("NewHistory failed: %v", err)
	}

	dates := []time.Time{
		time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
	}
	types := []models.RegimeType{models.RegimeTightening, models.RegimeRiskOff, models.RegimeUncertain}
	for i, d := range dates {
		if err := h.Save(ctx, storedRegime(types[i], d)); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	t.Run("full range ascending", func(t *testing.T) {
		got := h.Range(nil, nil)
		if len(got) != 3 {
			t.Fatalf("range length = %d, want 3", len(got))
		}
		if got[0].Type != models.RegimeTightening || got[2].Type != models.RegimeUncertain {
			t.Errorf("range order wrong: %v", got)
		}
	})

	t.Run("bounded range is inclusive", func(t *testing.T) {
		got := h.Range(&dates[1], &dates[2])
		if len(got) != 2 {
			t.Errorf("range length = %d, want 2", len(got))
		}
	})
}

func TestHistory_PersistenceReload(t *testing.T) {
	ctx := context.Background()
	records := storage.NewMemory()

	h, err := NewHistory(ctx, records)
	if err != nil {
		t.Fatalf("NewHistory failed: %v", err)
	}
	d := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	if err := h.Save(ctx, storedRegime(models.RegimeTightening, d)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded, err := NewHistory(ctx, records)
	if err != nil {
		t.Fatalf("NewHistory reload failed: %v", err)
	}
	got := reloaded.At(d)
	if got == nil || got.Type != models.RegimeTightening {
		t.Errorf("reloaded At = %+v, want tightening", got)
	}
}
