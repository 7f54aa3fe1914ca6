package regime

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/market-intel/internal/storage"
	"github.com/selivandex/market-intel/pkg/logger"
	"github.com/selivandex/market-intel/pkg/models"
)

// History persists one regime classification per date. Classification itself
// is stateless; the history exists so transitions can be detected across days.
type History struct {
	records storage.RecordStore

	mu      sync.RWMutex
	regimes map[string]models.Regime // key: date (YYYY-MM-DD)
}

// NewHistory creates a regime history backed by the given record store and
// loads any previously persisted classifications
func NewHistory(ctx context.Context, records storage.RecordStore) (*History, error) {
	h := &History{
		records: records,
		regimes: make(map[string]models.Regime),
	}

	persisted, err := records.List(ctx, storage.KindRegime)
	if err != nil {
		return nil, fmt.Errorf("failed to load regime history: %w", err)
	}
	for key, value := range persisted {
		var regime models.Regime
		if err := json.Unmarshal(value, &regime); err != nil {
			return nil, fmt.Errorf("failed to decode regime %s: %w", key, err)
		}
		h.regimes[key] = regime
	}

	return h, nil
}

// Save stores the classification under its detected date. The write is
// skipped when the stored regime for that date already has the same type,
// so repeated identical classifications do not churn the record store.
func (h *History) Save(ctx context.Context, regime models.Regime) error {
	key := models.DateKey(regime.DetectedDate)

	h.mu.Lock()
	defer h.mu.Unlock()

	if stored, ok := h.regimes[key]; ok && stored.Type == regime.Type {
		return nil
	}

	value, err := json.Marshal(regime)
	if err != nil {
		return fmt.Errorf("failed to encode regime: %w", err)
	}
	if err := h.records.Put(ctx, storage.KindRegime, key, value); err != nil {
		return fmt.Errorf("failed to persist regime: %w", err)
	}
	h.regimes[key] = regime

	logger.Info("regime recorded",
		zap.String("date", key),
		zap.String("regime", string(regime.Type)),
	)
	return nil
}

// At returns the most recent regime stored at or before the given date,
// or nil when nothing was stored that early
func (h *History) At(date time.Time) *models.Regime {
	target := models.DateKey(date)

	h.mu.RLock()
	defer h.mu.RUnlock()

	var bestKey string
	for key := range h.regimes {
		if key <= target && key > bestKey {
			bestKey = key
		}
	}
	if bestKey == "" {
		return nil
	}
	regime := h.regimes[bestKey]
	return &regime
}

// Range returns stored regimes within the optional inclusive date range,
// ascending by date
func (h *History) Range(start, end *time.Time) []models.Regime {
	h.mu.RLock()
	defer h.mu.RUnlock()

	keys := make([]string, 0, len(h.regimes))
	for key := range h.regimes {
		if start != nil && key < models.DateKey(*start) {
			continue
		}
		if end != nil && key > models.DateKey(*end) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]models.Regime, 0, len(keys))
	for _, key := range keys {
		out = append(out, h.regimes[key])
	}
	return out
}
