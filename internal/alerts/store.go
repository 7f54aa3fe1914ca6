// Package alerts stores user-defined alert conditions and evaluates them
// against current signal state.
package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/selivandex/market-intel/internal/storage"
	"github.com/selivandex/market-intel/pkg/models"
)

// Store owns the alert table. Evaluation never mutates alerts directly:
// the evaluator returns the fired trigger and the store applies the
// last_triggered write under its lock, so concurrent sweeps of the same
// alert cannot double-fire or lose the update.
type Store struct {
	records storage.RecordStore

	mu     sync.Mutex
	alerts map[string]models.Alert
}

// NewStore creates an alert store backed by the given record store and loads
// any previously persisted alerts
func NewStore(ctx context.Context, records storage.RecordStore) (*Store, error) {
	s := &Store{
		records: records,
		alerts:  make(map[string]models.Alert),
	}

	persisted, err := records.List(ctx, storage.KindAlert)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted alerts: %w", err)
	}
	for key, value := range persisted {
		var alert models.Alert
		if err := json.Unmarshal(value, &alert); err != nil {
			return nil, fmt.Errorf("failed to decode alert %s: %w", key, err)
		}
		s.alerts[alert.AlertID] = alert
	}

	return s, nil
}

// Create validates and stores a new alert
func (s *Store) Create(ctx context.Context, alert models.Alert) error {
	if err := alert.Validate(); err != nil {
		return err
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked(ctx, alert)
}

// Get returns the alert with the given id
func (s *Store) Get(alertID string) (models.Alert, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	alert, ok := s.alerts[alertID]
	return alert, ok
}

// List returns all alerts ordered by id
func (s *Store) List() []models.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Alert, 0, len(s.alerts))
	for _, alert := range s.alerts {
		out = append(out, alert)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AlertID < out[j].AlertID
	})
	return out
}

// Update replaces an existing alert
func (s *Store) Update(ctx context.Context, alert models.Alert) error {
	if err := alert.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.alerts[alert.AlertID]; !ok {
		return fmt.Errorf("alert %s: %w", alert.AlertID, storage.ErrNotFound)
	}
	return s.persistLocked(ctx, alert)
}

// Delete removes an alert; deleting a missing alert reports false
func (s *Store) Delete(ctx context.Context, alertID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.alerts[alertID]; !ok {
		return false, nil
	}
	if err := s.records.Delete(ctx, storage.KindAlert, alertID); err != nil {
		return false, fmt.Errorf("failed to delete alert %s: %w", alertID, err)
	}
	delete(s.alerts, alertID)
	return true, nil
}

// MarkTriggered records that an alert fired on the given date. The write
// happens here, not in the evaluator, keeping evaluation free of hidden
// side effects.
func (s *Store) MarkTriggered(ctx context.Context, alertID string, firedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	alert, ok := s.alerts[alertID]
	if !ok {
		return fmt.Errorf("alert %s: %w", alertID, storage.ErrNotFound)
	}
	alert.LastTriggered = models.DateOnly(firedAt)
	return s.persistLocked(ctx, alert)
}

func (s *Store) persistLocked(ctx context.Context, alert models.Alert) error {
	value, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to encode alert %s: %w", alert.AlertID, err)
	}
	if err := s.records.Put(ctx, storage.KindAlert, alert.AlertID, value); err != nil {
		return fmt.Errorf("failed to persist alert %s: %w", alert.AlertID, err)
	}
	s.alerts[alert.AlertID] = alert
	return nil
}
