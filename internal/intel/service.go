// Package intel wires the temporal signal intelligence components behind a
// single service surface consumed by workers and whatever serving layer
// wraps the core.
package intel

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/market-intel/internal/alerts"
	"github.com/selivandex/market-intel/internal/audit"
	"github.com/selivandex/market-intel/internal/composite"
	"github.com/selivandex/market-intel/internal/conflict"
	"github.com/selivandex/market-intel/internal/regime"
	"github.com/selivandex/market-intel/internal/scoring"
	"github.com/selivandex/market-intel/internal/signalsource"
	"github.com/selivandex/market-intel/internal/snapshot"
	"github.com/selivandex/market-intel/internal/storage"
	"github.com/selivandex/market-intel/pkg/logger"
	"github.com/selivandex/market-intel/pkg/models"
)

// Service exposes the intelligence core's operation surface
type Service struct {
	provider  signalsource.Provider
	snapshots *snapshot.Store
	changes   *snapshot.ChangeDetector
	regimes   *regime.History
	alerts    *alerts.Store
	evaluator *alerts.Evaluator
	audit     *audit.Log

	// Now is injectable for tests; defaults to time.Now
	Now func() time.Time
}

// New assembles the intelligence core over a signal provider and a record
// store. The record store backs snapshots, regime history and alerts; audit
// entries stay in the in-memory ring with optional sinks.
func New(ctx context.Context, provider signalsource.Provider, records storage.RecordStore, auditSinks ...audit.Sink) (*Service, error) {
	snapshots, err := snapshot.NewStore(ctx, provider, records)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot store: %w", err)
	}
	regimes, err := regime.NewHistory(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("failed to create regime history: %w", err)
	}
	alertStore, err := alerts.NewStore(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("failed to create alert store: %w", err)
	}

	changes := snapshot.NewChangeDetector(provider, snapshots)

	return &Service{
		provider:  provider,
		snapshots: snapshots,
		changes:   changes,
		regimes:   regimes,
		alerts:    alertStore,
		evaluator: alerts.NewEvaluator(provider, changes, regimes),
		audit:     audit.NewLog(auditSinks...),
		Now:       time.Now,
	}, nil
}

// CurrentSignals returns the live signal set from the upstream provider
func (s *Service) CurrentSignals(ctx context.Context) ([]models.Signal, error) {
	return s.provider.CurrentSignals(ctx)
}

// Snapshot captures all current signals under the given date (today when
// nil), overwriting any previous capture for that date
func (s *Service) Snapshot(ctx context.Context, date *time.Time) ([]models.SignalSnapshot, error) {
	when := s.Now()
	if date != nil {
		when = *date
	}
	return s.snapshots.Capture(ctx, when)
}

// History returns a signal's snapshots within the optional inclusive range
func (s *Service) History(ctx context.Context, signalID string, start, end *time.Time) ([]models.SignalSnapshot, error) {
	return s.snapshots.History(ctx, signalID, start, end)
}

// AsOf reconstructs the signal set as it was on the given date
func (s *Service) AsOf(ctx context.Context, date time.Time) ([]models.Signal, error) {
	return s.snapshots.AsOf(ctx, date)
}

// ChangesSince diffs the current signal set against the snapshots captured
// exactly on the given date
func (s *Service) ChangesSince(ctx context.Context, since time.Time) (*models.ChangeReport, error) {
	return s.changes.ChangesSince(ctx, since)
}

// Conflicts evaluates the conflict rule table over the current signal set
func (s *Service) Conflicts(ctx context.Context) ([]models.Conflict, error) {
	signals, err := s.provider.CurrentSignals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current signals: %w", err)
	}
	return conflict.Detect(signals), nil
}

// ConflictsForMarket evaluates the conflict rule table over one market
func (s *Service) ConflictsForMarket(ctx context.Context, market string) ([]models.Conflict, error) {
	signals, err := s.provider.CurrentSignals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current signals: %w", err)
	}
	return conflict.ForMarket(market, signals), nil
}

// CurrentRegime classifies the macro environment from current signals and
// records the classification in the regime history (deduplicated per date)
func (s *Service) CurrentRegime(ctx context.Context) (models.Regime, error) {
	signals, err := s.provider.CurrentSignals(ctx)
	if err != nil {
		return models.Regime{}, fmt.Errorf("failed to fetch current signals: %w", err)
	}

	current := regime.Classify(signals, s.Now())
	if err := s.regimes.Save(ctx, current); err != nil {
		return models.Regime{}, err
	}
	return current, nil
}

// RegimeHistory returns stored regimes within the optional inclusive range
func (s *Service) RegimeHistory(start, end *time.Time) []models.Regime {
	return s.regimes.Range(start, end)
}

// RegimeTransition compares today's regime against the most recent prior
// stored regime and reports a transition only when the type changed
func (s *Service) RegimeTransition(ctx context.Context) (*models.RegimeTransition, error) {
	current, err := s.CurrentRegime(ctx)
	if err != nil {
		return nil, err
	}
	previous := s.regimes.At(models.DateOnly(s.Now()).AddDate(0, 0, -1))
	return regime.Transition(current, previous), nil
}

// Score computes a signal's bounded score
func (s *Service) Score(signal models.Signal) float64 {
	return scoring.Score(signal)
}

// ScoreBreakdown explains a signal's score factor by factor
func (s *Service) ScoreBreakdown(signal models.Signal) scoring.Breakdown {
	return scoring.Explain(signal)
}

// Composite aggregates one market's current signals into a weighted
// composite score; nil means fewer than two pillars qualified
func (s *Service) Composite(ctx context.Context, market string, opts composite.Options) (*composite.Result, error) {
	signals, err := s.provider.CurrentSignals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current signals: %w", err)
	}

	marketSignals := make([]models.Signal, 0)
	for _, signal := range signals {
		if signal.Market == market {
			marketSignals = append(marketSignals, signal)
		}
	}
	return composite.Composite(marketSignals, market, opts), nil
}

// CreateAlert validates and stores a new alert
func (s *Service) CreateAlert(ctx context.Context, alert models.Alert) error {
	return s.alerts.Create(ctx, alert)
}

// GetAlert returns an alert by id
func (s *Service) GetAlert(alertID string) (models.Alert, bool) {
	return s.alerts.Get(alertID)
}

// ListAlerts returns all stored alerts
func (s *Service) ListAlerts() []models.Alert {
	return s.alerts.List()
}

// UpdateAlert replaces an existing alert
func (s *Service) UpdateAlert(ctx context.Context, alert models.Alert) error {
	return s.alerts.Update(ctx, alert)
}

// DeleteAlert removes an alert
func (s *Service) DeleteAlert(ctx context.Context, alertID string) (bool, error) {
	return s.alerts.Delete(ctx, alertID)
}

// EvaluateAlert evaluates a single stored alert and stamps last_triggered
// when it fires
func (s *Service) EvaluateAlert(ctx context.Context, alertID string) (*models.TriggerPayload, error) {
	alert, ok := s.alerts.Get(alertID)
	if !ok {
		return nil, fmt.Errorf("alert %s: %w", alertID, storage.ErrNotFound)
	}
	payload, err := s.evaluator.Evaluate(ctx, alert)
	if err != nil || payload == nil {
		return nil, err
	}
	if err := s.alerts.MarkTriggered(ctx, alertID, payload.FiredAt); err != nil {
		return nil, err
	}
	return payload, nil
}

// EvaluateAllAlerts sweeps every alert and returns only the fired subset
func (s *Service) EvaluateAllAlerts(ctx context.Context) []models.TriggerPayload {
	return s.evaluator.EvaluateAll(ctx, s.alerts)
}

// AuditTrail returns matching audit entries, newest first
func (s *Service) AuditTrail(filter audit.Filter) []audit.Entry {
	return s.audit.Entries(filter)
}

// DailySummary describes one completed daily cycle
type DailySummary struct {
	Date      string            `json:"date"`
	Signals   int               `json:"signals"`
	Changes   int               `json:"changes"`
	Conflicts int               `json:"conflicts"`
	Regime    models.RegimeType `json:"regime"`
}

// RunDailyCycle is the once-a-day state advance: it audits what moved since
// yesterday, captures today's snapshot, and refreshes the regime history.
func (s *Service) RunDailyCycle(ctx context.Context) (*DailySummary, error) {
	now := s.Now()
	today := models.DateOnly(now)
	yesterday := today.AddDate(0, 0, -1)

	report, err := s.changes.ChangesSince(ctx, yesterday)
	if err != nil {
		return nil, fmt.Errorf("failed to compute daily changes: %w", err)
	}
	s.auditChanges(report)

	if _, err := s.snapshots.Capture(ctx, today); err != nil {
		return nil, fmt.Errorf("failed to capture daily snapshot: %w", err)
	}

	signals, err := s.provider.CurrentSignals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current signals: %w", err)
	}

	current := regime.Classify(signals, now)
	previous := s.regimes.At(yesterday)
	if transition := regime.Transition(current, previous); transition != nil {
		s.audit.Record(audit.Entry{
			ChangeType:  audit.ChangeRegimeChanged,
			EntityID:    string(current.Type),
			EntityType:  "regime",
			Description: transition.Description,
			OldValue:    map[string]any{"regime_type": string(transition.From)},
			NewValue:    map[string]any{"regime_type": string(transition.To)},
		})
	}
	if err := s.regimes.Save(ctx, current); err != nil {
		return nil, err
	}

	conflicts := conflict.Detect(signals)
	for _, c := range conflicts {
		s.audit.Record(audit.Entry{
			ChangeType:  audit.ChangeConflictDetected,
			EntityID:    c.Market,
			EntityType:  "conflict",
			Description: c.Description,
			NewValue:    map[string]any{"conflict_type": string(c.Type)},
		})
	}

	changes := len(report.NewSignals) + len(report.RemovedSignals) +
		len(report.ChangedDirection) + len(report.ChangedConfidence)

	logger.Info("daily cycle completed",
		zap.String("date", models.DateKey(today)),
		zap.Int("new_signals", len(report.NewSignals)),
		zap.Int("direction_changes", len(report.ChangedDirection)),
		zap.Int("confidence_changes", len(report.ChangedConfidence)),
	)
	return &DailySummary{
		Date:      models.DateKey(today),
		Signals:   len(signals),
		Changes:   changes,
		Conflicts: len(conflicts),
		Regime:    current.Type,
	}, nil
}

func (s *Service) auditChanges(report *models.ChangeReport) {
	for _, change := range report.NewSignals {
		s.audit.Record(audit.Entry{
			ChangeType:  audit.ChangeSignalCreated,
			EntityID:    change.SignalID,
			EntityType:  "signal",
			Description: fmt.Sprintf("Signal %s appeared in %s", change.SignalName, change.Market),
		})
	}
	for _, change := range report.RemovedSignals {
		s.audit.Record(audit.Entry{
			ChangeType:  audit.ChangeSignalDeleted,
			EntityID:    change.SignalID,
			EntityType:  "signal",
			Description: fmt.Sprintf("Signal %s no longer reported for %s", change.SignalName, change.Market),
		})
	}
	for _, change := range report.ChangedDirection {
		s.audit.Record(audit.Entry{
			ChangeType:  audit.ChangeDirectionChanged,
			EntityID:    change.SignalID,
			EntityType:  "signal",
			Description: fmt.Sprintf("Signal %s changed direction from %s to %s", change.SignalName, change.OldDirection, change.NewDirection),
			OldValue:    map[string]any{"direction": string(change.OldDirection)},
			NewValue:    map[string]any{"direction": string(change.NewDirection)},
		})
	}
	for _, change := range report.ChangedConfidence {
		s.audit.Record(audit.Entry{
			ChangeType:  audit.ChangeConfidenceChanged,
			EntityID:    change.SignalID,
			EntityType:  "signal",
			Description: fmt.Sprintf("Signal %s changed confidence from %s to %s", change.SignalName, change.OldConfidence, change.NewConfidence),
			OldValue:    map[string]any{"confidence": string(change.OldConfidence)},
			NewValue:    map[string]any{"confidence": string(change.NewConfidence)},
		})
	}
}
