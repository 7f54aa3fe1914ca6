package alerts

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/market-intel/internal/conflict"
	"github.com/selivandex/market-intel/internal/regime"
	"github.com/selivandex/market-intel/internal/signalsource"
	"github.com/selivandex/market-intel/internal/snapshot"
	"github.com/selivandex/market-intel/pkg/logger"
	"github.com/selivandex/market-intel/pkg/models"
)

// triggerDetailLimits cap how much per-type detail a payload carries
const (
	maxConflictsInTrigger    = 5
	maxStaleSignalsInTrigger = 10
)

// Evaluator checks alert predicates against current state. Evaluate is a
// pure read: it returns the trigger without touching the alert store.
type Evaluator struct {
	provider signalsource.Provider
	changes  *snapshot.ChangeDetector
	regimes  *regime.History

	// Now is injectable for tests; defaults to time.Now
	Now func() time.Time
}

// NewEvaluator creates an alert evaluator over the given collaborators
func NewEvaluator(provider signalsource.Provider, changes *snapshot.ChangeDetector, regimes *regime.History) *Evaluator {
	return &Evaluator{
		provider: provider,
		changes:  changes,
		regimes:  regimes,
		Now:      time.Now,
	}
}

// gateDate returns the comparison window start: the alert's last trigger
// date, or yesterday when it never fired
func (e *Evaluator) gateDate(alert models.Alert) time.Time {
	if !alert.LastTriggered.IsZero() {
		return alert.LastTriggered
	}
	return models.DateOnly(e.Now()).AddDate(0, 0, -1)
}

// Evaluate checks one alert. It returns nil for disabled alerts, invalid
// conditions, or a predicate that simply did not fire; the error is only for
// collaborator failures.
func (e *Evaluator) Evaluate(ctx context.Context, alert models.Alert) (*models.TriggerPayload, error) {
	if !alert.Enabled {
		return nil, nil
	}
	if err := alert.Validate(); err != nil {
		// A malformed alert is skipped, never allowed to block the sweep
		logger.Warn("skipping invalid alert",
			zap.String("alert_id", alert.AlertID),
			zap.Error(err),
		)
		return nil, nil
	}

	switch conditions := alert.Conditions.(type) {
	case models.DirectionChangeConditions:
		return e.evaluateDirectionChange(ctx, alert, conditions)
	case models.ConfidenceChangeConditions:
		return e.evaluateConfidenceChange(ctx, alert, conditions)
	case models.NewConflictConditions:
		return e.evaluateNewConflict(ctx, alert, conditions)
	case models.RegimeTransitionConditions:
		return e.evaluateRegimeTransition(ctx, alert)
	case models.StaleSignalConditions:
		return e.evaluateStaleSignal(ctx, alert, conditions)
	default:
		logger.Warn("skipping alert with unhandled conditions",
			zap.String("alert_id", alert.AlertID),
			zap.String("alert_type", string(alert.Type)),
		)
		return nil, nil
	}
}

func (e *Evaluator) evaluateDirectionChange(ctx context.Context, alert models.Alert, conditions models.DirectionChangeConditions) (*models.TriggerPayload, error) {
	known, err := e.signalExists(ctx, conditions.SignalID)
	if err != nil || !known {
		return nil, err
	}

	report, err := e.changes.ChangesSince(ctx, e.gateDate(alert))
	if err != nil {
		return nil, fmt.Errorf("failed to compute changes: %w", err)
	}

	for _, change := range report.ChangedDirection {
		if change.SignalID != conditions.SignalID {
			continue
		}
		c := change
		return e.trigger(alert, fmt.Sprintf(
			"Signal %s changed direction from %s to %s",
			change.SignalName, change.OldDirection, change.NewDirection,
		), func(t *models.TriggerPayload) { t.Change = &c }), nil
	}
	return nil, nil
}

func (e *Evaluator) evaluateConfidenceChange(ctx context.Context, alert models.Alert, conditions models.ConfidenceChangeConditions) (*models.TriggerPayload, error) {
	known, err := e.signalExists(ctx, conditions.SignalID)
	if err != nil || !known {
		return nil, err
	}

	report, err := e.changes.ChangesSince(ctx, e.gateDate(alert))
	if err != nil {
		return nil, fmt.Errorf("failed to compute changes: %w", err)
	}

	for _, change := range report.ChangedConfidence {
		if change.SignalID != conditions.SignalID {
			continue
		}
		c := change
		return e.trigger(alert, fmt.Sprintf(
			"Signal %s changed confidence from %s to %s",
			change.SignalName, change.OldConfidence, change.NewConfidence,
		), func(t *models.TriggerPayload) { t.Change = &c }), nil
	}
	return nil, nil
}

// evaluateNewConflict fires while any conflict is present. It does not
// distinguish newly appeared conflicts from ones still standing since the
// last sweep; the last_triggered gate is what throttles refiring.
func (e *Evaluator) evaluateNewConflict(ctx context.Context, alert models.Alert, conditions models.NewConflictConditions) (*models.TriggerPayload, error) {
	signals, err := e.provider.CurrentSignals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current signals: %w", err)
	}

	conflicts := conflict.Detect(signals)
	if conditions.Market != "" {
		filtered := conflicts[:0]
		for _, c := range conflicts {
			if c.Market == conditions.Market {
				filtered = append(filtered, c)
			}
		}
		conflicts = filtered
	}
	if len(conflicts) == 0 {
		return nil, nil
	}

	capped := conflicts
	if len(capped) > maxConflictsInTrigger {
		capped = capped[:maxConflictsInTrigger]
	}
	return e.trigger(alert, fmt.Sprintf("%d conflict(s) detected", len(conflicts)),
		func(t *models.TriggerPayload) { t.Conflicts = capped }), nil
}

func (e *Evaluator) evaluateRegimeTransition(ctx context.Context, alert models.Alert) (*models.TriggerPayload, error) {
	signals, err := e.provider.CurrentSignals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current signals: %w", err)
	}

	now := e.Now()
	current := regime.Classify(signals, now)
	previous := e.regimes.At(models.DateOnly(now).AddDate(0, 0, -1))

	transition := regime.Transition(current, previous)
	if transition == nil {
		return nil, nil
	}
	return e.trigger(alert, transition.Description,
		func(t *models.TriggerPayload) { t.Transition = transition }), nil
}

func (e *Evaluator) evaluateStaleSignal(ctx context.Context, alert models.Alert, conditions models.StaleSignalConditions) (*models.TriggerPayload, error) {
	signals, err := e.provider.CurrentSignals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current signals: %w", err)
	}

	now := e.Now()
	var stale []models.StaleSignalInfo
	for _, s := range signals {
		if !s.IsStale(now) {
			continue
		}
		if conditions.Market != "" && s.Market != conditions.Market {
			continue
		}
		stale = append(stale, models.StaleSignalInfo{
			SignalID:   s.SignalID,
			SignalName: s.Name,
			Market:     s.Market,
			AgeDays:    s.AgeDays(now),
		})
	}
	if len(stale) == 0 {
		return nil, nil
	}

	capped := stale
	if len(capped) > maxStaleSignalsInTrigger {
		capped = capped[:maxStaleSignalsInTrigger]
	}
	return e.trigger(alert, fmt.Sprintf("%d stale signal(s) detected", len(stale)),
		func(t *models.TriggerPayload) { t.StaleSignals = capped }), nil
}

func (e *Evaluator) signalExists(ctx context.Context, signalID string) (bool, error) {
	signals, err := e.provider.CurrentSignals(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to fetch current signals: %w", err)
	}
	for _, s := range signals {
		if s.SignalID == signalID {
			return true, nil
		}
	}
	return false, nil
}

func (e *Evaluator) trigger(alert models.Alert, reason string, detail func(*models.TriggerPayload)) *models.TriggerPayload {
	payload := &models.TriggerPayload{
		AlertID:   alert.AlertID,
		AlertName: alert.Name,
		Type:      alert.Type,
		Reason:    reason,
		FiredAt:   e.Now().UTC(),
	}
	detail(payload)
	return payload
}

// EvaluateAll sweeps every alert in the store and returns only the fired
// subset. Fired alerts get their last_triggered stamped through the store;
// one failing alert never blocks evaluation of the rest.
func (e *Evaluator) EvaluateAll(ctx context.Context, store *Store) []models.TriggerPayload {
	fired := []models.TriggerPayload{}
	for _, alert := range store.List() {
		payload, err := e.Evaluate(ctx, alert)
		if err != nil {
			logger.Error("alert evaluation failed",
				zap.String("alert_id", alert.AlertID),
				zap.Error(err),
			)
			continue
		}
		if payload == nil {
			continue
		}
		if err := store.MarkTriggered(ctx, alert.AlertID, payload.FiredAt); err != nil {
			logger.Error("failed to mark alert triggered",
				zap.String("alert_id", alert.AlertID),
				zap.Error(err),
			)
		}
		fired = append(fired, *payload)
	}
	return fired
}
