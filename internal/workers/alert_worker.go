package workers

import (
	"context"

	"go.uber.org/zap"

	"github.com/selivandex/market-intel/internal/intel"
	"github.com/selivandex/market-intel/pkg/logger"
	"github.com/selivandex/market-intel/pkg/models"
)

// AlertNotifier delivers fired alerts to an external channel
type AlertNotifier interface {
	SendAlert(trigger models.TriggerPayload) error
}

// AlertWorker sweeps enabled alerts and pushes fired ones to the notifier
type AlertWorker struct {
	service  *intel.Service
	notifier AlertNotifier
}

// NewAlertWorker creates new alert worker. Notifier may be nil, in which
// case fired alerts are only logged.
func NewAlertWorker(service *intel.Service, notifier AlertNotifier) *AlertWorker {
	return &AlertWorker{
		service:  service,
		notifier: notifier,
	}
}

// Name returns worker name
func (aw *AlertWorker) Name() string {
	return "alert_sweep"
}

// Run executes one iteration - evaluates all enabled alerts
// Called periodically by pkg/worker.PeriodicWorker
func (aw *AlertWorker) Run(ctx context.Context) error {
	fired := aw.service.EvaluateAllAlerts(ctx)
	if len(fired) == 0 {
		return nil
	}

	delivered := 0
	for _, trigger := range fired {
		logger.Info("alert fired",
			zap.String("alert_id", trigger.AlertID),
			zap.String("alert_name", trigger.AlertName),
			zap.String("type", string(trigger.Type)),
			zap.String("reason", trigger.Reason),
		)

		if aw.notifier == nil {
			continue
		}

		if err := aw.notifier.SendAlert(trigger); err != nil {
			logger.Warn("failed to deliver alert notification",
				zap.String("alert_id", trigger.AlertID),
				zap.Error(err),
			)
			continue
		}
		delivered++
	}

	logger.Info("alert sweep completed",
		zap.Int("fired", len(fired)),
		zap.Int("delivered", delivered),
	)

	return nil
}
