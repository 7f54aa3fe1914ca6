package workers

import (
	"context"

	"go.uber.org/zap"

	"github.com/selivandex/market-intel/internal/intel"
	"github.com/selivandex/market-intel/pkg/logger"
	"github.com/selivandex/market-intel/pkg/models"
)

// SummaryNotifier delivers the daily cycle summary to an external channel
type SummaryNotifier interface {
	SendDailySummary(date string, signals, changes, conflicts int, regime models.RegimeType) error
}

// SnapshotWorker runs the daily intelligence cycle: capture today's
// snapshot, record changes, reclassify the regime and rescan conflicts
type SnapshotWorker struct {
	service  *intel.Service
	notifier SummaryNotifier
}

// NewSnapshotWorker creates new snapshot worker. Notifier may be nil, in
// which case the summary is only logged.
func NewSnapshotWorker(service *intel.Service, notifier SummaryNotifier) *SnapshotWorker {
	return &SnapshotWorker{
		service:  service,
		notifier: notifier,
	}
}

// Name returns worker name
func (sw *SnapshotWorker) Name() string {
	return "snapshot_cycle"
}

// Run executes one iteration - the full daily cycle
// Called periodically (24h) by pkg/worker.PeriodicWorker
func (sw *SnapshotWorker) Run(ctx context.Context) error {
	summary, err := sw.service.RunDailyCycle(ctx)
	if err != nil {
		return err
	}

	if sw.notifier == nil {
		return nil
	}

	if err := sw.notifier.SendDailySummary(
		summary.Date, summary.Signals, summary.Changes, summary.Conflicts, summary.Regime,
	); err != nil {
		// The cycle itself succeeded; a failed summary delivery is not
		// a worker failure
		logger.Warn("failed to deliver daily summary",
			zap.String("date", summary.Date),
			zap.Error(err),
		)
	}
	return nil
}
