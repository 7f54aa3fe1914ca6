package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/market-intel/internal/adapters/clickhouse"
	"github.com/selivandex/market-intel/internal/adapters/config"
	"github.com/selivandex/market-intel/internal/adapters/database"
	"github.com/selivandex/market-intel/internal/adapters/telegram"
	"github.com/selivandex/market-intel/internal/audit"
	"github.com/selivandex/market-intel/internal/intel"
	"github.com/selivandex/market-intel/internal/signalsource"
	"github.com/selivandex/market-intel/internal/storage"
	"github.com/selivandex/market-intel/internal/workers"
	"github.com/selivandex/market-intel/pkg/logger"
	"github.com/selivandex/market-intel/pkg/worker"
)

func main() {
	// Setup signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	// Run application
	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration and initialize logger
	cfg, err := initConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("Market Intelligence service starting...",
		zap.String("signals_path", cfg.Signals.Path),
	)

	// Record store: Postgres when configured, in-memory otherwise
	records, db, err := initRecordStore(cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	// Audit archival to ClickHouse is optional
	archiver, chDB := initArchiver(cfg)
	if chDB != nil {
		defer chDB.Close()
	}
	if archiver != nil {
		defer archiver.Close()
	}

	// Signal source watches the signals file for edits
	provider, err := signalsource.NewFileProvider(cfg.Signals.Path)
	if err != nil {
		return fmt.Errorf("failed to load signal source: %w", err)
	}
	defer provider.Close()

	// Assemble the intelligence service
	var sinks []audit.Sink
	if archiver != nil {
		sinks = append(sinks, archiver)
	}

	service, err := intel.New(ctx, provider, records, sinks...)
	if err != nil {
		return fmt.Errorf("failed to initialize intelligence service: %w", err)
	}

	// Telegram notifier for fired alerts and daily summaries
	notifier := initTelegramNotifier(cfg)
	var alertNotifier workers.AlertNotifier
	var summaryNotifier workers.SummaryNotifier
	if notifier != nil {
		alertNotifier = notifier
		summaryNotifier = notifier
	}

	// Start background workers
	snapshotWorker := worker.NewPeriodicWorker(
		workers.NewSnapshotWorker(service, summaryNotifier),
		cfg.Snapshots.Interval,
		true,
	)
	snapshotWorker.Start(ctx)

	alertWorker := worker.NewPeriodicWorker(
		workers.NewAlertWorker(service, alertNotifier),
		cfg.Alerts.SweepInterval,
		false,
	)
	alertWorker.Start(ctx)

	logger.Info("✅ Market Intelligence service started",
		zap.Duration("snapshot_interval", cfg.Snapshots.Interval),
		zap.Duration("alert_sweep_interval", cfg.Alerts.SweepInterval),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down workers...")
	alertWorker.Stop(10 * time.Second)
	snapshotWorker.Stop(30 * time.Second)

	logger.Info("Market Intelligence service stopped")
	return nil
}

// initConfig loads configuration and sets up the logger
func initConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, nil
}

// initRecordStore wires persistence: Postgres when enabled, memory fallback
func initRecordStore(cfg *config.Config) (storage.RecordStore, *database.DB, error) {
	if !cfg.Database.Enabled {
		logger.Info("database disabled, using in-memory record store")
		return storage.NewMemory(), nil, nil
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.RunMigrations(db.Conn(), "./migrations"); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return database.NewRecordStore(db), db, nil
}

// initArchiver initializes the optional ClickHouse audit archiver
func initArchiver(cfg *config.Config) (*clickhouse.Archiver, *database.DB) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}

	chDB, err := database.NewClickHouse(cfg.ClickHouse.GetDSN())
	if err != nil {
		logger.Warn("ClickHouse not available, audit archival disabled", zap.Error(err))
		return nil, nil
	}

	repo := clickhouse.NewRepository(chDB.DB())

	schemaCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := repo.EnsureSchema(schemaCtx); err != nil {
		logger.Warn("failed to prepare ClickHouse schema, audit archival disabled", zap.Error(err))
		chDB.Close()
		return nil, nil
	}

	archiver := clickhouse.NewArchiver(repo, 500, 10*time.Second)

	logger.Info("✅ audit archival to ClickHouse enabled",
		zap.String("host", cfg.ClickHouse.Host),
		zap.String("database", cfg.ClickHouse.Database),
	)

	return archiver, chDB
}

// initTelegramNotifier initializes the optional notification channel
func initTelegramNotifier(cfg *config.Config) *telegram.Notifier {
	if !cfg.Telegram.Enabled {
		logger.Info("telegram notifications disabled")
		return nil
	}

	templateManager, err := telegram.NewTemplateManager("./templates/telegram")
	if err != nil {
		logger.Warn("failed to load telegram templates, notifications disabled", zap.Error(err))
		return nil
	}

	notifier, err := telegram.NewNotifier(&cfg.Telegram, templateManager)
	if err != nil {
		logger.Warn("failed to initialize telegram notifier, notifications disabled", zap.Error(err))
		return nil
	}

	return notifier
}
