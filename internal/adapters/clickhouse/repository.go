package clickhouse

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/selivandex/market-intel/internal/audit"
	"github.com/selivandex/market-intel/pkg/logger"
)

// Repository handles ClickHouse data operations
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates new ClickHouse repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the audit_log table when it does not exist yet, so a
// fresh ClickHouse deployment works without a separate migration step
func (r *Repository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS audit_log (
			timestamp   DateTime64(3),
			change_type String,
			entity_id   String,
			entity_type String,
			description String,
			old_value   String,
			new_value   String
		) ENGINE = MergeTree()
		ORDER BY (timestamp, change_type)
	`

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create audit_log table: %w", err)
	}

	logger.Debug("audit_log table ready")
	return nil
}

// SaveAuditEntries writes audit entries to the audit_log table
func (r *Repository) SaveAuditEntries(ctx context.Context, entries []audit.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	stmt, err := tx.Preparex(`
		INSERT INTO audit_log
		(timestamp, change_type, entity_id, entity_type, description, old_value, new_value)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, entry := range entries {
		oldValue, err := json.Marshal(entry.OldValue)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to marshal old value: %w", err)
		}
		newValue, err := json.Marshal(entry.NewValue)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to marshal new value: %w", err)
		}

		_, err = stmt.ExecContext(ctx,
			entry.Timestamp,
			string(entry.ChangeType),
			entry.EntityID,
			entry.EntityType,
			entry.Description,
			string(oldValue),
			string(newValue),
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert audit entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	logger.Debug("saved audit entries to ClickHouse",
		zap.Int("count", len(entries)),
	)

	return nil
}
