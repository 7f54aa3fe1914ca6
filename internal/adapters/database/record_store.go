package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/selivandex/market-intel/internal/storage"
)

// RecordStore is a Postgres-backed implementation of storage.RecordStore.
// Records are kept in a single table keyed by (kind, key) with a jsonb value.
type RecordStore struct {
	db *sqlx.DB
}

// NewRecordStore creates record store backed by the given database
func NewRecordStore(db *DB) *RecordStore {
	return &RecordStore{db: db.DB()}
}

// Put inserts or replaces a record
func (s *RecordStore) Put(ctx context.Context, kind, key string, value []byte) error {
	query := `
		INSERT INTO records (kind, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (kind, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	if _, err := s.db.ExecContext(ctx, query, kind, key, value); err != nil {
		return fmt.Errorf("failed to put record %s/%s: %w", kind, key, err)
	}

	return nil
}

// Get returns a single record value
func (s *RecordStore) Get(ctx context.Context, kind, key string) ([]byte, error) {
	var value []byte
	query := `SELECT value FROM records WHERE kind = $1 AND key = $2`

	if err := s.db.GetContext(ctx, &value, query, kind, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get record %s/%s: %w", kind, key, err)
	}

	return value, nil
}

// List returns all records of a kind ordered by key
func (s *RecordStore) List(ctx context.Context, kind string) (map[string][]byte, error) {
	rows := []struct {
		Key   string `db:"key"`
		Value []byte `db:"value"`
	}{}
	query := `SELECT key, value FROM records WHERE kind = $1 ORDER BY key`

	if err := s.db.SelectContext(ctx, &rows, query, kind); err != nil {
		return nil, fmt.Errorf("failed to list records of kind %s: %w", kind, err)
	}

	result := make(map[string][]byte, len(rows))
	for _, row := range rows {
		result[row.Key] = row.Value
	}

	return result, nil
}

// Delete removes a record if present
func (s *RecordStore) Delete(ctx context.Context, kind, key string) error {
	query := `DELETE FROM records WHERE kind = $1 AND key = $2`

	if _, err := s.db.ExecContext(ctx, query, kind, key); err != nil {
		return fmt.Errorf("failed to delete record %s/%s: %w", kind, key, err)
	}

	return nil
}
