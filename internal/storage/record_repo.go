package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_record_store.go -package=mocks radreport-ai/internal/storage RecordStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// RecordStore is a namespaced key/value store for JSON documents.
type RecordStore interface {
	// Put creates or overwrites the record at (namespace, key).
	Put(ctx context.Context, namespace, key string, payload []byte) error
	// Insert creates the record at (namespace, key). Returns ErrConflict if it exists.
	Insert(ctx context.Context, namespace, key string, payload []byte) error
	// Get returns the record at (namespace, key). Returns ErrNotFound if not found.
	Get(ctx context.Context, namespace, key string) (*Record, error)
	// List returns every record in namespace whose key starts with prefix, ordered by key.
	List(ctx context.Context, namespace, prefix string) ([]Record, error)
}

// RecordRepo provides methods for record operations.
// It implements the RecordStore interface.
type RecordRepo struct {
	db *sql.DB
}

// NewRecordRepo creates a new RecordRepo.
func NewRecordRepo(db *sql.DB) *RecordRepo {
	return &RecordRepo{db: db}
}

// Put creates or overwrites the record at (namespace, key).
// created_at is preserved across overwrites.
func (r *RecordRepo) Put(ctx context.Context, namespace, key string, payload []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO records (namespace, key, payload, created_at, updated_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		 ON CONFLICT(namespace, key) DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP`,
		namespace, key, string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to put record %s/%s: %w: %w", namespace, key, ErrPersistence, err)
	}
	return nil
}

// Insert creates the record at (namespace, key) and never overwrites.
func (r *RecordRepo) Insert(ctx context.Context, namespace, key string, payload []byte) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO records (namespace, key, payload) VALUES (?, ?, ?)",
		namespace, key, string(payload),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("record %s/%s: %w", namespace, key, ErrConflict)
		}
		return fmt.Errorf("failed to insert record %s/%s: %w: %w", namespace, key, ErrPersistence, err)
	}
	return nil
}

// Get returns the record at (namespace, key).
// Returns nil and ErrNotFound if not found.
func (r *RecordRepo) Get(ctx context.Context, namespace, key string) (*Record, error) {
	var rec Record
	var payload, createdAtStr, updatedAtStr string

	err := r.db.QueryRowContext(ctx,
		"SELECT namespace, key, payload, created_at, updated_at FROM records WHERE namespace = ? AND key = ?",
		namespace, key,
	).Scan(&rec.Namespace, &rec.Key, &payload, &createdAtStr, &updatedAtStr)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query record: %w", err)
	}

	rec.Payload = []byte(payload)
	if rec.CreatedAt, err = parseTimestamp(createdAtStr); err != nil {
		return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
	}
	if rec.UpdatedAt, err = parseTimestamp(updatedAtStr); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at timestamp: %w", err)
	}

	return &rec, nil
}

// List returns every record in namespace whose key starts with prefix, ordered by key.
// An empty prefix lists the whole namespace.
func (r *RecordRepo) List(ctx context.Context, namespace, prefix string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT namespace, key, payload, created_at, updated_at FROM records
		 WHERE namespace = ? AND substr(key, 1, length(?)) = ?
		 ORDER BY key`,
		namespace, prefix, prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []Record
	for rows.Next() {
		var rec Record
		var payload, createdAtStr, updatedAtStr string
		if err := rows.Scan(&rec.Namespace, &rec.Key, &payload, &createdAtStr, &updatedAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		rec.Payload = []byte(payload)
		if rec.CreatedAt, err = parseTimestamp(createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
		}
		if rec.UpdatedAt, err = parseTimestamp(updatedAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at timestamp: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
