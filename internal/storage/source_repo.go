package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_source_store.go -package=mocks radreport-ai/internal/storage SourceStore

import (
	"context"
	"database/sql"
	"fmt"
)

// SourceStore defines the interface for source document lookups.
type SourceStore interface {
	// GetByID gets a source by its ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*SourceRecord, error)
	// List returns all sources ordered by ID.
	List(ctx context.Context) ([]SourceRecord, error)
}

// SourceRepo provides methods for source operations.
// It implements the SourceStore interface. Sources are written by ChunkRepo.ReplaceSource
// so that a source and its chunks change together.
type SourceRepo struct {
	db *sql.DB
}

// NewSourceRepo creates a new SourceRepo.
func NewSourceRepo(db *sql.DB) *SourceRepo {
	return &SourceRepo{db: db}
}

// GetByID gets a source by its ID.
// Returns nil and ErrNotFound if not found.
func (r *SourceRepo) GetByID(ctx context.Context, id string) (*SourceRecord, error) {
	var src SourceRecord
	var updatedAtStr string

	err := r.db.QueryRowContext(ctx,
		"SELECT id, study_type, hash, updated_at FROM sources WHERE id = ?",
		id,
	).Scan(&src.ID, &src.StudyType, &src.Hash, &updatedAtStr)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query source: %w", err)
	}

	src.UpdatedAt, err = parseTimestamp(updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at timestamp: %w", err)
	}

	return &src, nil
}

// List returns all sources ordered by ID.
func (r *SourceRepo) List(ctx context.Context) ([]SourceRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, study_type, hash, updated_at FROM sources ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var sources []SourceRecord
	for rows.Next() {
		var src SourceRecord
		var updatedAtStr string
		if err := rows.Scan(&src.ID, &src.StudyType, &src.Hash, &updatedAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		if src.UpdatedAt, err = parseTimestamp(updatedAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at timestamp: %w", err)
		}
		sources = append(sources, src)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return sources, nil
}
