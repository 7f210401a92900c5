package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chunk_store.go -package=mocks radreport-ai/internal/storage ChunkStore

import (
	"context"
	"database/sql"
	"fmt"
)

// ChunkStore defines the interface for chunk storage operations.
type ChunkStore interface {
	// ReplaceSource upserts the source row and swaps its chunks in one transaction.
	// publish, when non-nil, runs with the stored chunks before commit; an error
	// from it rolls the transaction back. The returned chunks carry their Seq values.
	ReplaceSource(ctx context.Context, src *SourceRecord, chunks []ChunkRecord, publish func([]ChunkRecord) error) ([]ChunkRecord, error)
	// ListPointIDsBySource returns all point IDs for a given source, ordered by chunk_index.
	ListPointIDsBySource(ctx context.Context, sourceID string) ([]string, error)
	// ListByStudyType returns every chunk tagged with studyType in insertion order.
	ListByStudyType(ctx context.Context, studyType string) ([]ChunkRecord, error)
	// CountByStudyType returns the number of chunks per study type.
	CountByStudyType(ctx context.Context) (map[string]int, error)
}

// ChunkRepo provides methods for chunk operations.
// It implements the ChunkStore interface.
type ChunkRepo struct {
	db *sql.DB
}

// NewChunkRepo creates a new ChunkRepo.
func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// ReplaceSource writes src and its chunks atomically.
// Existing chunks of the source are removed before the new ones are inserted,
// so a re-ingested source never mixes old and new windows.
// The publish error is returned unwrapped.
func (r *ChunkRepo) ReplaceSource(ctx context.Context, src *SourceRecord, chunks []ChunkRecord, publish func([]ChunkRecord) error) ([]ChunkRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w: %w", ErrPersistence, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sources (id, study_type, hash, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(id) DO UPDATE SET study_type = excluded.study_type, hash = excluded.hash, updated_at = CURRENT_TIMESTAMP`,
		src.ID, src.StudyType, src.Hash,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert source: %w: %w", ErrPersistence, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE source_id = ?", src.ID); err != nil {
		return nil, fmt.Errorf("failed to delete chunks by source: %w: %w", ErrPersistence, err)
	}

	stored := make([]ChunkRecord, 0, len(chunks))
	for _, chunk := range chunks {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO chunks (point_id, source_id, chunk_index, study_type, text) VALUES (?, ?, ?, ?, ?)",
			chunk.PointID, src.ID, chunk.ChunkIndex, src.StudyType, chunk.Text,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert chunk %d: %w: %w", chunk.ChunkIndex, ErrPersistence, err)
		}
		seq, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to read chunk sequence: %w: %w", ErrPersistence, err)
		}
		chunk.Seq = seq
		chunk.SourceID = src.ID
		chunk.StudyType = src.StudyType
		stored = append(stored, chunk)
	}

	if publish != nil {
		if err := publish(stored); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit source: %w: %w", ErrPersistence, err)
	}

	return stored, nil
}

// ListPointIDsBySource returns all point IDs for a given source, ordered by chunk_index.
// Returns an empty slice if no chunks exist (not an error).
// Used to get vector point IDs for deletion before re-indexing.
func (r *ChunkRepo) ListPointIDsBySource(ctx context.Context, sourceID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT point_id FROM chunks WHERE source_id = ? ORDER BY chunk_index",
		sourceID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query point IDs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan point ID: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return ids, nil
}

// ListByStudyType returns every chunk tagged with studyType ordered by seq.
func (r *ChunkRepo) ListByStudyType(ctx context.Context, studyType string) ([]ChunkRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT seq, point_id, source_id, chunk_index, study_type, text FROM chunks WHERE study_type = ? ORDER BY seq",
		studyType,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var chunks []ChunkRecord
	for rows.Next() {
		var c ChunkRecord
		if err := rows.Scan(&c.Seq, &c.PointID, &c.SourceID, &c.ChunkIndex, &c.StudyType, &c.Text); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		chunks = append(chunks, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return chunks, nil
}

// CountByStudyType returns the number of chunks per study type.
// Study types with no chunks are absent from the map.
func (r *ChunkRepo) CountByStudyType(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT study_type, COUNT(*) FROM chunks GROUP BY study_type")
	if err != nil {
		return nil, fmt.Errorf("failed to count chunks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	counts := make(map[string]int)
	for rows.Next() {
		var studyType string
		var n int
		if err := rows.Scan(&studyType, &n); err != nil {
			return nil, fmt.Errorf("failed to scan chunk count: %w", err)
		}
		counts[studyType] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return counts, nil
}
