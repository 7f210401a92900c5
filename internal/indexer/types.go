package indexer

import (
	"errors"
	"fmt"
)

// ErrEmptySource is returned when a source has no text left after extraction.
var ErrEmptySource = errors.New("source text is empty")

// Chunk is a window of reference text with its provenance.
// Identity is (SourceID, ChunkIndex).
type Chunk struct {
	Text       string `json:"text"`
	StudyType  string `json:"studyType"`
	ChunkIndex int    `json:"chunkIndex"`
	SourceID   string `json:"sourceId"`

	seq int64 // global insertion order, used to break score ties
}

// ScoredChunk is a query hit.
type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float32 `json:"score"`
}

// IngestResult describes the outcome of a single ingest call.
type IngestResult struct {
	SourceID  string `json:"sourceId"`
	StudyType string `json:"studyType"`
	Chunks    int    `json:"chunks"`
	Unchanged bool   `json:"unchanged"` // content hash matched; nothing was rewritten
}

// IngestError reports a failed ingestion. The index is left as it was before the call.
type IngestError struct {
	SourceID string
	Err      error
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("ingest %q: %v", e.SourceID, e.Err)
}

func (e *IngestError) Unwrap() error {
	return e.Err
}
