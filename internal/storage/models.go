package storage

import "time"

// SourceRecord represents an ingested reference document.
type SourceRecord struct {
	ID        string // Caller-supplied source identifier
	StudyType string // Study type every chunk of this source is tagged with
	Hash      string // SHA256 hex string of the extracted text
	UpdatedAt time.Time
}

// ChunkRecord represents a window of source text, indexed for vector search.
type ChunkRecord struct {
	Seq        int64  // Insertion sequence, assigned by the database
	PointID    string // UUID of the matching vector point
	SourceID   string // Foreign key to sources.id
	ChunkIndex int    // Index within the source (starts at 0)
	StudyType  string
	Text       string
}

// Record is an opaque JSON payload stored under (namespace, key).
type Record struct {
	Namespace string
	Key       string
	Payload   []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}
