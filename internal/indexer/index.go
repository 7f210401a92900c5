package indexer

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"radreport-ai/internal/contextutil"
	"radreport-ai/internal/storage"
	"radreport-ai/internal/vectorstore"
)

// pointNamespace seeds deterministic point IDs.
var pointNamespace = uuid.MustParse("6f1c1b0e-3f7a-4c8e-9a52-8d4f5c2b7e11")

// Index is the passage index: reference text is split, embedded and stored in
// SQLite (text and provenance) and a vector store (vectors with a study_type payload).
// Ingest calls are serialized; queries run concurrently with them.
type Index struct {
	sources    storage.SourceStore
	chunks     storage.ChunkStore
	vectors    vectorstore.VectorStore
	embedder   Embedder
	splitter   *Splitter
	collection string

	ingestMu sync.Mutex
}

// NewIndex creates a new passage index.
func NewIndex(
	sources storage.SourceStore,
	chunks storage.ChunkStore,
	vectors vectorstore.VectorStore,
	embedder Embedder,
	splitter *Splitter,
	collection string,
) *Index {
	return &Index{
		sources:    sources,
		chunks:     chunks,
		vectors:    vectors,
		embedder:   embedder,
		splitter:   splitter,
		collection: collection,
	}
}

// EnsureCollection prepares the vector collection for the embedder's dimension.
func (ix *Index) EnsureCollection(ctx context.Context) error {
	return ix.vectors.EnsureCollection(ctx, ix.collection, ix.embedder.Dimension())
}

// Ingest splits rawText into windows, embeds them and stores them under sourceID.
// Re-ingesting a source replaces its previous chunks; an unchanged source is skipped.
func (ix *Index) Ingest(ctx context.Context, sourceID, rawText, studyType string) (*IngestResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	sourceID = strings.TrimSpace(sourceID)
	studyType = strings.TrimSpace(studyType)
	if sourceID == "" {
		return nil, &IngestError{SourceID: sourceID, Err: errors.New("source id is required")}
	}
	if studyType == "" {
		return nil, &IngestError{SourceID: sourceID, Err: errors.New("study type is required")}
	}

	text := strings.TrimSpace(rawText)
	if text == "" {
		return nil, &IngestError{SourceID: sourceID, Err: ErrEmptySource}
	}

	ix.ingestMu.Lock()
	defer ix.ingestMu.Unlock()

	hashHex := fmt.Sprintf("%x", sha256.Sum256([]byte(text)))

	existing, err := ix.sources.GetByID(ctx, sourceID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, &IngestError{SourceID: sourceID, Err: fmt.Errorf("failed to check existing source: %w", err)}
	}
	if existing != nil && existing.Hash == hashHex && existing.StudyType == studyType {
		n, upToDate := ix.storedChunkCount(ctx, sourceID)
		if upToDate {
			logger.DebugContext(ctx, "skipping unchanged source", "source_id", sourceID, "hash", hashHex)
			return &IngestResult{SourceID: sourceID, StudyType: studyType, Chunks: n, Unchanged: true}, nil
		}
	}

	windows := ix.splitter.Split(text)
	if len(windows) == 0 {
		return nil, &IngestError{SourceID: sourceID, Err: ErrEmptySource}
	}

	embeddings, err := ix.embedder.EmbedTexts(ctx, windows)
	if err != nil {
		return nil, &IngestError{SourceID: sourceID, Err: fmt.Errorf("failed to generate embeddings: %w", err)}
	}
	if len(embeddings) != len(windows) {
		return nil, &IngestError{SourceID: sourceID, Err: fmt.Errorf("embedding count mismatch: expected %d, got %d", len(windows), len(embeddings))}
	}

	oldPointIDs, err := ix.chunks.ListPointIDsBySource(ctx, sourceID)
	if err != nil {
		return nil, &IngestError{SourceID: sourceID, Err: fmt.Errorf("failed to list old point IDs: %w", err)}
	}
	previous := make(map[string]struct{}, len(oldPointIDs))
	for _, id := range oldPointIDs {
		previous[id] = struct{}{}
	}

	// Point IDs are versioned by content so new points never overwrite the
	// ones still serving queries until the SQLite swap commits.
	revision := studyType + ":" + hashHex
	records := make([]storage.ChunkRecord, len(windows))
	keep := make(map[string]struct{}, len(windows))
	var fresh []string
	for i, w := range windows {
		id := pointID(sourceID, revision, i)
		records[i] = storage.ChunkRecord{
			PointID:    id,
			ChunkIndex: i,
			Text:       w,
		}
		keep[id] = struct{}{}
		if _, ok := previous[id]; !ok {
			fresh = append(fresh, id)
		}
	}

	src := &storage.SourceRecord{ID: sourceID, StudyType: studyType, Hash: hashHex}
	stored, err := ix.chunks.ReplaceSource(ctx, src, records, func(stored []storage.ChunkRecord) error {
		points := make([]vectorstore.Point, len(stored))
		for i, rec := range stored {
			points[i] = vectorstore.Point{
				ID:  rec.PointID,
				Vec: embeddings[i],
				Meta: map[string]any{
					"study_type":  studyType,
					"source_id":   sourceID,
					"chunk_index": int64(rec.ChunkIndex),
					"seq":         rec.Seq,
					"text":        rec.Text,
				},
			}
		}
		if err := ix.vectors.Upsert(ctx, ix.collection, points); err != nil {
			return fmt.Errorf("failed to upsert vectors: %w", err)
		}
		return nil
	})
	if err != nil {
		// The SQLite swap rolled back; drop whatever part of the new revision reached the vector store.
		if delErr := ix.vectors.Delete(ctx, ix.collection, fresh); delErr != nil {
			logger.WarnContext(ctx, "failed to discard points of failed ingest", "source_id", sourceID, "count", len(fresh), "error", delErr)
		}
		return nil, &IngestError{SourceID: sourceID, Err: err}
	}

	var stale []string
	for _, id := range oldPointIDs {
		if _, ok := keep[id]; !ok {
			stale = append(stale, id)
		}
	}
	if err := ix.vectors.Delete(ctx, ix.collection, stale); err != nil {
		logger.WarnContext(ctx, "failed to delete stale points", "source_id", sourceID, "count", len(stale), "error", err)
	}

	logger.InfoContext(ctx, "ingested source", "source_id", sourceID, "study_type", studyType, "chunks", len(stored))
	return &IngestResult{SourceID: sourceID, StudyType: studyType, Chunks: len(stored)}, nil
}

// storedChunkCount reports how many chunks the source has and whether the
// vector store holds the same number of points for it.
func (ix *Index) storedChunkCount(ctx context.Context, sourceID string) (int, bool) {
	ids, err := ix.chunks.ListPointIDsBySource(ctx, sourceID)
	if err != nil || len(ids) == 0 {
		return 0, false
	}
	n, err := ix.vectors.Count(ctx, ix.collection, map[string]any{"source_id": sourceID})
	if err != nil {
		return 0, false
	}
	return len(ids), n == len(ids)
}

// Query returns the k chunks most similar to text, restricted to studyType when it is non-empty.
// An empty index yields an empty result. Equal scores keep insertion order.
func (ix *Index) Query(ctx context.Context, text string, k int, studyType string) ([]ScoredChunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	var filters map[string]any
	if studyType != "" {
		filters = map[string]any{"study_type": studyType}
	}

	total, err := ix.vectors.Count(ctx, ix.collection, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to count points: %w", err)
	}
	if total == 0 {
		return []ScoredChunk{}, nil
	}

	vecs, err := ix.embedder.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := ix.searchWithTies(ctx, vecs[0], k, total, filters)
	if err != nil {
		return nil, err
	}

	hits := make([]ScoredChunk, 0, len(results))
	for _, r := range results {
		c := chunkFromMeta(r.Meta)
		if studyType != "" && c.StudyType != studyType {
			continue
		}
		hits = append(hits, ScoredChunk{Chunk: c, Score: r.Score})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Chunk.seq < hits[j].Chunk.seq
	})
	if len(hits) > k {
		hits = hits[:k]
	}

	return hits, nil
}

// searchWithTies widens the search until every point scoring the same as the
// k-th result is in the window, so ties at the cut are decided by seq rather
// than by whichever order the store returned them in.
func (ix *Index) searchWithTies(ctx context.Context, vec []float32, k, total int, filters map[string]any) ([]vectorstore.SearchResult, error) {
	limit := min(2*k, total)
	for {
		limit = max(limit, k)
		results, err := ix.vectors.Search(ctx, ix.collection, vec, limit, filters)
		if err != nil {
			return nil, fmt.Errorf("failed to search vectors: %w", err)
		}
		if len(results) <= k || len(results) < limit || limit >= total {
			return results, nil
		}
		if results[k-1].Score != results[len(results)-1].Score {
			return results, nil
		}
		limit = min(2*limit, total)
	}
}

// ChunksForStudy returns every chunk of studyType in insertion order.
func (ix *Index) ChunksForStudy(ctx context.Context, studyType string) ([]Chunk, error) {
	records, err := ix.chunks.ListByStudyType(ctx, studyType)
	if err != nil {
		return nil, err
	}

	out := make([]Chunk, len(records))
	for i, r := range records {
		out[i] = Chunk{
			Text:       r.Text,
			StudyType:  r.StudyType,
			ChunkIndex: r.ChunkIndex,
			SourceID:   r.SourceID,
			seq:        r.Seq,
		}
	}
	return out, nil
}

// ListStudyTypes returns the distinct study types present, sorted.
func (ix *Index) ListStudyTypes(ctx context.Context) ([]string, error) {
	counts, err := ix.chunks.CountByStudyType(ctx)
	if err != nil {
		return nil, err
	}

	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)
	return types, nil
}

func pointID(sourceID, revision string, chunkIndex int) string {
	return uuid.NewSHA1(pointNamespace, []byte(sourceID+"@"+revision+"#"+strconv.Itoa(chunkIndex))).String()
}

func chunkFromMeta(meta map[string]any) Chunk {
	c := Chunk{}
	c.Text, _ = meta["text"].(string)
	c.StudyType, _ = meta["study_type"].(string)
	c.SourceID, _ = meta["source_id"].(string)
	c.ChunkIndex = int(metaInt(meta["chunk_index"]))
	c.seq = metaInt(meta["seq"])
	return c
}

// metaInt reads an integer payload value; stores disagree on the Go type they return.
func metaInt(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	case float32:
		return int64(n)
	default:
		return 0
	}
}
