package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"time"
	"unicode/utf8"
)

const (
	// SplitterVersion identifies the splitting algorithm.
	// Update this when splitting logic changes significantly.
	SplitterVersion = "v1.0"
	// RunesPerToken approximates how many runes make up one token.
	RunesPerToken = 4.0
)

// Stats describes the contents of the index.
type Stats struct {
	TotalChunks   int            `json:"totalChunks"`
	StudyTypes    int            `json:"studyTypes"`
	ChunksByStudy map[string]int `json:"chunksByStudy"`
	IndexedPoints int            `json:"indexedPoints"`
	// Sources lists every ingested source ordered by ID.
	Sources []SourceStats `json:"sources"`
	// ChunkTokenStats estimates token counts per chunk.
	ChunkTokenStats ChunkTokenStats `json:"chunkTokenStats"`
	// IndexVersion is a hash of the splitter version, its parameters and the vector size.
	IndexVersion string `json:"indexVersion"`
}

// SourceStats describes one ingested source.
type SourceStats struct {
	ID        string    `json:"id"`
	StudyType string    `json:"studyType"`
	Chunks    int       `json:"chunks"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ChunkTokenStats contains statistics about token counts in chunks.
type ChunkTokenStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
	P95  int     `json:"p95"`
}

// Stats computes index statistics from the chunk table and the vector store.
func (ix *Index) Stats(ctx context.Context) (*Stats, error) {
	counts, err := ix.chunks.CountByStudyType(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count chunks: %w", err)
	}

	stats := &Stats{
		StudyTypes:    len(counts),
		ChunksByStudy: counts,
	}

	perSource := make(map[string]int)
	var tokenCounts []int
	for studyType, n := range counts {
		stats.TotalChunks += n

		chunks, err := ix.chunks.ListByStudyType(ctx, studyType)
		if err != nil {
			return nil, fmt.Errorf("failed to list chunks for %s: %w", studyType, err)
		}
		for _, c := range chunks {
			perSource[c.SourceID]++
			tokens := int(math.Round(float64(utf8.RuneCountInString(c.Text)) / RunesPerToken))
			tokenCounts = append(tokenCounts, max(tokens, 1))
		}
	}
	stats.ChunkTokenStats = computeTokenStats(tokenCounts)

	sources, err := ix.sources.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	stats.Sources = make([]SourceStats, len(sources))
	for i, src := range sources {
		stats.Sources[i] = SourceStats{
			ID:        src.ID,
			StudyType: src.StudyType,
			Chunks:    perSource[src.ID],
			UpdatedAt: src.UpdatedAt,
		}
	}

	points, err := ix.vectors.Count(ctx, ix.collection, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count points: %w", err)
	}
	stats.IndexedPoints = points

	versionInput := fmt.Sprintf("%s|size=%d|overlap=%d|dim=%d",
		SplitterVersion, ix.splitter.ChunkSize, ix.splitter.ChunkOverlap, ix.embedder.Dimension())
	hash := sha256.Sum256([]byte(versionInput))
	stats.IndexVersion = hex.EncodeToString(hash[:])[:16]

	return stats, nil
}

// computeTokenStats computes min, max, mean, and p95 from token counts.
func computeTokenStats(tokenCounts []int) ChunkTokenStats {
	if len(tokenCounts) == 0 {
		return ChunkTokenStats{}
	}

	sorted := make([]int, len(tokenCounts))
	copy(sorted, tokenCounts)
	sort.Ints(sorted)

	sum := 0
	for _, count := range sorted {
		sum += count
	}
	mean := float64(sum) / float64(len(sorted))

	p95Index := int(math.Ceil(float64(len(sorted))*0.95)) - 1
	p95Index = min(max(p95Index, 0), len(sorted)-1)

	return ChunkTokenStats{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: math.Round(mean*100) / 100,
		P95:  sorted[p95Index],
	}
}
