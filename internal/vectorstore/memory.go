package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryStore is an in-process VectorStore backed by brute-force cosine search.
// It is used when no Qdrant URL is configured and in tests.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

type memoryCollection struct {
	vectorSize int
	nextSeq    int
	points     map[string]memoryPoint
}

type memoryPoint struct {
	Point
	seq int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memoryCollection)}
}

// EnsureCollection creates the collection or validates its vector size.
func (s *MemoryStore) EnsureCollection(_ context.Context, collection string, vectorSize int) error {
	if vectorSize <= 0 {
		return fmt.Errorf("vector size must be greater than 0")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.collections[collection]; ok {
		if c.vectorSize != vectorSize {
			return fmt.Errorf("collection vector size mismatch: expected %d, got %d", vectorSize, c.vectorSize)
		}
		return nil
	}
	s.collections[collection] = &memoryCollection{vectorSize: vectorSize, points: make(map[string]memoryPoint)}
	return nil
}

// Upsert inserts or updates points. An updated point moves behind every
// existing point for tie-breaking, as a re-inserted row would.
func (s *MemoryStore) Upsert(_ context.Context, collection string, points []Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[collection]
	if !ok {
		return fmt.Errorf("collection %q does not exist", collection)
	}

	for _, p := range points {
		if len(p.Vec) != c.vectorSize {
			return fmt.Errorf("point %s has dimension %d, collection expects %d", p.ID, len(p.Vec), c.vectorSize)
		}
	}

	for _, p := range points {
		vec := make([]float32, len(p.Vec))
		copy(vec, p.Vec)
		meta := make(map[string]any, len(p.Meta))
		for k, v := range p.Meta {
			meta[k] = v
		}

		c.points[p.ID] = memoryPoint{Point: Point{ID: p.ID, Vec: vec, Meta: meta}, seq: c.nextSeq}
		c.nextSeq++
	}
	return nil
}

// Search returns the k points most similar to query, best first.
// Equal scores are ordered by insertion.
func (s *MemoryStore) Search(_ context.Context, collection string, query []float32, k int, filters map[string]any) ([]SearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("collection %q does not exist", collection)
	}
	if len(query) != c.vectorSize {
		return nil, fmt.Errorf("query has dimension %d, collection expects %d", len(query), c.vectorSize)
	}

	type scored struct {
		p     memoryPoint
		score float32
	}
	candidates := make([]scored, 0, len(c.points))
	for _, p := range c.points {
		if !matches(p.Meta, filters) {
			continue
		}
		candidates = append(candidates, scored{p: p, score: cosine(query, p.Vec)})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].p.seq < candidates[j].p.seq
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}

	results := make([]SearchResult, 0, len(candidates))
	for _, cand := range candidates {
		meta := make(map[string]any, len(cand.p.Meta))
		for key, v := range cand.p.Meta {
			meta[key] = v
		}
		results = append(results, SearchResult{PointID: cand.p.ID, Score: cand.score, Meta: meta})
	}
	return results, nil
}

// Delete removes points by their IDs. Unknown IDs are ignored.
func (s *MemoryStore) Delete(_ context.Context, collection string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[collection]
	if !ok {
		return nil
	}
	for _, id := range ids {
		delete(c.points, id)
	}
	return nil
}

// Count returns the number of points matching filters.
func (s *MemoryStore) Count(_ context.Context, collection string, filters map[string]any) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[collection]
	if !ok {
		return 0, nil
	}
	n := 0
	for _, p := range c.points {
		if matches(p.Meta, filters) {
			n++
		}
	}
	return n, nil
}

func matches(meta, filters map[string]any) bool {
	for k, want := range filters {
		got, ok := meta[k]
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

func cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
