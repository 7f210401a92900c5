package vectorstore

import (
	"context"
	"testing"
)

func newMemoryCollection(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	if err := s.EnsureCollection(context.Background(), "refs", 2); err != nil {
		t.Fatalf("EnsureCollection() error = %v", err)
	}
	return s
}

func TestMemoryStore_EnsureCollection(t *testing.T) {
	s := newMemoryCollection(t)
	ctx := context.Background()

	if err := s.EnsureCollection(ctx, "refs", 2); err != nil {
		t.Errorf("EnsureCollection() same size error = %v", err)
	}
	if err := s.EnsureCollection(ctx, "refs", 3); err == nil {
		t.Error("EnsureCollection() size mismatch should return error")
	}
	if err := s.EnsureCollection(ctx, "other", 0); err == nil {
		t.Error("EnsureCollection() zero size should return error")
	}
}

func TestMemoryStore_Search(t *testing.T) {
	s := newMemoryCollection(t)
	ctx := context.Background()

	points := []Point{
		{ID: "a", Vec: []float32{1, 0}, Meta: map[string]any{"study_type": "ct_chest"}},
		{ID: "b", Vec: []float32{0, 1}, Meta: map[string]any{"study_type": "ct_chest"}},
		{ID: "c", Vec: []float32{1, 0}, Meta: map[string]any{"study_type": "ct_head"}},
		{ID: "d", Vec: []float32{2, 0}, Meta: map[string]any{"study_type": "ct_chest"}},
	}
	if err := s.Upsert(ctx, "refs", points); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	tests := []struct {
		name    string
		k       int
		filters map[string]any
		want    []string
	}{
		{name: "ties keep insertion order", k: 3, want: []string{"a", "c", "d"}},
		{name: "filter by study type", k: 10, filters: map[string]any{"study_type": "ct_chest"}, want: []string{"a", "d", "b"}},
		{name: "k limits results", k: 1, filters: map[string]any{"study_type": "ct_head"}, want: []string{"c"}},
		{name: "no match", k: 5, filters: map[string]any{"study_type": "ct_neck"}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Search(ctx, "refs", []float32{1, 0}, tt.k, tt.filters)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Search() returned %d results, want %d", len(got), len(tt.want))
			}
			for i, r := range got {
				if r.PointID != tt.want[i] {
					t.Errorf("Search()[%d] = %s, want %s", i, r.PointID, tt.want[i])
				}
			}
		})
	}
}

func TestMemoryStore_UpsertMovesPointLast(t *testing.T) {
	s := newMemoryCollection(t)
	ctx := context.Background()

	_ = s.Upsert(ctx, "refs", []Point{{ID: "a", Vec: []float32{1, 0}}, {ID: "b", Vec: []float32{1, 0}}})
	_ = s.Upsert(ctx, "refs", []Point{{ID: "a", Vec: []float32{1, 0}, Meta: map[string]any{"v": 2}}})

	got, err := s.Search(ctx, "refs", []float32{1, 0}, 2, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 2 || got[0].PointID != "b" || got[1].PointID != "a" || got[1].Meta["v"] != 2 {
		t.Errorf("Search() = %+v, want b then the updated a", got)
	}
}

func TestMemoryStore_DeleteAndCount(t *testing.T) {
	s := newMemoryCollection(t)
	ctx := context.Background()

	_ = s.Upsert(ctx, "refs", []Point{
		{ID: "a", Vec: []float32{1, 0}, Meta: map[string]any{"source_id": "x"}},
		{ID: "b", Vec: []float32{0, 1}, Meta: map[string]any{"source_id": "y"}},
	})

	n, err := s.Count(ctx, "refs", map[string]any{"source_id": "x"})
	if err != nil || n != 1 {
		t.Fatalf("Count() = %d, %v; want 1", n, err)
	}

	if err := s.Delete(ctx, "refs", []string{"a", "missing"}); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	n, _ = s.Count(ctx, "refs", nil)
	if n != 1 {
		t.Errorf("Count() after delete = %d, want 1", n)
	}

	n, _ = s.Count(ctx, "nope", nil)
	if n != 0 {
		t.Errorf("Count() unknown collection = %d, want 0", n)
	}
}

func TestMemoryStore_DimensionMismatch(t *testing.T) {
	s := newMemoryCollection(t)
	ctx := context.Background()

	if err := s.Upsert(ctx, "refs", []Point{{ID: "a", Vec: []float32{1, 0, 0}}}); err == nil {
		t.Error("Upsert() with wrong dimension should return error")
	}
	if _, err := s.Search(ctx, "refs", []float32{1}, 1, nil); err == nil {
		t.Error("Search() with wrong dimension should return error")
	}
}
