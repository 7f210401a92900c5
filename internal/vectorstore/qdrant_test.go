package vectorstore

import (
	"context"
	"testing"

	"github.com/qdrant/go-client/qdrant"
)

func TestGRPCAddress(t *testing.T) {
	tests := []struct {
		name     string
		urlStr   string
		wantErr  bool
		wantHost string
		wantPort int
	}{
		{
			name:     "valid URL",
			urlStr:   "http://localhost:6333",
			wantHost: "localhost",
			wantPort: 6334, // gRPC port is HTTP port + 1
		},
		{
			name:     "URL with custom port",
			urlStr:   "http://qdrant:9000",
			wantHost: "qdrant",
			wantPort: 9001,
		},
		{
			name:    "invalid URL",
			urlStr:  "://invalid",
			wantErr: true,
		},
		{
			name:     "URL without port",
			urlStr:   "http://localhost",
			wantHost: "localhost",
			wantPort: 6334,
		},
		{
			name:     "URL without hostname",
			urlStr:   "http://:6333",
			wantHost: "localhost",
			wantPort: 6334,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, port, err := grpcAddress(tt.urlStr)
			if tt.wantErr {
				if err == nil {
					t.Error("grpcAddress() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("grpcAddress() error = %v", err)
			}
			if host != tt.wantHost {
				t.Errorf("host = %v, want %v", host, tt.wantHost)
			}
			if port != tt.wantPort {
				t.Errorf("port = %v, want %v", port, tt.wantPort)
			}
		})
	}
}

func TestNewQdrantStore_InvalidURL(t *testing.T) {
	_, err := NewQdrantStore("://invalid")
	if err == nil {
		t.Error("NewQdrantStore() with invalid URL should return error")
	}
}

func TestQdrantStore_EarlyReturns(t *testing.T) {
	// No client is needed: these paths return before any RPC.
	store := &QdrantStore{}
	ctx := context.Background()

	if err := store.Upsert(ctx, "c", nil); err != nil {
		t.Errorf("Upsert() with no points error = %v", err)
	}
	if err := store.Delete(ctx, "c", nil); err != nil {
		t.Errorf("Delete() with no IDs error = %v", err)
	}
	if _, err := store.Search(ctx, "c", []float32{1}, 0, nil); err == nil {
		t.Error("Search() with k=0 should return error")
	}
}

func TestBuildFilter(t *testing.T) {
	if f := buildFilter(nil); f != nil {
		t.Errorf("buildFilter(nil) = %v, want nil", f)
	}

	f := buildFilter(map[string]any{"study_type": "ct_chest", "chunk_index": int64(2)})
	if f == nil || len(f.Must) != 2 {
		t.Fatalf("buildFilter() = %v, want two conditions", f)
	}

	first := f.Must[0].GetField()
	if first.GetKey() != "chunk_index" || first.GetMatch().GetInteger() != 2 {
		t.Errorf("first condition = %v, want chunk_index == 2", first)
	}
	second := f.Must[1].GetField()
	if second.GetKey() != "study_type" || second.GetMatch().GetKeyword() != "ct_chest" {
		t.Errorf("second condition = %v, want study_type == ct_chest", second)
	}
}

func TestConvertPayloadToMap(t *testing.T) {
	result := convertPayloadToMap(nil)
	if result == nil || len(result) != 0 {
		t.Errorf("convertPayloadToMap(nil) = %v, want empty map", result)
	}

	payload := qdrant.NewValueMap(map[string]any{
		"study_type":  "ct_head",
		"chunk_index": int64(3),
		"nested":      map[string]any{"ok": true},
	})
	got := convertPayloadToMap(payload)
	if got["study_type"] != "ct_head" {
		t.Errorf("study_type = %v", got["study_type"])
	}
	if got["chunk_index"] != int64(3) {
		t.Errorf("chunk_index = %v (%T)", got["chunk_index"], got["chunk_index"])
	}
	nested, ok := got["nested"].(map[string]any)
	if !ok || nested["ok"] != true {
		t.Errorf("nested = %v", got["nested"])
	}
}
