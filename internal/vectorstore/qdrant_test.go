package vectorstore

import (
	"context"
	"testing"

	"github.com/qdrant/go-client/qdrant"
)

func TestGRPCAddr(t *testing.T) {
	tests := []struct {
		name     string
		urlStr   string
		wantErr  bool
		wantHost string
		wantPort int
	}{
		{name: "valid URL", urlStr: "http://localhost:6333", wantHost: "localhost", wantPort: 6334},
		{name: "URL with custom port", urlStr: "http://qdrant:9000", wantHost: "qdrant", wantPort: 9001},
		{name: "invalid URL", urlStr: "://invalid", wantErr: true},
		{name: "URL without port", urlStr: "http://localhost", wantHost: "localhost", wantPort: 6334},
		{name: "URL without hostname", urlStr: "http://:6333", wantHost: "localhost", wantPort: 6334},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, port, err := grpcAddr(tt.urlStr)
			if tt.wantErr {
				if err == nil {
					t.Error("grpcAddr() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("grpcAddr() unexpected error: %v", err)
			}
			if host != tt.wantHost {
				t.Errorf("Host = %v, want %v", host, tt.wantHost)
			}
			if port != tt.wantPort {
				t.Errorf("Port = %v, want %v", port, tt.wantPort)
			}
		})
	}
}

func TestNewQdrantStore_InvalidURL(t *testing.T) {
	if _, err := NewQdrantStore("://invalid"); err == nil {
		t.Error("NewQdrantStore() with invalid URL should return error")
	}
}

func TestPointUUID(t *testing.T) {
	a := PointUUID("guide-1b4e28ba-2fa1-11d2-883f-0016d3cca427")
	b := PointUUID("guide-1b4e28ba-2fa1-11d2-883f-0016d3cca427")
	c := PointUUID("guide-6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	if a != b {
		t.Errorf("PointUUID() not deterministic: %s != %s", a, b)
	}
	if a == c {
		t.Error("PointUUID() collided for different chunk IDs")
	}
	if len(a) != 36 {
		t.Errorf("PointUUID() = %q, want a UUID string", a)
	}
}

func TestQdrantStore_EarlyReturns(t *testing.T) {
	store := &QdrantStore{}
	ctx := context.Background()

	if err := store.Upsert(ctx, "manuals", nil); err != nil {
		t.Errorf("Upsert() with no points = %v, want nil", err)
	}
	if err := store.Delete(ctx, "manuals", nil); err != nil {
		t.Errorf("Delete() with no IDs = %v, want nil", err)
	}
	if err := store.DeleteByFilter(ctx, "manuals", nil); err == nil {
		t.Error("DeleteByFilter() with empty filter should return error")
	}
	if _, err := store.Search(ctx, "manuals", []float32{1, 2}, 0, nil); err == nil {
		t.Error("Search() with k=0 should return error")
	}
}

func TestBuildFilter(t *testing.T) {
	if f := buildFilter(nil); f != nil {
		t.Errorf("buildFilter(nil) = %v, want nil", f)
	}

	f := buildFilter(Filters{"title": "Guide", "chunk_index": 3})
	if f == nil || len(f.Must) != 2 {
		t.Fatalf("buildFilter() = %v, want 2 must conditions", f)
	}
	for _, cond := range f.Must {
		field := cond.GetField()
		if field == nil {
			t.Fatalf("condition %v is not a field condition", cond)
		}
		switch field.Key {
		case "title":
			if got := field.GetMatch().GetKeyword(); got != "Guide" {
				t.Errorf("title match = %q, want Guide", got)
			}
		case "chunk_index":
			if got := field.GetMatch().GetInteger(); got != 3 {
				t.Errorf("chunk_index match = %d, want 3", got)
			}
		default:
			t.Errorf("unexpected field %q", field.Key)
		}
	}

	f = buildFilter(Filters{"chunk_id": []string{"g-1", "g-2"}})
	if f == nil || len(f.Must) != 1 {
		t.Fatalf("buildFilter() = %v, want 1 must condition", f)
	}
	got := f.Must[0].GetField().GetMatch().GetKeywords().GetStrings()
	if len(got) != 2 || got[0] != "g-1" || got[1] != "g-2" {
		t.Errorf("chunk_id any-of match = %v, want [g-1 g-2]", got)
	}
}

func TestChunkIDOf(t *testing.T) {
	tests := []struct {
		name string
		id   *qdrant.PointId
		meta map[string]any
		want string
	}{
		{name: "payload wins", id: qdrant.NewID("0f8fad5b-d9cb-469f-a165-70867728950e"), meta: map[string]any{"chunk_id": "guide-abc"}, want: "guide-abc"},
		{name: "uuid fallback", id: qdrant.NewID("0f8fad5b-d9cb-469f-a165-70867728950e"), meta: map[string]any{}, want: "0f8fad5b-d9cb-469f-a165-70867728950e"},
		{name: "numeric fallback", id: qdrant.NewIDNum(42), meta: nil, want: "42"},
		{name: "nil id", id: nil, meta: nil, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := chunkIDOf(tt.id, tt.meta); got != tt.want {
				t.Errorf("chunkIDOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConvertPayloadToMap(t *testing.T) {
	if result := convertPayloadToMap(nil); result == nil || len(result) != 0 {
		t.Errorf("convertPayloadToMap(nil) = %v, want empty map", result)
	}

	payload := qdrant.NewValueMap(map[string]any{
		"title":       "Guide",
		"chunk_index": 2,
		"tags":        []any{"a", "b"},
	})
	got := convertPayloadToMap(payload)
	if got["title"] != "Guide" {
		t.Errorf("title = %v, want Guide", got["title"])
	}
	if got["chunk_index"] != int64(2) {
		t.Errorf("chunk_index = %v (%T), want int64(2)", got["chunk_index"], got["chunk_index"])
	}
	if tags, ok := got["tags"].([]any); !ok || len(tags) != 2 {
		t.Errorf("tags = %v, want 2 items", got["tags"])
	}
}
