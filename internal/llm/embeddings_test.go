package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func writeEmbeddings(w http.ResponseWriter, vecs [][]float32) {
	data := make([]map[string]any, len(vecs))
	for i, v := range vecs {
		data[i] = map[string]any{"object": "embedding", "index": i, "embedding": v}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data, "model": "test-model"})
}

func TestNewEmbeddingsClient(t *testing.T) {
	client := NewEmbeddingsClient("http://localhost:8080", "test-key", "test-model", 768)
	if client.BaseURL != "http://localhost:8080" {
		t.Errorf("NewEmbeddingsClient() BaseURL = %v, want http://localhost:8080", client.BaseURL)
	}
	if client.ExpectedSize != 768 {
		t.Errorf("NewEmbeddingsClient() ExpectedSize = %v, want 768", client.ExpectedSize)
	}
}

func TestEmbeddingsClient_EmbedTexts(t *testing.T) {
	tests := []struct {
		name       string
		texts      []string
		serverResp func(w http.ResponseWriter, r *http.Request)
		wantErr    bool
		wantCount  int
	}{
		{
			name:  "successful embedding",
			texts: []string{"Hello", "World"},
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/v1/embeddings" {
					t.Errorf("expected /v1/embeddings, got %s", r.URL.Path)
				}
				var body struct {
					Input []string `json:"input"`
					Model string   `json:"model"`
				}
				_ = json.NewDecoder(r.Body).Decode(&body)
				if len(body.Input) != 2 || body.Model != "test-model" {
					t.Errorf("unexpected request body: %+v", body)
				}
				writeEmbeddings(w, [][]float32{{1, 0, 0}, {0, 1, 0}})
			},
			wantCount: 2,
		},
		{
			name:       "empty input",
			texts:      []string{},
			serverResp: func(w http.ResponseWriter, r *http.Request) {},
			wantErr:    true,
		},
		{
			name:  "wrong embedding count",
			texts: []string{"Hello", "World"},
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				writeEmbeddings(w, [][]float32{{1, 0, 0}})
			},
			wantErr: true,
		},
		{
			name:  "wrong vector size",
			texts: []string{"Hello"},
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				writeEmbeddings(w, [][]float32{{1, 0}})
			},
			wantErr: true,
		},
		{
			name:  "client error status",
			texts: []string{"Hello"},
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				writeAPIError(w, http.StatusUnauthorized)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(tt.serverResp))
			defer server.Close()

			client := NewEmbeddingsClient(server.URL, "test-key", "test-model", 3)
			got, err := client.EmbedTexts(context.Background(), tt.texts)

			if (err != nil) != tt.wantErr {
				t.Fatalf("EmbedTexts() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && len(got) != tt.wantCount {
				t.Errorf("EmbedTexts() returned %d vectors, want %d", len(got), tt.wantCount)
			}
		})
	}
}

func TestEmbeddingsClient_RetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			writeAPIError(w, http.StatusTooManyRequests)
			return
		}
		writeEmbeddings(w, [][]float32{{0, 0, 1}})
	}))
	defer server.Close()

	client := NewEmbeddingsClient(server.URL, "k", "test-model", 3)
	got, err := client.EmbedTexts(context.Background(), []string{"q"})
	if err != nil {
		t.Fatalf("EmbedTexts() error = %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("server calls = %d, want 2", calls.Load())
	}
	if got[0][2] != 1 {
		t.Errorf("EmbedTexts() = %v", got)
	}
}

type countingEmbedder struct {
	calls  int
	inputs [][]string
}

func (c *countingEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	c.calls++
	c.inputs = append(c.inputs, texts)
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t))}
	}
	return out, nil
}

func TestCachedEmbedder(t *testing.T) {
	inner := &countingEmbedder{}
	cached := NewCachedEmbedder(inner, time.Minute)
	ctx := context.Background()

	first, err := cached.EmbedTexts(ctx, []string{"ab", "abcd"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := cached.EmbedTexts(ctx, []string{"abcd", "xyz", "ab"})
	if err != nil {
		t.Fatal(err)
	}

	if inner.calls != 2 {
		t.Fatalf("inner calls = %d, want 2", inner.calls)
	}
	if len(inner.inputs[1]) != 1 || inner.inputs[1][0] != "xyz" {
		t.Errorf("second call embedded %v, want only the miss", inner.inputs[1])
	}
	if first[1][0] != 4 || second[0][0] != 4 || second[1][0] != 3 || second[2][0] != 2 {
		t.Errorf("cached results out of order: %v %v", first, second)
	}

	if _, err := cached.EmbedTexts(ctx, []string{"xyz"}); err != nil || inner.calls != 2 {
		t.Errorf("fully cached call hit inner embedder (calls=%d, err=%v)", inner.calls, err)
	}
}

func TestCachedEmbedder_EntriesExpire(t *testing.T) {
	for _, ttl := range []time.Duration{0, -time.Second, time.Minute} {
		cached := NewCachedEmbedder(&countingEmbedder{}, ttl)
		if _, err := cached.EmbedTexts(context.Background(), []string{"ab"}); err != nil {
			t.Fatal(err)
		}
		item, ok := cached.cache.Items()["ab"]
		if !ok {
			t.Fatalf("ttl %v: entry not cached", ttl)
		}
		if item.Expiration == 0 {
			t.Errorf("ttl %v: entry never expires", ttl)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "deadline", err: context.DeadlineExceeded, want: false},
		{name: "bad response", err: errBadResponse, want: false},
		{name: "transport", err: &transportErr{}, want: true},
	}
	for _, tt := range tests {
		if got := isRetryable(tt.err); got != tt.want {
			t.Errorf("%s: isRetryable() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

type transportErr struct{}

func (*transportErr) Error() string { return "connection refused" }
