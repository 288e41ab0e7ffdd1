package llm

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks manualrag/internal/llm Embedder

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// Embedder turns texts into vectors, one per input in input order.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// CachedEmbedder memoizes embeddings of repeated texts, which in practice are
// chat questions asked again within a session or across sessions.
type CachedEmbedder struct {
	next  Embedder
	cache *cache.Cache
}

// defaultCacheTTL applies when NewCachedEmbedder gets a non-positive TTL,
// which go-cache would treat as "never expire".
const defaultCacheTTL = 10 * time.Minute

// NewCachedEmbedder wraps next with a TTL cache.
func NewCachedEmbedder(next Embedder, ttl time.Duration) *CachedEmbedder {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachedEmbedder{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

// EmbedTexts serves cached vectors and embeds only the misses in one batch.
func (c *CachedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var (
		missIdx   []int
		missTexts []string
	)
	for i, t := range texts {
		if v, ok := c.cache.Get(t); ok {
			out[i] = v.([]float32)
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, t)
	}
	if len(missTexts) == 0 {
		return out, nil
	}

	vecs, err := c.next.EmbedTexts(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, i := range missIdx {
		out[i] = vecs[j]
		c.cache.SetDefault(texts[i], vecs[j])
	}
	return out, nil
}
