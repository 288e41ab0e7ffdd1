package rag

import (
	"context"
	"fmt"
	"strings"

	"manualrag/internal/apperr"
	"manualrag/internal/contextutil"
	"manualrag/internal/indexer"
	"manualrag/internal/llm"
	"manualrag/internal/vectorstore"
)

// Retriever finds the chunks most similar to a question within a scope.
type Retriever struct {
	embedder   llm.Embedder
	store      vectorstore.VectorStore
	collection string
	k          int
}

// NewRetriever creates a Retriever returning at most k chunks per query.
func NewRetriever(embedder llm.Embedder, store vectorstore.VectorStore, collection string, k int) *Retriever {
	if k <= 0 {
		k = 4
	}
	return &Retriever{
		embedder:   embedder,
		store:      store,
		collection: collection,
		k:          k,
	}
}

// Retrieve returns up to k chunks ordered by descending similarity.
//
// The scope is part of the store query, so allowed chunks are found however
// low they rank globally. A title scope that matches no stored chunk at all is
// ErrNotFound; a known manual whose chunks simply do not match returns an empty
// slice. Unknown IDs in the allow-list are ignored.
func (r *Retriever) Retrieve(ctx context.Context, query string, scope Scope) ([]RetrievedChunk, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(query) == "" {
		return nil, &apperr.ValidationError{Field: "content", Message: "cannot be empty"}
	}
	if scope.Title == "" && len(scope.ChunkIDs) == 0 {
		return nil, &apperr.ValidationError{Field: "manual", Message: "a manual title or chunk ids are required"}
	}

	vecs, err := r.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, apperr.Generation("embed query", err)
	}
	if len(vecs) != 1 {
		return nil, apperr.Generation("embed query", fmt.Errorf("expected 1 embedding, got %d", len(vecs)))
	}

	filters := vectorstore.Filters{}
	if scope.Title != "" {
		filters[indexer.MetaTitle] = scope.Title
	}
	if len(scope.ChunkIDs) > 0 {
		filters[indexer.MetaChunkID] = scope.ChunkIDs
	}

	results, err := r.store.Search(ctx, r.collection, vecs[0], r.k, filters)
	if err != nil {
		return nil, apperr.Storage("search chunks", err)
	}

	// Re-check the scope against the returned payloads.
	allow := make(map[string]struct{}, len(scope.ChunkIDs))
	for _, id := range scope.ChunkIDs {
		allow[id] = struct{}{}
	}

	chunks := make([]RetrievedChunk, 0, min(len(results), r.k))
	for _, res := range results {
		sc := indexer.StoredChunkFromMeta(res.PointID, res.Meta)
		if len(allow) > 0 {
			if _, ok := allow[sc.ID]; !ok {
				continue
			}
		}
		if scope.Title != "" && sc.Title != scope.Title {
			continue
		}
		chunks = append(chunks, RetrievedChunk{
			ChunkID: sc.ID,
			Title:   sc.Title,
			Text:    sc.Text,
			Index:   sc.Index,
			Score:   res.Score,
		})
		if len(chunks) == r.k {
			break
		}
	}

	if len(chunks) == 0 && scope.Title != "" {
		n, err := r.store.Count(ctx, r.collection, vectorstore.Filters{indexer.MetaTitle: scope.Title})
		if err != nil {
			return nil, apperr.Storage("count chunks", err)
		}
		if n == 0 {
			return nil, apperr.NotFound("retrieve", fmt.Errorf("manual %q has no chunks", scope.Title))
		}
	}

	logger.DebugContext(ctx, "retrieved chunks",
		"title", scope.Title,
		"allow_list", len(scope.ChunkIDs),
		"candidates", len(results),
		"returned", len(chunks),
	)
	return chunks, nil
}
