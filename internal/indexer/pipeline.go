package indexer

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"manualrag/internal/apperr"
	"manualrag/internal/contextutil"
	"manualrag/internal/llm"
	"manualrag/internal/vectorstore"
)

const (
	defaultEmbedBatch  = 64
	defaultUpsertBatch = 256
)

// Ingestor embeds chunks and writes them to the vector index under a manual title.
type Ingestor struct {
	embedder    llm.Embedder
	store       vectorstore.VectorStore
	collection  string
	embedBatch  int
	upsertBatch int
	now         func() time.Time
}

// NewIngestor creates an Ingestor writing into collection.
func NewIngestor(embedder llm.Embedder, store vectorstore.VectorStore, collection string) *Ingestor {
	return &Ingestor{
		embedder:    embedder,
		store:       store,
		collection:  collection,
		embedBatch:  defaultEmbedBatch,
		upsertBatch: defaultUpsertBatch,
		now:         time.Now,
	}
}

// Ingest stores chunks for title and returns how many were written.
//
// All chunks are embedded before the first write. When a write batch fails,
// points already written by this call are deleted again so a failed upload
// does not leave a partial chunk set behind.
func (in *Ingestor) Ingest(ctx context.Context, title, uploadID string, chunks []Chunk) (int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(title) == "" {
		return 0, &apperr.ValidationError{Field: "title", Message: "cannot be empty"}
	}
	if len(chunks) == 0 {
		return 0, apperr.Chunking("ingest "+title, fmt.Errorf("no chunks to ingest"))
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors := make([][]float32, 0, len(chunks))
	for start := 0; start < len(texts); start += in.embedBatch {
		end := min(start+in.embedBatch, len(texts))
		batch, err := in.embedder.EmbedTexts(ctx, texts[start:end])
		if err != nil {
			return 0, apperr.Storage("embed chunks", err)
		}
		if len(batch) != end-start {
			return 0, apperr.Storage("embed chunks", fmt.Errorf("embedding count mismatch: expected %d, got %d", end-start, len(batch)))
		}
		vectors = append(vectors, batch...)
	}

	ingestedAt := formatIngestedAt(in.now())
	prefix := Slug(title)
	points := make([]vectorstore.Point, len(chunks))
	for i, c := range chunks {
		id := prefix + "-" + uuid.NewString()
		points[i] = vectorstore.Point{
			ID:  id,
			Vec: vectors[i],
			Meta: map[string]any{
				MetaTitle:      title,
				MetaChunkID:    id,
				MetaText:       c.Text,
				MetaChunkIndex: c.Index,
				MetaUploadID:   uploadID,
				MetaIngestedAt: ingestedAt,
			},
		}
	}

	written := make([]string, 0, len(points))
	for start := 0; start < len(points); start += in.upsertBatch {
		end := min(start+in.upsertBatch, len(points))
		if err := in.store.Upsert(ctx, in.collection, points[start:end]); err != nil {
			in.rollback(ctx, written)
			return 0, apperr.Storage("upsert chunks", err)
		}
		for _, p := range points[start:end] {
			written = append(written, p.ID)
		}
	}

	stats := ComputeChunkStats(chunks)
	logger.InfoContext(ctx, "ingested manual chunks",
		"title", title,
		"upload_id", uploadID,
		"chunks", len(points),
		"min_runes", stats.Min,
		"max_runes", stats.Max,
		"mean_runes", stats.Mean,
	)
	return len(points), nil
}

func (in *Ingestor) rollback(ctx context.Context, ids []string) {
	if len(ids) == 0 {
		return
	}
	logger := contextutil.LoggerFromContext(ctx)

	// The caller's context may already be done; the cleanup still has to run.
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	if err := in.store.Delete(cleanupCtx, in.collection, ids); err != nil {
		logger.ErrorContext(ctx, "failed to remove partially ingested chunks", "count", len(ids), "error", err)
		return
	}
	logger.WarnContext(ctx, "removed partially ingested chunks", "count", len(ids))
}

// Slug lowercases title and replaces runs of anything but letters and digits
// with a single hyphen.
func Slug(title string) string {
	var sb strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			hyphen = false
			continue
		}
		if !hyphen && sb.Len() > 0 {
			sb.WriteByte('-')
			hyphen = true
		}
	}
	s := strings.TrimSuffix(sb.String(), "-")
	if s == "" {
		return "manual"
	}
	return s
}
