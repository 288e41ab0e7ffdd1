package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_manual_service.go -package=mocks manualrag/internal/service ManualService

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"manualrag/internal/apperr"
	"manualrag/internal/contextutil"
	"manualrag/internal/extract"
	"manualrag/internal/indexer"
	"manualrag/internal/storage"
	"manualrag/internal/vectorstore"
)

// TextExtractor turns uploaded files into one text corpus.
type TextExtractor interface {
	Extract(ctx context.Context, title string, docs []extract.Document) (string, error)
}

// TextSplitter splits a corpus into chunks.
type TextSplitter interface {
	Split(text string) []indexer.Chunk
}

// ChunkIngestor stores chunks under a manual title.
type ChunkIngestor interface {
	Ingest(ctx context.Context, title, uploadID string, chunks []indexer.Chunk) (int, error)
}

// UploadRequest is a batch of files uploaded under one title.
type UploadRequest struct {
	Title string
	Files []extract.Document
}

// UploadResult reports what an upload stored.
type UploadResult struct {
	UploadID  string
	NumChunks int
}

// Manual is a manual's full stored text.
type Manual struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ManualService manages manuals stored in the vector index.
type ManualService interface {
	// Upload extracts, chunks and ingests files under a title.
	Upload(ctx context.Context, req UploadRequest) (UploadResult, error)
	// List returns every manual title, sorted.
	List(ctx context.Context) ([]string, error)
	// Get returns the joined chunk texts of a manual.
	Get(ctx context.Context, title string) (Manual, error)
	// Delete removes every chunk of a manual and returns how many were removed.
	Delete(ctx context.Context, title string) (int, error)
	// Uploads lists recorded uploads, optionally for one title.
	Uploads(ctx context.Context, title string) ([]storage.Upload, error)
	// Ping reports whether the vector index is reachable and the collection exists.
	Ping(ctx context.Context) error
}

type manualService struct {
	extractor  TextExtractor
	splitter   TextSplitter
	ingestor   ChunkIngestor
	store      vectorstore.VectorStore
	collection string
	uploads    storage.UploadStore
}

// NewManualService creates a new ManualService.
func NewManualService(
	extractor TextExtractor,
	splitter TextSplitter,
	ingestor ChunkIngestor,
	store vectorstore.VectorStore,
	collection string,
	uploads storage.UploadStore,
) ManualService {
	return &manualService{
		extractor:  extractor,
		splitter:   splitter,
		ingestor:   ingestor,
		store:      store,
		collection: collection,
		uploads:    uploads,
	}
}

// Upload runs the ingestion pipeline. All vector writes finish before it
// returns, so a successful result means the full chunk set is visible.
func (s *manualService) Upload(ctx context.Context, req UploadRequest) (UploadResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return UploadResult{}, &apperr.ValidationError{Field: "title", Message: "cannot be empty"}
	}

	text, err := s.extractor.Extract(ctx, title, req.Files)
	if err != nil {
		return UploadResult{}, err
	}

	chunks := s.splitter.Split(text)
	if len(chunks) == 0 {
		return UploadResult{}, apperr.Extraction("upload "+title, fmt.Errorf("no text to index"))
	}

	uploadID := uuid.New().String()
	n, err := s.ingestor.Ingest(ctx, title, uploadID, chunks)
	if err != nil {
		logger.ErrorContext(ctx, "failed to ingest manual", "title", title, "error", err)
		return UploadResult{}, err
	}

	names := make([]string, len(req.Files))
	for i, f := range req.Files {
		names[i] = f.Name
	}
	if err := s.uploads.Record(ctx, &storage.Upload{ID: uploadID, Title: title, NumChunks: n, Files: names}); err != nil {
		// The chunks are stored; only the ledger entry is missing.
		logger.WarnContext(ctx, "failed to record upload", "title", title, "upload_id", uploadID, "error", err)
	}

	logger.InfoContext(ctx, "manual uploaded", "title", title, "upload_id", uploadID, "files", len(names), "num_chunks", n)
	return UploadResult{UploadID: uploadID, NumChunks: n}, nil
}

// List returns the distinct titles across all stored chunks.
func (s *manualService) List(ctx context.Context) ([]string, error) {
	records, err := s.store.ScrollFields(ctx, s.collection, nil, []string{indexer.MetaTitle})
	if err != nil {
		return nil, apperr.Storage("list manuals", err)
	}

	seen := make(map[string]struct{})
	titles := []string{}
	for _, r := range records {
		title, _ := r.Meta[indexer.MetaTitle].(string)
		if title == "" {
			continue
		}
		if _, ok := seen[title]; ok {
			continue
		}
		seen[title] = struct{}{}
		titles = append(titles, title)
	}
	sort.Strings(titles)
	return titles, nil
}

// Get joins the manual's chunks in upload then chunk order.
func (s *manualService) Get(ctx context.Context, title string) (Manual, error) {
	if strings.TrimSpace(title) == "" {
		return Manual{}, &apperr.ValidationError{Field: "title", Message: "cannot be empty"}
	}

	records, err := s.store.Scroll(ctx, s.collection, vectorstore.Filters{indexer.MetaTitle: title})
	if err != nil {
		return Manual{}, apperr.Storage("get manual", err)
	}
	if len(records) == 0 {
		return Manual{}, apperr.NotFound("get manual", fmt.Errorf("manual %q has no chunks", title))
	}

	chunks := make([]indexer.StoredChunk, len(records))
	for i, r := range records {
		chunks[i] = indexer.StoredChunkFromMeta(r.PointID, r.Meta)
	}
	sort.SliceStable(chunks, func(i, j int) bool {
		if chunks[i].IngestedAt != chunks[j].IngestedAt {
			return chunks[i].IngestedAt < chunks[j].IngestedAt
		}
		if chunks[i].UploadID != chunks[j].UploadID {
			return chunks[i].UploadID < chunks[j].UploadID
		}
		return chunks[i].Index < chunks[j].Index
	})

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return Manual{Title: title, Content: strings.Join(texts, "\n")}, nil
}

// Delete removes every chunk whose title matches, then the manual's ledger rows.
func (s *manualService) Delete(ctx context.Context, title string) (int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(title) == "" {
		return 0, &apperr.ValidationError{Field: "title", Message: "cannot be empty"}
	}

	filters := vectorstore.Filters{indexer.MetaTitle: title}
	n, err := s.store.Count(ctx, s.collection, filters)
	if err != nil {
		return 0, apperr.Storage("delete manual", err)
	}
	if n == 0 {
		return 0, apperr.NotFound("delete manual", fmt.Errorf("manual %q has no chunks", title))
	}

	if err := s.store.DeleteByFilter(ctx, s.collection, filters); err != nil {
		return 0, apperr.Storage("delete manual", err)
	}
	if _, err := s.uploads.DeleteByTitle(ctx, title); err != nil {
		logger.WarnContext(ctx, "failed to remove upload records", "title", title, "error", err)
	}

	logger.InfoContext(ctx, "manual deleted", "title", title, "chunks", n)
	return n, nil
}

func (s *manualService) Uploads(ctx context.Context, title string) ([]storage.Upload, error) {
	uploads, err := s.uploads.List(ctx, strings.TrimSpace(title))
	if err != nil {
		return nil, apperr.Storage("list uploads", err)
	}
	return uploads, nil
}

func (s *manualService) Ping(ctx context.Context) error {
	ok, err := s.store.CollectionExists(ctx, s.collection)
	if err != nil {
		return apperr.Storage("ping", err)
	}
	if !ok {
		return apperr.Storage("ping", fmt.Errorf("collection %q does not exist", s.collection))
	}
	return nil
}
