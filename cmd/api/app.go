package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"manualrag/internal/config"
	"manualrag/internal/extract"
	"manualrag/internal/indexer"
	"manualrag/internal/llm"
	"manualrag/internal/rag"
	"manualrag/internal/service"
	"manualrag/internal/storage"
	"manualrag/internal/vectorstore"
)

// app is the wired dependency graph shared by serve and ingest.
type app struct {
	db       *sql.DB
	store    vectorstore.VectorStore
	embedder llm.Embedder
	llm      *llm.Client
	chunker  *indexer.Chunker

	manuals   service.ManualService
	documents service.DocumentService
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	extractOpts := []extract.Option{extract.WithConcurrency(cfg.ExtractConcurrency)}
	if cfg.PDFEnabled {
		if err := extract.SetLicenseKey(cfg.UnidocLicenseKey); err != nil {
			return nil, err
		}
	} else {
		extractOpts = append(extractOpts, extract.WithoutParser(".pdf"))
		slog.Warn("PDF extraction disabled; uploads accept Markdown and text only")
	}

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := storage.Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	store, err := openVectorStore(cfg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := store.EnsureCollection(ctx, cfg.VectorCollection, cfg.VectorSize); err != nil {
		_ = store.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to ensure collection %s: %w", cfg.VectorCollection, err)
	}
	slog.Info("Vector collection ready", "backend", cfg.VectorBackend, "collection", cfg.VectorCollection, "vector_size", cfg.VectorSize)

	chunker, err := indexer.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		_ = store.Close()
		_ = db.Close()
		return nil, err
	}

	embeddings := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.VectorSize)
	embedder := llm.NewCachedEmbedder(embeddings, cfg.EmbeddingCacheTTL)

	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName,
		llm.WithTemperature(cfg.LLMTemperature),
		llm.WithRateLimit(cfg.LLMRateLimit),
	)

	a := &app{
		db:       db,
		store:    store,
		embedder: embedder,
		llm:      llmClient,
		chunker:  chunker,
	}
	a.manuals = service.NewManualService(
		extract.New(extractOpts...),
		chunker,
		indexer.NewIngestor(embeddings, store, cfg.VectorCollection),
		store,
		cfg.VectorCollection,
		storage.NewUploadRepo(db),
	)
	a.documents = service.NewDocumentService(storage.NewDocumentRepo(db))
	return a, nil
}

// answerer builds the retrieval and generation stack used by chat sessions.
func (a *app) answerer(cfg *config.Config) rag.Answerer {
	retriever := rag.NewRetriever(a.embedder, a.store, cfg.VectorCollection, cfg.RetrievalK)
	composer := rag.NewComposer(a.llm, rag.WithHistoryLimit(cfg.HistoryMaxTurns))
	return rag.NewEngine(retriever, composer)
}

func (a *app) Close() error {
	return errors.Join(a.store.Close(), a.db.Close())
}

func openVectorStore(cfg *config.Config) (vectorstore.VectorStore, error) {
	switch cfg.VectorBackend {
	case config.BackendQdrant:
		s, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
		}
		return s, nil
	case config.BackendChroma:
		s, err := vectorstore.NewChromaStore(cfg.ChromaURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create Chroma client: %w", err)
		}
		return s, nil
	case config.BackendMemory:
		slog.Warn("Using in-memory vector store; manuals are lost on restart")
		return vectorstore.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown vector backend %q", cfg.VectorBackend)
}
