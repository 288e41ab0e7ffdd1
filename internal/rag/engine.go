package rag

import (
	"context"

	"manualrag/internal/contextutil"
)

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_answerer.go -package=mocks manualrag/internal/rag Answerer

// Answerer answers a question about a manual.
type Answerer interface {
	Answer(ctx context.Context, q Query) (Envelope, error)
}

// Engine runs retrieval followed by answer composition.
type Engine struct {
	retriever *Retriever
	composer  *Composer
}

// NewEngine creates an Engine.
func NewEngine(retriever *Retriever, composer *Composer) *Engine {
	return &Engine{retriever: retriever, composer: composer}
}

// Answer retrieves context for q and generates an answer from it.
func (e *Engine) Answer(ctx context.Context, q Query) (Envelope, error) {
	logger := contextutil.LoggerFromContext(ctx)

	chunks, err := e.retriever.Retrieve(ctx, q.Question, Scope{Title: q.Manual, ChunkIDs: q.ChunkIDs})
	if err != nil {
		logger.WarnContext(ctx, "retrieval failed", "manual", q.Manual, "error", err)
		return Envelope{}, err
	}

	env, err := e.composer.Compose(ctx, chunks, q.Question, q.History)
	if err != nil {
		logger.ErrorContext(ctx, "answer composition failed", "manual", q.Manual, "error", err)
		return Envelope{}, err
	}
	return env, nil
}
