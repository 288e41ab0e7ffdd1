// Package extract turns uploaded manual files into one plain-text corpus.
package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"manualrag/internal/apperr"
	"manualrag/internal/contextutil"
)

// Document is one uploaded file held in memory.
type Document struct {
	Name string
	Data []byte
}

// Parser turns the bytes of one document into plain text.
type Parser interface {
	Parse(ctx context.Context, data []byte) (string, error)
}

// docSeparator sits between the texts of consecutive documents so the chunker
// sees a paragraph break there.
const docSeparator = "\n\n"

// Extractor dispatches documents to a Parser by file extension.
type Extractor struct {
	parsers     map[string]Parser
	concurrency int
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithParser registers p for the given extension (".pdf", ".md", ...), replacing any default.
func WithParser(ext string, p Parser) Option {
	return func(e *Extractor) { e.parsers[strings.ToLower(ext)] = p }
}

// WithoutParser unregisters ext, so files with that extension are rejected.
func WithoutParser(ext string) Option {
	return func(e *Extractor) { delete(e.parsers, strings.ToLower(ext)) }
}

// WithConcurrency bounds how many documents are parsed at once.
func WithConcurrency(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// New creates an Extractor with PDF, Markdown and plain-text parsers.
func New(opts ...Option) *Extractor {
	md := NewMarkdownParser()
	e := &Extractor{
		parsers: map[string]Parser{
			".pdf":      NewPDFParser(),
			".md":       md,
			".markdown": md,
			".txt":      PlainTextParser{},
		},
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Supports reports whether name has a registered parser.
func (e *Extractor) Supports(name string) bool {
	_, ok := e.parsers[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Extract parses every document and concatenates their text in input order.
// Any failure fails the whole batch with an ErrExtraction error.
func (e *Extractor) Extract(ctx context.Context, title string, docs []Document) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(title) == "" {
		return "", &apperr.ValidationError{Field: "title", Message: "cannot be empty"}
	}
	if len(docs) == 0 {
		return "", &apperr.ValidationError{Field: "files", Message: "at least one file is required"}
	}

	parsers := make([]Parser, len(docs))
	for i, doc := range docs {
		p, ok := e.parsers[strings.ToLower(filepath.Ext(doc.Name))]
		if !ok {
			return "", apperr.Extraction("extract "+doc.Name, fmt.Errorf("unsupported file type %q", filepath.Ext(doc.Name)))
		}
		parsers[i] = p
	}

	texts := make([]string, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, doc := range docs {
		g.Go(func() error {
			text, err := parsers[i].Parse(gctx, doc.Data)
			if err != nil {
				return apperr.Extraction("extract "+doc.Name, err)
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.WarnContext(ctx, "extraction failed", "title", title, "files", len(docs), "error", err)
		return "", err
	}

	corpus := strings.Join(texts, docSeparator)
	if strings.TrimSpace(corpus) == "" {
		return "", apperr.Extraction("extract "+title, fmt.Errorf("no text found in %d file(s)", len(docs)))
	}

	logger.InfoContext(ctx, "extracted manual text", "title", title, "files", len(docs), "chars", len([]rune(corpus)))
	return corpus, nil
}

// PlainTextParser returns the document bytes as text.
type PlainTextParser struct{}

// Parse implements Parser.
func (PlainTextParser) Parse(_ context.Context, data []byte) (string, error) {
	return strings.ToValidUTF8(string(data), ""), nil
}
