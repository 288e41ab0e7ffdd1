package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/prompts"

	"manualrag/internal/apperr"
	"manualrag/internal/contextutil"
	"manualrag/internal/llm"
)

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_generator.go -package=mocks manualrag/internal/rag Generator

// Generator produces a completion for a list of chat messages.
type Generator interface {
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

const answerTemplate = `Answer the question as detailed as possible from the provided context, make sure to provide all the details.
Give only answers you are confident in. Use only the material in the context below and cite only that material.
Do not give information without a reference to the original document(s). Never fabricate references. Avoid using LaTeX.

Context:
{{.context}}

Question:
{{.question}}

History:
{{.history}}

Answer:
`

// Composer turns retrieved chunks, prior turns and a question into one
// generation request.
type Composer struct {
	gen        Generator
	prompt     prompts.PromptTemplate
	maxHistory int
}

// ComposerOption customizes a Composer.
type ComposerOption func(*Composer)

// WithHistoryLimit keeps only the most recent n turns in the prompt. Zero keeps all.
func WithHistoryLimit(n int) ComposerOption {
	return func(c *Composer) {
		if n >= 0 {
			c.maxHistory = n
		}
	}
}

// NewComposer creates a Composer backed by gen.
func NewComposer(gen Generator, opts ...ComposerOption) *Composer {
	c := &Composer{
		gen:    gen,
		prompt: prompts.NewPromptTemplate(answerTemplate, []string{"context", "question", "history"}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Prompt renders the full prompt text.
func (c *Composer) Prompt(chunks []RetrievedChunk, question string, history []Turn) (string, error) {
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}

	if c.maxHistory > 0 && len(history) > c.maxHistory {
		history = history[len(history)-c.maxHistory:]
	}
	lines := make([]string, len(history))
	for i, t := range history {
		lines[i] = t.Role + ": " + t.Content
	}

	return c.prompt.Format(map[string]any{
		"context":  strings.Join(texts, "\n"),
		"question": question,
		"history":  strings.Join(lines, "\n"),
	})
}

// Compose calls the generator once and wraps its answer in an OK envelope.
func (c *Composer) Compose(ctx context.Context, chunks []RetrievedChunk, question string, history []Turn) (Envelope, error) {
	logger := contextutil.LoggerFromContext(ctx)

	prompt, err := c.Prompt(chunks, question, history)
	if err != nil {
		return Envelope{}, apperr.Generation("render prompt", err)
	}

	logger.DebugContext(ctx, "sending prompt",
		"chunks", len(chunks),
		"history_turns", len(history),
		"prompt_length", len(prompt),
	)

	answer, err := c.gen.ChatWithMessages(ctx, []llm.Message{{Role: RoleUser, Content: prompt}}, llm.ChatParams{})
	if err != nil {
		return Envelope{}, apperr.Generation("generate answer", err)
	}
	if strings.TrimSpace(answer) == "" {
		return Envelope{}, apperr.Generation("generate answer", fmt.Errorf("empty answer"))
	}

	logger.InfoContext(ctx, "answer generated", "answer_length", len(answer))
	return OK(answer), nil
}
