package rag

import (
	"context"
	"errors"
	"net/http"

	"manualrag/internal/apperr"
)

// Conversation roles.
const (
	RoleUser   = "user"
	RoleSystem = "system"
)

// Turn is one message in a chat history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Scope restricts retrieval to a manual, an allow-list of chunk identifiers, or both.
type Scope struct {
	Title    string
	ChunkIDs []string
}

// RetrievedChunk is a stored chunk returned by similarity search.
type RetrievedChunk struct {
	ChunkID string
	Title   string
	Text    string
	Index   int
	Score   float32
}

// Query is one question asked against a manual.
type Query struct {
	Manual   string
	Question string
	ChunkIDs []string
	History  []Turn
}

// EnvelopeData carries the generated answer.
type EnvelopeData struct {
	OutputText string `json:"output_text"`
}

// Envelope is the reply sent for every chat turn.
type Envelope struct {
	Status int          `json:"status"`
	Data   EnvelopeData `json:"data"`
	Msg    string       `json:"msg"`
}

// OK wraps a successful answer.
func OK(text string) Envelope {
	return Envelope{Status: http.StatusOK, Data: EnvelopeData{OutputText: text}, Msg: "OK"}
}

// ErrorEnvelope converts a failed turn into a reply the client can act on.
func ErrorEnvelope(err error) Envelope {
	var (
		status int
		msg    string
	)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		status, msg = http.StatusNotFound, "manual not found"
	case errors.Is(err, apperr.ErrInvalidInput):
		status, msg = http.StatusBadRequest, invalidMessage(err)
	case errors.Is(err, context.DeadlineExceeded):
		status, msg = http.StatusGatewayTimeout, "answer generation timed out"
	case errors.Is(err, apperr.ErrGeneration):
		status, msg = http.StatusBadGateway, "answer generation failed"
	default:
		status, msg = http.StatusInternalServerError, "internal error"
	}
	return Envelope{Status: status, Msg: msg}
}

func invalidMessage(err error) string {
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	return "invalid request"
}
