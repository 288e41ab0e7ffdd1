// Package apperr holds the error kinds shared by the ingestion and chat pipeline.
// Call sites classify failures with errors.Is against the sentinel kinds.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrExtraction is returned when an uploaded document cannot be parsed.
	ErrExtraction = errors.New("extraction error")
	// ErrChunking is returned when the chunker is configured with invalid sizes.
	ErrChunking = errors.New("chunking error")
	// ErrStorage is returned when the vector index or database rejects or cannot serve a request.
	ErrStorage = errors.New("storage error")
	// ErrNotFound is returned when a requested manual or record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrGeneration is returned when the text generation service fails or times out.
	ErrGeneration = errors.New("generation error")
	// ErrMalformedInput is returned when a session message cannot be parsed.
	ErrMalformedInput = errors.New("malformed input")
	// ErrInvalidInput is returned when request validation fails.
	ErrInvalidInput = errors.New("invalid input")
)

// Error is a classified failure. Kind is one of the sentinel errors above.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	default:
		return e.Kind.Error()
	}
}

// Is reports whether target is the error's kind.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds a classified error.
func E(kind error, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Extraction wraps err as an ErrExtraction failure.
func Extraction(op string, err error) error { return E(ErrExtraction, op, err) }

// Chunking wraps err as an ErrChunking failure.
func Chunking(op string, err error) error { return E(ErrChunking, op, err) }

// Storage wraps err as an ErrStorage failure.
func Storage(op string, err error) error { return E(ErrStorage, op, err) }

// NotFound reports a missing resource.
func NotFound(op string, err error) error { return E(ErrNotFound, op, err) }

// Generation wraps err as an ErrGeneration failure.
func Generation(op string, err error) error { return E(ErrGeneration, op, err) }

// Malformed wraps err as an ErrMalformedInput failure.
func Malformed(op string, err error) error { return E(ErrMalformedInput, op, err) }

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// Is makes a ValidationError match ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
