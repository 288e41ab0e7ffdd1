// Package session holds per-connection chat state and the WebSocket transport around it.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"manualrag/internal/apperr"
	"manualrag/internal/rag"
)

// State is a session's lifecycle stage.
type State int

const (
	// StateConnected is a fresh session with empty history.
	StateConnected State = iota
	// StateActive is a session with at least one completed turn.
	StateActive
	// StateClosed is terminal; history has been discarded.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Message is an inbound chat message.
type Message struct {
	Manual   string   `json:"manual"`
	Role     string   `json:"role"`
	Content  string   `json:"content"`
	ChunkIDs []string `json:"chunk_ids,omitempty"`
}

// ParseMessage decodes raw into a Message. Undecodable input or a message
// without content or scope is ErrMalformedInput.
func ParseMessage(raw []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Message{}, apperr.Malformed("parse message", err)
	}
	if strings.TrimSpace(msg.Content) == "" {
		return Message{}, apperr.Malformed("parse message", errors.New("missing content"))
	}
	if strings.TrimSpace(msg.Manual) == "" && len(msg.ChunkIDs) == 0 {
		return Message{}, apperr.Malformed("parse message", errors.New("missing manual"))
	}
	if msg.Role == "" {
		return Message{}, apperr.Malformed("parse message", errors.New("missing role"))
	}
	return msg, nil
}

// Session is one client's conversation. Turns must be handled one at a time;
// the mutex only guards readers of State and History.
type Session struct {
	ID string

	answerer rag.Answerer
	timeout  time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	state   State
	history []rag.Turn
}

// New creates a Session in StateConnected. A zero timeout disables the per-turn deadline.
func New(id string, answerer rag.Answerer, timeout time.Duration, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		ID:       id,
		answerer: answerer,
		timeout:  timeout,
		logger:   logger,
		state:    StateConnected,
	}
}

// Handle processes one raw inbound message and reports whether reply should be
// sent. Malformed messages and non-user roles produce no reply and leave the
// history untouched. A failed turn is removed from history again and answered
// with an error envelope.
func (s *Session) Handle(ctx context.Context, raw []byte) (reply rag.Envelope, send bool) {
	msg, err := ParseMessage(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "discarding malformed message", "error", err, "bytes", len(raw))
		return rag.Envelope{}, false
	}
	if msg.Role != rag.RoleUser {
		s.logger.DebugContext(ctx, "ignoring non-user message", "role", msg.Role)
		return rag.Envelope{}, false
	}

	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return rag.Envelope{}, false
	}
	prior := make([]rag.Turn, len(s.history))
	copy(prior, s.history)
	s.history = append(s.history, rag.Turn{Role: rag.RoleUser, Content: msg.Content})
	s.mu.Unlock()

	turnCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		turnCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	env, err := s.answerer.Answer(turnCtx, rag.Query{
		Manual:   msg.Manual,
		Question: msg.Content,
		ChunkIDs: msg.ChunkIDs,
		History:  prior,
	})
	if err != nil {
		if errors.Is(turnCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
			err = apperr.Generation("answer turn", fmt.Errorf("%w: %v", context.DeadlineExceeded, err))
		}

		s.mu.Lock()
		s.history = prior
		s.mu.Unlock()

		s.logger.ErrorContext(ctx, "turn failed", "manual", msg.Manual, "duration", time.Since(start), "error", err)
		return rag.ErrorEnvelope(err), true
	}

	s.mu.Lock()
	if s.state != StateClosed {
		s.history = append(s.history, rag.Turn{Role: rag.RoleSystem, Content: env.Data.OutputText})
		s.state = StateActive
	}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "turn answered", "manual", msg.Manual, "duration", time.Since(start), "history_turns", len(prior)+2)
	return env, true
}

// State returns the current lifecycle stage.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// History returns a copy of the conversation so far.
func (s *Session) History() []rag.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]rag.Turn, len(s.history))
	copy(out, s.history)
	return out
}

// Close discards the history and moves the session to StateClosed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateClosed
	s.history = nil
}
