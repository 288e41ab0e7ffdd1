package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"manualrag/internal/contextutil"
	"manualrag/internal/rag"
)

// Manager creates one Session per WebSocket connection and tracks the live ones.
type Manager struct {
	answerer rag.Answerer
	timeout  time.Duration

	mu    sync.RWMutex
	conns map[string]*conn
}

// NewManager creates a Manager whose sessions answer through answerer, with
// each turn bounded by turnTimeout.
func NewManager(answerer rag.Answerer, turnTimeout time.Duration) *Manager {
	return &Manager{
		answerer: answerer,
		timeout:  turnTimeout,
		conns:    make(map[string]*conn),
	}
}

// Serve runs a session over ws until the connection ends. It takes ownership of ws.
func (m *Manager) Serve(ctx context.Context, ws *websocket.Conn) {
	id := uuid.New().String()
	logger := contextutil.LoggerFromContext(ctx).With("session_id", id)

	s := New(id, m.answerer, m.timeout, logger)
	c := newConn(s, ws, logger)

	m.mu.Lock()
	m.conns[id] = c
	m.mu.Unlock()
	logger.InfoContext(ctx, "session opened", "remote_addr", ws.RemoteAddr().String())

	defer func() {
		m.mu.Lock()
		delete(m.conns, id)
		m.mu.Unlock()
		turns := len(s.History())
		s.Close()
		logger.InfoContext(ctx, "session closed", "turns", turns)
	}()

	c.run(ctx)
}

// Active returns the number of open sessions.
func (m *Manager) Active() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conns)
}

// Shutdown closes every open connection.
func (m *Manager) Shutdown() {
	m.mu.RLock()
	conns := make([]*conn, 0, len(m.conns))
	for _, c := range m.conns {
		conns = append(conns, c)
	}
	m.mu.RUnlock()

	for _, c := range conns {
		c.shutdown()
	}
}
