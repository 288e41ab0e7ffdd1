package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"manualrag/internal/contextutil"
)

// SessionServer runs a chat session over an upgraded connection.
type SessionServer interface {
	Serve(ctx context.Context, ws *websocket.Conn)
}

// ChatHandler upgrades requests to WebSocket chat sessions.
type ChatHandler struct {
	sessions SessionServer
	upgrader websocket.Upgrader
	baseCtx  context.Context
}

// NewChatHandler creates a new ChatHandler. An empty allowedOrigins accepts any
// origin. Sessions outlive the upgrade request, so they run under baseCtx.
func NewChatHandler(baseCtx context.Context, sessions SessionServer, allowedOrigins []string) *ChatHandler {
	h := &ChatHandler{
		sessions: sessions,
		baseCtx:  baseCtx,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

// ServeHTTP handles GET /ws.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logger.WarnContext(ctx, "websocket upgrade failed", "error", err)
		return
	}

	sessCtx := contextutil.WithLogger(h.baseCtx, logger)
	h.sessions.Serve(sessCtx, ws)
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := NewOriginSet(allowed)
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set.Allows(origin)
	}
}

// OriginSet is an origin allow-list compared by lowercased scheme and host.
// The CORS middleware and the WebSocket upgrader share it.
type OriginSet map[string]struct{}

// NewOriginSet builds an OriginSet; trailing slashes and case are ignored.
func NewOriginSet(origins []string) OriginSet {
	set := make(OriginSet, len(origins))
	for _, o := range origins {
		set[normalizeOrigin(o)] = struct{}{}
	}
	return set
}

// Allows reports whether origin is listed. An empty set allows everything.
func (s OriginSet) Allows(origin string) bool {
	if len(s) == 0 {
		return true
	}
	_, ok := s[normalizeOrigin(origin)]
	return ok
}

func normalizeOrigin(origin string) string {
	origin = strings.ToLower(strings.TrimRight(strings.TrimSpace(origin), "/"))
	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return origin
	}
	return u.Scheme + "://" + u.Host
}
