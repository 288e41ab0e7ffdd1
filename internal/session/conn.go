package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"manualrag/internal/contextutil"
	"manualrag/internal/rag"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10
	inboxSize      = 16
	sendSize       = 16
)

// busyReply answers a frame dropped because the inbox is full.
var busyReply = rag.Envelope{Status: http.StatusTooManyRequests, Msg: "too many pending messages"}

// conn pumps frames between a WebSocket and its Session. The read pump only
// queues frames; a single worker handles them in arrival order. When the inbox
// is full the read pump drops the frame and replies busyReply instead of
// blocking, so pongs keep being read during a slow answer.
type conn struct {
	session *Session
	ws      *websocket.Conn
	inbox   chan []byte
	send    chan []byte
	logger  *slog.Logger
}

func newConn(s *Session, ws *websocket.Conn, logger *slog.Logger) *conn {
	return &conn{
		session: s,
		ws:      ws,
		inbox:   make(chan []byte, inboxSize),
		send:    make(chan []byte, sendSize),
		logger:  logger,
	}
}

// run blocks until the client disconnects or ctx is canceled.
func (c *conn) run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	ctx = contextutil.WithLogger(ctx, c.logger)

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		c.work(ctx)
	}()
	go c.writePump()

	c.readPump(ctx)

	cancel()
	close(c.inbox)
	<-workerDone
	close(c.send)
}

func (c *conn) readPump(ctx context.Context) {
	defer func() {
		_ = c.ws.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				c.logger.WarnContext(ctx, "websocket read failed", "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			c.logger.DebugContext(ctx, "ignoring non-text frame", "type", msgType)
			continue
		}
		if ctx.Err() != nil {
			return
		}

		select {
		case c.inbox <- raw:
		default:
			c.logger.WarnContext(ctx, "inbox full, dropping frame", "queued", len(c.inbox), "bytes", len(raw))
			c.reply(busyReply)
		}
	}
}

// reply queues env without blocking; it is dropped if the send buffer is full.
func (c *conn) reply(env rag.Envelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		return
	}
	select {
	case c.send <- payload:
	default:
		c.logger.Warn("send buffer full, dropping reply", "status", env.Status)
	}
}

func (c *conn) work(ctx context.Context) {
	for raw := range c.inbox {
		if ctx.Err() != nil {
			continue
		}
		reply, ok := c.session.Handle(ctx, raw)
		if !ok {
			continue
		}

		payload, err := json.Marshal(reply)
		if err != nil {
			c.logger.ErrorContext(ctx, "failed to encode reply", "error", err)
			continue
		}
		select {
		case c.send <- payload:
		case <-ctx.Done():
		}
	}
}

func (c *conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			// One envelope per frame; clients parse each frame as a single JSON value.
			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.Warn("websocket write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// shutdown asks the client to go away; the read pump then unwinds the connection.
func (c *conn) shutdown() {
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
		time.Now().Add(writeWait))
	_ = c.ws.Close()
}
