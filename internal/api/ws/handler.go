package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/analystapp/backend/internal/infrastructure/monitoring"
	"github.com/analystapp/backend/internal/providers/filesystem"
	"github.com/analystapp/backend/internal/providers/terminal"
)

// Sessions is the part of the session manager the surface drives.
type Sessions interface {
	Create(ctx context.Context, workingDir string) (*terminal.Handle, error)
	Write(terminalID string, data []byte) error
	Destroy(terminalID string) error
	Resize(terminalID string, cols, rows int) error
	Attach(s terminal.Surface)
	Detach(s terminal.Surface) bool
}

// Directories lists directories for read-directory.
type Directories interface {
	List(ctx context.Context, dir string, opts filesystem.Options) (*filesystem.Listing, error)
}

// Config tunes every connection
type Config struct {
	SendBuffer      int
	PingInterval    time.Duration
	MaxMessageBytes int64
	// CheckOrigin vets the Origin of upgrade requests. Nil admits only
	// same-origin pages and clients that send no Origin.
	CheckOrigin func(r *http.Request) bool
}

// DefaultConfig returns the stock connection settings
func DefaultConfig() Config {
	return Config{
		SendBuffer:      256,
		PingInterval:    30 * time.Second,
		MaxMessageBytes: 1 << 20,
	}
}

// Handler manages WebSocket connections
type Handler struct {
	sessions    Sessions
	directories Directories
	cfg         Config
	upgrader    websocket.Upgrader
	logger      *zap.Logger
	metrics     *monitoring.Metrics

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

// NewHandler creates a new WebSocket handler
func NewHandler(sessions Sessions, directories Directories, cfg Config, logger *zap.Logger) *Handler {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = DefaultConfig().SendBuffer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     cfg.CheckOrigin,
	}
	return &Handler{
		sessions:    sessions,
		directories: directories,
		cfg:         cfg,
		upgrader:    upgrader,
		logger:      logger,
		clients:     make(map[*client]struct{}),
	}
}

// WithMetrics adds metrics tracking to the handler
func (h *Handler) WithMetrics(metrics *monitoring.Metrics) *Handler {
	h.metrics = metrics
	return h
}

// HandleConnection upgrades the request and serves it until the client
// goes away.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed",
			zap.String("origin", c.GetHeader("Origin")),
			zap.Error(err),
		)
		return
	}

	cl := newClient(conn, h.cfg, h.logger, h.metrics)
	if !h.track(cl) {
		cl.close()
		return
	}
	go cl.writePump()

	h.sessions.Attach(cl)
	h.metrics.IncWSConnections()
	cl.logger.Info("Display surface attached", zap.String("remote", c.Request.RemoteAddr))

	defer func() {
		detached := h.sessions.Detach(cl)
		h.untrack(cl)
		cl.close()
		h.metrics.DecWSConnections()
		cl.logger.Info("Display surface disconnected", zap.Bool("detached", detached))
	}()

	h.readPump(c.Request.Context(), cl)
}

// Close disconnects every client and refuses new ones.
func (h *Handler) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for cl := range h.clients {
		clients = append(clients, cl)
	}
	h.mu.Unlock()

	for _, cl := range clients {
		cl.close()
	}
}

// ClientCount returns the number of open connections
func (h *Handler) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Handler) track(cl *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[cl] = struct{}{}
	return true
}

func (h *Handler) untrack(cl *client) {
	h.mu.Lock()
	delete(h.clients, cl)
	h.mu.Unlock()
}

func (h *Handler) readPump(ctx context.Context, cl *client) {
	if h.cfg.MaxMessageBytes > 0 {
		cl.conn.SetReadLimit(h.cfg.MaxMessageBytes)
	}

	if h.cfg.PingInterval > 0 {
		pongWait := 2 * h.cfg.PingInterval
		cl.conn.SetReadDeadline(time.Now().Add(pongWait))
		cl.conn.SetPongHandler(func(string) error {
			return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
		})
	}

	for {
		_, data, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				cl.logger.Debug("WebSocket read error", zap.Error(err))
			}
			return
		}

		req, err := decodeRequest(data)
		if err != nil {
			h.metrics.RecordWSMessage("in", "invalid")
			cl.reply(MsgError, Frame{Type: MsgError, Message: "invalid message"})
			continue
		}

		h.metrics.RecordWSMessage("in", req.Type)
		h.dispatch(ctx, cl, req)
	}
}

func (h *Handler) dispatch(ctx context.Context, cl *client, req *Request) {
	switch req.Type {
	case MsgCreateTerminal:
		h.handleCreate(ctx, cl, req)
	case MsgDestroyTerminal:
		h.ack(cl, req, h.sessions.Destroy(req.TerminalID))
	case MsgWriteTerminal:
		h.ack(cl, req, h.sessions.Write(req.TerminalID, []byte(req.Data)))
	case MsgResizeTerminal:
		h.ack(cl, req, h.sessions.Resize(req.TerminalID, req.Cols, req.Rows))
	case MsgReadDirectory:
		h.handleReadDirectory(ctx, cl, req)
	case MsgPing:
		cl.reply(MsgPong, Frame{Type: MsgPong})
	default:
		cl.reply(MsgError, Frame{Type: MsgError, Message: "unknown message type: " + req.Type})
	}
}

func (h *Handler) handleCreate(ctx context.Context, cl *client, req *Request) {
	handle, err := h.sessions.Create(ctx, req.Cwd)
	if err != nil {
		cl.reply(req.Type, failure(req, err))
		return
	}

	cl.reply(req.Type, Reply{
		Type:             req.Type,
		RequestID:        req.RequestID,
		Success:          true,
		TerminalID:       handle.TerminalID,
		WorkingDirectory: handle.WorkingDirectory,
	})
}

func (h *Handler) handleReadDirectory(ctx context.Context, cl *client, req *Request) {
	listing, err := h.directories.List(ctx, req.Path, filesystem.Options{Pattern: req.Pattern})
	if err != nil {
		cl.reply(req.Type, failure(req, err))
		return
	}

	cl.reply(req.Type, Reply{
		Type:      req.Type,
		RequestID: req.RequestID,
		Success:   true,
		Items:     listing.Items,
	})
}

func (h *Handler) ack(cl *client, req *Request, err error) {
	if err != nil {
		cl.reply(req.Type, failure(req, err))
		return
	}
	cl.reply(req.Type, Reply{Type: req.Type, RequestID: req.RequestID, Success: true})
}

func failure(req *Request, err error) Reply {
	return Reply{
		Type:      req.Type,
		RequestID: req.RequestID,
		Success:   false,
		Error:     err.Error(),
		Code:      errorCode(err),
	}
}

func errorCode(err error) string {
	if code := terminal.CodeOf(err); code != "" {
		return code
	}
	var ferr *filesystem.Error
	if errors.As(err, &ferr) {
		return ferr.Code
	}
	return ""
}
