package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/analystapp/backend/internal/infrastructure/monitoring"
	"github.com/analystapp/backend/internal/providers/terminal"
	"github.com/analystapp/backend/internal/shared/id"
)

const writeWait = 10 * time.Second

// client is one connected display surface. All writes go through send and
// are performed by writePump, the connection's only writer.
type client struct {
	id      id.ConnectionID
	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
	ping    time.Duration
	logger  *zap.Logger
	metrics *monitoring.Metrics

	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, cfg Config, logger *zap.Logger, metrics *monitoring.Metrics) *client {
	connID := id.NewConnectionID()
	return &client{
		id:      connID,
		conn:    conn,
		send:    make(chan []byte, cfg.SendBuffer),
		done:    make(chan struct{}),
		ping:    cfg.PingInterval,
		logger:  logger.With(zap.String("conn_id", connID.String())),
		metrics: metrics,
	}
}

// Notify implements terminal.Surface
func (c *client) Notify(ev terminal.Event) {
	data, err := encodeEvent(ev)
	if err != nil {
		c.logger.Error("Failed to encode event", zap.String("terminal_id", ev.TerminalID), zap.Error(err))
		return
	}
	if c.enqueue(data) {
		c.metrics.RecordWSMessage("out", string(ev.Type))
	}
}

// reply queues a response frame
func (c *client) reply(msgType string, v any) {
	data, err := codec.Marshal(v)
	if err != nil {
		c.logger.Error("Failed to encode reply", zap.String("type", msgType), zap.Error(err))
		return
	}
	if c.enqueue(data) {
		c.metrics.RecordWSMessage("out", msgType)
	}
}

// enqueue never blocks. A client that cannot keep up is disconnected.
func (c *client) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- data:
		return true
	case <-c.done:
		return false
	default:
		c.logger.Warn("WebSocket client too slow, disconnecting")
		c.metrics.IncWSSlowClients()
		c.close()
		return false
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

func (c *client) writePump() {
	var tick <-chan time.Time
	if c.ping > 0 {
		ticker := time.NewTicker(c.ping)
		defer ticker.Stop()
		tick = ticker.C
	}
	defer c.close()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.logger.Debug("WebSocket write failed", zap.Error(err))
				return
			}
		case <-tick:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}
