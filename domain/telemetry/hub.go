package telemetry

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"

	customlog "github.com/open-teleop/rover/pkg/log"
	"github.com/open-teleop/rover/pkg/protocol"
)

const (
	hubWriteWait  = 5 * time.Second
	hubPongWait   = 60 * time.Second
	hubPingPeriod = (hubPongWait * 9) / 10
	hubSendBuffer = 16
)

// Hub streams readings to websocket clients. Each client gets a buffered
// queue drained by its own writer; a client that falls behind is dropped.
type Hub struct {
	robotID string
	logger  customlog.Logger

	mu      sync.RWMutex
	clients map[*hubClient]struct{}
	closed  bool
}

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates an empty hub.
func NewHub(robotID string, logger customlog.Logger) *Hub {
	return &Hub{
		robotID: robotID,
		logger:  logger.WithField("sink", "websocket"),
		clients: make(map[*hubClient]struct{}),
	}
}

func (h *Hub) Name() string {
	return "websocket"
}

// Publish queues the reading for every connected client.
func (h *Hub) Publish(at time.Time, reading protocol.TelemetryReading) error {
	data, err := json.Marshal(Envelope{RobotID: h.robotID, Timestamp: at, TelemetryReading: reading})
	if err != nil {
		return fmt.Errorf("failed to encode reading: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			delete(h.clients, c)
			close(c.send)
			h.logger.Warnf("Dropped slow websocket client %s", c.conn.RemoteAddr())
		}
	}
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Handler serves one websocket connection until it closes.
func (h *Hub) Handler(conn *websocket.Conn) {
	c := &hubClient{conn: conn, send: make(chan []byte, hubSendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		return
	}
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()
	h.logger.Infof("Telemetry websocket connected: %s (%d total)", conn.RemoteAddr(), count)

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writePump(c)
	}()
	h.readPump(c)

	h.remove(c)
	<-done
	h.logger.Infof("Telemetry websocket disconnected: %s", conn.RemoteAddr())
}

// readPump only watches for disconnects and pongs.
func (h *Hub) readPump(c *hubClient) {
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(hubPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(hubPongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump is the only writer on the connection.
func (h *Hub) writePump(c *hubClient) {
	ticker := time.NewTicker(hubPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(hubWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(hubWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) remove(c *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	return nil
}
