// Package realtime pushes configuration change events to connected
// WebSocket clients so open editing sessions see each other's edits.
package realtime

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/paca/jungsi/backend/internal/contracts"
	"github.com/paca/jungsi/backend/pkg/logger"
)

// Hub fans configuration change events out to every subscriber.
// ⭐ SSOT: 변경 이력 실시간 브로드캐스트는 이 허브에서만
type Hub struct {
	logger *logger.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}

	upgrader websocket.Upgrader
	stopCh   chan struct{}
	stopOnce sync.Once
}

// client is one subscribed WebSocket connection. Events are queued so a
// slow reader cannot block the broadcaster.
type client struct {
	conn *websocket.Conn
	send chan *contracts.ChangeLog
}

const (
	writeWait      = 10 * time.Second
	pingInterval   = 30 * time.Second
	sendBufferSize = 16
)

// NewHub creates a broadcast hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		logger:  log,
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 내부 관리 도구라 오리진 제한 없음
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		stopCh: make(chan struct{}),
	}
}

// ServeWS upgrades the request and registers the connection as a
// subscriber until it disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket 업그레이드 실패")
		return
	}

	c := &client{
		conn: conn,
		send: make(chan *contracts.ChangeLog, sendBufferSize),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.WithField("subscribers", count).Debug("변경 이력 구독 시작")

	go h.writeLoop(c)
	h.readLoop(c)
}

// Broadcast queues an event for every subscriber. Subscribers whose
// queue is full miss the event; they can re-sync via the list endpoint.
func (h *Hub) Broadcast(entry *contracts.ChangeLog) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- entry:
		default:
			h.logger.Warn("구독자 전송 큐가 가득 차서 변경 이벤트를 건너뜀")
		}
	}
}

// Subscribers returns the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop disconnects every subscriber.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopCh)
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.conn.Close()
		delete(h.clients, c)
	}
}

// writeLoop sends queued events and keepalive pings to one client.
func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case entry, ok := <-c.send:
			if !ok {
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(entry); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-h.stopCh:
			return
		}
	}
}

// readLoop drains client frames until the connection drops, then
// unregisters it. 구독자는 메시지를 보내지 않지만 close 프레임 처리를
// 위해 읽기 루프가 필요함
func (h *Hub) readLoop(c *client) {
	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()

		close(c.send)
		c.conn.Close()

		h.logger.Debug("변경 이력 구독 종료")
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
