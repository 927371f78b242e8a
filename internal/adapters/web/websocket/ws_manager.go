package web

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/oxide-sec/wisentry/internal/core/domain"
	"github.com/oxide-sec/wisentry/internal/core/ports"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSMessage envelopes every value pushed over the socket.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// WSManager fans out every ThreatDetection the analyzer or passive scan
// analyzer publishes to all connected WebSocket clients, satisfying
// ports.ThreatSink. Grounded on the donor's WSManager (same
// Upgrade/Clients-map/broadcastMessage shape), with the graph/WPS/
// vulnerability broadcast methods replaced by a single detection push, and
// the donor's per-connection user/auth tracking dropped: this spec's HTTP/WS
// API is read-only and has no user model (§AMBIENT has no auth concern).
type WSManager struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewWSManager returns a manager with no connected clients.
func NewWSManager() *WSManager {
	return &WSManager{
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// HandleWebSocket upgrades the HTTP request and registers the connection for
// broadcast. The connection is dropped from the client set on read error or
// close, matching the donor's cleanup goroutine.
func (m *WSManager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("websocket upgrade error:", err)
		return
	}

	m.mu.Lock()
	m.clients[conn] = struct{}{}
	m.mu.Unlock()

	go func() {
		defer func() {
			m.mu.Lock()
			delete(m.clients, conn)
			m.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// PublishDetection broadcasts a newly appended ThreatDetection to every
// connected client, satisfying ports.ThreatSink. Called synchronously from
// the analyzer's publish step (§4.4); it never blocks on a slow client past
// its own write deadline.
func (m *WSManager) PublishDetection(d domain.ThreatDetection) {
	m.broadcast(WSMessage{Type: "threat.detected", Payload: d})
}

// PublishStats broadcasts a DefenseStats snapshot, satisfying ports.StatsSink.
func (m *WSManager) PublishStats(s domain.DefenseStats) {
	m.broadcast(WSMessage{Type: "stats", Payload: s})
}

func (m *WSManager) broadcast(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Println("websocket marshal error:", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for conn := range m.clients {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			delete(m.clients, conn)
		}
	}
}

var (
	_ ports.ThreatSink = (*WSManager)(nil)
	_ ports.StatsSink  = (*WSManager)(nil)
)
