package studio

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// 개발용 - 모든 origin 허용
		return true
	},
}

// Message - 웹소켓으로 내려가는 메시지
type Message struct {
	Type      string `json:"type"` // state
	SessionID string `json:"sessionId"`
	State     *State `json:"state,omitempty"`
}

// wsClient - 연결된 웹소켓 클라이언트
type wsClient struct {
	conn      *websocket.Conn
	sessionID string
	send      chan []byte
}

// Hub - 세션별 진행 상황 브로드캐스트
type Hub struct {
	mu               sync.RWMutex
	clients          map[string]map[*wsClient]struct{}
	totalConnections int
}

// NewHub - Hub 생성
func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*wsClient]struct{})}
}

func (h *Hub) add(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.sessionID] == nil {
		h.clients[client.sessionID] = make(map[*wsClient]struct{})
	}
	h.clients[client.sessionID][client] = struct{}{}
	h.totalConnections++

	log.Printf("👤 Client joined session %s (Clients: %d, Total Connections: %d)",
		client.sessionID, len(h.clients[client.sessionID]), h.totalConnections)
}

func (h *Hub) remove(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.sessionID]
	if !ok {
		return
	}
	if _, exists := clients[client]; exists {
		close(client.send)
		delete(clients, client)
		log.Printf("👋 Client left session %s (Remaining: %d)", client.sessionID, len(clients))
	}
	if len(clients) == 0 {
		delete(h.clients, client.sessionID)
	}
}

// Broadcast - 세션의 모든 클라이언트에 상태 전송 (느린 클라이언트는 끊음)
func (h *Hub) Broadcast(state State) {
	messageBytes, err := json.Marshal(Message{Type: "state", SessionID: state.SessionID, State: &state})
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients[state.SessionID] {
		select {
		case client.send <- messageBytes:
		default:
			close(client.send)
			delete(h.clients[state.SessionID], client)
			log.Printf("⚠️ Dropped slow client in session %s", state.SessionID)
		}
	}
}

// ClientCount - 세션에 연결된 클라이언트 수
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

// Stats - 전체 연결 수
func (h *Hub) Stats() (current, total int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, clients := range h.clients {
		current += len(clients)
	}
	return current, h.totalConnections
}

// Serve - 연결 업그레이드 후 초기 상태 전송
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, initial State) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &wsClient{
		conn:      conn,
		sessionID: initial.SessionID,
		send:      make(chan []byte, 256),
	}
	h.add(client)

	if messageBytes, err := json.Marshal(Message{Type: "state", SessionID: initial.SessionID, State: &initial}); err == nil {
		client.send <- messageBytes
	}

	go client.writePump()
	go client.readPump(h)
}

// readPump - 클라이언트 메시지는 무시하고 종료만 감지
func (c *wsClient) readPump(h *Hub) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
	}
}

// writePump - send 채널을 웹소켓으로 전송
func (c *wsClient) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("WebSocket write error: %v", err)
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
