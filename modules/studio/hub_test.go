package studio

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	return msg
}

// TestHubServeAndBroadcast - 접속 시 초기 상태, 이후 같은 세션 브로드캐스트 수신
func TestHubServeAndBroadcast(t *testing.T) {
	hub := NewHub()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(w, r, State{SessionID: "s1", Step: StepUpload})
	}))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	initial := readMessage(t, conn)
	if initial.Type != "state" || initial.SessionID != "s1" || initial.State == nil || initial.State.Step != StepUpload {
		t.Fatalf("initial message = %+v", initial)
	}
	if got := hub.ClientCount("s1"); got != 1 {
		t.Fatalf("ClientCount() = %d, want 1", got)
	}

	hub.Broadcast(State{SessionID: "other", Step: StepResult})
	hub.Broadcast(State{SessionID: "s1", Step: StepScript})

	msg := readMessage(t, conn)
	if msg.SessionID != "s1" || msg.State.Step != StepScript {
		t.Fatalf("broadcast message = %+v", msg)
	}

	if current, total := hub.Stats(); current != 1 || total != 1 {
		t.Fatalf("Stats() = %d, %d, want 1, 1", current, total)
	}
}
