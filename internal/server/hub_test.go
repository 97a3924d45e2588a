package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialHub(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("client count = %d, want %d", h.ClientCount(), want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHub_BroadcastReachesClients(t *testing.T) {
	h := NewHub(quietLogger(), nil)
	defer h.Close()

	conn := dialHub(t, h)
	waitForClients(t, h, 1)

	h.Broadcast(Update{Type: "token_deployed", Payload: map[string]string{"mint": "abc"}})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var got Update
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Type != "token_deployed" {
		t.Errorf("type = %q", got.Type)
	}
}

func TestHub_DisconnectUpdatesCount(t *testing.T) {
	counts := make(chan int, 8)
	h := NewHub(quietLogger(), func(n int) { counts <- n })
	defer h.Close()

	conn := dialHub(t, h)
	waitForClients(t, h, 1)
	if n := <-counts; n != 1 {
		t.Errorf("connect count = %d, want 1", n)
	}

	conn.Close()
	waitForClients(t, h, 0)
}
