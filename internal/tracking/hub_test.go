package tracking

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// newTestConn upgrades a loopback connection and returns both ends
func newTestConn(t *testing.T) (server *websocket.Conn, client *websocket.Conn) {
	t.Helper()

	serverCh := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		up := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		serverCh <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	select {
	case server = <-serverCh:
	case <-time.After(2 * time.Second):
		t.Fatal("server side never upgraded")
	}
	return server, client
}

func TestHubSubscribeBroadcast(t *testing.T) {
	hub := NewHub()

	serverConn, clientConn := newTestConn(t)
	c := NewClient(hub, serverConn, 7, 42)
	hub.Subscribe(7, c)
	go c.writePump()

	if got := hub.Subscribers(7); got != 1 {
		t.Fatalf("Subscribers(7) = %d, want 1", got)
	}
	if got := hub.Subscribers(8); got != 0 {
		t.Fatalf("Subscribers(8) = %d, want 0", got)
	}

	hub.Broadcast(7, []byte(`{"type":"location"}`))

	clientConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := clientConn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(message) != `{"type":"location"}` {
		t.Errorf("received %q", message)
	}

	c.Close()
	if got := hub.Subscribers(7); got != 0 {
		t.Errorf("Subscribers(7) = %d after close, want 0", got)
	}
}

func TestHubBroadcastScopedToRoom(t *testing.T) {
	hub := NewHub()

	serverA, clientA := newTestConn(t)
	serverB, clientB := newTestConn(t)
	a := NewClient(hub, serverA, 1, 10)
	b := NewClient(hub, serverB, 2, 11)
	hub.Subscribe(1, a)
	hub.Subscribe(2, b)
	go a.writePump()
	go b.writePump()
	defer a.Close()
	defer b.Close()

	hub.Broadcast(1, []byte("room one"))

	clientA.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := clientA.ReadMessage()
	if err != nil {
		t.Fatalf("room 1 read: %v", err)
	}
	if string(message) != "room one" {
		t.Errorf("room 1 received %q", message)
	}

	// Room 2 sees nothing: its next frame should be a timeout, not data
	clientB.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, message, err := clientB.ReadMessage(); err == nil {
		t.Errorf("room 2 unexpectedly received %q", message)
	}
}

func TestHubUnsubscribeRemovesEmptyRoom(t *testing.T) {
	hub := NewHub()

	serverConn, _ := newTestConn(t)
	c := NewClient(hub, serverConn, 3, 5)
	hub.Subscribe(3, c)
	hub.Unsubscribe(3, c)

	if got := hub.Subscribers(3); got != 0 {
		t.Errorf("Subscribers(3) = %d, want 0", got)
	}
	// Unsubscribing twice is a no-op
	hub.Unsubscribe(3, c)

	// Broadcasting into an empty room must not panic
	hub.Broadcast(3, []byte("nobody home"))
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub()

	serverConn, _ := newTestConn(t)
	c := NewClient(hub, serverConn, 9, 6)
	hub.Subscribe(9, c)
	// No writePump: the send buffer fills and the client counts as slow

	for i := 0; i < sendBuffer; i++ {
		hub.Broadcast(9, []byte("x"))
	}
	if got := hub.Subscribers(9); got != 1 {
		t.Fatalf("Subscribers(9) = %d before overflow, want 1", got)
	}

	// One more overflows the buffer and evicts the client
	hub.Broadcast(9, []byte("x"))

	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers(9) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("slow client never dropped")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
