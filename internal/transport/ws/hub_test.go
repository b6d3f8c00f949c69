package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/san-kum/aquarium/internal/sim"
	"github.com/san-kum/aquarium/internal/todo"
)

func serveHub(t *testing.T, h *Hub) string {
	t.Helper()
	srv := httptest.NewServer(h.Handler())
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(serveHub(t, h), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for h.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return conn
}

func readOutbound(t *testing.T, conn *websocket.Conn) Outbound {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, b, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var out Outbound
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func TestHub_BroadcastsFrames(t *testing.T) {
	h := NewHub(make(chan sim.Command, 1), make(chan sim.Size, 1), nil)
	conn := dial(t, h)

	h.OnFrame(sim.Frame{Tick: 7, Positions: map[string]todo.Position{"1": {X: 10, Y: 20}}})

	out := readOutbound(t, conn)
	if out.Type != "frame" || out.Frame == nil || out.Frame.Tick != 7 {
		t.Fatalf("unexpected message %+v", out)
	}
	if out.Frame.Positions["1"].Y != 20 {
		t.Errorf("positions lost: %+v", out.Frame.Positions)
	}
}

func TestHub_ForwardsCommands(t *testing.T) {
	commands := make(chan sim.Command, 4)
	resizes := make(chan sim.Size, 4)
	h := NewHub(commands, resizes, nil)
	conn := dial(t, h)

	if err := conn.WriteJSON(Inbound{Type: "add", Content: "buy milk", Priority: "high"}); err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteJSON(Inbound{Type: "resize", Width: 640, Height: 480}); err != nil {
		t.Fatal(err)
	}

	select {
	case cmd := <-commands:
		list, err := cmd(nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 1 || list[0].Priority != todo.High {
			t.Errorf("unexpected list %+v", list)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no command received")
	}

	select {
	case size := <-resizes:
		if size != (sim.Size{Width: 640, Height: 480}) {
			t.Errorf("unexpected size %+v", size)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no resize received")
	}
}

func TestHub_RejectsUnknown(t *testing.T) {
	h := NewHub(make(chan sim.Command, 1), make(chan sim.Size, 1), nil)
	conn := dial(t, h)

	if err := conn.WriteJSON(Inbound{Type: "explode"}); err != nil {
		t.Fatal(err)
	}
	out := readOutbound(t, conn)
	if out.Type != "error" || !strings.Contains(out.Error, "explode") {
		t.Errorf("expected error reply, got %+v", out)
	}

	if err := conn.WriteJSON(Inbound{Type: "add", Content: "x", Priority: "urgent"}); err != nil {
		t.Fatal(err)
	}
	if out := readOutbound(t, conn); out.Type != "error" {
		t.Errorf("bad priority should be rejected, got %+v", out)
	}
}

func TestHub_DropsForSlowClients(t *testing.T) {
	h := NewHub(make(chan sim.Command, 1), make(chan sim.Size, 1), nil)
	c := h.join()
	defer h.leave(c)

	for i := 0; i < clientSend+3; i++ {
		h.OnFrame(sim.Frame{Tick: uint64(i)})
	}
	if h.Dropped() != 3 {
		t.Errorf("expected 3 dropped frames, got %d", h.Dropped())
	}
}

func TestHub_RejectsForeignOrigin(t *testing.T) {
	h := NewHub(make(chan sim.Command, 1), make(chan sim.Size, 1), nil)
	url := serveHub(t, h)

	header := http.Header{"Origin": {"http://evil.example"}}
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err == nil {
		conn.Close()
		t.Fatal("cross-origin handshake should be refused")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %v", resp)
	}
	if h.Clients() != 0 {
		t.Errorf("refused client must not register, got %d", h.Clients())
	}

	same := http.Header{"Origin": {"http://" + strings.TrimPrefix(url, "ws://")}}
	conn, _, err = websocket.DefaultDialer.Dial(url, same)
	if err != nil {
		t.Fatalf("same-origin dial: %v", err)
	}
	conn.Close()
}

func TestHub_AllowOrigins(t *testing.T) {
	h := NewHub(make(chan sim.Command, 1), make(chan sim.Size, 1), nil, AllowOrigins("app.example:3000"))
	url := serveHub(t, h)

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://app.example:3000"}})
	if err != nil {
		t.Fatalf("allowed origin dial: %v", err)
	}
	conn.Close()

	if _, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://other.example"}}); err == nil {
		t.Error("origin outside the allow list should be refused")
	}
}
