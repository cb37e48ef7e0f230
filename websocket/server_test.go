package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) (*StatusServer, *websocket.Conn) {
	t.Helper()
	s := NewStatusServer(0)
	go s.hub.Run()
	t.Cleanup(func() { s.hub.Close() })

	ts := httptest.NewServer(http.HandlerFunc(s.handleWebSocket))
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	// Give the hub a beat to register the client.
	time.Sleep(20 * time.Millisecond)
	return s, conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		t.Fatalf("unmarshal %q: %v", raw, err)
	}
	return ev
}

func TestBroadcastEventReachesClient(t *testing.T) {
	s, conn := newTestServer(t)

	s.BroadcastEvent(Event{Kind: "progress", Message: "🚀 open_app", Percent: 50})

	ev := readEvent(t, conn)
	if ev.Kind != "progress" || ev.Message != "🚀 open_app" || ev.Percent != 50 {
		t.Fatalf("event = %+v", ev)
	}
	if ev.Timestamp.IsZero() {
		t.Fatal("timestamp not stamped")
	}
}

func TestSinkMapsEvents(t *testing.T) {
	s, conn := newTestServer(t)
	sink := Sink{Server: s}

	sink.Update("👆 click", 100)
	if ev := readEvent(t, conn); ev.Kind != "progress" || ev.Percent != 100 {
		t.Fatalf("update event = %+v", ev)
	}

	sink.ShowError("click failed")
	if ev := readEvent(t, conn); ev.Kind != "error" || ev.Message != "click failed" {
		t.Fatalf("error event = %+v", ev)
	}

	sink.ShowSuccess("Completed 3 actions")
	if ev := readEvent(t, conn); ev.Kind != "success" {
		t.Fatalf("success event = %+v", ev)
	}
}

func TestHubShutdownUnblocksClients(t *testing.T) {
	h := NewHub()
	go h.Run()
	h.Close()

	c := NewClient(h, nil)
	done := make(chan struct{})
	go func() {
		h.add(c)
		h.remove(c)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("register or unregister blocked after hub shutdown")
	}
}

func TestBroadcastToMultipleClients(t *testing.T) {
	s, conn1 := newTestServer(t)

	ts := httptest.NewServer(http.HandlerFunc(s.handleWebSocket))
	defer ts.Close()
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn2, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial second client: %v", err)
	}
	defer conn2.Close()
	time.Sleep(20 * time.Millisecond)

	s.BroadcastEvent(Event{Kind: "success", Message: "done"})

	for _, conn := range []*websocket.Conn{conn1, conn2} {
		if ev := readEvent(t, conn); ev.Message != "done" {
			t.Fatalf("event = %+v", ev)
		}
	}
}
