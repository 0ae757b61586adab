package debugserver

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newTestServer() *Server {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestServeHTTPRejectsNonWebSocketPaths(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/not-ws", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestBroadcastReachesConnectedClient(t *testing.T) {
	srv := newTestServer()
	ts := httptest.NewServer(srv)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Give ServeHTTP a moment to register the client before broadcasting.
	time.Sleep(20 * time.Millisecond)
	srv.BroadcastProfile("req-1", map[string]int{"decisions": 3})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if !strings.Contains(string(msg), "req-1") {
		t.Errorf("broadcast message = %q, want it to contain the request id", msg)
	}
	if !strings.Contains(string(msg), "profile") {
		t.Errorf("broadcast message = %q, want method \"profile\"", msg)
	}
}
