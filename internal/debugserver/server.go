// Package debugserver is an optional HTTP+WebSocket front end that
// streams ProfileResult/AmbiguityEvent traces for a running request,
// grounded on the teacher's web/server.go editor-frontend pattern
// (spec.md §0 "Debug transport") — here broadcasting engine telemetry
// to a browser-based grammar playground instead of editor buffers.
package debugserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Server streams JSON-RPC-shaped notifications (no inbound commands
// are accepted; this is a one-way telemetry tap).
type Server struct {
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients []*wsClient
}

type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// New builds a Server that logs to log.
func New(log *slog.Logger) *Server {
	return &Server{
		log: log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/ws" {
		http.NotFound(w, r)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	client := &wsClient{conn: conn}
	s.mu.Lock()
	s.clients = append(s.clients, client)
	s.mu.Unlock()

	defer func() {
		conn.Close()
		s.mu.Lock()
		for i, c := range s.clients {
			if c == client {
				s.clients = append(s.clients[:i], s.clients[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
	}()

	// The client never sends meaningful frames; just block on reads so
	// a closed connection (read error) is detected and the client is
	// pruned from the broadcast list.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// notification is the shape broadcast to every connected client.
type notification struct {
	Method string `json:"method"`
	Params any    `json:"params"`
}

// BroadcastProfile streams one ProfileResult to every connected client.
func (s *Server) BroadcastProfile(requestID string, profile any) {
	s.broadcast("profile", map[string]any{"requestId": requestID, "report": profile})
}

// BroadcastAmbiguity streams one AmbiguityEvent to every connected client.
func (s *Server) BroadcastAmbiguity(requestID string, event any) {
	s.broadcast("ambiguity", map[string]any{"requestId": requestID, "event": event})
}

func (s *Server) broadcast(method string, params any) {
	msg, err := json.Marshal(notification{Method: method, Params: params})
	if err != nil {
		s.log.Error("marshal debug notification", "error", err)
		return
	}

	s.mu.Lock()
	clients := append([]*wsClient(nil), s.clients...)
	s.mu.Unlock()

	for _, c := range clients {
		c.mu.Lock()
		_ = c.conn.WriteMessage(websocket.TextMessage, msg)
		c.mu.Unlock()
	}
}
