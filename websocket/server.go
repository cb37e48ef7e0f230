// Package websocket streams executor progress and status events to connected
// UI clients over a gorilla/websocket broadcast hub.
package websocket

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/voxa-project/voxa-agent/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // local UI clients only
	},
}

// Event is one status line pushed to clients.
type Event struct {
	Kind      string    `json:"kind"` // "progress", "error", "success"
	Message   string    `json:"message"`
	Percent   int       `json:"percent,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// StatusServer accepts websocket connections on /ws and broadcasts executor
// events to all of them.
type StatusServer struct {
	hub    *Hub
	port   int
	server *http.Server
	log    *logger.Logger
	mu     sync.Mutex
}

// NewStatusServer creates a server listening on the given port once started.
func NewStatusServer(port int) *StatusServer {
	return &StatusServer{
		hub:  NewHub(),
		port: port,
		log:  logger.New("websocket"),
	}
}

// Start runs the hub and the HTTP listener on their own goroutines.
func (s *StatusServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	go s.hub.Run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: mux,
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("websocket server error: %v", err)
		}
	}()

	s.log.Info("status server listening on :%d", s.port)
	return nil
}

// Stop closes the listener and disconnects all clients.
func (s *StatusServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hub.Close()
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}

// BroadcastEvent pushes one event to every connected client.
func (s *StatusServer) BroadcastEvent(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return
	}
	s.hub.Broadcast(raw)
}

func (s *StatusServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("failed to upgrade connection: %v", err)
		return
	}

	client := NewClient(s.hub, conn)
	client.hub.add(client)

	go client.writePump()
	go client.readPump()
}

// Sink adapts the server to the executor's progress interface.
type Sink struct {
	Server *StatusServer
}

func (s Sink) Update(message string, percent int) {
	s.Server.BroadcastEvent(Event{Kind: "progress", Message: message, Percent: percent})
}

func (s Sink) ShowError(message string) {
	s.Server.BroadcastEvent(Event{Kind: "error", Message: message})
}

func (s Sink) ShowSuccess(message string) {
	s.Server.BroadcastEvent(Event{Kind: "success", Message: message})
}
