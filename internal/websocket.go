package cheers

import (
	"encoding/json"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// Hub tracks connected WebSocket clients.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]bool)}
}

func (h *Hub) AddClient(client *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true
}

func (h *Hub) RemoveClient(client *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, client)
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast sends message as JSON to every client, dropping the ones that
// fail.
func (h *Hub) Broadcast(message any) {
	jsonMessage, err := json.Marshal(message)
	if err != nil {
		log.Error("Error marshaling message", "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		if err := client.WriteMessage(websocket.TextMessage, jsonMessage); err != nil {
			log.Error("Error sending message to client", "err", err, "to", client.RemoteAddr())
			client.Close()
			delete(h.clients, client)
		}
	}
}

// send writes message to one client under the hub lock so it never
// interleaves with a broadcast.
func (h *Hub) send(client *websocket.Conn, message any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return client.WriteJSON(message)
}

type stateMessage struct {
	Event string `json:"event"`
	State View   `json:"state"`
}

type errorMessage struct {
	Event string `json:"event"`
	Error string `json:"error"`
}

// handleMessage runs one client command. Commands are "get_state",
// "tap:<index>", "swipe:<distance>" and "cheers".
func (s *Server) handleMessage(conn *websocket.Conn, msg string) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(msg), ":")
	ctx := s.ctx

	switch cmd {
	case "get_state":
	case "tap":
		index, err := strconv.Atoi(arg)
		if err != nil {
			s.reply(conn, errorMessage{Event: "error", Error: "invalid card index"})
			return
		}
		if _, ok := s.State.Tap(index); !ok {
			s.reply(conn, errorMessage{Event: "error", Error: "card not found"})
			return
		}
	case "swipe":
		distance, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			s.reply(conn, errorMessage{Event: "error", Error: "invalid distance"})
			return
		}
		s.State.Swipe(distance)
	case "cheers":
		s.State.Cheers(ctx)
	default:
		log.Warn("Unknown websocket message", "msg", msg)
		s.reply(conn, errorMessage{Event: "error", Error: "unknown command"})
		return
	}

	s.reply(conn, stateMessage{Event: "state", State: s.State.View(ctx)})
}

func (s *Server) reply(conn *websocket.Conn, message any) {
	if err := s.Hub.send(conn, message); err != nil {
		log.Error("Error replying to client", "err", err)
	}
}
