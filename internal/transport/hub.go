package transport

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/emberchat/ember-server/internal/events"
)

// Router receives transport notifications: connects, disconnects and
// decoded inbound envelopes.
type Router interface {
	Connected(connID string)
	Disconnected(connID, reason string)
	HandleEvent(connID string, env events.Envelope)
}

// Hub owns the live websocket clients and their room memberships and
// implements the engine's Emitter. Sends go through per-client buffered
// channels; a full buffer drops the frame rather than blocking a handler
// turn.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	rooms   map[string]map[string]*Client

	router     Router
	sendBuffer int
	upgrader   websocket.Upgrader
	log        zerolog.Logger
}

// NewHub creates a hub. The router is attached afterwards via SetRouter
// because the engine behind it needs the hub as its emitter first.
func NewHub(sendBuffer int, logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		sendBuffer: sendBuffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Participants are anonymous; any origin may connect.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: logger.With().Str("component", "transport").Logger(),
	}
}

// SetRouter attaches the event router. Must be called before ServeWS.
func (h *Hub) SetRouter(r Router) {
	h.router = r
}

// ServeWS upgrades the request and runs the connection until it drops.
func (h *Hub) ServeWS(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{
		ID:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, h.sendBuffer),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()

	h.router.Connected(client.ID)

	go client.writePump()
	client.readPump()
	return nil
}

// ToConnection sends a named event to one connection. Unknown connections
// are ignored.
func (h *Hub) ToConnection(connID, event string, payload any) {
	data, err := encode(event, payload)
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("encode failed")
		return
	}

	h.mu.RLock()
	client := h.clients[connID]
	h.mu.RUnlock()

	if client != nil {
		client.enqueue(data)
	}
}

// ToRoom broadcasts a named event to every member of a room.
func (h *Hub) ToRoom(roomID, event string, payload any) {
	data, err := encode(event, payload)
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("encode failed")
		return
	}

	// Collect members under the lock, send outside it.
	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[roomID]))
	for _, client := range h.rooms[roomID] {
		members = append(members, client)
	}
	h.mu.RUnlock()

	for _, client := range members {
		client.enqueue(data)
	}
}

// Join adds a connection to a room.
func (h *Hub) Join(connID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client := h.clients[connID]
	if client == nil {
		return
	}
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[string]*Client)
	}
	h.rooms[roomID][connID] = client
}

// Leave removes a connection from a room, dropping the room once empty.
func (h *Hub) Leave(connID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.rooms[roomID], connID)
	if len(h.rooms[roomID]) == 0 {
		delete(h.rooms, roomID)
	}
}

// remove forgets a dropped client and sweeps it out of any rooms it was
// still in. The router's own cascade handles the domain-side cleanup.
// The send channel stays open: a broadcast that collected this client
// before removal may still enqueue, and that must be a silent drop.
func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.ID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.ID)
	for roomID, members := range h.rooms {
		delete(members, client.ID)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
	h.mu.Unlock()

	close(client.done)
}

func encode(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(events.Envelope{Event: event, Data: data})
}
