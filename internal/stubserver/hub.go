package stubserver

import (
	"encoding/json"
	"fmt"
	"sync"

	"social-network-client/internal/channel"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Hub tracks the live connections, one per signed-in user.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]*websocket.Conn
	writeLocks  map[string]*sync.Mutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]*websocket.Conn),
		writeLocks:  make(map[string]*sync.Mutex),
	}
}

// Register registers a connection for a user, closing any previous one.
func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.connections[userID]; ok {
		existing.Close()
	}
	h.connections[userID] = conn
	h.writeLocks[userID] = &sync.Mutex{}

	log.Info().Str("user_id", userID).Msg("Connection registered")
}

// Unregister removes a user's connection. The conn argument must be the
// connection being torn down: a handler unwinding after a reconnect must
// not remove the replacement registered in its place.
func (h *Hub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.connections[userID]; ok && current == conn {
		current.Close()
		delete(h.connections, userID)
		delete(h.writeLocks, userID)
		log.Info().Str("user_id", userID).Msg("Connection unregistered")
	}
}

// SendToUser sends a named event to a specific user.
func (h *Hub) SendToUser(userID, event string, payload any) error {
	h.mu.RLock()
	conn, ok := h.connections[userID]
	lock := h.writeLocks[userID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("user %s is not connected", userID)
	}

	data, err := encodeEvent(event, payload)
	if err != nil {
		return err
	}

	lock.Lock()
	err = conn.WriteMessage(websocket.TextMessage, data)
	lock.Unlock()
	if err != nil {
		h.Unregister(userID, conn)
		return fmt.Errorf("failed to send event: %w", err)
	}
	return nil
}

// Broadcast sends a named event to every connected user.
func (h *Hub) Broadcast(event string, payload any) {
	h.mu.RLock()
	userIDs := make([]string, 0, len(h.connections))
	for id := range h.connections {
		userIDs = append(userIDs, id)
	}
	h.mu.RUnlock()

	for _, id := range userIDs {
		if err := h.SendToUser(id, event, payload); err != nil {
			log.Debug().Err(err).Str("user_id", id).Str("event", event).Msg("Broadcast delivery failed")
		}
	}
}

func encodeEvent(event string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	data, err := json.Marshal(channel.Envelope{Event: event, Payload: body})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return data, nil
}
