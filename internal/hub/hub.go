// Package hub fans realtime updates out to an owner's open websocket
// connections.
package hub

import (
	"encoding/json"
	"sync"
)

type Writer interface {
	Write(message []byte) error
	Close() error
}

type Connection struct {
	OwnerID string
	Writer  Writer
}

// Update is the envelope pushed to clients after a record changes.
type Update struct {
	Type  string `json:"type"`
	Event string `json:"event"`
	Body  any    `json:"body"`
}

const (
	EventInstanceUpdated     = "instance-updated"
	EventInstanceRemoved     = "instance-removed"
	EventConversationCreated = "conversation-created"
	EventConversationDeleted = "conversation-deleted"
	EventNewMessage          = "new-message"
	EventCampaignUpdated     = "campaign-updated"
	EventCampaignDeleted     = "campaign-deleted"
)

type Hub struct {
	mu          sync.RWMutex
	connections map[string]map[*Connection]struct{}
}

func New() *Hub {
	return &Hub{connections: make(map[string]map[*Connection]struct{})}
}

func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.connections[conn.OwnerID] == nil {
		h.connections[conn.OwnerID] = make(map[*Connection]struct{})
	}
	h.connections[conn.OwnerID][conn] = struct{}{}
}

func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.connections[conn.OwnerID]
	if set == nil {
		return
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(h.connections, conn.OwnerID)
	}
}

// Count reports how many connections the owner has open.
func (h *Hub) Count(ownerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[ownerID])
}

func (h *Hub) Broadcast(ownerID string, message []byte) {
	h.mu.RLock()
	set := h.connections[ownerID]
	conns := make([]*Connection, 0, len(set))
	for c := range set {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	var failed []*Connection
	for _, c := range conns {
		if err := c.Writer.Write(message); err != nil {
			failed = append(failed, c)
		}
	}
	for _, c := range failed {
		_ = c.Writer.Close()
		h.Unregister(c)
	}
}

// Publish sends an update envelope for event to every connection of the
// owner. A nil Hub drops the update.
func (h *Hub) Publish(ownerID, event string, body any) error {
	if h == nil {
		return nil
	}
	payload, err := json.Marshal(Update{Type: "update", Event: event, Body: body})
	if err != nil {
		return err
	}
	h.Broadcast(ownerID, payload)
	return nil
}

// CloseAll closes and forgets every connection.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	all := h.connections
	h.connections = make(map[string]map[*Connection]struct{})
	h.mu.Unlock()

	for _, set := range all {
		for c := range set {
			_ = c.Writer.Close()
		}
	}
}
