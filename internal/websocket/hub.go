package websocket

import (
	"context"
	"sync"
)

// Views a socket can watch. A client is attached to exactly one view for its
// whole lifetime.
const (
	ViewAdmin       = "view:admin"
	ViewResults     = "view:results"
	ViewParticipant = "view:participant"
)

// membership is a register or unregister request. Both travel on the same
// channel so a fast disconnect can never be applied before its connect.
type membership struct {
	client *Client
	join   bool
}

// Hub manages WebSocket client connections grouped by view
type Hub struct {
	mu sync.RWMutex

	// clients maps connection ID to client
	clients map[string]*Client

	// views maps view name to the set of clients watching it
	views map[string]map[*Client]struct{}

	membership chan membership

	// done is closed once Run has returned; membership requests after that
	// are answered locally instead of queued.
	done     chan struct{}
	stopOnce sync.Once
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		views:      make(map[string]map[*Client]struct{}),
		membership: make(chan membership, 512),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case m := <-h.membership:
			if m.join {
				h.addClient(m.client)
			} else {
				h.removeClient(m.client)
			}
		}
	}
}

// Register queues client for its view. Once the hub has stopped the client
// is released immediately so its write loop can exit.
func (h *Hub) Register(client *Client) {
	select {
	case <-h.done:
		h.release(client)
		return
	default:
	}
	select {
	case h.membership <- membership{client: client, join: true}:
	case <-h.done:
		h.release(client)
	}
}

// Unregister never blocks after the hub has stopped; shutdown already
// released every client.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.membership <- membership{client: client}:
	case <-h.done:
	}
}

// Broadcast sends a message to every client watching view
func (h *Hub) Broadcast(view string, payload []byte) {
	h.mu.RLock()
	for c := range h.views[view] {
		c.SendMessage(payload)
	}
	h.mu.RUnlock()
}

// BroadcastToClient sends a message to every connection of one participant
// identity on view. A participant may have several tabs open.
func (h *Hub) BroadcastToClient(view, clientID string, payload []byte) {
	h.mu.RLock()
	for c := range h.views[view] {
		if c.ClientID == clientID {
			c.SendMessage(payload)
		}
	}
	h.mu.RUnlock()
}

// Deliver sends payload to a single connection unless the hub already
// dropped it.
func (h *Hub) Deliver(client *Client, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if client.detached {
		return
	}
	client.SendMessage(payload)
}

// ClientIDs returns the distinct participant identities watching view.
func (h *Hub) ClientIDs(view string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[string]struct{})
	ids := make([]string, 0, len(h.views[view]))
	for c := range h.views[view] {
		if c.ClientID == "" {
			continue
		}
		if _, ok := seen[c.ClientID]; ok {
			continue
		}
		seen[c.ClientID] = struct{}{}
		ids = append(ids, c.ClientID)
	}
	return ids
}

func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) GetViewerCount(view string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.views[view])
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client
	if _, ok := h.views[client.View]; !ok {
		h.views[client.View] = make(map[*Client]struct{})
	}
	h.views[client.View][client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.ID] != client {
		return
	}
	h.detach(client)
}

func (h *Hub) shutdown() {
	h.stopOnce.Do(func() { close(h.done) })

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.clients {
		h.detach(c)
	}
	// Joins queued before done was closed will never be applied.
	for {
		select {
		case m := <-h.membership:
			if m.join {
				h.releaseLocked(m.client)
			}
		default:
			return
		}
	}
}

// detach must be called with h.mu held.
func (h *Hub) detach(client *Client) {
	if viewers, ok := h.views[client.View]; ok {
		delete(viewers, client)
		if len(viewers) == 0 {
			delete(h.views, client.View)
		}
	}
	delete(h.clients, client.ID)
	h.releaseLocked(client)
}

func (h *Hub) release(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.releaseLocked(client)
}

// releaseLocked closes the send channel once. Must be called with h.mu held.
func (h *Hub) releaseLocked(client *Client) {
	if client.detached {
		return
	}
	client.detached = true
	close(client.Send)
}
