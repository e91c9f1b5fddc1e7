package websocket

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/hasnaanagy/salik/pkg/logger"
)

// Message is the envelope sent to connected clients
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// MessageHandler processes inbound messages of a given type
type MessageHandler func(client *Client, payload json.RawMessage)

// Hub maintains the set of connected clients and request subscriptions
type Hub struct {
	mu sync.RWMutex

	// clients keyed by user ID; one connection per user, newest wins
	clients map[string]*Client

	// requests maps a request ID to the set of subscribed client IDs
	requests map[string]map[string]bool

	handlers map[string]MessageHandler

	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan *Message
}

// NewHub creates a new hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		requests:   make(map[string]map[string]bool),
		handlers:   make(map[string]MessageHandler),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan *Message, 64),
	}
}

// Run processes register/unregister/broadcast events until the hub is stopped
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)
		case client := <-h.Unregister:
			h.unregisterClient(client)
		case message := <-h.Broadcast:
			h.broadcastAll(message)
		}
	}
}

// OnMessage registers a handler for an inbound message type
func (h *Hub) OnMessage(msgType string, handler MessageHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[msgType] = handler
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Replace any existing connection for the same user
	if existing, ok := h.clients[client.ID]; ok && existing != client {
		existing.closeSend()
	}
	h.clients[client.ID] = client

	logger.Debug("websocket client registered",
		zap.String("client_id", client.ID),
		zap.String("role", client.Role))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.clients[client.ID]; !ok || current != client {
		return
	}
	delete(h.clients, client.ID)
	client.closeSend()

	// Drop request subscriptions held by this client
	for requestID, members := range h.requests {
		delete(members, client.ID)
		if len(members) == 0 {
			delete(h.requests, requestID)
		}
	}
}

func (h *Hub) broadcastAll(message *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		client.trySend(message)
	}
}

// GetClient returns the connected client for a user ID
func (h *Hub) GetClient(clientID string) (*Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	client, ok := h.clients[clientID]
	return client, ok
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GetRequestCount returns the number of requests with at least one subscriber
func (h *Hub) GetRequestCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.requests)
}

// AddClientToRequest subscribes a client to updates for a request
func (h *Hub) AddClientToRequest(clientID, requestID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.requests[requestID]; !ok {
		h.requests[requestID] = make(map[string]bool)
	}
	h.requests[requestID][clientID] = true
}

// RemoveClientFromRequest drops a client's subscription to a request
func (h *Hub) RemoveClientFromRequest(clientID, requestID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.requests[requestID]; ok {
		delete(members, clientID)
		if len(members) == 0 {
			delete(h.requests, requestID)
		}
	}
}

// GetClientsInRequest returns the client IDs subscribed to a request
func (h *Hub) GetClientsInRequest(requestID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	members := h.requests[requestID]
	ids := make([]string, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	return ids
}

// SendToUser delivers a message to a single user's connection.
// Returns false when the user is not connected or their buffer is full.
func (h *Hub) SendToUser(userID string, message *Message) bool {
	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	return client.trySend(message)
}

// BroadcastToRequest delivers a message to every client subscribed to a request
func (h *Hub) BroadcastToRequest(requestID string, message *Message) {
	h.mu.RLock()
	members := h.requests[requestID]
	clients := make([]*Client, 0, len(members))
	for id := range members {
		if client, ok := h.clients[id]; ok {
			clients = append(clients, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range clients {
		client.trySend(message)
	}
}

func (h *Hub) dispatch(client *Client, msgType string, payload json.RawMessage) {
	h.mu.RLock()
	handler, ok := h.handlers[msgType]
	h.mu.RUnlock()
	if !ok {
		logger.Debug("websocket: no handler for message type", zap.String("type", msgType))
		return
	}
	handler(client, payload)
}
