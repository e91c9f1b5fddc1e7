package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// TestNewHub tests hub creation
func TestNewHub(t *testing.T) {
	hub := NewHub()

	assert.NotNil(t, hub)
	assert.NotNil(t, hub.clients)
	assert.NotNil(t, hub.requests)
	assert.NotNil(t, hub.Register)
	assert.NotNil(t, hub.Unregister)
	assert.NotNil(t, hub.Broadcast)
	assert.NotNil(t, hub.handlers)
}

// TestRegisterClient tests client registration
func TestRegisterClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := dialTestConn(t)
	client := NewClient("provider-123", conn, hub, "provider", zap.NewNop())

	hub.Register <- client
	time.Sleep(10 * time.Millisecond)

	// Verify client is registered
	registeredClient, ok := hub.GetClient("provider-123")
	assert.True(t, ok)
	assert.Equal(t, client.ID, registeredClient.ID)
	assert.Equal(t, 1, hub.GetClientCount())
}

// TestRegisterDuplicateClient tests replacing existing client
func TestRegisterDuplicateClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	// Register first client
	conn1 := dialTestConn(t)
	client1 := NewClient("provider-123", conn1, hub, "provider", zap.NewNop())

	hub.Register <- client1
	time.Sleep(10 * time.Millisecond)

	// Register second client with same ID
	conn2 := dialTestConn(t)
	client2 := NewClient("provider-123", conn2, hub, "provider", zap.NewNop())

	hub.Register <- client2
	time.Sleep(10 * time.Millisecond)

	// Verify only one client exists
	assert.Equal(t, 1, hub.GetClientCount())

	registered, ok := hub.GetClient("provider-123")
	assert.True(t, ok)
	assert.Same(t, client2, registered)
}

// TestUnregisterClient tests client unregistration
func TestUnregisterClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := dialTestConn(t)
	client := NewClient("customer-1", conn, hub, "customer", zap.NewNop())

	hub.Register <- client
	time.Sleep(10 * time.Millisecond)

	assert.Equal(t, 1, hub.GetClientCount())

	hub.Unregister <- client
	time.Sleep(10 * time.Millisecond)

	assert.Equal(t, 0, hub.GetClientCount())

	_, ok := hub.GetClient("customer-1")
	assert.False(t, ok)
}

// TestUnregisterClientFromRequest tests dropping subscriptions on unregister
func TestUnregisterClientFromRequest(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := dialTestConn(t)
	client := NewClient("provider-1", conn, hub, "provider", zap.NewNop())

	hub.Register <- client
	time.Sleep(10 * time.Millisecond)

	requestID := "request-789"
	hub.AddClientToRequest(client.ID, requestID)

	assert.Equal(t, 1, hub.GetRequestCount())
	assert.Len(t, hub.GetClientsInRequest(requestID), 1)

	hub.Unregister <- client
	time.Sleep(10 * time.Millisecond)

	// Verify client is removed from the request subscription
	assert.Equal(t, 0, hub.GetRequestCount())
	assert.Len(t, hub.GetClientsInRequest(requestID), 0)
}

// TestSendToUser tests targeted delivery
func TestSendToUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := dialTestConn(t)
	client := NewClient("provider-1", conn, hub, "provider", zap.NewNop())

	hub.Register <- client
	time.Sleep(10 * time.Millisecond)

	delivered := hub.SendToUser("provider-1", &Message{Type: "request:new"})
	assert.True(t, delivered)

	// Unknown user is not an error, just undelivered
	delivered = hub.SendToUser("provider-2", &Message{Type: "request:new"})
	assert.False(t, delivered)
}

// TestRemoveClientFromRequest tests explicit unsubscription
func TestRemoveClientFromRequest(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := dialTestConn(t)
	client := NewClient("provider-1", conn, hub, "provider", zap.NewNop())

	hub.Register <- client
	time.Sleep(10 * time.Millisecond)

	hub.AddClientToRequest(client.ID, "request-1")
	assert.Len(t, hub.GetClientsInRequest("request-1"), 1)

	hub.RemoveClientFromRequest(client.ID, "request-1")
	assert.Len(t, hub.GetClientsInRequest("request-1"), 0)
	assert.Equal(t, 0, hub.GetRequestCount())
}
