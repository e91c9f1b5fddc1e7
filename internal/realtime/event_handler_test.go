package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasnaanagy/salik/pkg/eventbus"
	ws "github.com/hasnaanagy/salik/pkg/websocket"
)

// recordingSender captures messages per user; users absent from online are
// treated as disconnected.
type recordingSender struct {
	mu     sync.Mutex
	online map[string]bool
	sent   map[string][]*ws.Message
}

func newRecordingSender(online ...string) *recordingSender {
	s := &recordingSender{
		online: make(map[string]bool),
		sent:   make(map[string][]*ws.Message),
	}
	for _, id := range online {
		s.online[id] = true
	}
	return s
}

func (s *recordingSender) SendToUser(userID string, message *ws.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.online[userID] {
		return false
	}
	s.sent[userID] = append(s.sent[userID], message)
	return true
}

func busEvent(t *testing.T, subject string, data interface{}) *eventbus.Event {
	t.Helper()
	payload, err := json.Marshal(data)
	require.NoError(t, err)
	return &eventbus.Event{
		ID:        uuid.NewString(),
		Type:      subject,
		Data:      payload,
		CreatedAt: time.Now(),
	}
}

func TestRequestCreated_FansOutToNotifiedProviders(t *testing.T) {
	provider1 := uuid.New()
	provider2 := uuid.New()
	offline := uuid.New()

	sender := newRecordingSender(provider1.String(), provider2.String())
	h := NewEventHandler(sender)

	event := busEvent(t, eventbus.SubjectRequestCreated, eventbus.RequestCreatedData{
		RequestID:          uuid.New(),
		CustomerID:         uuid.New(),
		ServiceType:        "fuel",
		ProblemDescription: "flat tire",
		NotifiedProviders:  []uuid.UUID{provider1, provider2, offline},
	})

	err := h.HandleRequestEvent(context.Background(), event)

	require.NoError(t, err)
	assert.Len(t, sender.sent[provider1.String()], 1)
	assert.Len(t, sender.sent[provider2.String()], 1)
	assert.Empty(t, sender.sent[offline.String()])
	assert.Equal(t, "request.created", sender.sent[provider1.String()][0].Type)
}

func TestRequestAccepted_GoesToCustomer(t *testing.T) {
	customer := uuid.New()
	provider := uuid.New()

	sender := newRecordingSender(customer.String())
	h := NewEventHandler(sender)

	event := busEvent(t, eventbus.SubjectRequestAccepted, eventbus.RequestAcceptedData{
		RequestID:  uuid.New(),
		CustomerID: customer,
		ProviderID: provider,
	})

	err := h.HandleRequestEvent(context.Background(), event)

	require.NoError(t, err)
	require.Len(t, sender.sent[customer.String()], 1)
	assert.Equal(t, "request.accepted", sender.sent[customer.String()][0].Type)
	assert.Empty(t, sender.sent[provider.String()])
}

func TestRequestConfirmed_GoesToChosenProvider(t *testing.T) {
	provider := uuid.New()

	sender := newRecordingSender(provider.String())
	h := NewEventHandler(sender)

	event := busEvent(t, eventbus.SubjectRequestConfirmed, eventbus.RequestConfirmedData{
		RequestID:  uuid.New(),
		CustomerID: uuid.New(),
		ProviderID: provider,
	})

	err := h.HandleRequestEvent(context.Background(), event)

	require.NoError(t, err)
	require.Len(t, sender.sent[provider.String()], 1)
	assert.Equal(t, "request.confirmed", sender.sent[provider.String()][0].Type)
}

func TestUnknownEventType_Ignored(t *testing.T) {
	sender := newRecordingSender()
	h := NewEventHandler(sender)

	event := busEvent(t, "requests.unknown", map[string]string{"k": "v"})

	err := h.HandleRequestEvent(context.Background(), event)

	require.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestMalformedPayload_ReturnsError(t *testing.T) {
	sender := newRecordingSender()
	h := NewEventHandler(sender)

	event := &eventbus.Event{
		ID:        uuid.NewString(),
		Type:      eventbus.SubjectRequestCreated,
		Data:      []byte(`{"notified_providers": "not-an-array"}`),
		CreatedAt: time.Now(),
	}

	err := h.HandleRequestEvent(context.Background(), event)

	assert.Error(t, err)
}
