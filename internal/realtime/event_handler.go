package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/hasnaanagy/salik/pkg/eventbus"
	"github.com/hasnaanagy/salik/pkg/logger"
	ws "github.com/hasnaanagy/salik/pkg/websocket"
)

// Sender pushes a message to one connected user. Satisfied by *websocket.Hub.
type Sender interface {
	SendToUser(userID string, message *ws.Message) bool
}

// EventHandler consumes request lifecycle events from the bus and pushes them
// to connected WebSocket clients. Delivery toward the socket is best effort;
// the outbox gives at-least-once up to this point.
type EventHandler struct {
	hub Sender
}

// NewEventHandler creates an event handler backed by the hub
func NewEventHandler(hub Sender) *EventHandler {
	return &EventHandler{hub: hub}
}

// RegisterSubscriptions subscribes to request lifecycle events on the bus
func (h *EventHandler) RegisterSubscriptions(ctx context.Context, bus *eventbus.Bus) error {
	if err := bus.Subscribe(ctx, "requests.>", "realtime-requests", h.HandleRequestEvent); err != nil {
		return fmt.Errorf("subscribe to request events: %w", err)
	}
	logger.Info("realtime: subscribed to request lifecycle events")
	return nil
}

// HandleRequestEvent routes one bus event to the interested connected users
func (h *EventHandler) HandleRequestEvent(ctx context.Context, event *eventbus.Event) error {
	switch event.Type {
	case eventbus.SubjectRequestCreated:
		return h.onRequestCreated(event)
	case eventbus.SubjectRequestAccepted:
		return h.onRequestAccepted(event)
	case eventbus.SubjectRequestConfirmed:
		return h.onRequestConfirmed(event)
	case eventbus.SubjectRequestCompleted:
		return h.onRequestCompleted(event)
	default:
		logger.Debug("realtime: ignoring unknown event type", zap.String("type", event.Type))
		return nil
	}
}

// onRequestCreated fans the new request out to every notified provider
func (h *EventHandler) onRequestCreated(event *eventbus.Event) error {
	var data eventbus.RequestCreatedData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("unmarshal request created: %w", err)
	}

	message := &ws.Message{Type: "request.created", Payload: data}
	delivered := 0
	for _, providerID := range data.NotifiedProviders {
		if h.hub.SendToUser(providerID.String(), message) {
			delivered++
		}
	}

	logger.Debug("realtime: request fan-out",
		zap.String("request_id", data.RequestID.String()),
		zap.Int("notified", len(data.NotifiedProviders)),
		zap.Int("delivered", delivered))
	return nil
}

// onRequestAccepted tells the customer a provider stepped up
func (h *EventHandler) onRequestAccepted(event *eventbus.Event) error {
	var data eventbus.RequestAcceptedData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("unmarshal request accepted: %w", err)
	}

	h.hub.SendToUser(data.CustomerID.String(), &ws.Message{Type: "request.accepted", Payload: data})
	return nil
}

// onRequestConfirmed tells the chosen provider they were selected
func (h *EventHandler) onRequestConfirmed(event *eventbus.Event) error {
	var data eventbus.RequestConfirmedData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("unmarshal request confirmed: %w", err)
	}

	h.hub.SendToUser(data.ProviderID.String(), &ws.Message{Type: "request.confirmed", Payload: data})
	return nil
}

// onRequestCompleted tells the provider the job is closed out
func (h *EventHandler) onRequestCompleted(event *eventbus.Event) error {
	var data eventbus.RequestCompletedData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("unmarshal request completed: %w", err)
	}

	h.hub.SendToUser(data.ProviderID.String(), &ws.Message{Type: "request.completed", Payload: data})
	return nil
}
