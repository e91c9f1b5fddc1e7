package requests

import (
	"time"

	"github.com/google/uuid"

	"github.com/hasnaanagy/salik/internal/services"
)

// Request statuses. Transitions are forward-only:
// pending -> accepted -> confirmed -> completed.
const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
)

// Transition actions
const (
	ActionAccept   = "accept"
	ActionConfirm  = "confirm"
	ActionComplete = "complete"
)

// Request is a customer's open ask for roadside assistance
type Request struct {
	ID                 uuid.UUID          `json:"id"`
	CustomerID         uuid.UUID          `json:"customer_id"`
	ServiceType        string             `json:"service_type"`
	Location           *services.Location `json:"location"`
	ProblemDescription string             `json:"problem_description"`
	Status             string             `json:"status"`
	NotifiedProviders  []uuid.UUID        `json:"notified_providers"`
	AcceptedProviders  []uuid.UUID        `json:"accepted_providers"`
	ConfirmedProvider  *uuid.UUID         `json:"confirmed_provider,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// HasAccepted reports whether the given provider is in the accepted set
func (r *Request) HasAccepted(providerID uuid.UUID) bool {
	for _, id := range r.AcceptedProviders {
		if id == providerID {
			return true
		}
	}
	return false
}

// CreateRequest is the payload for opening a request
type CreateRequest struct {
	ServiceType        string  `json:"service_type" binding:"required,oneof=fuel mechanic"`
	Longitude          float64 `json:"longitude" binding:"required,longitude"`
	Latitude           float64 `json:"latitude" binding:"required,latitude"`
	ProblemDescription string  `json:"problem_description" binding:"required,max=1000"`
}

// TransitionRequest is the payload for advancing a request's status
type TransitionRequest struct {
	RequestID  uuid.UUID  `json:"request_id" binding:"required"`
	Action     string     `json:"action" binding:"required"`
	ProviderID *uuid.UUID `json:"provider_id"`
}

// GroupedRequests buckets a user's requests by status
type GroupedRequests struct {
	Pending   []*Request `json:"pending"`
	Accepted  []*Request `json:"accepted"`
	Confirmed []*Request `json:"confirmed"`
	Completed []*Request `json:"completed"`
}

// NewGroupedRequests buckets requests by their status. The status column is
// constrained to the four lifecycle values, so every request lands in a bucket.
func NewGroupedRequests(list []*Request) *GroupedRequests {
	g := &GroupedRequests{
		Pending:   []*Request{},
		Accepted:  []*Request{},
		Confirmed: []*Request{},
		Completed: []*Request{},
	}
	for _, r := range list {
		switch r.Status {
		case StatusPending:
			g.Pending = append(g.Pending, r)
		case StatusAccepted:
			g.Accepted = append(g.Accepted, r)
		case StatusConfirmed:
			g.Confirmed = append(g.Confirmed, r)
		case StatusCompleted:
			g.Completed = append(g.Completed, r)
		}
	}
	return g
}
