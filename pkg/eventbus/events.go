package eventbus

import "github.com/google/uuid"

// Subjects published by the request workflow
const (
	SubjectRequestCreated   = "requests.created"
	SubjectRequestAccepted  = "requests.accepted"
	SubjectRequestConfirmed = "requests.confirmed"
	SubjectRequestCompleted = "requests.completed"
)

// RequestCreatedData is the payload for requests.created
type RequestCreatedData struct {
	RequestID          uuid.UUID   `json:"request_id"`
	CustomerID         uuid.UUID   `json:"customer_id"`
	ServiceType        string      `json:"service_type"`
	Latitude           float64     `json:"latitude"`
	Longitude          float64     `json:"longitude"`
	ProblemDescription string      `json:"problem_description"`
	NotifiedProviders  []uuid.UUID `json:"notified_providers"`
}

// RequestAcceptedData is the payload for requests.accepted
type RequestAcceptedData struct {
	RequestID  uuid.UUID `json:"request_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	ProviderID uuid.UUID `json:"provider_id"`
}

// RequestConfirmedData is the payload for requests.confirmed
type RequestConfirmedData struct {
	RequestID  uuid.UUID `json:"request_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	ProviderID uuid.UUID `json:"provider_id"`
}

// RequestCompletedData is the payload for requests.completed
type RequestCompletedData struct {
	RequestID  uuid.UUID `json:"request_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	ProviderID uuid.UUID `json:"provider_id"`
}
