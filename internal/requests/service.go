package requests

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"

	"github.com/hasnaanagy/salik/internal/services"
	"github.com/hasnaanagy/salik/internal/users"
	"github.com/hasnaanagy/salik/pkg/common"
	"github.com/hasnaanagy/salik/pkg/eventbus"
)

// Service handles the request workflow business logic
type Service struct {
	repo   RepositoryInterface
	finder services.Finder
}

// NewService creates a new request service
func NewService(repo RepositoryInterface, finder services.Finder) *Service {
	return &Service{repo: repo, finder: finder}
}

// Create opens a pending request and records the nearby providers to notify.
// The request row, the notified set and the fan-out event commit atomically;
// delivery itself happens asynchronously from the outbox.
func (s *Service) Create(ctx context.Context, customerID uuid.UUID, role string, in *CreateRequest) (*Request, error) {
	if role != users.RoleCustomer {
		return nil, common.NewForbiddenError("only customers can open requests")
	}

	matches, err := s.finder.FindNearbyProviders(ctx, in.ServiceType, in.Longitude, in.Latitude)
	if err != nil {
		return nil, err
	}

	req := &Request{
		ID:                 uuid.New(),
		CustomerID:         customerID,
		ServiceType:        in.ServiceType,
		Location:           services.NewLocation(in.Longitude, in.Latitude),
		ProblemDescription: in.ProblemDescription,
		Status:             StatusPending,
		NotifiedProviders:  dedupeProviders(matches),
		AcceptedProviders:  []uuid.UUID{},
	}

	payload, err := json.Marshal(eventbus.RequestCreatedData{
		RequestID:          req.ID,
		CustomerID:         req.CustomerID,
		ServiceType:        req.ServiceType,
		Longitude:          in.Longitude,
		Latitude:           in.Latitude,
		ProblemDescription: req.ProblemDescription,
		NotifiedProviders:  req.NotifiedProviders,
	})
	if err != nil {
		return nil, common.NewInternalServerError("failed to create request")
	}

	if err := s.repo.CreateRequest(ctx, req, eventbus.SubjectRequestCreated, payload); err != nil {
		return nil, common.NewInternalServerError("failed to create request")
	}
	return req, nil
}

// Transition applies one lifecycle action to a request
func (s *Service) Transition(ctx context.Context, userID uuid.UUID, role string, in *TransitionRequest) (*Request, error) {
	req, err := s.Get(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}

	switch in.Action {
	case ActionAccept:
		err = s.accept(ctx, req, userID, role)
	case ActionConfirm:
		err = s.confirm(ctx, req, userID, role, in.ProviderID)
	case ActionComplete:
		err = s.complete(ctx, req, userID, role)
	default:
		return nil, common.NewBadRequestError("unknown action: "+in.Action, nil)
	}
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, in.RequestID)
}

// Get retrieves one request with its provider sets
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Request, error) {
	req, err := s.repo.GetRequestByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("request not found", err)
		}
		return nil, common.NewInternalServerError("failed to get request")
	}
	return req, nil
}

// List returns the caller's requests grouped into the four status buckets.
// Customers see requests they authored; providers see requests they were
// notified of, accepted, or were confirmed for.
func (s *Service) List(ctx context.Context, userID uuid.UUID, role string) (*GroupedRequests, error) {
	var list []*Request
	var err error

	switch role {
	case users.RoleCustomer:
		list, err = s.repo.ListByCustomer(ctx, userID)
	case users.RoleProvider:
		list, err = s.repo.ListByProvider(ctx, userID)
	default:
		return nil, common.NewForbiddenError("requests are only visible to customers and providers")
	}
	if err != nil {
		return nil, common.NewInternalServerError("failed to list requests")
	}

	return NewGroupedRequests(list), nil
}

func (s *Service) accept(ctx context.Context, req *Request, providerID uuid.UUID, role string) error {
	if role != users.RoleProvider {
		return common.NewForbiddenError("only providers can accept requests")
	}

	payload, err := json.Marshal(eventbus.RequestAcceptedData{
		RequestID:  req.ID,
		CustomerID: req.CustomerID,
		ProviderID: providerID,
	})
	if err != nil {
		return common.NewInternalServerError("failed to accept request")
	}

	if _, err := s.repo.Accept(ctx, req.ID, providerID, eventbus.SubjectRequestAccepted, payload); err != nil {
		return common.NewInternalServerError("failed to accept request")
	}
	return nil
}

func (s *Service) confirm(ctx context.Context, req *Request, customerID uuid.UUID, role string, providerID *uuid.UUID) error {
	if role != users.RoleCustomer {
		return common.NewForbiddenError("only customers can confirm requests")
	}
	if req.CustomerID != customerID {
		return common.NewForbiddenError("you don't own this request")
	}
	if providerID == nil {
		return common.NewBadRequestError("provider_id is required to confirm", nil)
	}
	if !req.HasAccepted(*providerID) {
		return common.NewBadRequestError("provider has not accepted this request", nil)
	}

	payload, err := json.Marshal(eventbus.RequestConfirmedData{
		RequestID:  req.ID,
		CustomerID: req.CustomerID,
		ProviderID: *providerID,
	})
	if err != nil {
		return common.NewInternalServerError("failed to confirm request")
	}

	confirmed, err := s.repo.Confirm(ctx, req.ID, customerID, *providerID, eventbus.SubjectRequestConfirmed, payload)
	if err != nil {
		return common.NewInternalServerError("failed to confirm request")
	}
	if !confirmed {
		return common.NewBadRequestError("request cannot be confirmed in its current state", nil)
	}
	return nil
}

func (s *Service) complete(ctx context.Context, req *Request, customerID uuid.UUID, role string) error {
	if role != users.RoleCustomer {
		return common.NewForbiddenError("only customers can complete requests")
	}
	if req.CustomerID != customerID {
		return common.NewForbiddenError("you don't own this request")
	}
	if req.Status != StatusConfirmed {
		return common.NewBadRequestError("only a confirmed request can be completed", nil)
	}

	var providerID uuid.UUID
	if req.ConfirmedProvider != nil {
		providerID = *req.ConfirmedProvider
	}
	payload, err := json.Marshal(eventbus.RequestCompletedData{
		RequestID:  req.ID,
		CustomerID: req.CustomerID,
		ProviderID: providerID,
	})
	if err != nil {
		return common.NewInternalServerError("failed to complete request")
	}

	completed, err := s.repo.Complete(ctx, req.ID, customerID, eventbus.SubjectRequestCompleted, payload)
	if err != nil {
		return common.NewInternalServerError("failed to complete request")
	}
	if !completed {
		return common.NewBadRequestError("only a confirmed request can be completed", nil)
	}
	return nil
}

// dedupeProviders collapses matches that share an owner, keeping nearest-first order
func dedupeProviders(matches []services.NearbyService) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(matches))
	providers := make([]uuid.UUID, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m.ProviderID]; ok {
			continue
		}
		seen[m.ProviderID] = struct{}{}
		providers = append(providers, m.ProviderID)
	}
	return providers
}
