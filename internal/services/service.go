package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/hasnaanagy/salik/pkg/common"
	"github.com/hasnaanagy/salik/pkg/config"
	"github.com/hasnaanagy/salik/pkg/logger"
)

// Manager handles offering business logic and provider matching
type Manager struct {
	repo     RepositoryInterface
	geo      GeoIndexInterface
	matching config.MatchingConfig
}

// NewManager creates a new offerings manager
func NewManager(repo RepositoryInterface, geo GeoIndexInterface, matching config.MatchingConfig) *Manager {
	return &Manager{repo: repo, geo: geo, matching: matching}
}

// Create publishes a new offering for the calling provider
func (m *Manager) Create(ctx context.Context, providerID uuid.UUID, req *CreateServiceRequest) (*Service, error) {
	if (req.Longitude == nil) != (req.Latitude == nil) {
		return nil, common.NewBadRequestError("longitude and latitude must be provided together", nil)
	}

	s := &Service{
		ID:          uuid.New(),
		ProviderID:  providerID,
		ServiceType: req.ServiceType,
		Address:     req.Address,
		WorkingDays: req.WorkingDays,
		WorkingFrom: req.WorkingFrom,
		WorkingTo:   req.WorkingTo,
	}
	if req.Longitude != nil {
		s.Location = NewLocation(*req.Longitude, *req.Latitude)
	}

	if err := m.repo.CreateService(ctx, s); err != nil {
		if errors.Is(err, ErrDuplicateType) {
			return nil, common.NewConflictError("you already offer this service type")
		}
		return nil, common.NewInternalServerError("failed to create service")
	}

	m.indexLocation(ctx, s)
	return s, nil
}

// Get returns one offering
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*Service, error) {
	s, err := m.repo.GetServiceByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("service not found", err)
		}
		return nil, common.NewInternalServerError("failed to get service")
	}
	return s, nil
}

// ListMine returns the calling provider's offerings
func (m *Manager) ListMine(ctx context.Context, providerID uuid.UUID) ([]*Service, error) {
	list, err := m.repo.GetProviderServices(ctx, providerID)
	if err != nil {
		return nil, common.NewInternalServerError("failed to list services")
	}
	if list == nil {
		list = []*Service{}
	}
	return list, nil
}

// Update edits an offering owned by the caller
func (m *Manager) Update(ctx context.Context, id, providerID uuid.UUID, req *UpdateServiceRequest) (*Service, error) {
	if (req.Longitude == nil) != (req.Latitude == nil) {
		return nil, common.NewBadRequestError("longitude and latitude must be provided together", nil)
	}

	existing, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.ProviderID != providerID {
		return nil, common.NewForbiddenError("you don't own this service")
	}

	updated, err := m.repo.UpdateService(ctx, id, req)
	if err != nil {
		return nil, common.NewInternalServerError("failed to update service")
	}

	m.indexLocation(ctx, updated)
	return updated, nil
}

// Delete removes an offering owned by the caller
func (m *Manager) Delete(ctx context.Context, id, providerID uuid.UUID) error {
	existing, err := m.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.ProviderID != providerID {
		return common.NewForbiddenError("you don't own this service")
	}

	deleted, err := m.repo.DeleteService(ctx, id, providerID)
	if err != nil {
		return common.NewInternalServerError("failed to delete service")
	}
	if !deleted {
		return common.NewNotFoundError("service not found", nil)
	}

	if err := m.geo.Remove(ctx, id, existing.ServiceType); err != nil {
		logger.WithContext(ctx).Warn("failed to remove service from geo index",
			zap.String("service_id", id.String()),
			zap.Error(err))
	}
	return nil
}

// FindNearbyProviders returns matching candidates of the given type within the
// configured radius, nearest first. The Redis index is tried first; on error
// or an empty index the SQL haversine query is the fallback.
func (m *Manager) FindNearbyProviders(ctx context.Context, serviceType string, longitude, latitude float64) ([]NearbyService, error) {
	radius := m.matching.SearchRadiusMeters
	limit := m.matching.MaxProviders

	ids, err := m.geo.Search(ctx, serviceType, longitude, latitude, radius, limit)
	if err == nil && len(ids) > 0 {
		matches, err := m.repo.GetOwners(ctx, ids)
		if err == nil {
			return matches, nil
		}
		logger.WithContext(ctx).Warn("failed to resolve geo index owners, falling back to SQL",
			zap.Error(err))
	} else if err != nil {
		logger.WithContext(ctx).Warn("geo index search failed, falling back to SQL",
			zap.String("service_type", serviceType),
			zap.Error(err))
	}

	matches, err := m.repo.FindNearby(ctx, serviceType, longitude, latitude, radius, limit)
	if err != nil {
		return nil, common.NewInternalServerError("failed to find nearby providers")
	}
	return matches, nil
}

func (m *Manager) indexLocation(ctx context.Context, s *Service) {
	if s.Location == nil {
		return
	}
	if err := m.geo.Add(ctx, s.ID, s.ServiceType, s.Location.Longitude(), s.Location.Latitude()); err != nil {
		logger.WithContext(ctx).Warn("failed to index service location",
			zap.String("service_id", s.ID.String()),
			zap.Error(err))
	}
}
