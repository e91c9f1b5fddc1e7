package services

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryInterface defines the interface for service repository operations
type RepositoryInterface interface {
	CreateService(ctx context.Context, s *Service) error
	GetServiceByID(ctx context.Context, id uuid.UUID) (*Service, error)
	GetProviderServices(ctx context.Context, providerID uuid.UUID) ([]*Service, error)
	UpdateService(ctx context.Context, id uuid.UUID, req *UpdateServiceRequest) (*Service, error)
	DeleteService(ctx context.Context, id, providerID uuid.UUID) (bool, error)
	FindNearby(ctx context.Context, serviceType string, longitude, latitude, radiusMeters float64, limit int) ([]NearbyService, error)
	GetOwners(ctx context.Context, serviceIDs []uuid.UUID) ([]NearbyService, error)
}

// GeoIndexInterface defines the geospatial index operations
type GeoIndexInterface interface {
	Add(ctx context.Context, serviceID uuid.UUID, serviceType string, longitude, latitude float64) error
	Remove(ctx context.Context, serviceID uuid.UUID, serviceType string) error
	Search(ctx context.Context, serviceType string, longitude, latitude, radiusMeters float64, limit int) ([]uuid.UUID, error)
}

// Finder is the matching surface consumed by the request workflow
type Finder interface {
	FindNearbyProviders(ctx context.Context, serviceType string, longitude, latitude float64) ([]NearbyService, error)
}
