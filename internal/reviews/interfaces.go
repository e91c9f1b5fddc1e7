package reviews

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryInterface defines the interface for review repository operations
type RepositoryInterface interface {
	UpsertServiceReview(ctx context.Context, serviceID, customerID uuid.UUID, rating int, comment *string) (*ServiceReview, error)
	DeleteServiceReview(ctx context.Context, reviewID, customerID uuid.UUID) error
	ListServiceReviews(ctx context.Context, serviceID uuid.UUID) ([]*ServiceReview, error)
	UpsertProviderReview(ctx context.Context, providerID, customerID uuid.UUID, rating int, comment *string) (*ProviderReview, error)
	DeleteProviderReview(ctx context.Context, reviewID, customerID uuid.UUID) error
	ListProviderReviews(ctx context.Context, providerID uuid.UUID) ([]*ProviderReview, error)
}
