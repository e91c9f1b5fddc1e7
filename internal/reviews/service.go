package reviews

import (
	"context"
	"errors"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"

	"github.com/hasnaanagy/salik/pkg/common"
)

// Service handles review business logic
type Service struct {
	repo RepositoryInterface
}

// NewService creates a new reviews service
func NewService(repo RepositoryInterface) *Service {
	return &Service{repo: repo}
}

// ReviewService submits or replaces the caller's review of a service
func (s *Service) ReviewService(ctx context.Context, serviceID, customerID uuid.UUID, req *CreateReviewRequest) (*ServiceReview, error) {
	review, err := s.repo.UpsertServiceReview(ctx, serviceID, customerID, req.Rating, req.Comment)
	if err != nil {
		if errors.Is(err, ErrTargetNotFound) {
			return nil, common.NewNotFoundError("service not found", err)
		}
		return nil, common.NewInternalServerError("failed to submit review")
	}
	return review, nil
}

// DeleteServiceReview removes the caller's review of a service
func (s *Service) DeleteServiceReview(ctx context.Context, reviewID, customerID uuid.UUID) error {
	if err := s.repo.DeleteServiceReview(ctx, reviewID, customerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.NewNotFoundError("review not found", err)
		}
		return common.NewInternalServerError("failed to delete review")
	}
	return nil
}

// ListServiceReviews returns a service's reviews
func (s *Service) ListServiceReviews(ctx context.Context, serviceID uuid.UUID) ([]*ServiceReview, error) {
	reviews, err := s.repo.ListServiceReviews(ctx, serviceID)
	if err != nil {
		return nil, common.NewInternalServerError("failed to list reviews")
	}
	if reviews == nil {
		reviews = []*ServiceReview{}
	}
	return reviews, nil
}

// ReviewProvider submits or replaces the caller's review of a provider
func (s *Service) ReviewProvider(ctx context.Context, providerID, customerID uuid.UUID, req *CreateReviewRequest) (*ProviderReview, error) {
	if providerID == customerID {
		return nil, common.NewBadRequestError("you cannot review yourself", nil)
	}

	review, err := s.repo.UpsertProviderReview(ctx, providerID, customerID, req.Rating, req.Comment)
	if err != nil {
		if errors.Is(err, ErrTargetNotFound) {
			return nil, common.NewNotFoundError("provider not found", err)
		}
		return nil, common.NewInternalServerError("failed to submit review")
	}
	return review, nil
}

// DeleteProviderReview removes the caller's review of a provider
func (s *Service) DeleteProviderReview(ctx context.Context, reviewID, customerID uuid.UUID) error {
	if err := s.repo.DeleteProviderReview(ctx, reviewID, customerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.NewNotFoundError("review not found", err)
		}
		return common.NewInternalServerError("failed to delete review")
	}
	return nil
}

// ListProviderReviews returns a provider's reviews
func (s *Service) ListProviderReviews(ctx context.Context, providerID uuid.UUID) ([]*ProviderReview, error) {
	reviews, err := s.repo.ListProviderReviews(ctx, providerID)
	if err != nil {
		return nil, common.NewInternalServerError("failed to list reviews")
	}
	if reviews == nil {
		reviews = []*ProviderReview{}
	}
	return reviews, nil
}
