package reviews

import (
	"context"
	"testing"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hasnaanagy/salik/internal/services"
	"github.com/hasnaanagy/salik/pkg/common"
)

// MockRepository is a mock implementation of RepositoryInterface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) UpsertServiceReview(ctx context.Context, serviceID, customerID uuid.UUID, rating int, comment *string) (*ServiceReview, error) {
	args := m.Called(ctx, serviceID, customerID, rating, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ServiceReview), args.Error(1)
}

func (m *MockRepository) DeleteServiceReview(ctx context.Context, reviewID, customerID uuid.UUID) error {
	args := m.Called(ctx, reviewID, customerID)
	return args.Error(0)
}

func (m *MockRepository) ListServiceReviews(ctx context.Context, serviceID uuid.UUID) ([]*ServiceReview, error) {
	args := m.Called(ctx, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ServiceReview), args.Error(1)
}

func (m *MockRepository) UpsertProviderReview(ctx context.Context, providerID, customerID uuid.UUID, rating int, comment *string) (*ProviderReview, error) {
	args := m.Called(ctx, providerID, customerID, rating, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ProviderReview), args.Error(1)
}

func (m *MockRepository) DeleteProviderReview(ctx context.Context, reviewID, customerID uuid.UUID) error {
	args := m.Called(ctx, reviewID, customerID)
	return args.Error(0)
}

func (m *MockRepository) ListProviderReviews(ctx context.Context, providerID uuid.UUID) ([]*ProviderReview, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ProviderReview), args.Error(1)
}

func TestReviewService_Success(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)
	serviceID := uuid.New()
	customerID := uuid.New()

	repo.On("UpsertServiceReview", mock.Anything, serviceID, customerID, 5, (*string)(nil)).
		Return(&ServiceReview{ID: uuid.New(), ServiceID: serviceID, CustomerID: customerID, Rating: 5}, nil)

	review, err := svc.ReviewService(context.Background(), serviceID, customerID, &CreateReviewRequest{Rating: 5})

	require.NoError(t, err)
	assert.Equal(t, 5, review.Rating)
	repo.AssertExpectations(t)
}

func TestReviewService_UnknownService(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)

	repo.On("UpsertServiceReview", mock.Anything, mock.Anything, mock.Anything, 4, (*string)(nil)).
		Return(nil, ErrTargetNotFound)

	review, err := svc.ReviewService(context.Background(), uuid.New(), uuid.New(), &CreateReviewRequest{Rating: 4})

	assert.Nil(t, review)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, common.CodeNotFound, appErr.Code)
}

func TestDeleteServiceReview_NotFound(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)
	reviewID := uuid.New()
	customerID := uuid.New()

	repo.On("DeleteServiceReview", mock.Anything, reviewID, customerID).Return(pgx.ErrNoRows)

	err := svc.DeleteServiceReview(context.Background(), reviewID, customerID)

	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, common.CodeNotFound, appErr.Code)
}

func TestReviewProvider_SelfReviewRejected(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)
	userID := uuid.New()

	review, err := svc.ReviewProvider(context.Background(), userID, userID, &CreateReviewRequest{Rating: 5})

	assert.Nil(t, review)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, common.CodeValidation, appErr.Code)
	repo.AssertNotCalled(t, "UpsertProviderReview")
}

// aggregateRepo mirrors the repository's single-statement aggregate
// bookkeeping in memory: on upsert the old rating is backed out and the new
// one folded in; on delete the rating is backed out and the count dropped.
type aggregateRepo struct {
	MockRepository
	service *services.Service
	reviews map[uuid.UUID]*ServiceReview
	byPair  map[[2]uuid.UUID]uuid.UUID
}

func newAggregateRepo() *aggregateRepo {
	return &aggregateRepo{
		service: &services.Service{ID: uuid.New()},
		reviews: make(map[uuid.UUID]*ServiceReview),
		byPair:  make(map[[2]uuid.UUID]uuid.UUID),
	}
}

func (r *aggregateRepo) UpsertServiceReview(ctx context.Context, serviceID, customerID uuid.UUID, rating int, comment *string) (*ServiceReview, error) {
	pair := [2]uuid.UUID{serviceID, customerID}
	if existingID, ok := r.byPair[pair]; ok {
		existing := r.reviews[existingID]
		r.service.RatingSum += float64(rating - existing.Rating)
		existing.Rating = rating
		existing.Comment = comment
		return existing, nil
	}

	review := &ServiceReview{
		ID:         uuid.New(),
		ServiceID:  serviceID,
		CustomerID: customerID,
		Rating:     rating,
		Comment:    comment,
	}
	r.reviews[review.ID] = review
	r.byPair[pair] = review.ID
	r.service.RatingSum += float64(rating)
	r.service.RatingCount++
	return review, nil
}

func (r *aggregateRepo) DeleteServiceReview(ctx context.Context, reviewID, customerID uuid.UUID) error {
	review, ok := r.reviews[reviewID]
	if !ok || review.CustomerID != customerID {
		return pgx.ErrNoRows
	}
	delete(r.reviews, reviewID)
	delete(r.byPair, [2]uuid.UUID{review.ServiceID, review.CustomerID})
	r.service.RatingSum -= float64(review.Rating)
	r.service.RatingCount--
	return nil
}

func TestServiceAggregate_MeanAndDelete(t *testing.T) {
	repo := newAggregateRepo()
	svc := NewService(repo)
	serviceID := repo.service.ID

	var lowReview *ServiceReview
	for _, rating := range []int{5, 5, 4, 3} {
		review, err := svc.ReviewService(context.Background(), serviceID, uuid.New(), &CreateReviewRequest{Rating: rating})
		require.NoError(t, err)
		if rating == 3 {
			lowReview = review
		}
	}

	assert.Equal(t, 4.3, repo.service.AverageRating())
	assert.Equal(t, 4, repo.service.RatingCount)

	err := svc.DeleteServiceReview(context.Background(), lowReview.ID, lowReview.CustomerID)
	require.NoError(t, err)

	assert.Equal(t, 4.7, repo.service.AverageRating())
	assert.Equal(t, 3, repo.service.RatingCount)
}

func TestServiceAggregate_SecondReviewUpdatesInPlace(t *testing.T) {
	repo := newAggregateRepo()
	svc := NewService(repo)
	serviceID := repo.service.ID
	customerID := uuid.New()

	first, err := svc.ReviewService(context.Background(), serviceID, customerID, &CreateReviewRequest{Rating: 2})
	require.NoError(t, err)

	second, err := svc.ReviewService(context.Background(), serviceID, customerID, &CreateReviewRequest{Rating: 5})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, repo.service.RatingCount)
	assert.Equal(t, 5.0, repo.service.AverageRating())
}

func TestServiceAggregate_ZeroAfterLastDelete(t *testing.T) {
	repo := newAggregateRepo()
	svc := NewService(repo)
	serviceID := repo.service.ID
	customerID := uuid.New()

	review, err := svc.ReviewService(context.Background(), serviceID, customerID, &CreateReviewRequest{Rating: 4})
	require.NoError(t, err)

	err = svc.DeleteServiceReview(context.Background(), review.ID, customerID)
	require.NoError(t, err)

	assert.Equal(t, 0.0, repo.service.RatingSum)
	assert.Equal(t, 0, repo.service.RatingCount)
	assert.Equal(t, 0.0, repo.service.AverageRating())
}
