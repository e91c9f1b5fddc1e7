package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/hasnaanagy/salik/pkg/common"
	"github.com/hasnaanagy/salik/pkg/config"
)

// MockRepository is a mock implementation of RepositoryInterface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateService(ctx context.Context, s *Service) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockRepository) GetServiceByID(ctx context.Context, id uuid.UUID) (*Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Service), args.Error(1)
}

func (m *MockRepository) GetProviderServices(ctx context.Context, providerID uuid.UUID) ([]*Service, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Service), args.Error(1)
}

func (m *MockRepository) UpdateService(ctx context.Context, id uuid.UUID, req *UpdateServiceRequest) (*Service, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Service), args.Error(1)
}

func (m *MockRepository) DeleteService(ctx context.Context, id, providerID uuid.UUID) (bool, error) {
	args := m.Called(ctx, id, providerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) FindNearby(ctx context.Context, serviceType string, longitude, latitude, radiusMeters float64, limit int) ([]NearbyService, error) {
	args := m.Called(ctx, serviceType, longitude, latitude, radiusMeters, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]NearbyService), args.Error(1)
}

func (m *MockRepository) GetOwners(ctx context.Context, serviceIDs []uuid.UUID) ([]NearbyService, error) {
	args := m.Called(ctx, serviceIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]NearbyService), args.Error(1)
}

// MockGeoIndex is a mock implementation of GeoIndexInterface
type MockGeoIndex struct {
	mock.Mock
}

func (m *MockGeoIndex) Add(ctx context.Context, serviceID uuid.UUID, serviceType string, longitude, latitude float64) error {
	args := m.Called(ctx, serviceID, serviceType, longitude, latitude)
	return args.Error(0)
}

func (m *MockGeoIndex) Remove(ctx context.Context, serviceID uuid.UUID, serviceType string) error {
	args := m.Called(ctx, serviceID, serviceType)
	return args.Error(0)
}

func (m *MockGeoIndex) Search(ctx context.Context, serviceType string, longitude, latitude, radiusMeters float64, limit int) ([]uuid.UUID, error) {
	args := m.Called(ctx, serviceType, longitude, latitude, radiusMeters, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func newTestManager() (*Manager, *MockRepository, *MockGeoIndex) {
	repo := new(MockRepository)
	geo := new(MockGeoIndex)
	m := NewManager(repo, geo, config.MatchingConfig{SearchRadiusMeters: 5000, MaxProviders: 50})
	return m, repo, geo
}

func floatPtr(f float64) *float64 { return &f }

func TestCreate_Success(t *testing.T) {
	m, repo, geo := newTestManager()
	providerID := uuid.New()

	req := &CreateServiceRequest{
		ServiceType: TypeFuel,
		Longitude:   floatPtr(46.675),
		Latitude:    floatPtr(24.713),
	}

	repo.On("CreateService", mock.Anything, mock.MatchedBy(func(s *Service) bool {
		return s.ProviderID == providerID && s.ServiceType == TypeFuel && s.Location != nil
	})).Return(nil)
	geo.On("Add", mock.Anything, mock.Anything, TypeFuel, 46.675, 24.713).Return(nil)

	s, err := m.Create(context.Background(), providerID, req)

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, s.ID)
	assert.Equal(t, providerID, s.ProviderID)
	assert.Equal(t, 46.675, s.Location.Longitude())
	repo.AssertExpectations(t)
	geo.AssertExpectations(t)
}

func TestCreate_DuplicateType(t *testing.T) {
	m, repo, _ := newTestManager()

	req := &CreateServiceRequest{ServiceType: TypeMechanic}
	repo.On("CreateService", mock.Anything, mock.Anything).Return(ErrDuplicateType)

	s, err := m.Create(context.Background(), uuid.New(), req)

	assert.Nil(t, s)
	appErr, ok := err.(*common.AppError)
	assert.True(t, ok)
	assert.Equal(t, common.CodeConflict, appErr.Code)
}

func TestCreate_HalfCoordinates(t *testing.T) {
	m, _, _ := newTestManager()

	req := &CreateServiceRequest{ServiceType: TypeFuel, Longitude: floatPtr(46.675)}

	s, err := m.Create(context.Background(), uuid.New(), req)

	assert.Nil(t, s)
	appErr, ok := err.(*common.AppError)
	assert.True(t, ok)
	assert.Equal(t, common.CodeValidation, appErr.Code)
}

func TestCreate_NoLocationSkipsIndex(t *testing.T) {
	m, repo, geo := newTestManager()

	req := &CreateServiceRequest{ServiceType: TypeMechanic}
	repo.On("CreateService", mock.Anything, mock.Anything).Return(nil)

	s, err := m.Create(context.Background(), uuid.New(), req)

	assert.NoError(t, err)
	assert.Nil(t, s.Location)
	geo.AssertNotCalled(t, "Add")
}

func TestUpdate_NotOwner(t *testing.T) {
	m, repo, _ := newTestManager()
	serviceID := uuid.New()

	repo.On("GetServiceByID", mock.Anything, serviceID).
		Return(&Service{ID: serviceID, ProviderID: uuid.New(), ServiceType: TypeFuel}, nil)

	s, err := m.Update(context.Background(), serviceID, uuid.New(), &UpdateServiceRequest{})

	assert.Nil(t, s)
	appErr, ok := err.(*common.AppError)
	assert.True(t, ok)
	assert.Equal(t, common.CodeForbidden, appErr.Code)
}

func TestDelete_Success(t *testing.T) {
	m, repo, geo := newTestManager()
	serviceID := uuid.New()
	providerID := uuid.New()

	repo.On("GetServiceByID", mock.Anything, serviceID).
		Return(&Service{ID: serviceID, ProviderID: providerID, ServiceType: TypeFuel}, nil)
	repo.On("DeleteService", mock.Anything, serviceID, providerID).Return(true, nil)
	geo.On("Remove", mock.Anything, serviceID, TypeFuel).Return(nil)

	err := m.Delete(context.Background(), serviceID, providerID)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
	geo.AssertExpectations(t)
}

func TestGet_NotFound(t *testing.T) {
	m, repo, _ := newTestManager()
	serviceID := uuid.New()

	repo.On("GetServiceByID", mock.Anything, serviceID).Return(nil, pgx.ErrNoRows)

	s, err := m.Get(context.Background(), serviceID)

	assert.Nil(t, s)
	appErr, ok := err.(*common.AppError)
	assert.True(t, ok)
	assert.Equal(t, common.CodeNotFound, appErr.Code)
}

func TestFindNearbyProviders_UsesGeoIndex(t *testing.T) {
	m, repo, geo := newTestManager()
	serviceID := uuid.New()
	providerID := uuid.New()

	geo.On("Search", mock.Anything, TypeFuel, 46.675, 24.713, 5000.0, 50).
		Return([]uuid.UUID{serviceID}, nil)
	repo.On("GetOwners", mock.Anything, []uuid.UUID{serviceID}).
		Return([]NearbyService{{ServiceID: serviceID, ProviderID: providerID}}, nil)

	matches, err := m.FindNearbyProviders(context.Background(), TypeFuel, 46.675, 24.713)

	assert.NoError(t, err)
	assert.Len(t, matches, 1)
	assert.Equal(t, providerID, matches[0].ProviderID)
	repo.AssertNotCalled(t, "FindNearby")
}

func TestFindNearbyProviders_FallsBackOnGeoError(t *testing.T) {
	m, repo, geo := newTestManager()
	providerID := uuid.New()

	geo.On("Search", mock.Anything, TypeMechanic, 46.675, 24.713, 5000.0, 50).
		Return(nil, errors.New("redis down"))
	repo.On("FindNearby", mock.Anything, TypeMechanic, 46.675, 24.713, 5000.0, 50).
		Return([]NearbyService{{ServiceID: uuid.New(), ProviderID: providerID}}, nil)

	matches, err := m.FindNearbyProviders(context.Background(), TypeMechanic, 46.675, 24.713)

	assert.NoError(t, err)
	assert.Len(t, matches, 1)
	assert.Equal(t, providerID, matches[0].ProviderID)
}

func TestFindNearbyProviders_FallsBackOnEmptyIndex(t *testing.T) {
	m, repo, geo := newTestManager()

	geo.On("Search", mock.Anything, TypeFuel, 0.0, 0.0, 5000.0, 50).
		Return([]uuid.UUID{}, nil)
	repo.On("FindNearby", mock.Anything, TypeFuel, 0.0, 0.0, 5000.0, 50).
		Return([]NearbyService{}, nil)

	matches, err := m.FindNearbyProviders(context.Background(), TypeFuel, 0.0, 0.0)

	assert.NoError(t, err)
	assert.Empty(t, matches)
	repo.AssertExpectations(t)
}

func TestAverageRating_Rounding(t *testing.T) {
	s := &Service{RatingSum: 17, RatingCount: 4}
	assert.Equal(t, 4.3, s.AverageRating())

	s = &Service{RatingSum: 14, RatingCount: 3}
	assert.Equal(t, 4.7, s.AverageRating())

	s = &Service{}
	assert.Equal(t, 0.0, s.AverageRating())
}
