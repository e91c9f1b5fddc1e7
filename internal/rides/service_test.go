package rides

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hasnaanagy/salik/pkg/common"
)

// MockRepository is a mock implementation of RepositoryInterface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateRide(ctx context.Context, ride *Ride) error {
	args := m.Called(ctx, ride)
	return args.Error(0)
}

func (m *MockRepository) GetRideByID(ctx context.Context, id uuid.UUID) (*Ride, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Ride), args.Error(1)
}

func (m *MockRepository) ListUpcoming(ctx context.Context, limit, offset int) ([]*Ride, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*Ride), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) BookSeats(ctx context.Context, rideID, customerID uuid.UUID, seats int) (*RideBooking, error) {
	args := m.Called(ctx, rideID, customerID, seats)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RideBooking), args.Error(1)
}

func (m *MockRepository) CancelBooking(ctx context.Context, bookingID, customerID uuid.UUID) (*RideBooking, error) {
	args := m.Called(ctx, bookingID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RideBooking), args.Error(1)
}

func (m *MockRepository) ListBookingsByCustomer(ctx context.Context, customerID uuid.UUID) ([]*RideBooking, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*RideBooking), args.Error(1)
}

func (m *MockRepository) CompletePastDue(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func futureRide(providerID uuid.UUID, totalSeats, bookedSeats int) *Ride {
	return &Ride{
		ID:            uuid.New(),
		ProviderID:    providerID,
		Origin:        "Riyadh",
		Destination:   "Jeddah",
		DepartureTime: time.Now().Add(24 * time.Hour),
		TotalSeats:    totalSeats,
		BookedSeats:   bookedSeats,
		PricePerSeat:  150,
		Status:        RideScheduled,
	}
}

func TestPublish_Success(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)
	providerID := uuid.New()

	repo.On("CreateRide", mock.Anything, mock.MatchedBy(func(r *Ride) bool {
		return r.ProviderID == providerID && r.Status == RideScheduled && r.BookedSeats == 0
	})).Return(nil)

	ride, err := svc.Publish(context.Background(), providerID, &CreateRideRequest{
		Origin:        "Riyadh",
		Destination:   "Jeddah",
		DepartureTime: time.Now().Add(time.Hour),
		TotalSeats:    4,
		PricePerSeat:  150,
	})

	require.NoError(t, err)
	assert.Equal(t, RideScheduled, ride.Status)
	repo.AssertExpectations(t)
}

func TestPublish_PastDeparture(t *testing.T) {
	svc := NewService(new(MockRepository))

	ride, err := svc.Publish(context.Background(), uuid.New(), &CreateRideRequest{
		Origin:        "Riyadh",
		Destination:   "Jeddah",
		DepartureTime: time.Now().Add(-time.Hour),
		TotalSeats:    4,
		PricePerSeat:  150,
	})

	assert.Nil(t, ride)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, common.CodeValidation, appErr.Code)
}

func TestBook_NoCapacityIsConflict(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)
	customerID := uuid.New()
	ride := futureRide(uuid.New(), 4, 4)

	repo.On("GetRideByID", mock.Anything, ride.ID).Return(ride, nil)
	repo.On("BookSeats", mock.Anything, ride.ID, customerID, 1).Return(nil, ErrNoCapacity)

	booking, err := svc.Book(context.Background(), ride.ID, customerID, 1)

	assert.Nil(t, booking)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, common.CodeConflict, appErr.Code)
}

func TestBook_OwnRideRejected(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)
	providerID := uuid.New()
	ride := futureRide(providerID, 4, 0)

	repo.On("GetRideByID", mock.Anything, ride.ID).Return(ride, nil)

	booking, err := svc.Book(context.Background(), ride.ID, providerID, 1)

	assert.Nil(t, booking)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, common.CodeValidation, appErr.Code)
	repo.AssertNotCalled(t, "BookSeats")
}

func TestBook_RideNotFound(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)
	rideID := uuid.New()

	repo.On("GetRideByID", mock.Anything, rideID).Return(nil, pgx.ErrNoRows)

	booking, err := svc.Book(context.Background(), rideID, uuid.New(), 1)

	assert.Nil(t, booking)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, common.CodeNotFound, appErr.Code)
}

// conditionalSeatRepo reproduces the repository's conditional-update booking
// semantics in memory so the oversell behavior can be exercised concurrently.
type conditionalSeatRepo struct {
	MockRepository
	mu   sync.Mutex
	ride *Ride
}

func (r *conditionalSeatRepo) GetRideByID(ctx context.Context, id uuid.UUID) (*Ride, error) {
	return r.ride, nil
}

func (r *conditionalSeatRepo) BookSeats(ctx context.Context, rideID, customerID uuid.UUID, seats int) (*RideBooking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ride.BookedSeats+seats > r.ride.TotalSeats {
		return nil, ErrNoCapacity
	}
	r.ride.BookedSeats += seats
	return &RideBooking{
		ID:         uuid.New(),
		RideID:     rideID,
		CustomerID: customerID,
		Seats:      seats,
		Status:     BookingActive,
	}, nil
}

func TestBook_ConcurrentLastSeat(t *testing.T) {
	ride := futureRide(uuid.New(), 4, 3)
	repo := &conditionalSeatRepo{ride: ride}
	svc := NewService(repo)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Book(context.Background(), ride.ID, uuid.New(), 1)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		appErr, ok := err.(*common.AppError)
		require.True(t, ok)
		assert.Equal(t, common.CodeConflict, appErr.Code)
		conflicts++
	}

	// Exactly one booking wins the last seat
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)
	assert.Equal(t, ride.TotalSeats, ride.BookedSeats)
}

func TestCancelBooking_NotFound(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)
	bookingID := uuid.New()
	customerID := uuid.New()

	repo.On("CancelBooking", mock.Anything, bookingID, customerID).Return(nil, pgx.ErrNoRows)

	booking, err := svc.CancelBooking(context.Background(), bookingID, customerID)

	assert.Nil(t, booking)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, common.CodeNotFound, appErr.Code)
}

func TestSweep_CompletesPastDue(t *testing.T) {
	repo := new(MockRepository)
	sweeper := NewSweeper(repo)

	repo.On("CompletePastDue", mock.Anything).Return(int64(3), nil)

	sweeper.Sweep(context.Background())

	repo.AssertExpectations(t)
}
