package rides

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"

	"github.com/hasnaanagy/salik/pkg/common"
)

// Service handles ride and booking business logic
type Service struct {
	repo RepositoryInterface
}

// NewService creates a new rides service
func NewService(repo RepositoryInterface) *Service {
	return &Service{repo: repo}
}

// Publish creates a new scheduled ride for the calling provider
func (s *Service) Publish(ctx context.Context, providerID uuid.UUID, req *CreateRideRequest) (*Ride, error) {
	if !req.DepartureTime.After(time.Now()) {
		return nil, common.NewBadRequestError("departure time must be in the future", nil)
	}

	ride := &Ride{
		ID:            uuid.New(),
		ProviderID:    providerID,
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureTime: req.DepartureTime,
		TotalSeats:    req.TotalSeats,
		PricePerSeat:  req.PricePerSeat,
		Status:        RideScheduled,
	}

	if err := s.repo.CreateRide(ctx, ride); err != nil {
		return nil, common.NewInternalServerError("failed to publish ride")
	}
	return ride, nil
}

// Get retrieves one ride
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Ride, error) {
	ride, err := s.repo.GetRideByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("ride not found", err)
		}
		return nil, common.NewInternalServerError("failed to get ride")
	}
	return ride, nil
}

// ListUpcoming returns scheduled future rides, soonest first
func (s *Service) ListUpcoming(ctx context.Context, limit, offset int) ([]*Ride, int64, error) {
	rides, total, err := s.repo.ListUpcoming(ctx, limit, offset)
	if err != nil {
		return nil, 0, common.NewInternalServerError("failed to list rides")
	}
	if rides == nil {
		rides = []*Ride{}
	}
	return rides, total, nil
}

// Book reserves seats on a ride for the calling customer
func (s *Service) Book(ctx context.Context, rideID, customerID uuid.UUID, seats int) (*RideBooking, error) {
	ride, err := s.Get(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.ProviderID == customerID {
		return nil, common.NewBadRequestError("you cannot book your own ride", nil)
	}

	booking, err := s.repo.BookSeats(ctx, rideID, customerID, seats)
	if err != nil {
		if errors.Is(err, ErrNoCapacity) {
			return nil, common.NewConflictError("not enough seats available")
		}
		return nil, common.NewInternalServerError("failed to book ride")
	}
	return booking, nil
}

// CancelBooking cancels the caller's booking and releases its seats
func (s *Service) CancelBooking(ctx context.Context, bookingID, customerID uuid.UUID) (*RideBooking, error) {
	booking, err := s.repo.CancelBooking(ctx, bookingID, customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("active booking not found", err)
		}
		return nil, common.NewInternalServerError("failed to cancel booking")
	}
	return booking, nil
}

// MyBookings returns the caller's bookings, newest first
func (s *Service) MyBookings(ctx context.Context, customerID uuid.UUID) ([]*RideBooking, error) {
	bookings, err := s.repo.ListBookingsByCustomer(ctx, customerID)
	if err != nil {
		return nil, common.NewInternalServerError("failed to list bookings")
	}
	if bookings == nil {
		bookings = []*RideBooking{}
	}
	return bookings, nil
}
