package rides

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryInterface defines the interface for ride repository operations
type RepositoryInterface interface {
	CreateRide(ctx context.Context, ride *Ride) error
	GetRideByID(ctx context.Context, id uuid.UUID) (*Ride, error)
	ListUpcoming(ctx context.Context, limit, offset int) ([]*Ride, int64, error)
	BookSeats(ctx context.Context, rideID, customerID uuid.UUID, seats int) (*RideBooking, error)
	CancelBooking(ctx context.Context, bookingID, customerID uuid.UUID) (*RideBooking, error)
	ListBookingsByCustomer(ctx context.Context, customerID uuid.UUID) ([]*RideBooking, error)
	CompletePastDue(ctx context.Context) (int64, error)
}
