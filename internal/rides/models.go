package rides

import (
	"time"

	"github.com/google/uuid"
)

// Ride statuses
const (
	RideScheduled = "scheduled"
	RideCompleted = "completed"
	RideCancelled = "cancelled"
)

// Booking statuses
const (
	BookingActive    = "active"
	BookingCancelled = "cancelled"
)

// Ride is a scheduled trip published by a provider with bookable seats
type Ride struct {
	ID            uuid.UUID `json:"id"`
	ProviderID    uuid.UUID `json:"provider_id"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureTime time.Time `json:"departure_time"`
	TotalSeats    int       `json:"total_seats"`
	BookedSeats   int       `json:"booked_seats"`
	PricePerSeat  float64   `json:"price_per_seat"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AvailableSeats returns the remaining bookable capacity
func (r *Ride) AvailableSeats() int {
	return r.TotalSeats - r.BookedSeats
}

// RideBooking is a customer's seat reservation on a ride
type RideBooking struct {
	ID         uuid.UUID `json:"id"`
	RideID     uuid.UUID `json:"ride_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Seats      int       `json:"seats"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreateRideRequest is the payload for publishing a ride
type CreateRideRequest struct {
	Origin        string    `json:"origin" binding:"required,max=300"`
	Destination   string    `json:"destination" binding:"required,max=300"`
	DepartureTime time.Time `json:"departure_time" binding:"required"`
	TotalSeats    int       `json:"total_seats" binding:"required,min=1,max=50"`
	PricePerSeat  float64   `json:"price_per_seat" binding:"required,gt=0"`
}

// BookRideRequest is the payload for reserving seats
type BookRideRequest struct {
	Seats int `json:"seats" binding:"required,min=1"`
}
