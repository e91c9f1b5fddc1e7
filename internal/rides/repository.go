package rides

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNoCapacity is returned when a booking would exceed the ride's seats or
// the ride is no longer bookable
var ErrNoCapacity = errors.New("ride has no capacity")

// Repository handles database operations for rides and bookings
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new rides repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const rideColumns = `id, provider_id, origin, destination, departure_time, total_seats, booked_seats, price_per_seat, status, created_at, updated_at`

func scanRide(scan func(dest ...interface{}) error) (*Ride, error) {
	var r Ride
	err := scan(
		&r.ID, &r.ProviderID, &r.Origin, &r.Destination, &r.DepartureTime,
		&r.TotalSeats, &r.BookedSeats, &r.PricePerSeat, &r.Status,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

const bookingColumns = `id, ride_id, customer_id, seats, status, created_at, updated_at`

func scanBooking(scan func(dest ...interface{}) error) (*RideBooking, error) {
	var b RideBooking
	err := scan(
		&b.ID, &b.RideID, &b.CustomerID, &b.Seats, &b.Status,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateRide persists a new scheduled ride
func (r *Repository) CreateRide(ctx context.Context, ride *Ride) error {
	query := `
		INSERT INTO rides (id, provider_id, origin, destination, departure_time, total_seats, booked_seats, price_per_seat, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8, NOW(), NOW())`

	_, err := r.db.Exec(ctx, query,
		ride.ID, ride.ProviderID, ride.Origin, ride.Destination,
		ride.DepartureTime, ride.TotalSeats, ride.PricePerSeat, ride.Status,
	)
	if err != nil {
		return fmt.Errorf("insert ride: %w", err)
	}
	return nil
}

// GetRideByID retrieves a ride by ID
func (r *Repository) GetRideByID(ctx context.Context, id uuid.UUID) (*Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	row := r.db.QueryRow(ctx, query, id)
	return scanRide(row.Scan)
}

// ListUpcoming returns scheduled rides departing after now, soonest first
func (r *Repository) ListUpcoming(ctx context.Context, limit, offset int) ([]*Ride, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM rides WHERE status = 'scheduled' AND departure_time > NOW()`
	if err := r.db.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count upcoming rides: %w", err)
	}

	query := `
		SELECT ` + rideColumns + `
		FROM rides
		WHERE status = 'scheduled' AND departure_time > NOW()
		ORDER BY departure_time
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list upcoming rides: %w", err)
	}
	defer rows.Close()

	var rides []*Ride
	for rows.Next() {
		ride, err := scanRide(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("scan ride: %w", err)
		}
		rides = append(rides, ride)
	}
	return rides, total, rows.Err()
}

// BookSeats reserves seats on a ride. The capacity check and the counter
// increment are one conditional update, so two concurrent bookings can never
// oversell: whichever commits second sees the incremented counter and matches
// zero rows.
func (r *Repository) BookSeats(ctx context.Context, rideID, customerID uuid.UUID, seats int) (*RideBooking, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin booking: %w", err)
	}
	defer tx.Rollback(ctx)

	reserve := `
		UPDATE rides
		SET booked_seats = booked_seats + $2, updated_at = NOW()
		WHERE id = $1
		  AND status = 'scheduled'
		  AND booked_seats + $2 <= total_seats`

	tag, err := tx.Exec(ctx, reserve, rideID, seats)
	if err != nil {
		return nil, fmt.Errorf("reserve seats: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNoCapacity
	}

	booking := &RideBooking{
		ID:         uuid.New(),
		RideID:     rideID,
		CustomerID: customerID,
		Seats:      seats,
		Status:     BookingActive,
	}

	insert := `
		INSERT INTO ride_bookings (id, ride_id, customer_id, seats, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())`

	if _, err := tx.Exec(ctx, insert, booking.ID, booking.RideID, booking.CustomerID, booking.Seats, booking.Status); err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}

	return booking, tx.Commit(ctx)
}

// CancelBooking marks a booking cancelled and releases its seats in one
// transaction
func (r *Repository) CancelBooking(ctx context.Context, bookingID, customerID uuid.UUID) (*RideBooking, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin cancellation: %w", err)
	}
	defer tx.Rollback(ctx)

	cancel := `
		UPDATE ride_bookings
		SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1 AND customer_id = $2 AND status = 'active'
		RETURNING ` + bookingColumns

	row := tx.QueryRow(ctx, cancel, bookingID, customerID)
	booking, err := scanBooking(row.Scan)
	if err != nil {
		return nil, err
	}

	release := `
		UPDATE rides
		SET booked_seats = booked_seats - $2, updated_at = NOW()
		WHERE id = $1`

	if _, err := tx.Exec(ctx, release, booking.RideID, booking.Seats); err != nil {
		return nil, fmt.Errorf("release seats: %w", err)
	}

	return booking, tx.Commit(ctx)
}

// ListBookingsByCustomer returns a customer's bookings, newest first
func (r *Repository) ListBookingsByCustomer(ctx context.Context, customerID uuid.UUID) ([]*RideBooking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM ride_bookings
		WHERE customer_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*RideBooking
	for rows.Next() {
		b, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// CompletePastDue marks scheduled rides whose departure has passed as
// completed and returns how many were swept
func (r *Repository) CompletePastDue(ctx context.Context) (int64, error) {
	query := `
		UPDATE rides
		SET status = 'completed', updated_at = NOW()
		WHERE status = 'scheduled' AND departure_time < NOW()`

	tag, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("complete past-due rides: %w", err)
	}
	return tag.RowsAffected(), nil
}
