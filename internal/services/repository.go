package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicateType is returned when the provider already offers this service type
var ErrDuplicateType = errors.New("provider already offers this service type")

const uniqueViolation = "23505"

const serviceColumns = `
	id, provider_id, service_type, longitude, latitude, address,
	working_days, working_from, working_to,
	rating_sum, rating_count, created_at, updated_at`

// Repository handles database operations for service offerings
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new services repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func scanService(scan func(dest ...interface{}) error) (*Service, error) {
	s := &Service{}
	var longitude, latitude *float64
	err := scan(
		&s.ID, &s.ProviderID, &s.ServiceType, &longitude, &latitude, &s.Address,
		&s.WorkingDays, &s.WorkingFrom, &s.WorkingTo,
		&s.RatingSum, &s.RatingCount, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if longitude != nil && latitude != nil {
		s.Location = NewLocation(*longitude, *latitude)
	}
	return s, nil
}

// CreateService persists a new offering
func (r *Repository) CreateService(ctx context.Context, s *Service) error {
	query := `
		INSERT INTO services (
			id, provider_id, service_type, longitude, latitude, address,
			working_days, working_from, working_to
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	var longitude, latitude *float64
	if s.Location != nil {
		lon, lat := s.Location.Longitude(), s.Location.Latitude()
		longitude, latitude = &lon, &lat
	}

	err := r.db.QueryRow(ctx, query,
		s.ID, s.ProviderID, s.ServiceType, longitude, latitude, s.Address,
		s.WorkingDays, s.WorkingFrom, s.WorkingTo,
	).Scan(&s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateType
		}
		return fmt.Errorf("failed to create service: %w", err)
	}

	return nil
}

// GetServiceByID returns a single offering
func (r *Repository) GetServiceByID(ctx context.Context, id uuid.UUID) (*Service, error) {
	query := fmt.Sprintf(`SELECT %s FROM services WHERE id = $1`, serviceColumns)
	return scanService(func(dest ...interface{}) error {
		return r.db.QueryRow(ctx, query, id).Scan(dest...)
	})
}

// GetProviderServices returns all offerings owned by a provider
func (r *Repository) GetProviderServices(ctx context.Context, providerID uuid.UUID) ([]*Service, error) {
	query := fmt.Sprintf(`SELECT %s FROM services WHERE provider_id = $1 ORDER BY created_at`, serviceColumns)
	rows, err := r.db.Query(ctx, query, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []*Service
	for rows.Next() {
		s, err := scanService(rows.Scan)
		if err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

// UpdateService edits an offering; nil fields are left untouched
func (r *Repository) UpdateService(ctx context.Context, id uuid.UUID, req *UpdateServiceRequest) (*Service, error) {
	query := fmt.Sprintf(`
		UPDATE services SET
			longitude = COALESCE($2, longitude),
			latitude = COALESCE($3, latitude),
			address = COALESCE($4, address),
			working_days = COALESCE($5, working_days),
			working_from = COALESCE($6, working_from),
			working_to = COALESCE($7, working_to),
			updated_at = now()
		WHERE id = $1
		RETURNING %s`, serviceColumns)

	return scanService(func(dest ...interface{}) error {
		return r.db.QueryRow(ctx, query, id,
			req.Longitude, req.Latitude, req.Address,
			req.WorkingDays, req.WorkingFrom, req.WorkingTo,
		).Scan(dest...)
	})
}

// DeleteService removes an offering owned by the given provider
func (r *Repository) DeleteService(ctx context.Context, id, providerID uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM services WHERE id = $1 AND provider_id = $2`, id, providerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// FindNearby returns candidates of the given type within radiusMeters of the
// point, nearest first. This is the SQL fallback behind the Redis geo index;
// it orders by haversine distance computed in the query.
func (r *Repository) FindNearby(ctx context.Context, serviceType string, longitude, latitude, radiusMeters float64, limit int) ([]NearbyService, error) {
	query := `
		SELECT id, provider_id
		FROM (
			SELECT id, provider_id,
				2 * 6371000 * asin(sqrt(
					pow(sin(radians(latitude - $3) / 2), 2) +
					cos(radians($3)) * cos(radians(latitude)) *
					pow(sin(radians(longitude - $2) / 2), 2)
				)) AS distance_m
			FROM services
			WHERE service_type = $1 AND longitude IS NOT NULL AND latitude IS NOT NULL
		) candidates
		WHERE distance_m <= $4
		ORDER BY distance_m
		LIMIT $5
	`

	rows, err := r.db.Query(ctx, query, serviceType, longitude, latitude, radiusMeters, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []NearbyService
	for rows.Next() {
		var m NearbyService
		if err := rows.Scan(&m.ServiceID, &m.ProviderID); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// GetOwners resolves the owning provider for each service ID, preserving input
// order. Services that no longer exist are skipped.
func (r *Repository) GetOwners(ctx context.Context, serviceIDs []uuid.UUID) ([]NearbyService, error) {
	if len(serviceIDs) == 0 {
		return nil, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, provider_id FROM services WHERE id = ANY($1)`, serviceIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]uuid.UUID, len(serviceIDs))
	for rows.Next() {
		var id, providerID uuid.UUID
		if err := rows.Scan(&id, &providerID); err != nil {
			return nil, err
		}
		byID[id] = providerID
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	matches := make([]NearbyService, 0, len(serviceIDs))
	for _, id := range serviceIDs {
		if providerID, ok := byID[id]; ok {
			matches = append(matches, NearbyService{ServiceID: id, ProviderID: providerID})
		}
	}
	return matches, nil
}
