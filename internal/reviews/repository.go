package reviews

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrTargetNotFound is returned when the reviewed service or provider does
// not exist
var ErrTargetNotFound = errors.New("review target not found")

const foreignKeyViolation = "23503"

// Repository handles database operations for reviews
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new reviews repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const serviceReviewColumns = `id, service_id, customer_id, rating, comment, created_at, updated_at`

func scanServiceReview(scan func(dest ...interface{}) error) (*ServiceReview, error) {
	var r ServiceReview
	err := scan(&r.ID, &r.ServiceID, &r.CustomerID, &r.Rating, &r.Comment, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

const providerReviewColumns = `id, provider_id, customer_id, rating, comment, created_at, updated_at`

func scanProviderReview(scan func(dest ...interface{}) error) (*ProviderReview, error) {
	var r ProviderReview
	err := scan(&r.ID, &r.ProviderID, &r.CustomerID, &r.Rating, &r.Comment, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// UpsertServiceReview inserts or replaces the customer's review of a service
// and folds the rating change into the service's running {sum, count}
// aggregate, all in one statement. There is no read-modify-write to race.
func (r *Repository) UpsertServiceReview(ctx context.Context, serviceID, customerID uuid.UUID, rating int, comment *string) (*ServiceReview, error) {
	query := `
		WITH old AS (
			SELECT rating FROM service_reviews
			WHERE service_id = $1 AND customer_id = $2
		), up AS (
			INSERT INTO service_reviews (id, service_id, customer_id, rating, comment, created_at, updated_at)
			VALUES ($3, $1, $2, $4, $5, NOW(), NOW())
			ON CONFLICT (service_id, customer_id)
			DO UPDATE SET rating = $4, comment = $5, updated_at = NOW()
			RETURNING ` + serviceReviewColumns + `
		), agg AS (
			UPDATE services s
			SET rating_sum = s.rating_sum + $4 - COALESCE((SELECT rating FROM old), 0),
			    rating_count = s.rating_count + CASE WHEN EXISTS (SELECT 1 FROM old) THEN 0 ELSE 1 END,
			    updated_at = NOW()
			WHERE s.id = $1
		)
		SELECT ` + serviceReviewColumns + ` FROM up`

	row := r.db.QueryRow(ctx, query, serviceID, customerID, uuid.New(), rating, comment)
	review, err := scanServiceReview(row.Scan)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return nil, ErrTargetNotFound
		}
		return nil, fmt.Errorf("upsert service review: %w", err)
	}
	return review, nil
}

// DeleteServiceReview removes the author's review and backs its rating out of
// the service aggregate atomically. With no reviews left the aggregate lands
// back on zero.
func (r *Repository) DeleteServiceReview(ctx context.Context, reviewID, customerID uuid.UUID) error {
	query := `
		WITH del AS (
			DELETE FROM service_reviews
			WHERE id = $1 AND customer_id = $2
			RETURNING service_id, rating
		)
		UPDATE services s
		SET rating_sum = s.rating_sum - del.rating,
		    rating_count = s.rating_count - 1,
		    updated_at = NOW()
		FROM del
		WHERE s.id = del.service_id`

	tag, err := r.db.Exec(ctx, query, reviewID, customerID)
	if err != nil {
		return fmt.Errorf("delete service review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListServiceReviews returns a service's reviews, newest first
func (r *Repository) ListServiceReviews(ctx context.Context, serviceID uuid.UUID) ([]*ServiceReview, error) {
	query := `
		SELECT ` + serviceReviewColumns + `
		FROM service_reviews
		WHERE service_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, serviceID)
	if err != nil {
		return nil, fmt.Errorf("list service reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*ServiceReview
	for rows.Next() {
		review, err := scanServiceReview(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan service review: %w", err)
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

// UpsertProviderReview inserts or replaces the customer's review of a provider
func (r *Repository) UpsertProviderReview(ctx context.Context, providerID, customerID uuid.UUID, rating int, comment *string) (*ProviderReview, error) {
	query := `
		INSERT INTO provider_reviews (id, provider_id, customer_id, rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (provider_id, customer_id)
		DO UPDATE SET rating = $4, comment = $5, updated_at = NOW()
		RETURNING ` + providerReviewColumns

	row := r.db.QueryRow(ctx, query, uuid.New(), providerID, customerID, rating, comment)
	review, err := scanProviderReview(row.Scan)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return nil, ErrTargetNotFound
		}
		return nil, fmt.Errorf("upsert provider review: %w", err)
	}
	return review, nil
}

// DeleteProviderReview removes the author's review of a provider
func (r *Repository) DeleteProviderReview(ctx context.Context, reviewID, customerID uuid.UUID) error {
	query := `DELETE FROM provider_reviews WHERE id = $1 AND customer_id = $2`

	tag, err := r.db.Exec(ctx, query, reviewID, customerID)
	if err != nil {
		return fmt.Errorf("delete provider review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListProviderReviews returns a provider's reviews, newest first
func (r *Repository) ListProviderReviews(ctx context.Context, providerID uuid.UUID) ([]*ProviderReview, error) {
	query := `
		SELECT ` + providerReviewColumns + `
		FROM provider_reviews
		WHERE provider_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, providerID)
	if err != nil {
		return nil, fmt.Errorf("list provider reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*ProviderReview
	for rows.Next() {
		review, err := scanProviderReview(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan provider review: %w", err)
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}
