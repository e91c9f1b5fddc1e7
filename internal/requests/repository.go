package requests

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hasnaanagy/salik/internal/services"
)

// Repository handles database operations for service requests
type Repository struct {
	db     *pgxpool.Pool
	outbox OutboxWriter
}

// NewRepository creates a new request repository
func NewRepository(db *pgxpool.Pool, outbox OutboxWriter) *Repository {
	return &Repository{db: db, outbox: outbox}
}

const requestQuery = `
	SELECT
		r.id, r.customer_id, r.service_type, r.longitude, r.latitude,
		r.problem_description, r.status, r.confirmed_provider,
		r.created_at, r.updated_at,
		COALESCE(ARRAY_AGG(p.provider_id) FILTER (WHERE p.notified_at IS NOT NULL), '{}') AS notified_providers,
		COALESCE(ARRAY_AGG(p.provider_id) FILTER (WHERE p.state = 'accepted'), '{}') AS accepted_providers
	FROM service_requests r
	LEFT JOIN request_providers p ON p.request_id = r.id`

func scanRequest(scan func(dest ...interface{}) error) (*Request, error) {
	var req Request
	var longitude, latitude float64

	err := scan(
		&req.ID, &req.CustomerID, &req.ServiceType, &longitude, &latitude,
		&req.ProblemDescription, &req.Status, &req.ConfirmedProvider,
		&req.CreatedAt, &req.UpdatedAt,
		&req.NotifiedProviders, &req.AcceptedProviders,
	)
	if err != nil {
		return nil, err
	}

	req.Location = services.NewLocation(longitude, latitude)
	return &req, nil
}

// CreateRequest persists a pending request, its notified-provider rows and the
// fan-out event in one transaction. Either everything commits or nothing does.
func (r *Repository) CreateRequest(ctx context.Context, req *Request, topic string, payload []byte) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create request: %w", err)
	}
	defer tx.Rollback(ctx)

	insertRequest := `
		INSERT INTO service_requests (id, customer_id, service_type, longitude, latitude, problem_description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())`

	_, err = tx.Exec(ctx, insertRequest,
		req.ID, req.CustomerID, req.ServiceType,
		req.Location.Longitude(), req.Location.Latitude(),
		req.ProblemDescription, req.Status,
	)
	if err != nil {
		return fmt.Errorf("insert request: %w", err)
	}

	if len(req.NotifiedProviders) > 0 {
		insertNotified := `
			INSERT INTO request_providers (request_id, provider_id, state, notified_at, created_at)
			SELECT $1, UNNEST($2::uuid[]), 'notified', NOW(), NOW()`

		if _, err := tx.Exec(ctx, insertNotified, req.ID, req.NotifiedProviders); err != nil {
			return fmt.Errorf("insert notified providers: %w", err)
		}
	}

	if err := r.outbox.InsertTx(ctx, tx, topic, payload); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetRequestByID retrieves a request with its provider sets
func (r *Repository) GetRequestByID(ctx context.Context, id uuid.UUID) (*Request, error) {
	query := requestQuery + ` WHERE r.id = $1 GROUP BY r.id`

	row := r.db.QueryRow(ctx, query, id)
	return scanRequest(row.Scan)
}

// Accept records a provider's acceptance and advances a pending request to
// accepted. Repeat calls are no-ops: the event is only written the first time.
func (r *Repository) Accept(ctx context.Context, requestID, providerID uuid.UUID, topic string, payload []byte) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin accept: %w", err)
	}
	defer tx.Rollback(ctx)

	upsert := `
		INSERT INTO request_providers (request_id, provider_id, state, created_at)
		VALUES ($1, $2, 'accepted', NOW())
		ON CONFLICT (request_id, provider_id)
		DO UPDATE SET state = 'accepted'
		WHERE request_providers.state IS DISTINCT FROM 'accepted'
		RETURNING provider_id`

	var accepted uuid.UUID
	err = tx.QueryRow(ctx, upsert, requestID, providerID).Scan(&accepted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Already accepted, nothing to do
			return false, nil
		}
		return false, fmt.Errorf("record acceptance: %w", err)
	}

	advance := `
		UPDATE service_requests
		SET status = 'accepted', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`

	if _, err := tx.Exec(ctx, advance, requestID); err != nil {
		return false, fmt.Errorf("advance request to accepted: %w", err)
	}

	if err := r.outbox.InsertTx(ctx, tx, topic, payload); err != nil {
		return false, err
	}

	return true, tx.Commit(ctx)
}

// Confirm selects an accepted provider and advances the request to confirmed.
// The update carries its own preconditions so a concurrent transition cannot
// slip through; zero rows means the request was not in a confirmable state.
func (r *Repository) Confirm(ctx context.Context, requestID, customerID, providerID uuid.UUID, topic string, payload []byte) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin confirm: %w", err)
	}
	defer tx.Rollback(ctx)

	confirm := `
		UPDATE service_requests
		SET status = 'confirmed', confirmed_provider = $3, updated_at = NOW()
		WHERE id = $1 AND customer_id = $2 AND status = 'accepted'
		  AND EXISTS (
			SELECT 1 FROM request_providers
			WHERE request_id = $1 AND provider_id = $3 AND state = 'accepted'
		  )`

	tag, err := tx.Exec(ctx, confirm, requestID, customerID, providerID)
	if err != nil {
		return false, fmt.Errorf("confirm request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if err := r.outbox.InsertTx(ctx, tx, topic, payload); err != nil {
		return false, err
	}

	return true, tx.Commit(ctx)
}

// Complete advances a confirmed request to completed
func (r *Repository) Complete(ctx context.Context, requestID, customerID uuid.UUID, topic string, payload []byte) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin complete: %w", err)
	}
	defer tx.Rollback(ctx)

	complete := `
		UPDATE service_requests
		SET status = 'completed', updated_at = NOW()
		WHERE id = $1 AND customer_id = $2 AND status = 'confirmed'`

	tag, err := tx.Exec(ctx, complete, requestID, customerID)
	if err != nil {
		return false, fmt.Errorf("complete request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if err := r.outbox.InsertTx(ctx, tx, topic, payload); err != nil {
		return false, err
	}

	return true, tx.Commit(ctx)
}

// ListByCustomer returns all requests authored by the customer, newest first
func (r *Repository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Request, error) {
	query := requestQuery + `
		WHERE r.customer_id = $1
		GROUP BY r.id
		ORDER BY r.created_at DESC`

	return r.queryRequests(ctx, query, customerID)
}

// ListByProvider returns all requests where the provider was notified,
// accepted, or is the confirmed provider, newest first
func (r *Repository) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*Request, error) {
	query := requestQuery + `
		WHERE r.confirmed_provider = $1
		   OR EXISTS (
			SELECT 1 FROM request_providers rp
			WHERE rp.request_id = r.id AND rp.provider_id = $1
		   )
		GROUP BY r.id
		ORDER BY r.created_at DESC`

	return r.queryRequests(ctx, query, providerID)
}

func (r *Repository) queryRequests(ctx context.Context, query string, args ...interface{}) ([]*Request, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query requests: %w", err)
	}
	defer rows.Close()

	var list []*Request
	for rows.Next() {
		req, err := scanRequest(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		list = append(list, req)
	}
	return list, rows.Err()
}
