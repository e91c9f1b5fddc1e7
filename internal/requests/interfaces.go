package requests

import (
	"context"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
)

// RepositoryInterface defines the interface for request repository operations
type RepositoryInterface interface {
	CreateRequest(ctx context.Context, req *Request, topic string, payload []byte) error
	GetRequestByID(ctx context.Context, id uuid.UUID) (*Request, error)
	Accept(ctx context.Context, requestID, providerID uuid.UUID, topic string, payload []byte) (bool, error)
	Confirm(ctx context.Context, requestID, customerID, providerID uuid.UUID, topic string, payload []byte) (bool, error)
	Complete(ctx context.Context, requestID, customerID uuid.UUID, topic string, payload []byte) (bool, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Request, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*Request, error)
}

// OutboxWriter appends an event inside the caller's transaction
type OutboxWriter interface {
	InsertTx(ctx context.Context, tx pgx.Tx, topic string, payload []byte) error
}
