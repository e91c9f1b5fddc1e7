package outbox

import (
	"context"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"

	"github.com/hasnaanagy/salik/pkg/eventbus"
)

// RepositoryInterface defines the interface for outbox repository operations
type RepositoryInterface interface {
	InsertTx(ctx context.Context, tx pgx.Tx, topic string, payload []byte) error
	FetchUnpublished(ctx context.Context, limit int) ([]*Event, error)
	MarkPublished(ctx context.Context, id uuid.UUID) error
}

// Publisher delivers events to the bus
type Publisher interface {
	Publish(ctx context.Context, subject string, event *eventbus.Event) error
}
