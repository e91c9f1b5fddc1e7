package outbox

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository stores and drains outbox events
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new outbox repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// InsertTx writes an event inside the caller's transaction so the event and
// the state change it describes commit or roll back together.
func (r *Repository) InsertTx(ctx context.Context, tx pgx.Tx, topic string, payload []byte) error {
	query := `
		INSERT INTO outbox_events (id, topic, payload, created_at)
		VALUES ($1, $2, $3, NOW())`

	// jsonb column; a raw []byte would be sent as bytea
	if _, err := tx.Exec(ctx, query, uuid.New(), topic, string(payload)); err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

// FetchUnpublished returns up to limit undelivered events, oldest first
func (r *Repository) FetchUnpublished(ctx context.Context, limit int) ([]*Event, error) {
	query := `
		SELECT id, topic, payload, created_at
		FROM outbox_events
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch unpublished events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Topic, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

// MarkPublished records that an event was delivered to the bus
func (r *Repository) MarkPublished(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE outbox_events SET published_at = NOW() WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("mark event published: %w", err)
	}
	return nil
}
