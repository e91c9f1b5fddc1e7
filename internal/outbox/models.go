package outbox

import (
	"time"

	"github.com/google/uuid"
)

// Event is a pending or delivered bus message persisted alongside the write
// that produced it
type Event struct {
	ID          uuid.UUID  `json:"id"`
	Topic       string     `json:"topic"`
	Payload     []byte     `json:"payload"`
	CreatedAt   time.Time  `json:"created_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}
