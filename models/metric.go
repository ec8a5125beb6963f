package models

import (
	"time"

	"github.com/google/uuid"
)

// Metric is a client-side telemetry event stored verbatim. The payload is
// whatever JSON the app sent; it is never parsed server-side, only kept for
// later analysis.
type Metric struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time
	Payload   string `gorm:"type:jsonb;not null" json:"payload"`
}
