package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a best-effort message to a user, e.g. a moderation outcome
// on one of their series. Creation failures are logged and swallowed; they
// never fail the operation that triggered them.
type Notification struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Kind      string     `gorm:"not null;size:50" json:"kind"`
	SeriesID  *uuid.UUID `gorm:"type:uuid;index" json:"series_id,omitempty"`
	Message   string     `gorm:"size:500" json:"message"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
