package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ReaderProfile carries per-user reading counters and preferences.
type ReaderProfile struct {
	UserID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"user_id"`
	ChaptersRead    int            `gorm:"default:0" json:"chapters_read"`
	SeriesCompleted int            `gorm:"default:0" json:"series_completed"`
	CommentsPosted  int            `gorm:"default:0" json:"comments_posted"`
	Preferences     datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"preferences,omitempty"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// ActivityEntry is one item in a user's recent-activity feed. Reads return a
// bounded recent window, newest first.
type ActivityEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Kind      string    `gorm:"not null;size:50" json:"kind"`
	Detail    string    `gorm:"size:500" json:"detail,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// Achievement records a counter threshold a user has crossed. Unlocked once,
// never revoked.
type Achievement struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_achievements_user_code" json:"user_id"`
	Code       string    `gorm:"not null;size:50;uniqueIndex:idx_achievements_user_code" json:"code"`
	UnlockedAt time.Time `json:"unlocked_at"`
}
