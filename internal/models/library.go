package models

import (
	"time"

	"github.com/google/uuid"
)

// Library entry statuses.
const (
	LibraryReading    = "reading"
	LibraryCompleted  = "completed"
	LibraryPlanToRead = "plan_to_read"
	LibraryDropped    = "dropped"
)

// LibraryEntry is one series in a user's personal reading library.
type LibraryEntry struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_library_user_series" json:"user_id"`
	SeriesID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_library_user_series" json:"series_id"`
	Status      string    `gorm:"not null;default:'reading';size:20" json:"status"`
	LastChapter int       `gorm:"default:0" json:"last_chapter"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Series      Series    `gorm:"foreignKey:SeriesID" json:"series"`
}
