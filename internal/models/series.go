package models

import (
	"time"

	"github.com/google/uuid"
)

// Series lifecycle statuses.
const (
	StatusDraft     = "draft"
	StatusReview    = "review"
	StatusPublished = "published"
)

// Moderation actions.
const (
	ActionApprove        = "approve"
	ActionReject         = "reject"
	ActionRequestChanges = "request_changes"
)

// Series is a manhwa title moving through the draft/review/published workflow.
type Series struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string     `gorm:"not null;size:255" json:"title"`
	Slug        string     `gorm:"not null;size:255;index" json:"slug"`
	Synopsis    string     `gorm:"size:2000" json:"synopsis,omitempty"`
	CoverURL    string     `gorm:"size:500" json:"cover_url,omitempty"`
	Status      string     `gorm:"not null;default:'draft';size:20;index" json:"status"`
	CreatorID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"creator_id"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Creator     User       `gorm:"foreignKey:CreatorID" json:"-"`
}

// ModerationAction is one entry in a series' append-only moderation history.
// Rows are only ever inserted, never updated or deleted.
type ModerationAction struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SeriesID   uuid.UUID `gorm:"type:uuid;not null;index" json:"series_id"`
	ActorID    uuid.UUID `gorm:"type:uuid;not null" json:"actor_id"`
	Action     string    `gorm:"not null;size:30" json:"action"`
	Reason     string    `gorm:"size:500" json:"reason,omitempty"`
	Notes      string    `gorm:"size:1000" json:"notes,omitempty"`
	FromStatus string    `gorm:"not null;size:20" json:"from_status"`
	ToStatus   string    `gorm:"not null;size:20" json:"to_status"`
	CreatedAt  time.Time `json:"created_at"`
}
