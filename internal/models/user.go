package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Social auth providers. Accounts created through one of these cannot change
// email or password through self-service endpoints.
var SocialProviders = []string{"google", "facebook", "github"}

// User is a reader or publisher account.
type User struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email         string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Username      string         `gorm:"not null;size:50;uniqueIndex" json:"username"`
	DisplayName   string         `gorm:"size:100" json:"display_name"`
	FirstName     string         `gorm:"size:50" json:"first_name,omitempty"`
	LastName      string         `gorm:"size:50" json:"last_name,omitempty"`
	PasswordHash  string         `gorm:"not null" json:"-"`
	Role          string         `gorm:"size:20;default:'user'" json:"role"`
	Roles         datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"roles"`
	Provider      string         `gorm:"size:20;default:'local'" json:"-"`
	AvatarURL     string         `gorm:"size:500" json:"avatar_url,omitempty"`
	BackgroundURL string         `gorm:"size:500" json:"background_url,omitempty"`
	Preferences   datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"preferences,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	LastLoginAt   *time.Time     `json:"last_login_at,omitempty"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// RoleSet returns the normalized role set. Legacy records may carry an empty
// or missing set; it then falls back to [Role] or ["user"].
func (u *User) RoleSet() []string {
	var roles []string
	if len(u.Roles) > 0 {
		_ = json.Unmarshal(u.Roles, &roles)
	}
	if len(roles) == 0 {
		if u.Role != "" {
			return []string{u.Role}
		}
		return []string{"user"}
	}
	return roles
}

// SetRoles stores the role set, normalizing an empty input to the fallback.
func (u *User) SetRoles(roles []string) {
	if len(roles) == 0 {
		if u.Role != "" {
			roles = []string{u.Role}
		} else {
			roles = []string{"user"}
		}
	}
	b, _ := json.Marshal(roles)
	u.Roles = datatypes.JSON(b)
}

// IsSocial reports whether the account was created through a social provider.
func (u *User) IsSocial() bool {
	for _, p := range SocialProviders {
		if u.Provider == p {
			return true
		}
	}
	return false
}
