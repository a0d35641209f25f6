package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// DefaultRole is assigned when no job title is known.
const DefaultRole = "Collaborateur"

// User is either a local account (password hash set) or an OAuth account (no password).
type User struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	FirstName            string    `gorm:"size:128;not null" json:"first_name"`
	LastName             string    `gorm:"size:128;not null" json:"last_name"`
	Email                string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Service              Service   `gorm:"size:32;index;not null" json:"service"`
	Role                 string    `gorm:"size:128" json:"role"`
	IsAdmin              bool      `gorm:"index;not null" json:"is_admin"`
	IsOAuthUser          bool      `gorm:"not null" json:"is_oauth_user"`
	Avatar               string    `gorm:"type:text" json:"avatar"`
	NotificationsEnabled bool      `gorm:"not null" json:"notifications_enabled"`
	PasswordHash         string    `gorm:"size:255" json:"-"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// DisplayName is the "first last" snapshot used on posts and reactions.
func (u User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// BeforeSave keeps e-mail addresses in their canonical lower-case form.
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = NormalizeEmail(u.Email)
	return nil
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
