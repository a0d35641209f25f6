package models

import "time"

// UploadedFile records a stored upload. PostID stays nil until a post references it;
// unattached records past their grace period are removed by the cleaner.
type UploadedFile struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OwnerID      uint      `gorm:"index;not null" json:"owner_id"`
	PostID       *uint     `gorm:"index" json:"post_id"`
	StorageKey   string    `gorm:"size:512;not null" json:"-"`
	URL          string    `gorm:"size:512;uniqueIndex;not null" json:"url"`
	OriginalName string    `gorm:"size:255" json:"original_name"`
	Kind         string    `gorm:"size:16;not null" json:"kind"`
	ContentType  string    `gorm:"size:128" json:"content_type"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
