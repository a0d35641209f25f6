package models

import (
	"time"

	"gorm.io/datatypes"
)

// PostStatus is the moderation state of a post.
type PostStatus string

const (
	PostPending  PostStatus = "pending"
	PostApproved PostStatus = "approved"
	PostRejected PostStatus = "rejected"
)

// PinLocation is a feed where a pinned post is shown at the top.
type PinLocation string

const (
	PinGeneral PinLocation = "general"
	PinService PinLocation = "service"
)

// Attachment kinds.
const (
	AttachmentImage    = "image"
	AttachmentDocument = "document"
)

// Attachment describes an uploaded file referenced by a post.
type Attachment struct {
	Path         string `json:"path"`
	OriginalName string `json:"original_name"`
	Kind         string `json:"kind"`
	Size         int64  `json:"size"`
}

// Post is a department-scoped update that goes through moderation before being visible.
type Post struct {
	ID               uint                              `gorm:"primaryKey" json:"id"`
	Title            string                            `gorm:"size:255" json:"title"`
	Content          string                            `gorm:"type:text" json:"content"`
	Author           string                            `gorm:"size:255;not null" json:"author"`
	OwnerUserID      uint                              `gorm:"index;not null" json:"owner_user_id"`
	Service          Service                           `gorm:"size:32;index;not null" json:"service"`
	Status           PostStatus                        `gorm:"size:16;index;not null" json:"status"`
	IsPinned         bool                              `gorm:"index;not null" json:"is_pinned"`
	PinnedLocations  datatypes.JSONSlice[PinLocation]  `json:"pinned_locations"`
	PinnedAt         *time.Time                        `json:"pinned_at"`
	PinnedBy         *uint                             `json:"pinned_by"`
	PinnedOrder      int                               `gorm:"not null" json:"pinned_order"`
	Reactions        datatypes.JSONType[ReactionSet]   `json:"reactions"`
	ReactionTotal    int                               `gorm:"index;not null" json:"reaction_total"`
	Images           datatypes.JSONSlice[string]       `json:"images"`
	Files            datatypes.JSONSlice[Attachment]   `json:"files"`
	ApprovedBy       *uint                             `json:"approved_by"`
	ApprovedAt       *time.Time                        `json:"approved_at"`
	RejectionReason  string                            `gorm:"size:500" json:"rejection_reason"`
	NotificationSent bool                              `gorm:"not null" json:"notification_sent"`
	CreatedAt        time.Time                         `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time                         `json:"updated_at"`
}

// ReactionSet returns the normalised reaction tally.
func (p *Post) ReactionSet() ReactionSet {
	return p.Reactions.Data().Normalize()
}

// PinnedIn reports whether the post is pinned at the given location.
func (p *Post) PinnedIn(loc PinLocation) bool {
	if !p.IsPinned {
		return false
	}
	for _, l := range p.PinnedLocations {
		if l == loc {
			return true
		}
	}
	return false
}
