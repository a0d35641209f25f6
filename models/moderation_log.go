package models

import "time"

// ModerationAction names an administrative decision on a post.
type ModerationAction string

const (
	ActionApprove ModerationAction = "approve"
	ActionReject  ModerationAction = "reject"
	ActionPin     ModerationAction = "pin"
	ActionUnpin   ModerationAction = "unpin"
)

// ModerationLog is an append-only audit row.
type ModerationLog struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	PostID    uint             `gorm:"index;not null" json:"post_id"`
	ActorID   uint             `gorm:"index;not null" json:"actor_id"`
	Action    ModerationAction `gorm:"size:16;not null" json:"action"`
	Reason    string           `gorm:"size:500" json:"reason,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// All returns the models to migrate, in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Post{},
		&UploadedFile{},
		&ModerationLog{},
	}
}
