package model

import (
	"time"
)

const (
	NotificationTypeReply   = "reply"
	NotificationTypeMention = "mention"
)

type Notification struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;index" json:"user_id"`
	CommentID int64     `gorm:"not null;index" json:"comment_id"`
	Type      string    `gorm:"size:20;not null" json:"type"` // reply, mention
	IsRead    bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	// 关联
	Comment *Comment `gorm:"foreignKey:CommentID" json:"comment,omitempty"`
}

func (Notification) TableName() string {
	return "notifications"
}
