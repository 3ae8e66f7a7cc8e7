package model

import (
	"time"
)

type Comment struct {
	ID        int64      `gorm:"primaryKey" json:"id"`
	UserID    int64      `gorm:"not null;index" json:"user_id"`
	ParentID  *int64     `gorm:"index" json:"parent_id,omitempty"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	IsDeleted bool       `gorm:"not null;default:false;index" json:"is_deleted"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// 关联
	User    *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Replies []*Comment `gorm:"-" json:"replies,omitempty"`
}

func (Comment) TableName() string {
	return "comments"
}

// CanEdit 是否在发布后的可编辑窗口内
func (c *Comment) CanEdit(window time.Duration) bool {
	return time.Since(c.CreatedAt) <= window
}

// CanRestore 是否在删除后的可恢复窗口内
func (c *Comment) CanRestore(window time.Duration) bool {
	if !c.IsDeleted || c.DeletedAt == nil {
		return false
	}
	return time.Since(*c.DeletedAt) <= window
}
