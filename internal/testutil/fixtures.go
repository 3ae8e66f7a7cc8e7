package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/thread_go_server/internal/model"
)

var fixtureSeq int64

func nextSeq() int64 {
	return atomic.AddInt64(&fixtureSeq, 1)
}

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	seq := nextSeq()
	email := fmt.Sprintf("test_%d@example.com", seq)
	passwordHash := "$2a$10$abcdefghijklmnopqrstuvwxyz123456" // bcrypt hash placeholder
	user := &model.User{
		Username:     fmt.Sprintf("testuser_%d", seq),
		Email:        &email,
		PasswordHash: &passwordHash,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithUsername 设置用户名
func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// TestComment 创建测试评论
func TestComment(t *testing.T, db *gorm.DB, userID int64, content string, opts ...func(*model.Comment)) *model.Comment {
	t.Helper()

	comment := &model.Comment{
		UserID:  userID,
		Content: content,
	}

	for _, opt := range opts {
		opt(comment)
	}

	if err := db.Create(comment).Error; err != nil {
		t.Fatalf("Failed to create test comment: %v", err)
	}

	return comment
}

// WithParent 设置父评论
func WithParent(parentID int64) func(*model.Comment) {
	return func(c *model.Comment) {
		c.ParentID = &parentID
	}
}

// WithCreatedAt 回拨创建时间（窗口测试不靠 sleep）
func WithCreatedAt(createdAt time.Time) func(*model.Comment) {
	return func(c *model.Comment) {
		c.CreatedAt = createdAt
	}
}

// WithSoftDeleted 标记为软删除
func WithSoftDeleted(deletedAt time.Time) func(*model.Comment) {
	return func(c *model.Comment) {
		c.IsDeleted = true
		c.DeletedAt = &deletedAt
	}
}

// TestNotification 创建测试通知
func TestNotification(t *testing.T, db *gorm.DB, userID, commentID int64, opts ...func(*model.Notification)) *model.Notification {
	t.Helper()

	notification := &model.Notification{
		UserID:    userID,
		CommentID: commentID,
		Type:      model.NotificationTypeReply,
	}

	for _, opt := range opts {
		opt(notification)
	}

	if err := db.Create(notification).Error; err != nil {
		t.Fatalf("Failed to create test notification: %v", err)
	}

	return notification
}

// WithRead 标记为已读
func WithRead() func(*model.Notification) {
	return func(n *model.Notification) {
		n.IsRead = true
	}
}

// SetNotificationCreatedAt 直接改通知的创建时间
func SetNotificationCreatedAt(t *testing.T, db *gorm.DB, notificationID int64, createdAt time.Time) {
	t.Helper()

	if err := db.Model(&model.Notification{}).Where("id = ?", notificationID).
		UpdateColumn("created_at", createdAt).Error; err != nil {
		t.Fatalf("Failed to set notification created_at: %v", err)
	}
}

// SetCommentCreatedAt 直接改库里的创建时间（绕过 gorm 自动时间戳）
func SetCommentCreatedAt(t *testing.T, db *gorm.DB, commentID int64, createdAt time.Time) {
	t.Helper()

	if err := db.Model(&model.Comment{}).Where("id = ?", commentID).
		UpdateColumn("created_at", createdAt).Error; err != nil {
		t.Fatalf("Failed to set comment created_at: %v", err)
	}
}

// SetCommentDeletedAt 直接改库里的删除时间
func SetCommentDeletedAt(t *testing.T, db *gorm.DB, commentID int64, deletedAt time.Time) {
	t.Helper()

	if err := db.Model(&model.Comment{}).Where("id = ?", commentID).
		UpdateColumns(map[string]interface{}{
			"is_deleted": true,
			"deleted_at": deletedAt,
		}).Error; err != nil {
		t.Fatalf("Failed to set comment deleted_at: %v", err)
	}
}
