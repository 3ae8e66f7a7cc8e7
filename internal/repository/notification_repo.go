package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/thread_go_server/internal/model"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create 创建通知
func (r *NotificationRepository) Create(notification *model.Notification) error {
	return r.db.Create(notification).Error
}

// Save 保存通知
func (r *NotificationRepository) Save(notification *model.Notification) error {
	return r.db.Save(notification).Error
}

// GetByIDAndUser 获取属于指定用户的通知
func (r *NotificationRepository) GetByIDAndUser(id, userID int64) (*model.Notification, error) {
	var notification model.Notification
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&notification).Error
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

// ListByUser 获取用户的全部通知，按创建时间倒序，实时 join 评论及其作者
func (r *NotificationRepository) ListByUser(userID int64) ([]*model.Notification, error) {
	var notifications []*model.Notification
	err := r.db.Preload("Comment").Preload("Comment.User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, err
}

// MarkAllRead 将用户所有未读通知置为已读
func (r *NotificationRepository) MarkAllRead(userID int64) error {
	return r.db.Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

// CountUnread 用户未读通知数
func (r *NotificationRepository) CountUnread(userID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}
