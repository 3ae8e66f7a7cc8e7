package service

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/thread_go_server/internal/model"
	"github.com/qs3c/thread_go_server/internal/model/dto"
	"github.com/qs3c/thread_go_server/internal/pkg/pubsub"
	"github.com/qs3c/thread_go_server/internal/repository"
)

var (
	ErrNotificationNotFound = errors.New("通知不存在")
)

type NotificationService struct {
	notificationRepo *repository.NotificationRepository
	publisher        *pubsub.Publisher
}

func NewNotificationService(
	notificationRepo *repository.NotificationRepository,
	publisher *pubsub.Publisher,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		publisher:        publisher,
	}
}

// NotifyReply 给被回复的评论作者创建回复通知并实时推送
func (s *NotificationService) NotifyReply(recipientID int64, reply *model.Comment, author *model.User) (*model.Notification, error) {
	notification := &model.Notification{
		UserID:    recipientID,
		CommentID: reply.ID,
		Type:      model.NotificationTypeReply,
	}

	if err := s.notificationRepo.Create(notification); err != nil {
		return nil, err
	}

	// 只推给接收者本人的连接，不在线就静默跳过，记录已落库
	s.publish(&pubsub.Event{
		Type:   pubsub.EventNotification,
		UserID: recipientID,
		Data: &dto.NotificationItem{
			ID:     notification.ID,
			Type:   notification.Type,
			IsRead: notification.IsRead,
			Comment: &dto.NotificationComment{
				ID:       reply.ID,
				Content:  reply.Content,
				Username: author.Username,
			},
			CreatedAt: notification.CreatedAt.Format(time.RFC3339),
		},
	})

	return notification, nil
}

// List 获取用户的通知列表，引用的评论内容和作者实时读取
func (s *NotificationService) List(userID int64) ([]*dto.NotificationItem, error) {
	notifications, err := s.notificationRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.NotificationItem, 0, len(notifications))
	for _, n := range notifications {
		item := &dto.NotificationItem{
			ID:        n.ID,
			Type:      n.Type,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt.Format(time.RFC3339),
		}

		if n.Comment != nil {
			item.Comment = &dto.NotificationComment{
				ID:      n.Comment.ID,
				Content: n.Comment.Content,
			}
			if n.Comment.User != nil {
				item.Comment.Username = n.Comment.User.Username
			}
		}

		items = append(items, item)
	}

	return items, nil
}

// MarkRead 将单条通知置为已读，只能操作自己的通知，重复调用无副作用
func (s *NotificationService) MarkRead(userID, notificationID int64) error {
	notification, err := s.notificationRepo.GetByIDAndUser(notificationID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}

	if notification.IsRead {
		return nil
	}

	notification.IsRead = true
	return s.notificationRepo.Save(notification)
}

// MarkAllRead 将用户所有未读通知置为已读，没有未读也不报错
func (s *NotificationService) MarkAllRead(userID int64) error {
	return s.notificationRepo.MarkAllRead(userID)
}

// UnreadCount 用户未读通知数
func (s *NotificationService) UnreadCount(userID int64) (int64, error) {
	return s.notificationRepo.CountUnread(userID)
}

func (s *NotificationService) publish(event *pubsub.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(context.Background(), event); err != nil {
		log.Printf("Failed to publish %s event: %v", event.Type, err)
	}
}
