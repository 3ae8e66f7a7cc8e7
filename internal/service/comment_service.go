package service

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/thread_go_server/config"
	"github.com/qs3c/thread_go_server/internal/model"
	"github.com/qs3c/thread_go_server/internal/model/dto"
	"github.com/qs3c/thread_go_server/internal/pkg/pubsub"
	"github.com/qs3c/thread_go_server/internal/repository"
)

var (
	ErrCommentNotFound      = errors.New("评论不存在")
	ErrCommentPermission    = errors.New("无权操作此评论")
	ErrParentNotFound       = errors.New("父评论不存在")
	ErrEditWindowExpired    = errors.New("评论发布已超过可编辑时间")
	ErrRestoreWindowExpired = errors.New("评论删除已超过可恢复时间")
)

const defaultWindowMinutes = 15

type CommentService struct {
	commentRepo         *repository.CommentRepository
	userRepo            *repository.UserRepository
	notificationService *NotificationService
	publisher           *pubsub.Publisher
	cfg                 *config.Config
}

func NewCommentService(
	commentRepo *repository.CommentRepository,
	userRepo *repository.UserRepository,
	notificationService *NotificationService,
	publisher *pubsub.Publisher,
	cfg *config.Config,
) *CommentService {
	return &CommentService{
		commentRepo:         commentRepo,
		userRepo:            userRepo,
		notificationService: notificationService,
		publisher:           publisher,
		cfg:                 cfg,
	}
}

// editWindow 发布后可编辑时长
func (s *CommentService) editWindow() time.Duration {
	minutes := s.cfg.Comment.EditWindowMinutes
	if minutes <= 0 {
		minutes = defaultWindowMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// restoreWindow 删除后可恢复时长
func (s *CommentService) restoreWindow() time.Duration {
	minutes := s.cfg.Comment.RestoreWindowMinutes
	if minutes <= 0 {
		minutes = defaultWindowMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// Create 发表评论或回复
func (s *CommentService) Create(userID int64, req *dto.CreateCommentRequest) (*dto.CommentItem, error) {
	// 如果是回复，父评论必须存在且未被删除
	var parent *model.Comment
	if req.ParentID != nil {
		var err error
		parent, err = s.commentRepo.GetActiveByID(*req.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	comment := &model.Comment{
		UserID:   userID,
		ParentID: req.ParentID,
		Content:  req.Content,
	}

	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}
	comment.User = user

	item := s.buildCommentItem(comment, s.editWindow())

	// 新评论对所有连接广播，未登录的围观者也能收到
	s.publish(&pubsub.Event{
		Type: pubsub.EventNewComment,
		Data: item,
	})

	// 回复别人的评论时给对方发通知，回复自己不发
	if parent != nil && parent.UserID != userID {
		if _, err := s.notificationService.NotifyReply(parent.UserID, comment, user); err != nil {
			log.Printf("Failed to create reply notification: %v", err)
		}
	}

	return item, nil
}

// List 获取完整评论树：顶层按创建时间倒序，各层回复按创建时间正序
func (s *CommentService) List() ([]*dto.CommentItem, int, error) {
	comments, err := s.commentRepo.ListAll()
	if err != nil {
		return nil, 0, err
	}

	window := s.editWindow()

	// 单次查询拿全量，按 parent_id 分组建树，避免逐层递归查库
	items := make(map[int64]*dto.CommentItem, len(comments))
	for _, c := range comments {
		items[c.ID] = s.buildCommentItem(c, window)
	}

	topLevel := make([]*dto.CommentItem, 0)
	childrenOf := make(map[int64][]*model.Comment)
	for _, c := range comments {
		if c.ParentID == nil {
			// ListAll 已按 created_at DESC 排好
			topLevel = append(topLevel, items[c.ID])
			continue
		}
		childrenOf[*c.ParentID] = append(childrenOf[*c.ParentID], c)
	}

	for parentID, children := range childrenOf {
		parentItem, ok := items[parentID]
		if !ok {
			// 父评论已被硬删，悬空回复不进树
			continue
		}
		sort.Slice(children, func(i, j int) bool {
			if children[i].CreatedAt.Equal(children[j].CreatedAt) {
				return children[i].ID < children[j].ID
			}
			return children[i].CreatedAt.Before(children[j].CreatedAt)
		})
		for _, child := range children {
			parentItem.Replies = append(parentItem.Replies, items[child.ID])
		}
	}

	return topLevel, len(topLevel), nil
}

// Update 编辑评论，仅限作者本人且在可编辑窗口内
func (s *CommentService) Update(userID, commentID int64, req *dto.UpdateCommentRequest) (*dto.CommentItem, error) {
	comment, err := s.commentRepo.GetActiveByIDWithUser(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	if comment.UserID != userID {
		return nil, ErrCommentPermission
	}

	if !comment.CanEdit(s.editWindow()) {
		return nil, ErrEditWindowExpired
	}

	comment.Content = req.Content
	if err := s.commentRepo.Save(comment); err != nil {
		return nil, err
	}

	return s.buildCommentItem(comment, s.editWindow()), nil
}

// Delete 软删除评论，内容保留，窗口内可恢复
func (s *CommentService) Delete(userID, commentID int64) error {
	comment, err := s.commentRepo.GetActiveByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	if comment.UserID != userID {
		return ErrCommentPermission
	}

	now := time.Now()
	comment.IsDeleted = true
	comment.DeletedAt = &now
	return s.commentRepo.Save(comment)
}

// Restore 恢复软删除的评论，仅限作者本人且在可恢复窗口内
func (s *CommentService) Restore(userID, commentID int64) (*dto.CommentItem, error) {
	comment, err := s.commentRepo.GetDeletedByIDWithUser(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	if comment.UserID != userID {
		return nil, ErrCommentPermission
	}

	if !comment.CanRestore(s.restoreWindow()) {
		return nil, ErrRestoreWindowExpired
	}

	comment.IsDeleted = false
	comment.DeletedAt = nil
	if err := s.commentRepo.Save(comment); err != nil {
		return nil, err
	}

	return s.buildCommentItem(comment, s.editWindow()), nil
}

// PurgeExpired 硬删除恢复窗口已过的软删除评论，返回删除行数
func (s *CommentService) PurgeExpired(now time.Time) (int64, error) {
	cutoff := now.Add(-s.restoreWindow())
	return s.commentRepo.PurgeExpired(cutoff)
}

func (s *CommentService) buildCommentItem(c *model.Comment, editWindow time.Duration) *dto.CommentItem {
	item := &dto.CommentItem{
		ID:        c.ID,
		ParentID:  c.ParentID,
		Content:   c.Content,
		IsDeleted: c.IsDeleted,
		CanEdit:   c.CanEdit(editWindow),
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}

	if c.DeletedAt != nil {
		deletedAt := c.DeletedAt.Format(time.RFC3339)
		item.DeletedAt = &deletedAt
	}

	if c.User != nil {
		item.User = &dto.CommentUser{
			ID:        c.User.ID,
			Username:  c.User.Username,
			AvatarURL: c.User.AvatarURL,
		}
	}

	return item
}

// publish 实时推送是尽力而为，失败只记日志
func (s *CommentService) publish(event *pubsub.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(context.Background(), event); err != nil {
		log.Printf("Failed to publish %s event: %v", event.Type, err)
	}
}
