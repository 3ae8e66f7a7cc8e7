package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/thread_go_server/internal/model"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create 创建评论
func (r *CommentRepository) Create(comment *model.Comment) error {
	return r.db.Create(comment).Error
}

// Save 保存评论（编辑、软删、恢复都走这里）
func (r *CommentRepository) Save(comment *model.Comment) error {
	return r.db.Save(comment).Error
}

// GetByID 根据 ID 获取评论
func (r *CommentRepository) GetByID(id int64) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.Where("id = ?", id).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetActiveByID 获取未删除的评论
func (r *CommentRepository) GetActiveByID(id int64) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.Where("id = ? AND is_deleted = ?", id, false).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetActiveByIDWithUser 获取未删除的评论及用户信息
func (r *CommentRepository) GetActiveByIDWithUser(id int64) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.Preload("User").Where("id = ? AND is_deleted = ?", id, false).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetDeletedByID 获取已软删除的评论
func (r *CommentRepository) GetDeletedByID(id int64) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.Where("id = ? AND is_deleted = ?", id, true).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetDeletedByIDWithUser 获取已软删除的评论及用户信息
func (r *CommentRepository) GetDeletedByIDWithUser(id int64) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.Preload("User").Where("id = ? AND is_deleted = ?", id, true).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListAll 获取全部评论（含软删除），按创建时间倒序
func (r *CommentRepository) ListAll() ([]*model.Comment, error) {
	var comments []*model.Comment
	err := r.db.Preload("User").Order("created_at DESC").Find(&comments).Error
	return comments, err
}

// ListExpiredDeleted 获取删除时间早于 cutoff 的软删除评论
func (r *CommentRepository) ListExpiredDeleted(cutoff time.Time) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := r.db.Where("is_deleted = ? AND deleted_at < ?", true, cutoff).Find(&comments).Error
	return comments, err
}

// PurgeExpired 在单个事务内硬删除过期的软删除评论及其整棵回复子树。
// 根评论的删除语句重复 is_deleted/deleted_at 条件，期间提交的恢复会让该行
// 逃过本轮清理，其子树也只对真正删掉的根展开。
func (r *CommentRepository) PurgeExpired(cutoff time.Time) (int64, error) {
	var purged int64

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var roots []int64
		if err := tx.Model(&model.Comment{}).
			Where("is_deleted = ? AND deleted_at < ?", true, cutoff).
			Pluck("id", &roots).Error; err != nil {
			return err
		}
		if len(roots) == 0 {
			return nil
		}

		result := tx.Where("id IN ? AND is_deleted = ? AND deleted_at < ?", roots, true, cutoff).
			Delete(&model.Comment{})
		if result.Error != nil {
			return result.Error
		}
		purged = result.RowsAffected
		if purged == 0 {
			return nil
		}

		// 被恢复而幸存的根还在表里，剔除后剩下的才是已删根
		var survivors []int64
		if err := tx.Model(&model.Comment{}).Where("id IN ?", roots).Pluck("id", &survivors).Error; err != nil {
			return err
		}
		alive := make(map[int64]struct{}, len(survivors))
		for _, id := range survivors {
			alive[id] = struct{}{}
		}
		frontier := make([]int64, 0, len(roots))
		for _, id := range roots {
			if _, ok := alive[id]; !ok {
				frontier = append(frontier, id)
			}
		}

		// 逐层收集子树，父评论被硬删后不能留下悬空回复
		for len(frontier) > 0 {
			var children []int64
			if err := tx.Model(&model.Comment{}).Where("parent_id IN ?", frontier).Pluck("id", &children).Error; err != nil {
				return err
			}
			if len(children) == 0 {
				break
			}
			result := tx.Where("id IN ?", children).Delete(&model.Comment{})
			if result.Error != nil {
				return result.Error
			}
			purged += result.RowsAffected
			frontier = children
		}
		return nil
	})

	return purged, err
}

// Count 评论总数（含软删除）
func (r *CommentRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Comment{}).Count(&count).Error
	return count, err
}
