package dto

// CreateCommentRequest 创建评论请求
type CreateCommentRequest struct {
	Content  string `json:"content" binding:"required,min=1,max=2000"`
	ParentID *int64 `json:"parent_id,omitempty"`
}

// UpdateCommentRequest 编辑评论请求
type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required,min=1,max=2000"`
}

// CommentItem 评论项（含递归回复）
type CommentItem struct {
	ID        int64          `json:"id"`
	User      *CommentUser   `json:"user"`
	Content   string         `json:"content"`
	ParentID  *int64         `json:"parent_id"`
	IsDeleted bool           `json:"is_deleted"`
	DeletedAt *string        `json:"deleted_at,omitempty"`
	CanEdit   bool           `json:"can_edit"`
	Replies   []*CommentItem `json:"replies,omitempty"`
	CreatedAt string         `json:"created_at"`
	UpdatedAt string         `json:"updated_at"`
}

// CommentUser 评论用户信息
type CommentUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// CommentTree 评论树响应
type CommentTree struct {
	Comments []*CommentItem `json:"comments"`
	// Total 只统计顶层评论，软删除占位的顶层也计入，不含回复
	Total int `json:"total"`
}

// CleanupResponse 手动清理响应
type CleanupResponse struct {
	DeletedCount int64 `json:"deleted_count"`
}
