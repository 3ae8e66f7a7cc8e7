package dto

// NotificationItem 通知项（关联评论实时 join，不做冗余存储）
type NotificationItem struct {
	ID        int64                `json:"id"`
	Type      string               `json:"type"`
	IsRead    bool                 `json:"is_read"`
	Comment   *NotificationComment `json:"comment"`
	CreatedAt string               `json:"created_at"`
}

// NotificationComment 通知引用的评论摘要
type NotificationComment struct {
	ID       int64  `json:"id"`
	Content  string `json:"content"`
	Username string `json:"username"`
}

// UnreadCountResponse 未读数响应
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}
