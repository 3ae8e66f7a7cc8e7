package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/thread_go_server/internal/api/middleware"
	"github.com/qs3c/thread_go_server/internal/model/dto"
	"github.com/qs3c/thread_go_server/internal/pkg/response"
	"github.com/qs3c/thread_go_server/internal/service"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// List 获取评论树
// GET /api/v1/comments
func (h *CommentHandler) List(c *gin.Context) {
	items, total, err := h.commentService.List()
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, &dto.CommentTree{
		Comments: items,
		Total:    total,
	})
}

// Create 发表评论或回复
// POST /api/v1/comments
func (h *CommentHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	comment, err := h.commentService.Create(userID, &req)
	if err != nil {
		switch err {
		case service.ErrParentNotFound:
			response.NotFoundError(c, err.Error())
		case service.ErrUserNotFound:
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "评论成功", comment)
}

// Update 编辑评论
// PUT /api/v1/comments/:id
func (h *CommentHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	commentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的评论ID")
		return
	}

	var req dto.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	comment, err := h.commentService.Update(userID, commentID, &req)
	if err != nil {
		switch err {
		case service.ErrCommentNotFound:
			response.NotFoundError(c, err.Error())
		case service.ErrCommentPermission:
			response.PermissionError(c, err.Error())
		case service.ErrEditWindowExpired:
			response.WindowExpiredError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "编辑成功", comment)
}

// Delete 删除评论（软删除，窗口内可恢复）
// DELETE /api/v1/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	commentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的评论ID")
		return
	}

	if err := h.commentService.Delete(userID, commentID); err != nil {
		switch err {
		case service.ErrCommentNotFound:
			response.NotFoundError(c, err.Error())
		case service.ErrCommentPermission:
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

// Restore 恢复已删除的评论
// POST /api/v1/comments/:id/restore
func (h *CommentHandler) Restore(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	commentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的评论ID")
		return
	}

	comment, err := h.commentService.Restore(userID, commentID)
	if err != nil {
		switch err {
		case service.ErrCommentNotFound:
			response.NotFoundError(c, err.Error())
		case service.ErrCommentPermission:
			response.PermissionError(c, err.Error())
		case service.ErrRestoreWindowExpired:
			response.WindowExpiredError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "恢复成功", comment)
}

// CleanupExpired 手动触发过期评论清理
// POST /api/v1/comments/cleanup/expired
func (h *CommentHandler) CleanupExpired(c *gin.Context) {
	if _, ok := middleware.GetUserID(c); !ok {
		response.AuthError(c, "")
		return
	}

	count, err := h.commentService.PurgeExpired(time.Now())
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, &dto.CleanupResponse{DeletedCount: count})
}
