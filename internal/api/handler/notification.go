package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/thread_go_server/internal/api/middleware"
	"github.com/qs3c/thread_go_server/internal/model/dto"
	"github.com/qs3c/thread_go_server/internal/pkg/response"
	"github.com/qs3c/thread_go_server/internal/service"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// List 获取通知列表
// GET /api/v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	items, err := h.notificationService.List(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, items)
}

// UnreadCount 获取未读通知数
// GET /api/v1/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	count, err := h.notificationService.UnreadCount(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, &dto.UnreadCountResponse{Count: count})
}

// MarkRead 将单条通知置为已读
// PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	notificationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的通知ID")
		return
	}

	if err := h.notificationService.MarkRead(userID, notificationID); err != nil {
		switch err {
		case service.ErrNotificationNotFound:
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "已读", nil)
}

// MarkAllRead 将全部通知置为已读
// PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	if err := h.notificationService.MarkAllRead(userID); err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "全部已读", nil)
}
