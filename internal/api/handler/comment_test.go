package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/thread_go_server/config"
	"github.com/qs3c/thread_go_server/internal/api/middleware"
	"github.com/qs3c/thread_go_server/internal/model/dto"
	"github.com/qs3c/thread_go_server/internal/pkg/response"
	"github.com/qs3c/thread_go_server/internal/repository"
	"github.com/qs3c/thread_go_server/internal/service"
	"github.com/qs3c/thread_go_server/internal/testutil"
)

// testContext 本地测试上下文
type testContext struct {
	DB *gorm.DB
}

func setupCommentHandler(t *testing.T) (*CommentHandler, *testContext, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	commentRepo := repository.NewCommentRepository(db)
	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	cfg := &config.Config{}

	notificationService := service.NewNotificationService(notificationRepo, nil)
	commentService := service.NewCommentService(commentRepo, userRepo, notificationService, nil, cfg)
	handler := NewCommentHandler(commentService)

	ctx := &testContext{
		DB: db,
	}

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return handler, ctx, cleanup
}

// mockAuth 模拟认证中间件
func mockAuth(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

func TestCommentHandler_List_Success(t *testing.T) {
	handler, ctx, cleanup := setupCommentHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, ctx.DB)
	testutil.TestComment(t, ctx.DB, user.ID, "Comment 1")
	testutil.TestComment(t, ctx.DB, user.ID, "Comment 2")

	router := gin.New()
	router.GET("/comments", handler.List)

	w := performRequest(router, "GET", "/comments", nil)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), data["total"])
}

func TestCommentHandler_List_Empty(t *testing.T) {
	handler, _, cleanup := setupCommentHandler(t)
	defer cleanup()

	router := gin.New()
	router.GET("/comments", handler.List)

	w := performRequest(router, "GET", "/comments", nil)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(0), data["total"])
}

func TestCommentHandler_List_WithReplies(t *testing.T) {
	handler, ctx, cleanup := setupCommentHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, ctx.DB)
	parent := testutil.TestComment(t, ctx.DB, user.ID, "Parent comment")
	testutil.TestComment(t, ctx.DB, user.ID, "Reply 1", testutil.WithParent(parent.ID))
	testutil.TestComment(t, ctx.DB, user.ID, "Reply 2", testutil.WithParent(parent.ID))

	router := gin.New()
	router.GET("/comments", handler.List)

	w := performRequest(router, "GET", "/comments", nil)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	// total 只统计顶层评论
	assert.Equal(t, float64(1), data["total"])

	comments, ok := data["comments"].([]interface{})
	require.True(t, ok)
	require.Len(t, comments, 1)

	firstItem := comments[0].(map[string]interface{})
	replies, ok := firstItem["replies"].([]interface{})
	require.True(t, ok)
	assert.Len(t, replies, 2)
}

func TestCommentHandler_Create_Success(t *testing.T) {
	handler, ctx, cleanup := setupCommentHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, ctx.DB)

	router := gin.New()
	router.Use(mockAuth(user.ID))
	router.POST("/comments", handler.Create)

	req := dto.CreateCommentRequest{
		Content: "This is a test comment",
	}

	w := performRequest(router, "POST", "/comments", req)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "This is a test comment", data["content"])
	assert.NotZero(t, data["id"])
	assert.Equal(t, true, data["can_edit"])
}

func TestCommentHandler_Create_Unauthorized(t *testing.T) {
	handler, _, cleanup := setupCommentHandler(t)
	defer cleanup()

	router := gin.New()
	router.POST("/comments", handler.Create)

	req := dto.CreateCommentRequest{
		Content: "Test comment",
	}

	w := performRequest(router, "POST", "/comments", req)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeAuthFailed, resp.Code)
}

func TestCommentHandler_Create_EmptyContent(t *testing.T) {
	handler, ctx, cleanup := setupCommentHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, ctx.DB)

	router := gin.New()
	router.Use(mockAuth(user.ID))
	router.POST("/comments", handler.Create)

	req := dto.CreateCommentRequest{
		Content: "",
	}

	w := performRequest(router, "POST", "/comments", req)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestCommentHandler_Create_Reply_Success(t *testing.T) {
	handler, ctx, cleanup := setupCommentHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, ctx.DB)
	parent := testutil.TestComment(t, ctx.DB, user.ID, "Parent comment")

	router := gin.New()
	router.Use(mockAuth(user.ID))
	router.POST("/comments", handler.Create)

	parentID := parent.ID
	req := dto.CreateCommentRequest{
		Content:  "This is a reply",
		ParentID: &parentID,
	}

	w := performRequest(router, "POST", "/comments", req)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "This is a reply", data["content"])
	assert.Equal(t, float64(parentID), data["parent_id"])
}

func TestCommentHandler_Create_Reply_ParentNotFound(t *testing.T) {
	handler, ctx, cleanup := setupCommentHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, ctx.DB)

	router := gin.New()
	router.Use(mockAuth(user.ID))
	router.POST("/comments", handler.Create)

	nonExistentParentID := int64(99999)
	req := dto.CreateCommentRequest{
		Content:  "This is a reply",
		ParentID: &nonExistentParentID,
	}

	w := performRequest(router, "POST", "/comments", req)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeResourceNotFound, resp.Code)
}

func TestCommentHandler_Create_Reply_ParentDeleted(t *testing.T) {
	handler, ctx, cleanup := setupCommentHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, ctx.DB)
	parent := testutil.TestComment(t, ctx.DB, user.ID, "Deleted parent", testutil.WithSoftDeleted(time.Now()))

	router := gin.New()
	router.Use(mockAuth(user.ID))
	router.POST("/comments", handler.Create)

	parentID := parent.ID
	req := dto.CreateCommentRequest{
		Content:  "This is a reply",
		ParentID: &parentID,
	}

	w := performRequest(router, "POST", "/comments", req)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeResourceNotFound, resp.Code)
}

func TestCommentHandler_Update_Success(t *testing.T) {
	handler, ctx, cleanup := setupCommentHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, ctx.DB)
	comment := testutil.TestComment(t, ctx.DB, user.ID, "Original content")

	router := gin.New()
	router.Use(mockAuth(user.ID))
	router.PUT("/comments/:id", handler.Update)

	req := dto.UpdateCommentRequest{
		Content: "Updated content",
	}

	w := performRequest(router, "PUT", fmt.Sprintf("/comments/%d", comment.ID), req)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Updated content", data["content"])
}

func TestCommentHandler_Update_NoPermission(t *testing.T) {
	handler, ctx, cleanup := setupCommentHandler(t)
	defer cleanup()

	owner := testutil.TestUser(t, ctx.DB)
	other := testutil.TestUser(t, ctx.DB)
	comment := testutil.TestComment(t, ctx.DB, owner.ID, "Someone else's comment")

	router := gin.New()
	router.Use(mockAuth(other.ID))
	router.PUT("/comments/:id", handler.Update)

	req := dto.UpdateCommentRequest{
		Content: "Hijacked content",
	}

	w := performRequest(router, "PUT", fmt.Sprintf("/comments/%d", comment.ID), req)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodePermissionDenied, resp.Code)
}

func TestCommentHandler_Update_WindowExpired(t *testing.T) {
	handler, ctx, cleanup := setupCommentHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, ctx.DB)
	comment := testutil.TestComment(t, ctx.DB, user.ID, "Old comment")
	// 20 分钟前发布，早过了 15 分钟编辑窗口
	testutil.SetCommentCreatedAt(t, ctx.DB, comment.ID, time.Now().Add(-20*time.Minute))

	router := gin.New()
	router.Use(mockAuth(user.ID))
	router.PUT("/comments/:id", handler.Update)

	req := dto.UpdateCommentRequest{
		Content: "Too late",
	}

	w := performRequest(router, "PUT", fmt.Sprintf("/comments/%d", comment.ID), req)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeWindowExpired, resp.Code)
}

func TestCommentHandler_Update_NotFound(t *testing.T) {
	handler, ctx, cleanup := setupCommentHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, ctx.DB)

	router := gin.New()
	router.Use(mockAuth(user.ID))
	router.PUT("/comments/:id", handler.Update)

	req := dto.UpdateCommentRequest{
		Content: "Updated content",
	}

	w := performRequest(router, "PUT", "/comments/99999", req)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeResourceNotFound, resp.Code)
}

func TestCommentHandler_Update_InvalidID(t *testing.T) {
	handler, ctx, cleanup := setupCommentHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, ctx.DB)

	router := gin.New()
	router.Use(mockAuth(user.ID))
	router.PUT("/comments/:id", handler.Update)

	req := dto.UpdateCommentRequest{
		Content: "Updated content",
	}

	w := performRequest(router, "PUT", "/comments/invalid", req)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestCommentHandler_Delete_Success(t *testing.T) {
	handler, ctx, cleanup := setupCommentHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, ctx.DB)
	comment := testutil.TestComment(t, ctx.DB, user.ID, "Comment to delete")

	router := gin.New()
	router.Use(mockAuth(user.ID))
	router.DELETE("/comments/:id", handler.Delete)

	w := performRequest(router, "DELETE", fmt.Sprintf("/comments/%d", comment.ID), nil)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)
}

func TestCommentHandler_Delete_Unauthorized(t *testing.T) {
	handler, ctx, cleanup := setupCommentHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, ctx.DB)
	comment := testutil.TestComment(t, ctx.DB, user.ID, "Comment")

	router := gin.New()
	router.DELETE("/comments/:id", handler.Delete)

	w := performRequest(router, "DELETE", fmt.Sprintf("/comments/%d", comment.ID), nil)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeAuthFailed, resp.Code)
}

func TestCommentHandler_Delete_NoPermission(t *testing.T) {
	handler, ctx, cleanup := setupCommentHandler(t)
	defer cleanup()

	owner := testutil.TestUser(t, ctx.DB)
	other := testutil.TestUser(t, ctx.DB)
	comment := testutil.TestComment(t, ctx.DB, owner.ID, "Comment")

	router := gin.New()
	router.Use(mockAuth(other.ID))
	router.DELETE("/comments/:id", handler.Delete)

	w := performRequest(router, "DELETE", fmt.Sprintf("/comments/%d", comment.ID), nil)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodePermissionDenied, resp.Code)
}

func TestCommentHandler_Delete_NotFound(t *testing.T) {
	handler, ctx, cleanup := setupCommentHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, ctx.DB)

	router := gin.New()
	router.Use(mockAuth(user.ID))
	router.DELETE("/comments/:id", handler.Delete)

	w := performRequest(router, "DELETE", "/comments/99999", nil)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeResourceNotFound, resp.Code)
}

func TestCommentHandler_Restore_Success(t *testing.T) {
	handler, ctx, cleanup := setupCommentHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, ctx.DB)
	comment := testutil.TestComment(t, ctx.DB, user.ID, "Deleted comment", testutil.WithSoftDeleted(time.Now().Add(-5*time.Minute)))

	router := gin.New()
	router.Use(mockAuth(user.ID))
	router.POST("/comments/:id/restore", handler.Restore)

	w := performRequest(router, "POST", fmt.Sprintf("/comments/%d/restore", comment.ID), nil)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, data["is_deleted"])
}

func TestCommentHandler_Restore_WindowExpired(t *testing.T) {
	handler, ctx, cleanup := setupCommentHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, ctx.DB)
	// 20 分钟前删除，过了 15 分钟恢复窗口
	comment := testutil.TestComment(t, ctx.DB, user.ID, "Long deleted", testutil.WithSoftDeleted(time.Now().Add(-20*time.Minute)))

	router := gin.New()
	router.Use(mockAuth(user.ID))
	router.POST("/comments/:id/restore", handler.Restore)

	w := performRequest(router, "POST", fmt.Sprintf("/comments/%d/restore", comment.ID), nil)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeWindowExpired, resp.Code)
}

func TestCommentHandler_Restore_NotDeleted(t *testing.T) {
	handler, ctx, cleanup := setupCommentHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, ctx.DB)
	comment := testutil.TestComment(t, ctx.DB, user.ID, "Active comment")

	router := gin.New()
	router.Use(mockAuth(user.ID))
	router.POST("/comments/:id/restore", handler.Restore)

	w := performRequest(router, "POST", fmt.Sprintf("/comments/%d/restore", comment.ID), nil)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeResourceNotFound, resp.Code)
}

func TestCommentHandler_Restore_NoPermission(t *testing.T) {
	handler, ctx, cleanup := setupCommentHandler(t)
	defer cleanup()

	owner := testutil.TestUser(t, ctx.DB)
	other := testutil.TestUser(t, ctx.DB)
	comment := testutil.TestComment(t, ctx.DB, owner.ID, "Deleted", testutil.WithSoftDeleted(time.Now()))

	router := gin.New()
	router.Use(mockAuth(other.ID))
	router.POST("/comments/:id/restore", handler.Restore)

	w := performRequest(router, "POST", fmt.Sprintf("/comments/%d/restore", comment.ID), nil)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodePermissionDenied, resp.Code)
}

func TestCommentHandler_CleanupExpired(t *testing.T) {
	handler, ctx, cleanup := setupCommentHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, ctx.DB)
	testutil.TestComment(t, ctx.DB, user.ID, "Expired", testutil.WithSoftDeleted(time.Now().Add(-30*time.Minute)))
	testutil.TestComment(t, ctx.DB, user.ID, "Still restorable", testutil.WithSoftDeleted(time.Now().Add(-5*time.Minute)))

	router := gin.New()
	router.Use(mockAuth(user.ID))
	router.POST("/comments/cleanup/expired", handler.CleanupExpired)

	w := performRequest(router, "POST", "/comments/cleanup/expired", nil)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), data["deleted_count"])
}
