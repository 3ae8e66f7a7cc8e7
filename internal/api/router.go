package api

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/thread_go_server/config"
	"github.com/qs3c/thread_go_server/internal/api/handler"
	"github.com/qs3c/thread_go_server/internal/api/middleware"
)

type Router struct {
	authHandler         *handler.AuthHandler
	commentHandler      *handler.CommentHandler
	notificationHandler *handler.NotificationHandler
	websocketHandler    *handler.WebSocketHandler
	cfg                 *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	commentHandler *handler.CommentHandler,
	notificationHandler *handler.NotificationHandler,
	websocketHandler *handler.WebSocketHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:         authHandler,
		commentHandler:      commentHandler,
		notificationHandler: notificationHandler,
		websocketHandler:    websocketHandler,
		cfg:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// WebSocket
		api.GET("/ws", r.websocketHandler.Handle)

		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
			auth.GET("/github", r.authHandler.GithubAuth)
			auth.GET("/github/callback", r.authHandler.GithubCallback)
		}

		// 公开接口 - 评论树（未登录也可浏览）
		api.GET("/comments", r.commentHandler.List)

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			// 用户
			authenticated.GET("/user/profile", r.authHandler.Profile)

			// 评论
			comments := authenticated.Group("/comments")
			{
				comments.POST("", r.commentHandler.Create)
				comments.PUT("/:id", r.commentHandler.Update)
				comments.DELETE("/:id", r.commentHandler.Delete)
				comments.POST("/:id/restore", r.commentHandler.Restore)
				comments.POST("/cleanup/expired", r.commentHandler.CleanupExpired)
			}

			// 通知
			notifications := authenticated.Group("/notifications")
			{
				notifications.GET("", r.notificationHandler.List)
				notifications.GET("/unread-count", r.notificationHandler.UnreadCount)
				notifications.PUT("/:id/read", r.notificationHandler.MarkRead)
				notifications.PUT("/read-all", r.notificationHandler.MarkAllRead)
			}
		}
	}

	return engine
}
