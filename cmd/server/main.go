package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/qs3c/thread_go_server/config"
	"github.com/qs3c/thread_go_server/internal/api"
	"github.com/qs3c/thread_go_server/internal/api/handler"
	"github.com/qs3c/thread_go_server/internal/database"
	"github.com/qs3c/thread_go_server/internal/pkg/cron"
	"github.com/qs3c/thread_go_server/internal/pkg/oauth"
	"github.com/qs3c/thread_go_server/internal/pkg/pubsub"
	"github.com/qs3c/thread_go_server/internal/pkg/ws"
	"github.com/qs3c/thread_go_server/internal/repository"
	"github.com/qs3c/thread_go_server/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 初始化 WebSocket Hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// 实时事件走 Redis pub/sub，多实例部署时每个实例都能收到并转发给自己的连接
	publisher := pubsub.NewPublisher(rdb)
	subscriber := pubsub.NewSubscriber(rdb)
	go func() {
		err := subscriber.Subscribe(context.Background(), func(event *pubsub.SubscribedEvent) {
			msg := &ws.Message{Type: event.Type, Data: json.RawMessage(event.Data)}
			if event.UserID == 0 {
				wsHub.BroadcastAll(msg)
			} else {
				wsHub.SendToUser(event.UserID, msg)
			}
		})
		if err != nil && err != context.Canceled {
			log.Printf("Event subscriber stopped: %v", err)
		}
	}()

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// 初始化 Service
	authService := service.NewAuthService(userRepo, cfg)
	notificationService := service.NewNotificationService(notificationRepo, publisher)
	commentService := service.NewCommentService(commentRepo, userRepo, notificationService, publisher, cfg)

	// 初始化 Handler
	stateStore := oauth.NewStateStore(rdb)
	authHandler := handler.NewAuthHandler(authService, stateStore)
	commentHandler := handler.NewCommentHandler(commentService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	websocketHandler := handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret)

	// 启动过期评论清理任务
	reaper := cron.NewService(commentService, cfg.Reaper.IntervalMinutes)
	reaper.Start()
	defer reaper.Stop()

	// 初始化 Router
	router := api.NewRouter(
		authHandler,
		commentHandler,
		notificationHandler,
		websocketHandler,
		cfg,
	)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
