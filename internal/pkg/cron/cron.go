package cron

import (
	"log"
	"time"

	"github.com/qs3c/thread_go_server/internal/service"
)

type Service struct {
	commentService *service.CommentService
	interval       time.Duration
	stopChan       chan struct{}
}

func NewService(commentService *service.CommentService, intervalMinutes int) *Service {
	if intervalMinutes <= 0 {
		intervalMinutes = 5
	}
	return &Service{
		commentService: commentService,
		interval:       time.Duration(intervalMinutes) * time.Minute,
		stopChan:       make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	go s.runPurgeLoop()
	log.Printf("Cron service started (expired comment purge every %s)", s.interval)
}

// Stop 停止定时任务
func (s *Service) Stop() {
	close(s.stopChan)
	log.Println("Cron service stopped")
}

// runPurgeLoop 按固定间隔清理过期的软删除评论
func (s *Service) runPurgeLoop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.purgeExpired()
		}
	}
}

// purgeExpired 单轮清理，失败只记日志，下一轮照常执行
func (s *Service) purgeExpired() {
	count, err := s.commentService.PurgeExpired(time.Now())
	if err != nil {
		log.Printf("Scheduled purge failed: %v", err)
		return
	}
	if count > 0 {
		log.Printf("Scheduled purge: permanently deleted %d expired comments", count)
	}
}

// RunNow 立即执行一次清理（手动触发或测试用）
func (s *Service) RunNow() (int64, error) {
	return s.commentService.PurgeExpired(time.Now())
}
