package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/qs3c/thread_go_server/config"
	"github.com/qs3c/thread_go_server/internal/database"
	"github.com/qs3c/thread_go_server/internal/repository"
)

var (
	dryRun        = flag.Bool("dry-run", true, "Dry run mode, don't actually delete rows")
	windowMinutes = flag.Int("window", 15, "Restore window in minutes; soft-deleted comments older than this are purged")
)

func main() {
	flag.Parse()

	log.Println("Starting expired comment cleanup...")
	log.Printf("Mode: dry-run=%v, window=%dm", *dryRun, *windowMinutes)

	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 连接数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	commentRepo := repository.NewCommentRepository(db)
	cutoff := time.Now().Add(-time.Duration(*windowMinutes) * time.Minute)

	if *dryRun {
		expired, err := commentRepo.ListExpiredDeleted(cutoff)
		if err != nil {
			log.Fatalf("Failed to list expired comments: %v", err)
		}
		for _, c := range expired {
			log.Printf("Would purge comment %d (deleted at %s)", c.ID, c.DeletedAt.Format(time.RFC3339))
		}
		log.Printf("Dry run complete: %d comments would be purged (plus their reply subtrees)", len(expired))
		return
	}

	count, err := commentRepo.PurgeExpired(cutoff)
	if err != nil {
		log.Fatalf("Purge failed: %v", err)
	}
	log.Printf("Purged %d comments", count)
}
