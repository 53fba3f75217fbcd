package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/qs3c/kidcare_server/config"
	"github.com/qs3c/kidcare_server/internal/database"
	"github.com/qs3c/kidcare_server/internal/pkg/clock"
	"github.com/qs3c/kidcare_server/internal/repository"
	"github.com/qs3c/kidcare_server/internal/service"
)

var (
	dryRun         = flag.Bool("dry-run", true, "Dry run mode, don't actually change anything")
	cancelStale    = flag.Bool("cancel-stale", true, "Cancel pending subscriptions whose start month is over")
	reconcile      = flag.Bool("reconcile", true, "Rebuild capacity counters from subscriptions")
	timeoutMinutes = flag.Int("timeout", 10, "Minutes before the run is aborted")
)

func main() {
	flag.Parse()

	log.Println("Starting maintenance task...")
	log.Printf("Mode: dry-run=%v", *dryRun)

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
	db, err := database.Open(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(*timeoutMinutes)*time.Minute)
	defer cancel()

	// 维护任务不发通知
	repos := repository.NewRepositories(db)
	clk := clock.Real()
	capacityService := service.NewCapacityService(repos.Catalog, repos.Subscription)
	pricingService := service.NewPricingService(repos.Catalog, cfg)
	promotionService := service.NewPromotionService(repos.Promotion, pricingService, clk)
	subscriptionService := service.NewSubscriptionService(db, repos, capacityService, promotionService, nil, clk, cfg)
	maintenance := service.NewMaintenanceService(subscriptionService, repos, clk)

	failed := false
	cancelled, reconciled := 0, 0

	// 1. 取消过期未生效的订阅
	if *cancelStale {
		log.Println("Cancelling stale pending subscriptions...")
		cancelled, err = maintenance.CancelStalePending(ctx, *dryRun)
		if err != nil {
			log.Printf("Failed to cancel stale subscriptions: %v", err)
			failed = true
		}
	}

	// 2. 重建名额计数
	if *reconcile {
		log.Println("Reconciling capacity counters...")
		reconciled, err = maintenance.ReconcileCapacity(ctx, *dryRun)
		if err != nil {
			log.Printf("Failed to reconcile capacity: %v", err)
			failed = true
		}
	}

	// 输出统计
	log.Println(strings.Repeat("=", 60))
	log.Println("Maintenance Summary")
	log.Println(strings.Repeat("=", 60))
	log.Printf("Stale subscriptions: %d", cancelled)
	log.Printf("Drifted capacity counters: %d", reconciled)
	if *dryRun {
		log.Println("DRY RUN MODE - nothing was changed")
		log.Println("   Run with -dry-run=false to apply")
	} else {
		log.Println("Maintenance completed")
	}
	log.Println(strings.Repeat("=", 60))

	if failed {
		os.Exit(1)
	}
}
