package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/qs3c/kidcare_server/config"
	"github.com/qs3c/kidcare_server/internal/api"
	"github.com/qs3c/kidcare_server/internal/api/handler"
	"github.com/qs3c/kidcare_server/internal/database"
	"github.com/qs3c/kidcare_server/internal/pkg/clock"
	"github.com/qs3c/kidcare_server/internal/pkg/cron"
	"github.com/qs3c/kidcare_server/internal/pkg/pubsub"
	"github.com/qs3c/kidcare_server/internal/pkg/queue"
	"github.com/qs3c/kidcare_server/internal/pkg/ws"
	"github.com/qs3c/kidcare_server/internal/repository"
	"github.com/qs3c/kidcare_server/internal/service"
	"github.com/qs3c/kidcare_server/internal/worker"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.Open(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		log.Println("Database migrated")
	}

	// 初始化 Redis（queue 模式必需，其余模式可选，用于跨进程推送进度）
	var rdb *redis.Client
	if cfg.Notification.Mode == "queue" || cfg.Redis.Host != "" {
		rdb, err = database.NewRedis(&cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to connect redis: %v", err)
		}
		log.Println("Redis connected")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 初始化 WebSocket
	wsHub := ws.NewHub()
	websocketHandler := handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret, cfg.CORS.AllowedOrigins)

	// 进度推送：有 Redis 时经由频道转发（worker 进程也能推到本进程的连接），否则直接推给 hub
	var publisher worker.StatusPublisher = websocketHandler
	if rdb != nil {
		publisher = pubsub.NewPublisher(rdb)
		subscriber := pubsub.NewSubscriber(rdb)
		go func() {
			err := subscriber.Subscribe(ctx, func(msg *pubsub.StatusMessage) {
				if err := websocketHandler.PublishStatus(ctx, msg); err != nil {
					log.Printf("Failed to forward status to user %d: %v", msg.UserID, err)
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("Status subscriber stopped: %v", err)
			}
		}()
	}

	// 初始化 Repository
	repos := repository.NewRepositories(db)

	// 通知投递方式
	processor := worker.NewDefaultProcessor(repos, cfg, publisher)
	timeout := time.Duration(cfg.Notification.TimeoutSeconds) * time.Second
	var (
		notifier service.Notifier
		inline   *worker.InlineNotifier
	)
	switch cfg.Notification.Mode {
	case "queue":
		notifier = worker.NewQueueNotifier(queue.NewQueue(rdb, cfg.Queue.NotificationQueue))
	case "sync":
		notifier = worker.NewSyncNotifier(processor, timeout)
	default:
		inline = worker.NewInlineNotifier(processor, timeout)
		notifier = inline
	}
	log.Printf("Notification mode: %s", cfg.Notification.Mode)

	// 初始化 Service
	clk := clock.Real()
	capacityService := service.NewCapacityService(repos.Catalog, repos.Subscription)
	pricingService := service.NewPricingService(repos.Catalog, cfg)
	promotionService := service.NewPromotionService(repos.Promotion, pricingService, clk)
	subscriptionService := service.NewSubscriptionService(db, repos, capacityService, promotionService, notifier, clk, cfg)

	// 定时维护
	if cfg.Maintenance.Enabled {
		cronService := cron.NewService(service.NewMaintenanceService(subscriptionService, repos, clk))
		cronService.Start()
		defer cronService.Stop()
	}

	// 初始化 Handler 和 Router
	router := api.NewRouter(
		handler.NewSubscriptionHandler(subscriptionService),
		handler.NewCatalogHandler(pricingService, capacityService),
		handler.NewPromotionHandler(promotionService),
		websocketHandler,
		cfg,
	)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router.Setup(),
	}

	go func() {
		log.Printf("Server starting on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	// 等待后台通知发完
	if inline != nil {
		inline.Wait()
	}
	log.Println("Server exited")
}
