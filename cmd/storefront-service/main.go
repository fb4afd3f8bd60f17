package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/api"
	"storefront/internal/api/handlers"
	"storefront/internal/config"
	"storefront/internal/infrastructure/leader"
	"storefront/internal/infrastructure/mysql"
	"storefront/internal/infrastructure/redis"
	"storefront/internal/infrastructure/websocket"
	"storefront/internal/services"
	"storefront/pkg/logger"
	"storefront/pkg/utils"
)

func loadConfig() (*config.Config, error) {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		logger.New().Fatal("Failed to load config", "error", err)
	}

	log := logger.NewWithLevel(cfg.Log.Level).With("instance_id", cfg.Instance.ID)
	defer logger.Sync(log)
	log.Info("Starting storefront service", "config", cfg.GetConfigString())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rdb, err := utils.InitializeRedis(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", "error", err)
	}
	defer rdb.Close()

	db, err := utils.InitializeMysql(ctx, cfg.MySQL, log)
	if err != nil {
		log.Fatal("Failed to connect to MySQL", "error", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close MySQL connection", "error", err)
		}
	}()

	// Initialize repositories
	storeRepo := redis.NewCachedStoreRepository(
		redis.NewRedisStoreCache(rdb, cfg.Redis.StoreCacheTTL),
		mysql.NewMySQLStoreRepository(db),
		log,
	)
	productRepo := mysql.NewMySQLProductRepository(db)
	orderRepo := mysql.NewMySQLOrderRepository(db)
	shopOwnerRepo := mysql.NewMySQLShopOwnerRepository(db)

	// Notification fanout
	registry := websocket.NewConnectionManager(log)
	notifier := websocket.NewWebSocketNotifier(registry, log)

	orderService := services.NewOrderService(storeRepo, productRepo, orderRepo, notifier, log)
	subscriptionService := services.NewSubscriptionService(shopOwnerRepo, notifier, log)

	leaderElection := leader.NewRedisLeaderElection(rdb, cfg.Leader.Key, cfg.Leader.TTL, log)
	scheduler := services.NewCronSubscriptionScheduler(cfg.Subscription.ExpirySweep, subscriptionService,
		leaderElection, cfg.Instance.ID, log)

	router := api.NewRouter(api.RouterConfig{
		WebSocketPath:  cfg.WebSocket.Path,
		AdminAPIKey:    cfg.Admin.APIKey,
		AllowedOrigins: cfg.WebSocket.AllowedOrigins,
		Orders:         handlers.NewOrderHandler(orderService, log),
		Subscriptions:  handlers.NewSubscriptionHandler(subscriptionService, log),
		WebSockets:     handlers.NewWebSocketHandlers(registry, storeRepo, cfg.WebSocket, log),
		Connections:    registry,
		Log:            log,
	})

	// Start background services
	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	if err := scheduler.Start(bgCtx); err != nil {
		log.Fatal("Failed to start subscription scheduler", "error", err)
	}

	// Try to become leader
	go func() {
		for {
			became, err := leaderElection.BecomeLeader(bgCtx, cfg.Instance.ID)
			wait := 10 * time.Second
			if err != nil {
				log.Error("Failed to attempt leadership", "error", err)
				wait = 5 * time.Second
			} else if became {
				log.Info("Leading subscription expiry sweeps")
			}

			select {
			case <-bgCtx.Done():
				return
			case <-time.After(wait):
			}
		}
	}()

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", "address", server.Addr, "websocket_path", cfg.WebSocket.Path)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down storefront service...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	stopBackground()
	if err := scheduler.Stop(); err != nil {
		log.Error("Failed to stop scheduler", "error", err)
	}
	if err := leaderElection.ReleaseLeadership(shutdownCtx, cfg.Instance.ID); err != nil {
		log.Error("Failed to release leadership", "error", err)
	}

	// Hijacked websocket connections are not tracked by Shutdown; their readers exit when the
	// process does.
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Storefront service stopped")
}
