package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auction-ledger/internal/api/handlers"
	"auction-ledger/internal/config"
	"auction-ledger/internal/infrastructure/mysql"
	"auction-ledger/internal/infrastructure/redis"
	"auction-ledger/internal/services"
	"auction-ledger/pkg/logger"
	"auction-ledger/pkg/utils"

	redisClient "github.com/go-redis/redis/v8"
)

func main() {
	configPath := flag.String("config", "", "Path to a config file (default: config.yaml in ., ./config or /etc/auction-ledger)")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadPath(*configPath)
	if err != nil {
		logger.New().Fatal("Failed to load config", "error", err)
	}

	log := logger.NewWithLevel(cfg.Log.Level)
	if !cfg.Redis.Enabled {
		log.Fatal("Analytics service reads the Redis event stream; set redis.enabled")
	}

	// Initialize Redis
	rdb := redisClient.NewClient(&redisClient.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to connect to Redis", "error", err)
	}

	// Initialize MySQL
	db, err := utils.InitializeMysql(ctx, cfg.MySQL)
	if err != nil {
		log.Fatal("Failed to connect to MySQL", "error", err)
	}
	defer db.Close()

	bidRepo := mysql.NewMySQLBidRepository(db)
	if err := bidRepo.EnsureSchema(ctx); err != nil {
		log.Fatal("Failed to create bid_events table", "error", err)
	}

	// Initialize services
	eventSubscriber := redis.NewRedisEventSubscriber(rdb, cfg.Redis.Channel, log)
	archive := services.NewArchiveService(bidRepo, log)
	archiveHandler := handlers.NewArchiveHandler(archive, log)

	runCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// Start service
	go func() {
		if err := archive.Start(runCtx, eventSubscriber); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatal("Analytics service failed", "error", err)
		}
	}()

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Analytics.Port),
		Handler: archiveHandler.Router(),
	}

	go func() {
		log.Info("Starting analytics service", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down analytics service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}
	stop()

	log.Info("Analytics service stopped")
}
