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
	"auction-ledger/internal/api/middleware"
	"auction-ledger/internal/config"
	"auction-ledger/internal/domain"
	"auction-ledger/internal/infrastructure/memory"
	"auction-ledger/internal/infrastructure/redis"
	"auction-ledger/internal/infrastructure/websocket"
	"auction-ledger/internal/metrics"
	"auction-ledger/internal/services"
	"auction-ledger/pkg/logger"

	redisClient "github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type eventStream interface {
	domain.EventPublisher
	domain.EventSubscriber
}

// redisStream pairs the publisher and subscriber over one channel.
type redisStream struct {
	*redis.EventPublisherImpl
	*redis.RedisEventSubscriber
}

func newIDAllocator(cfg *config.Config, rdb *redisClient.Client) domain.IDAllocator {
	switch cfg.IDs.Strategy {
	case config.IDStrategyRandom:
		return services.NewRandomAllocator()
	case config.IDStrategyRedis:
		return redis.NewCounterAllocator(rdb, cfg.Redis.IDKey)
	default:
		return services.NewCounterAllocator()
	}
}

func main() {
	configPath := flag.String("config", "", "Path to a config file (default: config.yaml in ., ./config or /etc/auction-ledger)")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadPath(*configPath)
	if err != nil {
		logger.New().Fatal("Failed to load config", "error", err)
	}

	log := logger.NewWithLevel(cfg.Log.Level)
	log.Info("Starting auction service", "config", cfg.GetConfigString())

	// Event stream: Redis when enabled, otherwise in-process
	var rdb *redisClient.Client
	var stream eventStream
	if cfg.Redis.Enabled {
		rdb = redisClient.NewClient(&redisClient.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		// Test Redis connection
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.Fatal("Failed to connect to Redis", "error", err)
		}
		log.Info("Connected to Redis", "address", cfg.Redis.Address)

		stream = redisStream{
			EventPublisherImpl:   redis.NewEventPublisher(rdb, cfg.Redis.Channel),
			RedisEventSubscriber: redis.NewRedisEventSubscriber(rdb, cfg.Redis.Channel, log),
		}
	} else {
		stream = memory.NewEventBus(log)
	}

	appMetrics := metrics.New(prometheus.DefaultRegisterer)

	// Core
	registry := services.NewAuctionRegistry(
		newIDAllocator(cfg, rdb),
		services.SystemClock{},
		services.NewBiddingEngine(),
		log,
	)
	auctionService := services.NewAuctionService(registry, stream, appMetrics, log)
	bidService := services.NewBidService(registry, stream, appMetrics, log)
	scheduler := services.NewClosingScheduler(cfg.Scheduler.Spec, registry, stream, appMetrics, log)

	// Live feed
	connManager := websocket.NewConnectionManager(log)
	notifier := websocket.NewWebSocketNotifier(connManager)
	eventListener := services.NewEventListener(notifier, notifier, log)

	// Initialize handlers
	auctionHandler := handlers.NewAuctionHandler(auctionService, bidService, log)
	wsHandlers := handlers.NewWebSocketHandlers(bidService, auctionService, connManager, log)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.LoggerWithConfig(echomiddleware.LoggerConfig{
		Format: `{"time":"${time_rfc3339}","id":"${id}","remote_ip":"${remote_ip}","method":"${method}","uri":"${uri}","status":${status},"error":"${error}","latency_human":"${latency_human}","bytes_in":${bytes_in},"bytes_out":${bytes_out}}` + "\n",
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			middleware.HeaderCallerPrincipal,
		},
		MaxAge: 86400,
	}))
	e.Use(middleware.Caller())

	// API routes
	api := e.Group("/api/v1", echomiddleware.BodyLimit(cfg.Server.BodyLimit))
	auctionHandler.Register(api)

	// WebSocket routes
	e.Any("/ws/*", echo.WrapHandler(wsHandlers.Router()))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"service":   "auction-ledger",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Start background services
	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	if err := scheduler.Start(bgCtx); err != nil {
		log.Fatal("Failed to start scheduler", "error", err)
	}

	go func() {
		if err := eventListener.Start(bgCtx, stream); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Event listener stopped", "error", err)
		}
	}()

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		log.Info("Starting auction server", "address", serverAddr)
		if err := e.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down auction service...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}
	if err := scheduler.Stop(); err != nil {
		log.Error("Failed to stop scheduler", "error", err)
	}
	stopBackground()

	log.Info("Auction service stopped")
}
