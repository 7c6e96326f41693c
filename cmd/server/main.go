package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-event-booking/config"
	"go-event-booking/internal/cache"
	"go-event-booking/internal/database"
	"go-event-booking/internal/handler"
	"go-event-booking/internal/queue"
	"go-event-booking/internal/repository/postgres"
	"go-event-booking/internal/service"
	"go-event-booking/internal/worker"
	"go-event-booking/pkg/logger"
)

func main() {
	defer logger.Sync()
	log := logger.WithComponent("main")

	cfg := config.LoadConfig()
	ctx := context.Background()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool); err != nil {
		log.Fatal("Failed to ensure schema", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatal("Failed to initialize redis", zap.Error(err))
	}
	defer rdb.Close()

	eventRepo := postgres.NewEventRepository(pool)
	bookingRepo := postgres.NewBookingRepository(pool)
	txManager := postgres.NewTxManager(pool)

	inventory := cache.NewRedisSessionInventoryManager(rdb)

	bookingQueue, err := queue.NewRedisStreamBookingQueue(rdb, cfg.Queue.ConsumerID, &queue.RedisStreamBookingQueueConfig{
		MaxRetryCount: cfg.Queue.MaxRetryCount,
	})
	if err != nil {
		log.Fatal("Failed to initialize booking queue", zap.Error(err))
	}

	eventService := service.NewEventService(eventRepo, txManager, inventory)
	bookingService := service.NewBookingService(bookingRepo, eventRepo, txManager, bookingQueue)

	inventoryWorker := worker.NewBookingEventWorker(eventRepo, inventory, bookingQueue)
	if err := inventoryWorker.Start(ctx); err != nil {
		log.Fatal("Failed to start booking event worker", zap.Error(err))
	}

	router := gin.Default()
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	handler.NewEventHandler(eventService).RegisterRoutes(router)
	handler.NewBookingHandler(bookingService).RegisterRoutes(router)

	log.Info("Server starting", zap.String("addr", cfg.Server.Addr))
	if err := router.Run(cfg.Server.Addr); err != nil {
		log.Fatal("Server stopped", zap.Error(err))
	}
}
