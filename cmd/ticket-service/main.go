package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ticketrush/ticketrush/internal/ticket/di"
	"github.com/ticketrush/ticketrush/pkg/config"
	"github.com/ticketrush/ticketrush/pkg/database"
	"github.com/ticketrush/ticketrush/pkg/logger"
	"github.com/ticketrush/ticketrush/pkg/middleware"
	"github.com/ticketrush/ticketrush/pkg/rabbitmq"
	"github.com/ticketrush/ticketrush/pkg/redis"
	"github.com/ticketrush/ticketrush/pkg/response"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLog, err := logger.Init(&logger.Config{
		Environment: cfg.App.Environment,
		Level:       "info",
		ServiceName: "ticket-service",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLog.Sync()

	appLog.Info("Starting Ticket Service...")

	ctx := context.Background()

	// Initialize database connection (uses TicketDatabase config)
	dbCfg := &database.PostgresConfig{
		Host:            cfg.TicketDatabase.Host,
		Port:            cfg.TicketDatabase.Port,
		User:            cfg.TicketDatabase.User,
		Password:        cfg.TicketDatabase.Password,
		Database:        cfg.TicketDatabase.DBName,
		SSLMode:         cfg.TicketDatabase.SSLMode,
		MaxConns:        cfg.TicketDatabase.MaxConns,
		MinConns:        cfg.TicketDatabase.MinConns,
		MaxConnLifetime: cfg.TicketDatabase.ConnMaxLifetime,
		MaxConnIdleTime: cfg.TicketDatabase.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   time.Second,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()
	appLog.Info(fmt.Sprintf("Database connected (pool: min=%d, max=%d)", dbCfg.MinConns, dbCfg.MaxConns))

	// Initialize Redis connection (optional - purchase idempotency degrades
	// gracefully when it is down)
	var redisClient *redis.Client
	redisClient, err = redis.NewClient(ctx, &redis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
		MaxRetries:    3,
		RetryInterval: time.Second,
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("Redis connection failed (idempotency disabled): %v", err))
		redisClient = nil
	} else {
		defer redisClient.Close()
		appLog.Info(fmt.Sprintf("Redis connected (%s)", cfg.Redis.Addr()))
	}

	// Initialize broker connection for purchase notifications
	mqCfg := &rabbitmq.Config{
		URL:               cfg.RabbitMQ.URL,
		Prefetch:          cfg.RabbitMQ.Prefetch,
		ReconnectMax:      cfg.RabbitMQ.ReconnectMax,
		ReconnectInterval: cfg.RabbitMQ.ReconnectInterval,
	}
	mq, err := rabbitmq.NewClient(mqCfg, appLog)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Broker connection failed: %v", err))
	}
	defer mq.Close()

	for _, queue := range []string{cfg.RabbitMQ.TicketQueue, cfg.RabbitMQ.NotificationQueue} {
		if err := mq.DeclareQueue(queue); err != nil {
			appLog.Fatal(fmt.Sprintf("Queue declaration failed: %v", err))
		}
	}
	appLog.Info("Broker connected")

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		DB:                db,
		Publisher:         mq,
		NotificationQueue: cfg.RabbitMQ.NotificationQueue,
		Logger:            appLog,
	})

	// Consume event lifecycle messages
	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()
	go func() {
		err := rabbitmq.ConsumeLoop(consumerCtx, mqCfg, cfg.RabbitMQ.TicketQueue, container.InventoryConsumer.Handle, appLog)
		if err != nil {
			appLog.Error(fmt.Sprintf("Lifecycle consumer stopped: %v", err))
		}
	}()

	// Setup Gin
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		if err := db.HealthCheck(c.Request.Context()); err != nil {
			response.Error(c, http.StatusServiceUnavailable, "UNHEALTHY", "Database unavailable", err.Error())
			return
		}
		response.Success(c, gin.H{"status": "ok"})
	})

	authCfg := &middleware.AuthConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
	}

	// API routes
	v1 := router.Group("/api/v1")
	{
		// Ticket reads scoped to an event
		v1.GET("/events/:id/tickets", container.TicketHandler.TicketsByEvent)
		v1.GET("/events/:id/sales", container.TicketHandler.SalesSummary)
		v1.GET("/sales", container.TicketHandler.SalesSummaryAll)

		tickets := v1.Group("/tickets")
		tickets.Use(middleware.Auth(authCfg))
		if redisClient != nil {
			tickets.Use(middleware.Idempotency(&middleware.IdempotencyConfig{
				Redis: redisClient.Raw(),
			}))
		}
		{
			tickets.GET("/my", container.TicketHandler.MyTickets)
			tickets.POST("/purchase", container.TicketHandler.PurchaseAny)
			tickets.POST("/purchase-batch", container.TicketHandler.PurchaseBatch)
			tickets.POST("/:id/purchase", container.TicketHandler.PurchaseSpecific)
			tickets.POST("/:id/cancel", container.TicketHandler.Cancel)
		}
	}

	// Create HTTP server
	port := cfg.Server.Port
	if port == 0 {
		port = 8082
	}
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		appLog.Info(fmt.Sprintf("Ticket Service listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	stopConsumer()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}
