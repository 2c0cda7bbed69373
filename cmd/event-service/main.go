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

	"github.com/ticketrush/ticketrush/internal/event/di"
	"github.com/ticketrush/ticketrush/internal/event/service"
	"github.com/ticketrush/ticketrush/pkg/config"
	"github.com/ticketrush/ticketrush/pkg/database"
	"github.com/ticketrush/ticketrush/pkg/logger"
	"github.com/ticketrush/ticketrush/pkg/middleware"
	"github.com/ticketrush/ticketrush/pkg/rabbitmq"
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
		ServiceName: "event-service",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLog.Sync()

	appLog.Info("Starting Event Service...")

	ctx := context.Background()

	// Initialize database connection (uses EventDatabase config)
	dbCfg := &database.PostgresConfig{
		Host:            cfg.EventDatabase.Host,
		Port:            cfg.EventDatabase.Port,
		User:            cfg.EventDatabase.User,
		Password:        cfg.EventDatabase.Password,
		Database:        cfg.EventDatabase.DBName,
		SSLMode:         cfg.EventDatabase.SSLMode,
		MaxConns:        cfg.EventDatabase.MaxConns,
		MinConns:        cfg.EventDatabase.MinConns,
		MaxConnLifetime: cfg.EventDatabase.ConnMaxLifetime,
		MaxConnIdleTime: cfg.EventDatabase.ConnMaxIdleTime,
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

	// Initialize broker connection for the outbox publisher
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
		DB:        db,
		Publisher: mq,
		Queues: service.Queues{
			Ticket:       cfg.RabbitMQ.TicketQueue,
			Notification: cfg.RabbitMQ.NotificationQueue,
		},
		Logger: appLog,
	})

	// Start the outbox relay
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	if err := container.OutboxWorker.Start(workerCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Outbox worker failed to start: %v", err))
	}
	defer container.OutboxWorker.Stop()

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
		events := v1.Group("/events")
		{
			// Public endpoints
			events.GET("", container.EventHandler.List)
			events.GET("/:id", container.EventHandler.Get)

			// Protected endpoints (admin only)
			protected := events.Group("")
			protected.Use(middleware.Auth(authCfg))
			protected.Use(middleware.RequireAdmin())
			{
				protected.POST("", container.EventHandler.Create)
				protected.PUT("/:id", container.EventHandler.Update)
				protected.POST("/:id/publish", container.EventHandler.Publish)
				protected.POST("/:id/cancel", container.EventHandler.Cancel)
				protected.POST("/:id/finish", container.EventHandler.Finish)
			}
		}
	}

	// Create HTTP server
	port := cfg.Server.Port
	if port == 0 {
		port = 8081
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
		appLog.Info(fmt.Sprintf("Event Service listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	// Drain the outbox one last time before the broker connection closes
	stopWorker()
	container.OutboxWorker.Stop()

	appLog.Info("Server exited gracefully")
}
