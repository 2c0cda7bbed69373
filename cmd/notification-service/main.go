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

	"github.com/ticketrush/ticketrush/internal/notification/di"
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
		ServiceName: "notification-service",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLog.Sync()

	appLog.Info("Starting Notification Service...")

	ctx := context.Background()

	// Initialize database connection (uses NotificationDatabase config)
	dbCfg := &database.PostgresConfig{
		Host:            cfg.NotificationDatabase.Host,
		Port:            cfg.NotificationDatabase.Port,
		User:            cfg.NotificationDatabase.User,
		Password:        cfg.NotificationDatabase.Password,
		Database:        cfg.NotificationDatabase.DBName,
		SSLMode:         cfg.NotificationDatabase.SSLMode,
		MaxConns:        cfg.NotificationDatabase.MaxConns,
		MinConns:        cfg.NotificationDatabase.MinConns,
		MaxConnLifetime: cfg.NotificationDatabase.ConnMaxLifetime,
		MaxConnIdleTime: cfg.NotificationDatabase.ConnMaxIdleTime,
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

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		DB:     db,
		Logger: appLog,
	})

	// The hub run loop owns the connection registry
	go container.Hub.Run()
	defer container.Hub.Stop()

	// Consume notification messages
	mqCfg := &rabbitmq.Config{
		URL:               cfg.RabbitMQ.URL,
		Prefetch:          cfg.RabbitMQ.Prefetch,
		ReconnectMax:      cfg.RabbitMQ.ReconnectMax,
		ReconnectInterval: cfg.RabbitMQ.ReconnectInterval,
	}
	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()
	go func() {
		err := rabbitmq.ConsumeLoop(consumerCtx, mqCfg, cfg.RabbitMQ.NotificationQueue, container.NotificationConsumer.Handle, appLog)
		if err != nil {
			appLog.Error(fmt.Sprintf("Notification consumer stopped: %v", err))
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
		notifications := v1.Group("/notifications")
		notifications.Use(middleware.Auth(authCfg))
		{
			notifications.GET("/stream", container.NotificationHandler.Stream)
			notifications.GET("", container.NotificationHandler.List)
			notifications.GET("/unread", container.NotificationHandler.UnreadCount)
			notifications.POST("/read-all", container.NotificationHandler.MarkAllRead)
			notifications.POST("/:id/read", container.NotificationHandler.MarkRead)
			notifications.DELETE("/:id", container.NotificationHandler.Delete)
		}
	}

	// Create HTTP server. WriteTimeout stays unset so event streams can
	// outlive ordinary request deadlines.
	port := cfg.Server.Port
	if port == 0 {
		port = 8083
	}
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		appLog.Info(fmt.Sprintf("Notification Service listening on %s", addr))
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
	container.Hub.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}
