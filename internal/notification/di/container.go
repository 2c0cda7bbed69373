package di

import (
	"github.com/ticketrush/ticketrush/internal/notification/consumer"
	"github.com/ticketrush/ticketrush/internal/notification/handler"
	"github.com/ticketrush/ticketrush/internal/notification/hub"
	"github.com/ticketrush/ticketrush/internal/notification/repository"
	"github.com/ticketrush/ticketrush/internal/notification/service"
	"github.com/ticketrush/ticketrush/pkg/database"
	"github.com/ticketrush/ticketrush/pkg/logger"
)

// Container holds all dependencies for the notification service
type Container struct {
	// Infrastructure
	DB  *database.PostgresDB
	Hub *hub.Hub

	// Repositories
	NotificationRepo repository.NotificationRepository

	// Services
	NotificationService service.NotificationService

	// Consumers
	NotificationConsumer *consumer.NotificationConsumer

	// Handlers
	NotificationHandler *handler.NotificationHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB     *database.PostgresDB
	Logger *logger.Logger
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:  cfg.DB,
		Hub: hub.NewHub(cfg.Logger),
	}

	c.NotificationRepo = repository.NewPostgresNotificationRepository(cfg.DB.Pool())

	c.NotificationService = service.NewNotificationService(c.NotificationRepo, cfg.Logger)

	c.NotificationConsumer = consumer.NewNotificationConsumer(c.NotificationService, c.Hub, cfg.Logger)

	c.NotificationHandler = handler.NewNotificationHandler(c.NotificationService, c.Hub)

	return c
}
