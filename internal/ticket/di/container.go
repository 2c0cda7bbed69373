package di

import (
	"github.com/ticketrush/ticketrush/internal/ticket/consumer"
	"github.com/ticketrush/ticketrush/internal/ticket/handler"
	"github.com/ticketrush/ticketrush/internal/ticket/repository"
	"github.com/ticketrush/ticketrush/internal/ticket/service"
	"github.com/ticketrush/ticketrush/pkg/database"
	"github.com/ticketrush/ticketrush/pkg/logger"
)

// Container holds all dependencies for the ticket service
type Container struct {
	// Infrastructure
	DB *database.PostgresDB

	// Repositories
	TicketRepo repository.TicketRepository

	// Services
	TicketService service.TicketService

	// Consumers
	InventoryConsumer *consumer.InventoryConsumer

	// Handlers
	TicketHandler *handler.TicketHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB                *database.PostgresDB
	Publisher         service.Publisher
	NotificationQueue string
	Logger            *logger.Logger
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB: cfg.DB,
	}

	c.TicketRepo = repository.NewPostgresTicketRepository(cfg.DB.Pool())

	c.TicketService = service.NewTicketService(c.TicketRepo, cfg.Publisher, cfg.NotificationQueue, cfg.Logger)

	c.InventoryConsumer = consumer.NewInventoryConsumer(c.TicketService, cfg.Logger)

	c.TicketHandler = handler.NewTicketHandler(c.TicketService)

	return c
}
