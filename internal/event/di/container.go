package di

import (
	"github.com/ticketrush/ticketrush/internal/event/handler"
	"github.com/ticketrush/ticketrush/internal/event/repository"
	"github.com/ticketrush/ticketrush/internal/event/service"
	"github.com/ticketrush/ticketrush/internal/event/worker"
	"github.com/ticketrush/ticketrush/pkg/database"
	"github.com/ticketrush/ticketrush/pkg/logger"
)

// Container holds all dependencies for the event service
type Container struct {
	// Infrastructure
	DB *database.PostgresDB

	// Repositories
	EventRepo  repository.EventRepository
	OutboxRepo repository.OutboxRepository

	// Services
	EventService service.EventService

	// Workers
	OutboxWorker *worker.OutboxWorker

	// Handlers
	EventHandler *handler.EventHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB        *database.PostgresDB
	Publisher worker.Publisher
	Queues    service.Queues
	Logger    *logger.Logger
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB: cfg.DB,
	}

	c.EventRepo = repository.NewPostgresEventRepository(cfg.DB.Pool())
	c.OutboxRepo = repository.NewPostgresOutboxRepository(cfg.DB.Pool())

	c.EventService = service.NewEventService(c.EventRepo, c.OutboxRepo, cfg.DB, cfg.Queues)

	c.OutboxWorker = worker.NewOutboxWorker(c.OutboxRepo, cfg.Publisher, nil, cfg.Logger)

	c.EventHandler = handler.NewEventHandler(c.EventService)

	return c
}
