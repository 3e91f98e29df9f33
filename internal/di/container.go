package di

import (
	"github.com/peakstay/reservation-engine/internal/handler"
	"github.com/peakstay/reservation-engine/internal/repository"
	"github.com/peakstay/reservation-engine/internal/service"
	"github.com/peakstay/reservation-engine/pkg/database"
	"github.com/peakstay/reservation-engine/pkg/redis"
)

// Container holds all dependencies for the reservation engine
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	CatalogRepo     repository.CatalogRepository
	ReservationRepo repository.ReservationRepository
	ActivityRepo    repository.ActivityRepository

	// Publishers
	EventPublisher service.EventPublisher

	// Services
	ReservationService service.ReservationService

	// Handlers
	HealthHandler      *handler.HealthHandler
	ReservationHandler *handler.ReservationHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB              *database.PostgresDB
	Redis           *redis.Client
	CatalogRepo     repository.CatalogRepository
	ReservationRepo repository.ReservationRepository
	ActivityRepo    repository.ActivityRepository
	EventPublisher  service.EventPublisher
	Notifier        service.Notifier
	ServiceConfig   *service.ReservationServiceConfig
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:              cfg.DB,
		Redis:           cfg.Redis,
		CatalogRepo:     cfg.CatalogRepo,
		ReservationRepo: cfg.ReservationRepo,
		ActivityRepo:    cfg.ActivityRepo,
		EventPublisher:  cfg.EventPublisher,
	}

	// Initialize services
	c.ReservationService = service.NewReservationService(
		c.CatalogRepo,
		c.ReservationRepo,
		c.ActivityRepo,
		c.EventPublisher,
		cfg.Notifier,
		cfg.ServiceConfig,
	)

	// Initialize handlers
	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)
	c.ReservationHandler = handler.NewReservationHandler(c.ReservationService)

	return c
}
