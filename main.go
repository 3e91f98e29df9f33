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
	"github.com/peakstay/reservation-engine/internal/di"
	"github.com/peakstay/reservation-engine/internal/repository"
	"github.com/peakstay/reservation-engine/internal/service"
	"github.com/peakstay/reservation-engine/pkg/config"
	"github.com/peakstay/reservation-engine/pkg/database"
	"github.com/peakstay/reservation-engine/pkg/logger"
	"github.com/peakstay/reservation-engine/pkg/middleware"
	pkgredis "github.com/peakstay/reservation-engine/pkg/redis"
	"github.com/peakstay/reservation-engine/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       cfg.App.LogLevel,
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Reservation Engine...")

	ctx := context.Background()

	// Initialize tracing
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
	}); err != nil {
		appLog.Warn(fmt.Sprintf("Telemetry init failed, continuing without tracing: %v", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = telemetry.Shutdown(shutdownCtx)
	}()

	// Initialize database connection
	dbCfg := &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
		ConnectTimeout:  10 * time.Second,
		MaxRetries:      3,
		RetryInterval:   2 * time.Second,
		EnableTracing:   cfg.OTel.Enabled,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()
	appLog.Info(fmt.Sprintf("Database connected (pool: min=%d, max=%d)", dbCfg.MinConns, dbCfg.MaxConns))

	// Initialize Redis connection
	redisCfg := &pkgredis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      50,
		MinIdleConns:  5,
		DialTimeout:   5 * time.Second,
		ReadTimeout:   3 * time.Second,
		WriteTimeout:  3 * time.Second,
		MaxRetries:    3,
		RetryInterval: time.Second,
	}
	redisClient, err := pkgredis.NewClient(ctx, redisCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Redis connection failed: %v", err))
	}
	defer redisClient.Close()
	appLog.Info("Redis connected")

	// Initialize Kafka event publisher
	var eventPublisher service.EventPublisher
	eventPublisher, err = service.NewKafkaEventPublisher(ctx, &service.EventPublisherConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    cfg.Kafka.Topic,
		ClientID: cfg.Kafka.ClientID,
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("Kafka connection failed, using no-op publisher: %v", err))
		eventPublisher = service.NewNoOpEventPublisher()
	} else {
		appLog.Info("Kafka event publisher connected")
	}
	defer eventPublisher.Close()

	// Initialize repositories; the catalog goes through the Redis rule cache
	catalogRepo := repository.NewCachedCatalogRepository(
		repository.NewPostgresCatalogRepository(db.Pool()),
		redisClient,
		cfg.Booking.RuleCacheTTL,
	)
	reservationRepo := repository.NewPostgresReservationRepository(db.Pool())
	activityRepo := repository.NewPostgresActivityRepository(db.Pool())

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		DB:              db,
		Redis:           redisClient,
		CatalogRepo:     catalogRepo,
		ReservationRepo: reservationRepo,
		ActivityRepo:    activityRepo,
		EventPublisher:  eventPublisher,
		Notifier:        service.NewLogNotifier(),
		ServiceConfig: &service.ReservationServiceConfig{
			NumberPrefix: cfg.Booking.NumberPrefix,
		},
	})

	// Setup Gin
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(telemetry.TracingMiddleware(cfg.App.Name))

	// Health check endpoints
	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	// API routes
	v1 := router.Group("/api/v1")
	v1.Use(middleware.StaffIdentity())
	{
		var writeGuard gin.HandlerFunc
		if cfg.Booking.IdempotencyOn {
			writeGuard = middleware.Idempotency(middleware.DefaultIdempotencyConfig(redisClient.Client()))
		} else {
			writeGuard = func(c *gin.Context) { c.Next() }
		}

		reservations := v1.Group("/reservations")
		{
			reservations.POST("", writeGuard, container.ReservationHandler.CreateReservation)
			reservations.POST("/quote", container.ReservationHandler.QuoteStay)
			reservations.GET("/:id", container.ReservationHandler.GetReservation)
			reservations.GET("/number/:number", container.ReservationHandler.GetReservationByNumber)
			reservations.POST("/:id/check-in", writeGuard, container.ReservationHandler.CheckIn)
			reservations.POST("/:id/check-out", writeGuard, container.ReservationHandler.CheckOut)
			reservations.POST("/:id/cancel", writeGuard, container.ReservationHandler.Cancel)
			reservations.PUT("/:id/status", writeGuard, container.ReservationHandler.SetStatus)
		}

		units := v1.Group("/units")
		{
			units.GET("/:id/reservations", container.ReservationHandler.ListUnitReservations)
			units.GET("/:id/availability", container.ReservationHandler.CheckAvailability)
			units.GET("/:id/blocked-dates", container.ReservationHandler.BlockedDates)
		}
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("Reservation Engine listening on %s", addr))
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

	appLog.Info("Server exited gracefully")
}
