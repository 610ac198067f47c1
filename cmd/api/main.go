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

	"github.com/drugreco/drugreco/backend/internal/adapters/cache"
	"github.com/drugreco/drugreco/backend/internal/adapters/database"
	"github.com/drugreco/drugreco/backend/internal/adapters/events"
	"github.com/drugreco/drugreco/backend/internal/adapters/search"
	"github.com/drugreco/drugreco/backend/internal/api/handlers"
	"github.com/drugreco/drugreco/backend/internal/api/middleware"
	"github.com/drugreco/drugreco/backend/internal/api/routes"
	"github.com/drugreco/drugreco/backend/internal/application/services"
	"github.com/drugreco/drugreco/backend/internal/domain/providers"
	"github.com/drugreco/drugreco/backend/internal/infrastructure/clients/postgres"
	"github.com/drugreco/drugreco/backend/internal/infrastructure/clients/redis"
	"github.com/drugreco/drugreco/backend/internal/infrastructure/clients/rxnav"
	"github.com/drugreco/drugreco/backend/internal/infrastructure/clients/typesense"
	"github.com/drugreco/drugreco/backend/internal/infrastructure/observability"
	"github.com/drugreco/drugreco/backend/pkg/config"
)

func main() {

	// Load configuration

	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, os.Getenv("APP_ENV"))

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()
	log.Println("PostgreSQL client initialized successfully")

	// Initialize Redis client
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
		// Continue without Redis - the application can work without caching
	} else {
		defer redisClient.Close()
		log.Println("Redis client initialized successfully")
	}

	// Initialize Typesense client
	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Printf("Warning: Failed to initialize Typesense client: %v", err)
	} else {
		if err := typesenseClient.InitSchema(context.Background()); err != nil {
			log.Printf("Warning: Failed to init Typesense schema: %v", err)
		}
		log.Println("Typesense client initialized successfully")
	}

	// Initialize upstream clinical source client
	rxnavClient := rxnav.NewClient(&cfg.RxNav)

	// Initialize adapters

	drugAdapter := database.NewDrugAdapter(pgClient)
	mappingAdapter := database.NewConceptMappingAdapter(pgClient)
	interactionAdapter := database.NewInteractionAdapter(pgClient)
	sourceAdapter := database.NewDataSourceAdapter(pgClient)
	sessionAdapter := database.NewUpdateSessionAdapter(pgClient)
	validationAdapter := database.NewValidationLogAdapter(pgClient)
	alertAdapter := database.NewClinicalAlertAdapter(pgClient)

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	// Initialize event bus for pipeline and alert notifications
	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		log.Println("Event bus initialized successfully")
	} else {
		log.Println("Event bus disabled (Redis not available)")
	}

	// Initialize services

	mappingService := services.NewConceptMappingService(
		drugAdapter,
		mappingAdapter,
		rxnavClient,
		cfg.Clinical.MappingPace,
	)

	syncService := services.NewInteractionSyncService(
		mappingAdapter,
		interactionAdapter,
		sourceAdapter,
		rxnavClient,
		cfg.Clinical.ConfidenceThreshold,
		cfg.Clinical.PairPace,
	)

	validationService := services.NewConsensusValidationService(
		interactionAdapter,
		sourceAdapter,
		validationAdapter,
	)

	var indexService *services.DrugIndexService
	if typesenseClient != nil {
		indexService = services.NewDrugIndexService(drugAdapter, search.NewDrugIndexAdapter(typesenseClient))
	}

	var indexer services.DrugIndexer
	if indexService != nil {
		indexer = indexService
	}

	updateService := services.NewClinicalUpdateService(
		mappingService,
		syncService,
		validationService,
		indexer,
		sessionAdapter,
		interactionAdapter,
		services.NewRunGuard(),
		eventBus,
		services.ScheduleDescription,
	)

	queryService := services.NewInteractionQueryService(
		drugAdapter,
		mappingAdapter,
		interactionAdapter,
		alertAdapter,
		sourceAdapter,
		rxnavClient,
		cfg.Clinical.RealtimeLookups,
	)

	// Start the weekly scheduler and the emergency alert monitor
	scheduler := services.NewUpdateScheduler(updateService)
	go scheduler.Start(ctx)

	monitor := services.NewEmergencyMonitor(alertAdapter, eventBus, cfg.Clinical.EmergencyCheckInterval)
	go monitor.Start(ctx)

	// Initialize handlers

	interactionHandler := handlers.NewInteractionHandler(queryService)

	updateHandler := handlers.NewUpdateHandler(updateService, sourceAdapter, rxnavClient)

	var drugHandler *handlers.DrugHandler
	if indexService != nil {
		drugHandler = handlers.NewDrugHandler(indexService)
	} else {
		drugHandler = handlers.NewDrugHandler(nil)
	}

	// Initialize cache middleware
	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider)
		log.Println("Cache middleware initialized successfully")
	}

	// Set up router

	router := routes.NewRouter(
		interactionHandler,
		updateHandler,
		drugHandler,
		cacheMiddleware,
		metrics,
	)

	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	// Stop scheduler and monitor loops before closing shared clients
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	// Close event bus
	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Printf("Error closing event bus: %v", err)
		}
	}

	log.Println("Server stopped")
}
