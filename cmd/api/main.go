package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gharbazaar/backend/internal/adapters/cache"
	"github.com/gharbazaar/backend/internal/adapters/database"
	"github.com/gharbazaar/backend/internal/adapters/events"
	"github.com/gharbazaar/backend/internal/adapters/search"
	"github.com/gharbazaar/backend/internal/adapters/storage"
	"github.com/gharbazaar/backend/internal/api/handlers"
	"github.com/gharbazaar/backend/internal/api/routes"
	"github.com/gharbazaar/backend/internal/application/services"
	"github.com/gharbazaar/backend/internal/domain/providers"
	"github.com/gharbazaar/backend/internal/domain/repositories"
	"github.com/gharbazaar/backend/internal/infrastructure/clients/postgres"
	"github.com/gharbazaar/backend/internal/infrastructure/clients/redis"
	"github.com/gharbazaar/backend/internal/infrastructure/clients/typesense"
	"github.com/gharbazaar/backend/internal/infrastructure/identity"
	"github.com/gharbazaar/backend/internal/infrastructure/observability"
	"github.com/gharbazaar/backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)
	logger := observability.GetLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			logger.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	identityManager, err := identity.NewManager(cfg.Auth.SigningKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize identity manager")
	}

	// Initialize database client and apply migrations
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	if err := pgClient.Migrate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to apply migrations")
	}
	logger.Info().Msg("PostgreSQL client initialized")

	// Redis is optional; the application degrades to uncached operation
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialize Redis client, continuing without cache")
		redisClient = nil
	} else {
		defer redisClient.Close()
		logger.Info().Msg("Redis client initialized")
	}

	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialize Typesense client, full-text search disabled")
		typesenseClient = nil
	} else {
		logger.Info().Msg("Typesense client initialized")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		logger.Info().Msg("event bus initialized")
	}

	// Base repository, wrapped with caching when Redis is available
	basePropertyAdapter := database.NewPropertyAdapter(pgClient)
	var propertyRepo repositories.PropertyRepository
	if cacheProvider != nil {
		propertyRepo = database.NewCachedPropertyAdapter(basePropertyAdapter, cacheProvider, metrics)
		logger.Info().Msg("property repository wrapped with caching layer")
	} else {
		propertyRepo = basePropertyAdapter
		logger.Warn().Msg("property repository running without cache")
	}

	profileAdapter := database.NewProfileAdapter(pgClient)

	var searchRepo repositories.PropertySearchRepository
	if typesenseClient != nil {
		adapter := search.NewTypesenseAdapter(typesenseClient)
		if err := adapter.InitSchema(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to init Typesense schema")
		}
		searchRepo = adapter
	}

	var mediaStore providers.MediaStore
	if cfg.Storage.Endpoint != "" {
		mediaStore, err = storage.NewS3Store(storage.Config{
			Endpoint:  cfg.Storage.Endpoint,
			Region:    cfg.Storage.Region,
			Bucket:    cfg.Storage.Bucket,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			PublicURL: cfg.Storage.PublicURL,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("failed to initialize media store, uploads disabled")
			mediaStore = nil
		}
	} else {
		logger.Warn().Msg("STORAGE_ENDPOINT not set, media uploads disabled")
	}

	// Services
	propertyService := services.NewPropertyService(propertyRepo, searchRepo, eventBus)
	profileService := services.NewProfileService(profileAdapter)

	var cacheInvalidationService *services.CacheInvalidationService
	if cacheProvider != nil && eventBus != nil {
		cacheInvalidationService = services.NewCacheInvalidationService(cacheProvider, eventBus)
		if err := cacheInvalidationService.Start(); err != nil {
			logger.Warn().Err(err).Msg("failed to start cache invalidation service")
		}
	}

	// Handlers
	propertyHandler := handlers.NewPropertyHandler(propertyService)
	profileHandler := handlers.NewProfileHandler(profileService)
	var mediaHandler *handlers.MediaHandler
	if mediaStore != nil {
		mediaHandler = handlers.NewMediaHandler(mediaStore)
	}
	eventsHandler := handlers.NewEventsHandler(eventBus)

	router := routes.NewRouter(
		propertyHandler,
		profileHandler,
		mediaHandler,
		eventsHandler,
		identityManager,
		metrics,
	)
	handler := router.SetupRoutes()

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: the event stream endpoints hold connections open
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error during server shutdown")
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing event bus")
		}
	}
	if cacheInvalidationService != nil {
		cacheInvalidationService.Stop()
	}

	logger.Info().Msg("server stopped")
}
