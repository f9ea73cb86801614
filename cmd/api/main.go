package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/circletel/coverage-engine/internal/adapters/cache"
	"github.com/circletel/coverage-engine/internal/adapters/database"
	"github.com/circletel/coverage-engine/internal/adapters/events"
	"github.com/circletel/coverage-engine/internal/adapters/providers/coverage"
	"github.com/circletel/coverage-engine/internal/adapters/providers/geolocation"
	"github.com/circletel/coverage-engine/internal/adapters/search"
	"github.com/circletel/coverage-engine/internal/api/handlers"
	"github.com/circletel/coverage-engine/internal/api/middleware"
	"github.com/circletel/coverage-engine/internal/api/routes"
	"github.com/circletel/coverage-engine/internal/application/services"
	"github.com/circletel/coverage-engine/internal/domain/providers"
	"github.com/circletel/coverage-engine/internal/domain/repositories"
	"github.com/circletel/coverage-engine/internal/infrastructure/clients/postgres"
	"github.com/circletel/coverage-engine/internal/infrastructure/clients/redis"
	"github.com/circletel/coverage-engine/internal/infrastructure/clients/typesense"
	"github.com/circletel/coverage-engine/internal/infrastructure/observability"
	"github.com/circletel/coverage-engine/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Environment)

	// Set up context for graceful shutdown
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
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	log.Info().Msg("PostgreSQL client initialized")

	// Initialize Redis client. The application can run without it: caching
	// and the event bus degrade to no-ops.
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize Redis client, continuing without cache")
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Info().Msg("Redis client initialized")
	}

	// Initialize Typesense client
	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize Typesense client, package search falls back to the catalogue")
		typesenseClient = nil
	} else {
		log.Info().Msg("Typesense client initialized")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		log.Info().Msg("event bus initialized")
	}

	// Initialize repositories
	packageRepo := database.NewPackageAdapter(pgClient)
	stationRepo := database.NewBaseStationAdapter(pgClient)
	coverageLogRepo := database.NewCoverageLogAdapter(pgClient)
	dealRepo := database.NewDealAdapter(pgClient)

	var searchRepo repositories.PackageSearchRepository
	if typesenseClient != nil {
		adapter := search.NewTypesenseAdapter(typesenseClient)
		if err := adapter.EnsureCollection(context.Background()); err != nil {
			log.Warn().Err(err).Msg("failed to init Typesense schema")
		}
		searchRepo = adapter
	}

	// Initialize coverage providers. The mock provider stands in for every
	// upstream when COVERAGE_USE_MOCKS is set, which keeps local
	// development independent of the real MTN and Supersonic endpoints.
	var coverageProviders []providers.CoverageProvider
	if cfg.Coverage.UseMocks {
		for _, id := range cfg.Coverage.ProviderPriority {
			coverageProviders = append(coverageProviders, coverage.NewMockProvider(id))
		}
		log.Info().Msg("using mock coverage providers")
	} else {
		coverageProviders = []providers.CoverageProvider{
			coverage.NewMTNWMSProvider(cfg.Coverage.MTNWMSBaseURL, metrics),
			coverage.NewTaranaProvider(stationRepo, metrics),
			coverage.NewSupersonicProvider(cfg.Coverage.SupersonicBaseURL, metrics),
		}
	}

	byID := make(map[string]providers.CoverageProvider, len(coverageProviders))
	for _, p := range coverageProviders {
		byID[p.ID()] = p
	}
	primary, ok := byID[cfg.Coverage.PrimaryProvider]
	if !ok {
		log.Fatal().Str("provider", cfg.Coverage.PrimaryProvider).Msg("primary coverage provider is not registered")
	}
	var secondaries []providers.CoverageProvider
	for _, id := range cfg.Coverage.SecondaryProviders {
		p, ok := byID[id]
		if !ok {
			log.Fatal().Str("provider", id).Msg("secondary coverage provider is not registered")
		}
		secondaries = append(secondaries, p)
	}

	// Geolocation provider
	var geolocationProvider providers.GeolocationProvider
	switch cfg.Geolocation.Provider {
	case "google":
		if cfg.Geolocation.APIKey == "" {
			log.Warn().Msg("GEOLOCATION_API_KEY is not set, using mock geolocation provider")
			geolocationProvider = geolocation.NewMockGeolocationProvider()
		} else {
			geolocationProvider = geolocation.NewGoogleGeolocationProvider(cfg.Geolocation.APIKey, cacheProvider)
		}
	default:
		geolocationProvider = geolocation.NewMockGeolocationProvider()
	}

	// Initialize services
	aggregationService := services.NewCoverageAggregationService(
		coverageProviders,
		cfg.Coverage.ProviderPriority,
		cacheProvider,
		time.Duration(cfg.Coverage.CacheTTLSeconds)*time.Second,
		metrics,
	)
	fallbackService := services.NewFallbackService(
		aggregationService,
		primary,
		secondaries,
		cfg.Coverage.RetryAttempts,
		cfg.Coverage.RetryDelay,
		cfg.Coverage.ProviderTimeout,
	)
	geoValidationService := services.NewGeoValidationService()
	recommendationService := services.NewProductRecommendationService(packageRepo)
	dealRecommender := services.NewDealRecommenderService()
	analyticsService := services.NewCoverageAnalyticsService(coverageLogRepo, eventBus)
	packageService := services.NewPackageService(packageRepo, searchRepo)

	// Initialize handlers
	coverageHandler := handlers.NewCoverageHandler(
		fallbackService,
		aggregationService,
		recommendationService,
		geoValidationService,
		analyticsService,
	)
	packageHandler := handlers.NewPackageHandler(packageService)
	dealHandler := handlers.NewDealHandler(dealRepo, dealRecommender)
	geolocationHandler := handlers.NewGeolocationHandler(geolocationProvider)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	// Initialize cache middleware
	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider)
		log.Info().Msg("cache middleware initialized")
	}

	// Set up router
	router := routes.NewRouter(
		coverageHandler,
		packageHandler,
		dealHandler,
		geolocationHandler,
		analyticsHandler,
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
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("error closing event bus")
		}
	}

	log.Info().Msg("server stopped")
}
