package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/currency_converter/internal/adapters/cache"
	"github.com/SscSPs/currency_converter/internal/adapters/ratesource"
	"github.com/SscSPs/currency_converter/internal/core/ports/providers"
	portsrepo "github.com/SscSPs/currency_converter/internal/core/ports/repositories"
	"github.com/SscSPs/currency_converter/internal/core/services"
	"github.com/SscSPs/currency_converter/internal/dto"
	"github.com/SscSPs/currency_converter/internal/handlers"
	"github.com/SscSPs/currency_converter/internal/middleware"
	"github.com/SscSPs/currency_converter/internal/platform/config"
	"github.com/SscSPs/currency_converter/internal/repositories/database/pgsql"
	"github.com/SscSPs/currency_converter/internal/repositories/memory"
	"github.com/SscSPs/currency_converter/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// @title Currency Converter API
// @version 1.0
// @description Converts amounts between currencies using stored, derived and externally fetched exchange rates.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description Static API key issued to the caller.

// @security ApiKeyAuth
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := dto.RegisterValidators(); err != nil {
		logger.Error("Failed to register request validators", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, closeRepos, err := setupRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeRepos()

	rateCache, redisClient, err := setupCache(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize cache", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	source := setupRateSource(cfg, logger)
	serviceContainer := services.NewServiceContainer(cfg, repos, source, rateCache, logger)

	var redisForLimiter redis.UniversalClient
	if redisClient != nil {
		redisForLimiter = redisClient
	}
	lim, err := middleware.NewLimiter(cfg.RateLimit, redisForLimiter, cfg.RedisPrefix)
	if err != nil {
		logger.Error("Failed to create rate limiter", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (cors, logging, recovery)
	r.Use(cors.New(corsConfig(cfg)))
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	err = r.SetTrustedProxies(nil)
	if err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer, lim)

	updaterDone := make(chan struct{})
	if cfg.UpdaterEnabled {
		go func() {
			defer close(updaterDone)
			serviceContainer.RateUpdater.Run(ctx)
		}()
	} else {
		close(updaterDone)
		logger.Info("Rate updater disabled")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", slog.String("error", err.Error()))
	}

	select {
	case <-updaterDone:
	case <-shutdownCtx.Done():
		logger.Warn("Rate updater did not stop in time")
	}
	logger.Info("Server exited")
}

// setupRepositories picks the storage backend. The returned func releases it.
func setupRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		logger.Info("Using in-memory storage")
		repos, err := memory.NewRepositoryProvider(ctx, true)
		return repos, func() {}, err
	}

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg, logger); err != nil {
		dbPool.Close()
		return portsrepo.RepositoryProvider{}, nil, err
	}

	return pgsql.NewRepositoryProvider(dbPool), func() { database.ClosePgxPool(dbPool) }, nil
}

// runMigrations applies every pending "up" migration.
func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...")
	// Open a temporary standard sql.DB connection for migrations
	// Using pgx/v5/stdlib driver to be compatible with the main pool
	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	// Create a postgres driver instance for migrate
	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance(cfg.MigrationsPath, "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

// setupCache returns the configured cache and, for redis, the shared client.
func setupCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (providers.Cache, *redis.Client, error) {
	if cfg.CacheDriver != config.CacheDriverRedis {
		logger.Info("Using in-memory cache")
		return cache.NewMemoryCache(time.Minute, logger), nil, nil
	}

	client, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Using redis cache", slog.String("addr", cfg.RedisAddr))
	return cache.NewRedisCache(client, cfg.RedisPrefix, logger), client, nil
}

func setupRateSource(cfg *config.Config, logger *slog.Logger) providers.RateSource {
	var inner providers.RateSource
	if cfg.ExternalUseSimulated {
		logger.Info("Using simulated rate source")
		inner = ratesource.NewSimulatedSource(logger)
	} else {
		inner = ratesource.NewHTTPSource(ratesource.HTTPSourceConfig{
			RealTimeEndpoint:   cfg.ExternalRealTimeEndpoint,
			HistoricalEndpoint: cfg.ExternalHistoricalEndpoint,
			APIKey:             cfg.ExternalAPIKey,
			Timeout:            cfg.ExternalTimeout,
		}, nil, logger)
	}
	return ratesource.NewRetryingSource(inner, ratesource.RetryPolicy{
		Attempts:  cfg.ExternalRetryAttempts,
		BaseDelay: cfg.ExternalRetryBaseDelay,
	}, logger)
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, middleware.APIKeyHeader)
	if len(cfg.CORSAllowedOrigins) == 0 || (len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
	}
	return corsCfg
}
