package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campus-notice-collector/internal/api"
	"github.com/campus-notice-collector/internal/cache"
	"github.com/campus-notice-collector/internal/config"
	"github.com/campus-notice-collector/internal/database"
	"github.com/campus-notice-collector/internal/models"
	"github.com/campus-notice-collector/internal/repository"
	"github.com/campus-notice-collector/internal/service"
	"github.com/campus-notice-collector/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	// .env is optional and must load before the logger reads LOG_LEVEL
	envErr := godotenv.Load()

	// Initialize logger
	log := logger.New("query-api")
	if envErr != nil && !os.IsNotExist(envErr) {
		log.Warn().Err(envErr).Msg("Failed to read .env file")
	}

	log.Info().Msg("Starting campus notice query API...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// A store that cannot be opened is served as unavailable
	chatDB, chatRepos := openStore("chat", &cfg.ChatStore, log)
	webDB, webRepos := openStore("web", &cfg.WebStore, log)
	if chatRepos == nil && webRepos == nil {
		log.Fatal().Msg("No store could be opened")
	}
	for _, db := range []*database.DB{chatDB, webDB} {
		if db != nil {
			defer db.Close()
		}
	}

	// Response cache
	var responseCache cache.Cache = cache.Nop{}
	if cfg.Redis.Addr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisCache, err := cache.NewRedisCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, "campus:")
		cancel()
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, serving without cache")
		} else {
			defer redisCache.Close()
			responseCache = redisCache
			log.Info().Str("addr", cfg.Redis.Addr).Msg("Response cache enabled")
		}
	}

	// Initialize services
	services := service.NewServices(chatRepos, webRepos, responseCache, cfg, log)

	checks := make(map[models.Source]service.HealthChecker, 2)
	if chatDB != nil {
		checks[models.SourceChat] = chatDB
	}
	if webDB != nil {
		checks[models.SourceWeb] = webDB
	}
	services.Health = service.NewHealthService(checks)

	// Initialize router
	router := api.NewRouter(services, cfg, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}

func openStore(name string, cfg *config.DatabaseConfig, log zerolog.Logger) (*database.DB, *repository.Repositories) {
	db, err := database.New(cfg, log)
	if err != nil {
		log.Error().Err(err).Str("store", name).Msg("Failed to connect to store")
		return nil, nil
	}
	if err := db.RunMigrations(); err != nil {
		log.Error().Err(err).Str("store", name).Msg("Failed to run store migrations")
		db.Close()
		return nil, nil
	}
	return db, repository.New(db)
}
