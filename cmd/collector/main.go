package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/campus-notice-collector/internal/chat"
	"github.com/campus-notice-collector/internal/chat/onebot"
	"github.com/campus-notice-collector/internal/chat/telegram"
	"github.com/campus-notice-collector/internal/classify"
	"github.com/campus-notice-collector/internal/config"
	"github.com/campus-notice-collector/internal/database"
	"github.com/campus-notice-collector/internal/extract"
	"github.com/campus-notice-collector/internal/images"
	"github.com/campus-notice-collector/internal/models"
	"github.com/campus-notice-collector/internal/repository"
	"github.com/campus-notice-collector/internal/service"
	"github.com/campus-notice-collector/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	// .env is optional and must load before the logger reads LOG_LEVEL
	envErr := godotenv.Load()

	// Initialize logger
	log := logger.New("collector")
	if envErr != nil && !os.IsNotExist(envErr) {
		log.Warn().Err(envErr).Msg("Failed to read .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	catalog, err := config.LoadCatalog(cfg.CatalogFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load catalog")
	}

	pipeline, err := buildPipeline(cfg, catalog, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build pipeline")
	}

	// Chat store
	db, err := database.New(&cfg.ChatStore, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to chat store")
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	repos := repository.New(db)
	writer := service.NewRecordWriter(repos.Records, service.WritePolicy(cfg.Ingest.RetryAttempts, cfg.Ingest.RetryBackoff), log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	messages := make(chan models.ChatMessage, cfg.Chat.QueueSize)

	var (
		roles    chat.RoleResolver
		shutdown func(context.Context) error
	)
	switch cfg.Chat.Platform {
	case onebot.Platform:
		roles = onebot.NewClient(cfg.Chat.OneBotAPIURL, cfg.Chat.OneBotToken, cfg.Server.RequestTimeout)
		srv := startEventServer(cfg, messages, log)
		shutdown = srv.Shutdown
	case telegram.Platform:
		if cfg.Chat.TelegramToken == "" {
			log.Fatal().Msg("TELEGRAM_BOT_TOKEN is required for the telegram platform")
		}
		bot, err := telegram.NewBot(cfg.Chat.TelegramToken)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Telegram")
		}
		source := telegram.NewSource(bot, cfg.Chat.PollTimeout, log)
		roles = source
		go source.Listen(ctx, messages)
		log.Info().Str("bot", bot.Self.UserName).Msg("Polling Telegram updates")
	}

	adapter := chat.NewAdapter(messages, roles, pipeline, catalog, log)

	log.Info().Str("platform", cfg.Chat.Platform).Msg("Collector started")
	if _, err := service.Run(ctx, adapter, writer, log); err != nil {
		log.Error().Err(err).Msg("Collector stopped with error")
	}

	if shutdown != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Event server forced to shutdown")
		}
	}

	log.Info().Msg("Collector exited gracefully")
}

func buildPipeline(cfg *config.Config, catalog *config.Catalog, log zerolog.Logger) (*service.Pipeline, error) {
	taxonomy, err := classify.FromCatalog(catalog)
	if err != nil {
		return nil, err
	}
	classifier := classify.NewClassifier(taxonomy)

	tagger, err := extract.NewGseTagger()
	if err != nil {
		return nil, err
	}
	keywords := extract.NewKeywordExtractor(tagger, classifier.Terms())

	resolver := images.NewResolver(cfg.Ingest.ImageDir, cfg.Ingest.ImagePrefix, cfg.Ingest.ImageTimeout, log)

	return service.NewPipeline(keywords, classifier, resolver, cfg.Ingest.TitleLength, log), nil
}

func startEventServer(cfg *config.Config, messages chan<- models.ChatMessage, log zerolog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	onebot.NewHandler(messages, cfg.Chat.OneBotSecret, log).Register(engine)

	srv := &http.Server{
		Addr:         ":" + cfg.Chat.ListenPort,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.Chat.ListenPort).Msg("Event endpoint listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Event server failed")
		}
	}()

	return srv
}
