package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/campus-notice-collector/internal/config"
	"github.com/campus-notice-collector/internal/database"
	"github.com/campus-notice-collector/internal/extract"
	"github.com/campus-notice-collector/internal/portal"
	"github.com/campus-notice-collector/internal/repository"
	"github.com/campus-notice-collector/internal/scheduler"
	"github.com/campus-notice-collector/internal/service"
	"github.com/campus-notice-collector/pkg/logger"
	"github.com/joho/godotenv"
)

func main() {
	once := flag.Bool("once", false, "run a single crawl and exit")
	flag.Parse()

	envErr := godotenv.Load()

	log := logger.New("crawler")
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

	pages, linkBase, err := portal.FromCatalog(catalog)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid portal catalog")
	}

	// Web store
	db, err := database.New(&cfg.WebStore, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to web store")
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	fetcher := portal.NewHTTPFetcher(cfg.Crawl.Timeout, cfg.Crawl.UserAgent, cfg.Crawl.Cookie)
	crawler := portal.NewCrawler(pages, linkBase, fetcher, extract.PDFExtractor{}, cfg.Crawl.DetailDelay, log)
	crawls := service.NewCrawlService(
		crawler,
		repository.New(db),
		service.WritePolicy(cfg.Ingest.RetryAttempts, cfg.Ingest.RetryBackoff),
		log,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *once || cfg.Crawl.Schedule == "" {
		if _, err := crawls.RunOnce(ctx); err != nil {
			log.Error().Err(err).Msg("Crawl failed")
			os.Exit(1)
		}
		return
	}

	sched := scheduler.New(log)
	err = sched.Add("portal-crawl", cfg.Crawl.Schedule, func(ctx context.Context) {
		if _, err := crawls.RunOnce(ctx); err != nil && !errors.Is(err, service.ErrCrawlInProgress) {
			log.Error().Err(err).Msg("Scheduled crawl failed")
		}
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid crawl schedule")
	}

	sched.Start(ctx)
	log.Info().Str("schedule", cfg.Crawl.Schedule).Msg("Crawler scheduled")

	<-ctx.Done()
	log.Info().Msg("Shutting down crawler...")

	stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := sched.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("Crawl did not stop in time")
	}

	log.Info().Msg("Crawler exited gracefully")
}
