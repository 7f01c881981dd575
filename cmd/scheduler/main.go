package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/billforge/billforge/internal/cache"
	"github.com/billforge/billforge/internal/config"
	"github.com/billforge/billforge/internal/domain/catalog"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/notifier"
	"github.com/billforge/billforge/internal/postgres"
	"github.com/billforge/billforge/internal/pubsub/memory"
	"github.com/billforge/billforge/internal/repository"
	"github.com/billforge/billforge/internal/scheduler"
	"github.com/billforge/billforge/internal/service"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	db, err := postgres.NewDB(cfg, logger)
	if err != nil {
		logger.Fatalw("Failed to connect to postgres", "error", err)
	}
	defer db.Close()

	staticCatalog, err := catalog.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		logger.Fatalw("Failed to load catalog", "path", cfg.Catalog.Path, "error", err)
	}

	pubSub := memory.NewPubSub(cfg, logger)
	notif := notifier.NewNotifier(pubSub, cfg, logger)
	defer notif.Close()

	params := service.ServiceParams{
		Logger:        logger,
		Config:        cfg,
		DB:            db,
		Cache:         cache.NewInMemoryCache(),
		SubRepo:       repository.NewSubscriptionRepository(db, logger),
		SubEventRepo:  repository.NewSubscriptionEventRepository(db, logger),
		CatalogLookup: catalog.NewStaticLookup(staticCatalog),
		Notifier:      notif,
	}
	subscriptionService := service.NewSubscriptionService(params)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Infow("shutting down", "signal", sig.String())
		cancel()
	}()

	worker := scheduler.New(pubSub, subscriptionService, cfg, logger)
	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Fatalw("scheduler stopped", "error", err)
	}
}
