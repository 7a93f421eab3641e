package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/prefs"
	"storefront/internal/repository"
	"storefront/internal/routes"
	"storefront/internal/storage"
)

func main() {
	cfg := config.LoadConfig()

	if err := logger.Init(logger.Options{
		Level:    cfg.Log.Level,
		Format:   cfg.Log.Format,
		Output:   cfg.Log.Output,
		FilePath: cfg.Log.FilePath,
	}, cfg.Env); err != nil {
		log.Fatalf("❌ logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	client, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		cancel()
		logger.Fatal("mongo connect failed", zap.Error(err))
	}
	db := client.Database(cfg.MongoDB)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		logger.Warn("ensure indexes failed", zap.Error(err))
	}

	store, err := storage.New(ctx, cfg.Storage)
	cancel()
	if err != nil {
		logger.Fatal("storage init failed", zap.Error(err))
	}

	c := cache.New(cfg.Cache.TTL)
	defer c.Close()

	deps := routes.Deps{
		Products:      repository.NewProductRepository(db.Collection(database.ProductsCollection)),
		Addresses:     repository.NewCollectionRepository[models.Address](db.Collection(database.AddressesCollection)),
		Media:         repository.NewCollectionRepository[models.Media](db.Collection(database.MediaCollection)),
		Options:       repository.NewCollectionRepository[models.Option](db.Collection(database.OptionsCollection)),
		Cache:         c,
		Prefs:         prefs.NewCacheStore(c, cfg.Cache.PrefsTTL),
		Storage:       store,
		PriceRangeTTL: cfg.Cache.PriceRangeTTL,
	}

	router := gin.New()
	router.Use(
		handlers.Recovery(logger.Get()),
		handlers.RequestID(),
		handlers.RequestLogger(logger.Get()),
		handlers.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger.Get()),
	)
	if cfg.Storage.Driver == "local" {
		router.Static(cfg.Storage.LocalURLPrefix, cfg.Storage.LocalDir)
	}
	routes.RegisterRoutes(router, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("🚀 server running", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		logger.Error("mongo disconnect failed", zap.Error(err))
	}
}
