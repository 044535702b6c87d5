package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/snapdish/snapdish-api/config"
	"github.com/snapdish/snapdish-api/internal/agent"
	"github.com/snapdish/snapdish-api/internal/api"
	"github.com/snapdish/snapdish-api/internal/database"
	"github.com/snapdish/snapdish-api/internal/logger"
	"github.com/snapdish/snapdish-api/internal/middleware"
	"github.com/snapdish/snapdish-api/internal/router"
	"github.com/snapdish/snapdish-api/internal/server"
	"github.com/snapdish/snapdish-api/internal/service"
	"github.com/snapdish/snapdish-api/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	log := logger.New(cfg.Log)
	gin.SetMode(cfg.Server.Mode)

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	if redisClient == nil {
		log.Info("redis disabled, running without fingerprint cache or rate limiting")
	}

	var archive service.Archiver
	if cfg.S3.Enabled {
		s3cfg, err := config.NewS3Config(context.Background(), cfg.S3)
		if err != nil {
			log.Fatalf("failed to initialize s3: %v", err)
		}
		archive = storage.NewSubmissionStore(s3cfg)
	}

	aiClient := agent.New(&agent.Config{
		BaseURL:             cfg.AI.BaseURL,
		APIKey:              cfg.AI.APIKey,
		ChatModel:           cfg.AI.ChatModel,
		VisionModel:         cfg.AI.VisionModel,
		EmbeddingModel:      cfg.AI.EmbeddingModel,
		EmbeddingDimensions: cfg.AI.EmbeddingDimensions,
		Timeout:             time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
	})

	ingestService := service.NewIngestService(db, aiClient, service.NewRedisCache(redisClient), archive, logrus.NewEntry(log))
	searchService := service.NewSearchService(db, aiClient)

	recipeHandler := api.NewRecipeHandler(ingestService, searchService, log)
	healthHandler := api.NewHealthHandler(db)

	limiter := middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
		Window:    time.Minute,
		Limit:     10,
		KeyPrefix: "ratelimit:ingest",
	})

	engine := router.SetupRouter(recipeHandler, healthHandler, limiter.Middleware())
	srv := server.New(engine, cfg.Server.Host, cfg.Server.Port)

	errChan := make(chan error, 1)
	go func() {
		log.Infof("listening on %s:%d", cfg.Server.Host, cfg.Server.Port)
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	case sig := <-quit:
		log.Infof("received signal: %v", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown error: %v", err)
	}
	log.Info("server stopped")
}
