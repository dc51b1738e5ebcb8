package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"github.com/pageza/alchemorsel-mealgen/backend/config"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/api"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/database"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/hub"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/middleware"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/router"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/server"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	printStartupBanner(cfg)
	ctx := context.Background()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	migrationsDir := os.Getenv("MIGRATIONS_DIR")
	if migrationsDir == "" {
		migrationsDir = "migrations"
	}
	if err := database.RunMigrations(db, migrationsDir); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	checks := map[string]api.HealthCheck{
		"database": func(ctx context.Context) error { return database.HealthCheck(ctx, db) },
	}

	// Redis backs the generation cache and rate limits; without it both run in process
	var cache service.MealCache = service.NewMemoryMealCache()
	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Printf("Redis unavailable, using in-memory meal cache: %v", err)
		redisClient = nil
	} else {
		cache = service.NewRedisMealCache(redisClient)
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	store := service.NewGormContextStore(db)
	registry := hub.NewRegistry()
	registry.RegisterDefaults(store)

	text, err := service.NewTextGenerator(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create text generator: %v", err)
	}
	if closer, ok := text.(io.Closer); ok {
		defer closer.Close()
	}

	var uploader service.ImageUploader
	if cfg.S3BucketName != "" {
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			log.Printf("S3 unavailable, generated images will not be rehosted: %v", err)
		} else {
			uploader = s3cfg
		}
	}
	var images service.ImageGenerator
	if gen, err := service.NewImageGenerator(cfg, uploader); err != nil {
		log.Printf("Image generation disabled: %v", err)
	} else if gen != nil {
		images = gen
	}

	pipeline := service.NewPipeline(service.PipelineDeps{
		Registry: registry,
		Store:    store,
		Text:     text,
		Images:   service.NewImageAttacher(images, service.NewStaticImages(cfg.StaticImageBaseURL), cfg.ImageTimeout),
		Cache:    cache,
		Catalog:  service.NewGormTemplateCatalog(db),
	}, service.PipelineConfig{
		CacheVersion:      cfg.CacheVersion,
		MaxAttempts:       cfg.MaxGenerationAttempts,
		TemplateThreshold: cfg.TemplateMatchThreshold,
	})

	var validator middleware.TokenValidator
	if cfg.JWTSecret != "" {
		validator = middleware.NewJWTValidator(cfg.JWTSecret)
	}
	engine := router.SetupRouter(cfg, router.Handlers{
		Meals:  api.NewMealHandler(pipeline),
		Hubs:   api.NewHubHandler(registry),
		Health: api.NewHealthHandler(checks),
	}, validator, middleware.NewMealGenerationRateLimiter(redisClient, cfg.RateLimitRequests, cfg.RateLimitWindow))

	srv := server.New(cfg, engine)

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		log.Println("Starting server...")
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	log.Println("Shutting down server...")
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if redisClient != nil {
		redisClient.Close()
	}
	log.Println("Server stopped")
}
