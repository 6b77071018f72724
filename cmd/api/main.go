package main

import (
	"context"
	"log"
	"time"

	"github.com/nutritheous/backend/config"
	"github.com/nutritheous/backend/internal/api"
	"github.com/nutritheous/backend/internal/database"
	"github.com/nutritheous/backend/internal/router"
	"github.com/nutritheous/backend/internal/server"
	"github.com/nutritheous/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis is optional; statistics fall back to uncached queries without it.
	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Printf("Redis unavailable, statistics caching disabled: %v", err)
		redisClient = nil
	}

	s3cfg, err := config.NewS3Config(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize S3: %v", err)
	}

	compression := service.NewImageCompressionService(cfg.MaxImageSizeKB)
	storage := service.NewStorageService(
		s3cfg,
		compression,
		time.Duration(cfg.AnalyzerURLExpirySec)*time.Second,
		time.Duration(cfg.ImageURLExpirySec)*time.Second,
	)

	vision := service.NewVisionService(cfg.OpenAIAPIKey, cfg.OpenAIAPIURL, cfg.OpenAIModel, cfg.OpenAIMaxTokens)
	analyzer := service.NewAnalyzerService(service.NewImageProcessingService(), vision)

	calories := service.NewCalorieService()
	auth := service.NewAuthService(db, cfg.JWTSecret, calories)
	stats := service.NewStatisticsService(db, redisClient)
	meals := service.NewMealService(db, storage, analyzer, stats)

	r := router.SetupRouter(
		api.NewAuthHandler(auth),
		api.NewMealHandler(meals),
		api.NewStatisticsHandler(stats),
		api.NewAnalyzerHandler(analyzer),
		auth,
		cfg.AllowedOrigins,
	)

	srv := server.New(r)
	if err := srv.Start(cfg.ServerHost + ":" + cfg.ServerPort); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped")
}
