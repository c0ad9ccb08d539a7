package main

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/urbanflow/urbanflow-backend/config"
	"github.com/urbanflow/urbanflow-backend/handlers"
	"github.com/urbanflow/urbanflow-backend/logger"
	"github.com/urbanflow/urbanflow-backend/pkg/gemini"
	"github.com/urbanflow/urbanflow-backend/router"
	"github.com/urbanflow/urbanflow-backend/services"
	"github.com/urbanflow/urbanflow-backend/types"
)

func main() {
	// Initialize logger
	logger.InitLogger()
	log := logger.GetLogger()
	defer logger.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	// Initialize Redis client with TLS in production
	redisOptions := &redis.Options{
		Addr:         cfg.Redis.Address,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}
	if cfg.Redis.UseTLS {
		redisOptions.TLSConfig = &tls.Config{
			ServerName: cfg.Redis.Address,
			MinVersion: tls.VersionTLS12,
		}
	}
	redisClient := redis.NewClient(redisOptions)

	// The generative backend is optional; without it the pipeline still
	// serves engine results and offline estimates.
	var aiClient gemini.ClientInterface
	if cfg.AI.Enabled {
		client, err := gemini.NewClient(ctx, cfg.AI.GeminiAPIKey, cfg.AI.Model,
			time.Duration(cfg.AI.TimeoutSeconds)*time.Second)
		if err != nil {
			log.Warnw("Failed to initialize generative backend, continuing without AI", "error", err)
		} else {
			aiClient = client
		}
	}

	fares, err := services.NewFlatFareEstimator(cfg.Fare.PerLegSurcharge)
	if err != nil {
		log.Fatalf("Failed to initialize fare estimator: %v", err)
	}

	// Routing engines in cascade priority order.
	var providers []services.TripProvider
	if cfg.Routing.PrimaryEndpoint != "" {
		providers = append(providers, services.NewTransmodelProvider(cfg.Routing, fares))
	}
	if cfg.Routing.SecondaryEndpoint != "" {
		providers = append(providers, services.NewOTPRestProvider(cfg.Routing, fares))
	}
	cascade := services.NewProviderCascade(providers...)

	geocodingService := services.NewGeocodingService(cfg.Geocoding, aiClient)
	weatherService := services.NewWeatherService(cfg.Weather)
	enhancer := services.NewAIEnhancer(aiClient)
	tripCache := services.NewTripCache(redisClient,
		time.Duration(cfg.Cache.RecentTripsTTLMinutes)*time.Minute,
		cfg.Cache.MaxRecentTrips)

	plannerService := services.NewPlannerService(
		geocodingService,
		weatherService,
		cascade,
		enhancer,
		tripCache,
		types.Coordinates{Lat: cfg.Routing.DefaultOriginLat, Lng: cfg.Routing.DefaultOriginLng},
	)
	healthService := services.NewHealthService(redisClient, cfg.Server.Version)

	r := router.SetupRouter(router.Dependencies{
		Config:        cfg,
		TripHandler:   handlers.NewTripHandler(plannerService),
		HealthHandler: handlers.NewHealthHandler(healthService),
		Logger:        log,
	})

	log.Infof("Starting server on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
