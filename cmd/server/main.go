package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/prodscout/backend/config"
	httpDelivery "github.com/prodscout/backend/internal/delivery/http"
	"github.com/prodscout/backend/internal/domain"
	"github.com/prodscout/backend/internal/infrastructure/brightdata"
	"github.com/prodscout/backend/internal/infrastructure/sampledata"
	"github.com/prodscout/backend/internal/infrastructure/textgen"
	"github.com/prodscout/backend/internal/infrastructure/venues"
	"github.com/prodscout/backend/internal/usecase"
)

func main() {
	// Optional .env for local development; real deployments use env vars
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting ProdScout Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	apiConfigured := cfg.BrightData.APIKey != ""
	if apiConfigured {
		log.Printf("Bright Data configured: %s", cfg.BrightData.TriggerURL)
	} else {
		log.Printf("WARNING: Bright Data API key not configured - all scrapes will use sample data")
	}

	// Infrastructure
	primary := brightdata.NewClient(
		cfg.BrightData.APIKey,
		cfg.BrightData.TriggerURL,
		cfg.BrightData.SnapshotBaseURL,
		cfg.BrightData.SubmitTimeout,
		cfg.BrightData.SnapshotTimeout,
	)
	if cfg.Server.Environment == "development" {
		primary.SetDebug(true)
	}

	poller := brightdata.NewPoller(primary, cfg.BrightData.PollMaxAttempts, cfg.BrightData.PollInterval)
	fallback := sampledata.NewSource()

	// Usecase layer
	filterService := usecase.NewFilterService(domain.FilterCriteria{
		MinRating: cfg.Filter.MinRating,
		MaxPrice:  cfg.Filter.MaxPrice,
		Limit:     cfg.Filter.TopLimit,
	})
	scrapeService := usecase.NewScrapeService(primary, fallback, poller, primary, filterService)

	log.Printf("Filter defaults: minRating=%.1f, maxPrice=%.2f, topLimit=%d",
		cfg.Filter.MinRating, cfg.Filter.MaxPrice, cfg.Filter.TopLimit)

	// Text-generation collaborator is optional; recommendations degrade to a
	// plain listing without it
	var generator domain.TextGenerator
	if gen, err := textgen.NewClient(context.Background(), cfg.TextGen.APIKey, cfg.TextGen.Model); err == nil {
		generator = gen
		log.Printf("Text generation configured: model=%s", cfg.TextGen.Model)
	} else {
		log.Printf("Text generation not configured: %v", err)
	}
	recommendService := usecase.NewRecommendService(scrapeService, generator)

	venueClient := venues.NewClient(cfg.Venues.APIKey, cfg.Venues.Query)

	// HTTP delivery
	handler := httpDelivery.NewHandler(scrapeService, recommendService, venueClient, cfg.Server.PublicBaseURL, apiConfigured)
	router := httpDelivery.SetupRouter(cfg, handler)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
