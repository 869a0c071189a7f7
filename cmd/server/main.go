package main

import (
	"fmt"
	"log"
	"os"

	"github.com/localshelf/backend/config"
	httpDelivery "github.com/localshelf/backend/internal/delivery/http"
	"github.com/localshelf/backend/internal/infrastructure/cache"
	"github.com/localshelf/backend/internal/infrastructure/openfoodfacts"
	"github.com/localshelf/backend/internal/infrastructure/store"
	"github.com/localshelf/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting LocalShelf Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Internal store: %s", cfg.Store.BaseURL)
	log.Printf("External catalog: %s (page size %d)", cfg.Catalog.BaseURL, cfg.Catalog.PageSize)

	// Initialize infrastructure dependencies
	storeClient := store.NewClient(cfg.Store.BaseURL, cfg.Store.Timeout)

	searchCache := cache.NewMemoryCache()
	log.Printf("Catalog cache TTL: %s", cfg.Cache.TTL)

	catalogClient := openfoodfacts.NewClient(cfg.Catalog.BaseURL, searchCache, openfoodfacts.ClientOptions{
		Timeout:   cfg.Catalog.Timeout,
		PageSize:  cfg.Catalog.PageSize,
		UserAgent: cfg.Catalog.UserAgent,
		CacheTTL:  cfg.Cache.TTL,
	})

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		catalogClient.SetDebug(true)
		log.Printf("Catalog client debug mode enabled")
	}

	// Initialize usecase layer
	alternativesService := usecase.NewAlternativesService(
		storeClient,
		catalogClient,
		usecase.AlternativesServiceConfig{
			ExternalTimeout: cfg.Catalog.Timeout,
		},
	)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(alternativesService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
