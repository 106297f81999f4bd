package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"

	"ar-model-dashboard/app/controller"
	"ar-model-dashboard/app/router"
	"ar-model-dashboard/config"
	"ar-model-dashboard/db"
	"ar-model-dashboard/repository"
	"ar-model-dashboard/service"
)

// App is the wired backend: its HTTP handler and the resources it owns
type App struct {
	Handler http.Handler
	conn    *sql.DB
}

// Initialize initializes the application
func Initialize(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database connection
	conn, dialect, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize repository; schema failures are retried by the first operation
	variantRepo := repository.NewVariantStateRepository(conn, dialect)
	if err := variantRepo.EnsureSchema(ctx); err != nil {
		log.Printf("⚠️  Schema initialization failed, will retry on first use: %v", err)
	}

	if cfg.Catalog.URL == "" {
		log.Printf("⚠️  STRAPI_URL is not set, GET /catalog will fail")
	}

	// Initialize services
	strapiClient := service.NewStrapiClient(cfg.Catalog)
	catalogService := service.NewCatalogService(strapiClient, cfg.Catalog.AssetOrigin)
	syncService := service.NewSyncService(variantRepo)

	// Create controllers
	controllers := &router.Controllers{
		Catalog: controller.NewCatalogController(catalogService, cfg.Catalog.DefaultPage, cfg.Catalog.DefaultPageSize),
		Variant: controller.NewVariantController(variantRepo, syncService),
	}

	// Setup routes using standard http router
	mux := http.NewServeMux()
	router.SetupRoutes(mux, controllers)

	return &App{Handler: mux, conn: conn}, nil
}

// Close releases the database connection
func (a *App) Close() error {
	return db.Close(a.conn)
}
