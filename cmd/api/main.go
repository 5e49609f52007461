package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avolkov/catalog_insights/internal/config"
	"github.com/avolkov/catalog_insights/internal/delivery/events"
	httpDelivery "github.com/avolkov/catalog_insights/internal/delivery/http"
	"github.com/avolkov/catalog_insights/internal/delivery/http/handler"
	"github.com/avolkov/catalog_insights/internal/domain"
	"github.com/avolkov/catalog_insights/internal/pkg/database"
	"github.com/avolkov/catalog_insights/internal/pkg/logger"
	"github.com/avolkov/catalog_insights/internal/repository/mongodb"
	"github.com/avolkov/catalog_insights/internal/usecase/catalog"

	_ "github.com/avolkov/catalog_insights/docs"
)

// @title Catalog Insights API
// @version 1.0
// @description Analytics dashboard backend exposing filterable product and movie catalogs with aggregated statistics and recommendations.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://github.com/avolkov/catalog_insights
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api
// @schemes http https

// @tag.name Catalog
// @tag.description Catalog query and analytics endpoints

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Env)
	appLogger.Info("Starting Catalog Insights API...")

	appLogger.Info("Connecting to MongoDB...")
	client, err := database.WaitForMongo(cfg, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to document store", err)
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()
	appLogger.Info("Connected to MongoDB successfully")

	db := client.Database(cfg.Mongo.Database)

	productSchema := domain.ProductSchema()
	movieSchema := domain.MovieSchema()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.ConnectTimeout)
	for _, schema := range []domain.Schema{productSchema, movieSchema} {
		if err := database.EnsureIndexes(ctx, db, schema); err != nil {
			cancel()
			appLogger.Fatalf(err, "Failed to ensure indexes for %s", schema.Collection)
		}
	}
	cancel()

	appLogger.Info("Connecting to NATS...")
	publisher, err := events.NewPublisher(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create NATS publisher", err)
	}
	defer publisher.Close()

	productRepo := mongodb.NewCatalogRepository(db, productSchema, cfg.Mongo.OperationTimeout)
	movieRepo := mongodb.NewCatalogRepository(db, movieSchema, cfg.Mongo.OperationTimeout)

	productService := catalog.NewService(productSchema, productRepo, publisher, appLogger)
	movieService := catalog.NewService(movieSchema, movieRepo, publisher, appLogger)

	productHandler := handler.NewCatalogHandler(productService, appLogger)
	movieHandler := handler.NewCatalogHandler(movieService, appLogger)

	router := httpDelivery.NewRouter(productHandler, movieHandler, cfg, appLogger)
	httpHandler := router.Setup()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      httpHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Infof("HTTP server listening on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("HTTP server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", err)
	}

	appLogger.Info("Server stopped gracefully")
}
