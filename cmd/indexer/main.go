// Command indexer rebuilds the full-text search index from the database.
// Run it after restoring a backup or changing the collection schema.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gharbazaar/backend/internal/adapters/database"
	"github.com/gharbazaar/backend/internal/adapters/search"
	"github.com/gharbazaar/backend/internal/application/services"
	"github.com/gharbazaar/backend/internal/infrastructure/clients/postgres"
	"github.com/gharbazaar/backend/internal/infrastructure/clients/typesense"
	"github.com/gharbazaar/backend/internal/infrastructure/observability"
	"github.com/gharbazaar/backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger("gharbazaar-indexer", cfg.Env)
	logger := observability.GetLogger()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize Typesense client")
	}

	searchAdapter := search.NewTypesenseAdapter(typesenseClient)
	if err := searchAdapter.InitSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to init Typesense schema")
	}

	propertyRepo := database.NewPropertyAdapter(pgClient)
	service := services.NewPropertyService(propertyRepo, searchAdapter, nil)

	indexed, err := service.ReindexAll(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("reindex failed")
	}

	logger.Info().Int("indexed", indexed).Msg("reindex complete")
}
