// Command ragstack is a retrieval-augmented question answering tool for
// local documentation.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rackmesa/ragstack/internal/adapters/driven/ai"
	configfile "github.com/rackmesa/ragstack/internal/adapters/driven/config/file"
	"github.com/rackmesa/ragstack/internal/adapters/driven/storage/memory"
	"github.com/rackmesa/ragstack/internal/adapters/driven/storage/qdrant"
	"github.com/rackmesa/ragstack/internal/adapters/driven/storage/sqlite"
	"github.com/rackmesa/ragstack/internal/adapters/driving/cli"
	"github.com/rackmesa/ragstack/internal/core/domain"
	"github.com/rackmesa/ragstack/internal/core/ports/driven"
	"github.com/rackmesa/ragstack/internal/core/services"
	"github.com/rackmesa/ragstack/internal/logger"
)

func main() {
	var closers []func() error
	defer func() {
		for _, close := range closers {
			if err := close(); err != nil {
				logger.Warn("cleanup: %v", err)
			}
		}
	}()

	cli.SetBootstrap(func(configPath string) error {
		settings, err := configfile.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		store, err := buildStore(settings)
		if err != nil {
			return fmt.Errorf("opening vector store: %w", err)
		}
		closers = append(closers, store.Close)

		registry, err := ai.BuildRegistry(settings)
		if err != nil {
			store.Close()
			return err
		}
		closers = append(closers, func() error {
			registry.Close()
			return nil
		})

		if embedder, err := registry.Embedding(); err == nil {
			if err := ai.ValidateStoreDimensions(context.Background(), store, embedder); err != nil {
				return err
			}
		}

		splitter := services.NewSplitter(services.WithMaxChunkSize(settings.MaxChunkSize))
		ingestion := services.NewIngestionService(store, registry, splitter)
		retrieval := services.NewRetrievalService(store, registry, services.WithDefaultTopK(settings.TopK))

		cli.SetServices(ingestion, retrieval)
		return nil
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildStore opens the vector store named by the storage settings.
func buildStore(settings *domain.Settings) (driven.VectorStore, error) {
	switch settings.Storage.Backend {
	case domain.StorageSQLite:
		return sqlite.NewStore(settings.Storage.DataDir)

	case domain.StorageQdrant:
		prefix := settings.Storage.QdrantCollection
		cfg := qdrant.Config{
			Host: settings.Storage.QdrantHost,
			Port: settings.Storage.QdrantPort,
		}
		if prefix != "" {
			cfg.ChunkCollection = prefix + "_chunks"
			cfg.DocumentCollection = prefix + "_documents"
		}
		return qdrant.NewStore(context.Background(), cfg)

	case domain.StorageMemory:
		return memory.NewStore(), nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q: %w", settings.Storage.Backend, domain.ErrInvalidInput)
	}
}
