// Package ai provides factory functions that turn settings into provider
// adapters and assemble the provider registry.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/rackmesa/ragstack/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/rackmesa/ragstack/internal/adapters/driven/embedding/openai"
	anthropicgen "github.com/rackmesa/ragstack/internal/adapters/driven/generation/anthropic"
	ollamagen "github.com/rackmesa/ragstack/internal/adapters/driven/generation/ollama"
	openaigen "github.com/rackmesa/ragstack/internal/adapters/driven/generation/openai"
	"github.com/rackmesa/ragstack/internal/core/domain"
	"github.com/rackmesa/ragstack/internal/core/ports/driven"
	"github.com/rackmesa/ragstack/internal/core/services"
	"github.com/rackmesa/ragstack/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateEmbeddingProvider creates the embedding provider described by
// settings. Returns nil without error when the settings are absent or
// incomplete, so callers can distinguish "not configured" from "broken".
func CreateEmbeddingProvider(settings *domain.EmbeddingSettings) (driven.EmbeddingProvider, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	var provider driven.EmbeddingProvider
	switch settings.Provider {
	case domain.AIProviderOllama:
		provider = ollamaembed.New(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Timeout:    timeoutFromSeconds(settings.TimeoutSeconds),
			Dimensions: settings.Dimensions,
		})

	case domain.AIProviderOpenAI:
		p, err := openaiembed.New(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Timeout:    timeoutFromSeconds(settings.TimeoutSeconds),
			Dimensions: settings.Dimensions,
		})
		if err != nil {
			return nil, err
		}
		provider = p

	default:
		return nil, fmt.Errorf("provider %q does not support embeddings: %w",
			settings.Provider, domain.ErrProviderNotConfigured)
	}

	if settings.RequestsPerSecond > 0 {
		provider = NewRateLimitedEmbedding(provider, settings.RequestsPerSecond)
	}

	return provider, nil
}

// CreateAndValidateEmbeddingProvider creates an embedding provider and
// validates connectivity. Returns the provider if successful, or an error
// with guidance.
func CreateAndValidateEmbeddingProvider(settings *domain.EmbeddingSettings) (driven.EmbeddingProvider, error) {
	provider, err := CreateEmbeddingProvider(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Check the [embedding] section of your config file",
			domain.ErrProviderUnavailable, err)
	}
	if provider == nil {
		return nil, nil
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := provider.Ping(ctx); err != nil {
		provider.Close()
		return nil, fmt.Errorf("%w: embedding backend unreachable (%w). Check the [embedding] section of your config file",
			domain.ErrProviderUnavailable, err)
	}

	return provider, nil
}

// CreateGenerationProvider creates the generation provider described by
// settings. Returns nil without error when the settings are absent or
// incomplete.
func CreateGenerationProvider(settings *domain.GenerationSettings) (driven.GenerationProvider, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamagen.New(ollamagen.Config{
			BaseURL:     settings.BaseURL,
			Model:       settings.Model,
			Timeout:     timeoutFromSeconds(settings.TimeoutSeconds),
			MaxTokens:   settings.MaxTokens,
			Temperature: settings.Temperature,
		}), nil

	case domain.AIProviderOpenAI:
		return openaigen.New(openaigen.Config{
			APIKey:      settings.APIKey,
			BaseURL:     settings.BaseURL,
			Model:       settings.Model,
			Timeout:     timeoutFromSeconds(settings.TimeoutSeconds),
			MaxTokens:   settings.MaxTokens,
			Temperature: settings.Temperature,
		})

	case domain.AIProviderGroq:
		baseURL := settings.BaseURL
		if baseURL == "" {
			baseURL = openaigen.GroqBaseURL
		}
		return openaigen.New(openaigen.Config{
			APIKey:      settings.APIKey,
			BaseURL:     baseURL,
			Model:       settings.Model,
			Timeout:     timeoutFromSeconds(settings.TimeoutSeconds),
			MaxTokens:   settings.MaxTokens,
			Temperature: settings.Temperature,
		})

	case domain.AIProviderAnthropic:
		return anthropicgen.New(anthropicgen.Config{
			APIKey:      settings.APIKey,
			BaseURL:     settings.BaseURL,
			Model:       settings.Model,
			Timeout:     timeoutFromSeconds(settings.TimeoutSeconds),
			MaxTokens:   settings.MaxTokens,
			Temperature: settings.Temperature,
		})

	default:
		return nil, fmt.Errorf("unknown generation provider %q: %w",
			settings.Provider, domain.ErrProviderNotConfigured)
	}
}

// BuildRegistry assembles the provider registry from settings: the single
// system embedding provider plus every configured named generation provider.
// A generation entry that fails to build is skipped with a warning rather
// than failing startup, so one bad API key does not take down the others.
func BuildRegistry(settings *domain.Settings) (*services.ProviderRegistry, error) {
	embedding, err := CreateAndValidateEmbeddingProvider(&settings.Embedding)
	if err != nil {
		return nil, err
	}
	if embedding != nil {
		logger.Debug("embedding provider ready: %s (%s, %d dims)",
			settings.Embedding.Provider, embedding.ModelName(), embedding.Dimensions())
	}

	generation := make(map[string]driven.GenerationProvider, len(settings.Generation))
	for name, genSettings := range settings.Generation {
		provider, err := CreateGenerationProvider(&genSettings)
		if err != nil {
			logger.Warn("skipping generation provider %q: %v", name, err)
			continue
		}
		if provider == nil {
			continue
		}
		generation[name] = provider
		logger.Debug("generation provider registered: %s (%s)", name, provider.ModelName())
	}

	return services.NewProviderRegistry(embedding, generation, settings.DefaultGeneration), nil
}

// ValidateStoreDimensions confirms the embedding provider's vector size
// matches whatever the store already holds. A mismatch here means every
// subsequent ingest and query would fail, so it is surfaced at startup.
func ValidateStoreDimensions(ctx context.Context, store driven.VectorStore, embedding driven.EmbeddingProvider) error {
	if embedding == nil {
		return nil
	}

	storeDims, err := store.EmbeddingDimensions(ctx)
	if err != nil {
		return fmt.Errorf("reading store dimensions: %w", err)
	}
	if storeDims == 0 {
		return nil // Empty store adopts the provider's size on first insert.
	}

	if providerDims := embedding.Dimensions(); providerDims != storeDims {
		return fmt.Errorf("embedding provider produces %d-dimension vectors but the store holds %d-dimension vectors: %w",
			providerDims, storeDims, domain.ErrDimensionMismatch)
	}
	return nil
}

// timeoutFromSeconds converts a settings timeout to a duration, zero meaning
// "use the adapter default".
func timeoutFromSeconds(seconds int) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
