package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rackmesa/ragstack/internal/core/domain"
)

func TestCreateEmbeddingProviderUnconfigured(t *testing.T) {
	provider, err := CreateEmbeddingProvider(nil)
	require.NoError(t, err)
	assert.Nil(t, provider)

	// OpenAI without an API key is incomplete, not an error.
	provider, err = CreateEmbeddingProvider(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOpenAI,
	})
	require.NoError(t, err)
	assert.Nil(t, provider)

	// Anthropic has no embedding endpoint.
	provider, err = CreateEmbeddingProvider(&domain.EmbeddingSettings{
		Provider: domain.AIProviderAnthropic,
		APIKey:   "sk-ant",
	})
	require.NoError(t, err)
	assert.Nil(t, provider)
}

func TestCreateEmbeddingProviderOllama(t *testing.T) {
	provider, err := CreateEmbeddingProvider(&domain.EmbeddingSettings{
		Provider:   domain.AIProviderOllama,
		Model:      "nomic-embed-text",
		Dimensions: 768,
	})
	require.NoError(t, err)
	require.NotNil(t, provider)
	assert.Equal(t, "nomic-embed-text", provider.ModelName())
	assert.Equal(t, 768, provider.Dimensions())
}

func TestCreateEmbeddingProviderRateLimited(t *testing.T) {
	provider, err := CreateEmbeddingProvider(&domain.EmbeddingSettings{
		Provider:          domain.AIProviderOllama,
		RequestsPerSecond: 2.5,
	})
	require.NoError(t, err)
	require.NotNil(t, provider)

	// The wrapper is transparent for metadata.
	_, ok := provider.(*rateLimitedEmbedding)
	assert.True(t, ok)
	assert.NotZero(t, provider.Dimensions())
	assert.NotEmpty(t, provider.ModelName())
}

func TestCreateGenerationProvider(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.GenerationSettings
		wantNil  bool
	}{
		{
			name:    "nil settings",
			wantNil: true,
		},
		{
			name:     "ollama",
			settings: &domain.GenerationSettings{Provider: domain.AIProviderOllama},
		},
		{
			name:     "openai without key",
			settings: &domain.GenerationSettings{Provider: domain.AIProviderOpenAI},
			wantNil:  true,
		},
		{
			name:     "openai with key",
			settings: &domain.GenerationSettings{Provider: domain.AIProviderOpenAI, APIKey: "sk-test"},
		},
		{
			name:     "groq with key",
			settings: &domain.GenerationSettings{Provider: domain.AIProviderGroq, APIKey: "gsk-test"},
		},
		{
			name:     "anthropic with key",
			settings: &domain.GenerationSettings{Provider: domain.AIProviderAnthropic, APIKey: "sk-ant"},
		},
		{
			name:     "unknown provider",
			settings: &domain.GenerationSettings{Provider: "mystery"},
			wantNil:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := CreateGenerationProvider(tt.settings)
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, provider)
			} else {
				assert.NotNil(t, provider)
			}
		})
	}
}

func TestBuildRegistrySkipsUnconfigured(t *testing.T) {
	settings := &domain.Settings{
		DefaultGeneration: "ollama",
		Generation: map[string]domain.GenerationSettings{
			"ollama": {Provider: domain.AIProviderOllama},
			"groq":   {Provider: domain.AIProviderGroq}, // no API key
		},
	}

	registry, err := BuildRegistry(settings)
	require.NoError(t, err)

	assert.Equal(t, []string{"ollama"}, registry.GenerationNames())

	_, _, err = registry.Generation("groq")
	assert.ErrorIs(t, err, domain.ErrProviderNotConfigured)
}

// dimStore is a stub vector store exposing only a dimensionality.
type dimStore struct {
	dims int
}

func (s *dimStore) FindDocumentByName(_ context.Context, _ string) (*domain.Document, error) {
	return nil, domain.ErrNotFound
}

func (s *dimStore) InsertDocument(_ context.Context, _ *domain.Document, _ []domain.Chunk) error {
	return nil
}

func (s *dimStore) GetDocument(_ context.Context, _ string) (*domain.Document, error) {
	return nil, domain.ErrNotFound
}

func (s *dimStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	return nil, nil
}

func (s *dimStore) DeleteDocument(_ context.Context, _ string) error {
	return domain.ErrNotFound
}

func (s *dimStore) NearestChunks(_ context.Context, _ []float32, _ int) ([]domain.RetrievedChunk, error) {
	return nil, nil
}

func (s *dimStore) EmbeddingDimensions(_ context.Context) (int, error) {
	return s.dims, nil
}

func (s *dimStore) Close() error { return nil }

func TestValidateStoreDimensions(t *testing.T) {
	embedder, err := CreateEmbeddingProvider(&domain.EmbeddingSettings{
		Provider:   domain.AIProviderOllama,
		Dimensions: 768,
	})
	require.NoError(t, err)
	ctx := context.Background()

	// Empty store: any provider fits.
	assert.NoError(t, ValidateStoreDimensions(ctx, &dimStore{dims: 0}, embedder))

	// Matching dimensionality.
	assert.NoError(t, ValidateStoreDimensions(ctx, &dimStore{dims: 768}, embedder))

	// Mismatch is fatal.
	err = ValidateStoreDimensions(ctx, &dimStore{dims: 1536}, embedder)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	// No embedding provider configured: nothing to validate.
	assert.NoError(t, ValidateStoreDimensions(ctx, &dimStore{dims: 1536}, nil))
}
