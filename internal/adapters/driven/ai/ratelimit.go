package ai

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/rackmesa/ragstack/internal/core/ports/driven"
)

var _ driven.EmbeddingProvider = (*rateLimitedEmbedding)(nil)

// rateLimitedEmbedding wraps an embedding provider with a token bucket so
// batch ingestion cannot exceed a backend's request quota. A batch call
// counts as one request regardless of how many texts it carries.
type rateLimitedEmbedding struct {
	inner   driven.EmbeddingProvider
	limiter *rate.Limiter
}

// NewRateLimitedEmbedding wraps provider so outbound calls are capped at
// requestsPerSecond. Burst size is the rate rounded up, at least one.
func NewRateLimitedEmbedding(provider driven.EmbeddingProvider, requestsPerSecond float64) driven.EmbeddingProvider {
	burst := int(requestsPerSecond)
	if float64(burst) < requestsPerSecond {
		burst++
	}
	if burst < 1 {
		burst = 1
	}

	return &rateLimitedEmbedding{
		inner:   provider,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Embed waits for a token, then delegates.
func (r *rateLimitedEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.Embed(ctx, text)
}

// EmbedBatch waits for a token, then delegates.
func (r *rateLimitedEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.EmbedBatch(ctx, texts)
}

// Dimensions returns the wrapped provider's vector size.
func (r *rateLimitedEmbedding) Dimensions() int {
	return r.inner.Dimensions()
}

// ModelName returns the wrapped provider's model name.
func (r *rateLimitedEmbedding) ModelName() string {
	return r.inner.ModelName()
}

// Ping delegates without consuming a token.
func (r *rateLimitedEmbedding) Ping(ctx context.Context) error {
	return r.inner.Ping(ctx)
}

// Close closes the wrapped provider.
func (r *rateLimitedEmbedding) Close() error {
	return r.inner.Close()
}
