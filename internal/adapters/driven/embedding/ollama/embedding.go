// Package ollama provides an embedding provider adapter using Ollama.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rackmesa/ragstack/internal/core/domain"
	"github.com/rackmesa/ragstack/internal/core/ports/driven"
)

// Ensure EmbeddingProvider implements the interface.
var _ driven.EmbeddingProvider = (*EmbeddingProvider)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultModel      = "nomic-embed-text"
	DefaultTimeout    = 30 * time.Second
	DefaultDimensions = 768 // nomic-embed-text default
)

// Config holds configuration for the Ollama embedding provider.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the embedding model to use (default: nomic-embed-text).
	Model string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// Dimensions is the embedding vector size (model-dependent).
	Dimensions int
}

// EmbeddingProvider generates embeddings using Ollama's /api/embed endpoint,
// which accepts batched input natively.
type EmbeddingProvider struct {
	client     *http.Client
	baseURL    string
	model      string
	dimensions int
}

// embedRequest is the Ollama /api/embed request format.
type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// embedResponse is the Ollama /api/embed response format.
type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// New creates a new Ollama embedding provider.
func New(cfg Config) *EmbeddingProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}

	return &EmbeddingProvider{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

// Embed generates a vector embedding for the given text.
func (p *EmbeddingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one request.
func (p *EmbeddingProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	reqBody := embedRequest{
		Model: p.model,
		Input: texts,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.baseURL+"/api/embed",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama: send request: %w: %w", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("ollama error (status %d): %w", resp.StatusCode, domain.ErrProviderUnavailable)
		}
		return nil, fmt.Errorf("ollama error (status %d): %s: %w", resp.StatusCode, string(body), domain.ErrProviderUnavailable)
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("ollama: decode response: %w: %w", domain.ErrProviderResponseInvalid, err)
	}

	if len(embedResp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama: got %d embeddings for %d inputs: %w",
			len(embedResp.Embeddings), len(texts), domain.ErrProviderResponseInvalid)
	}

	embeddings := make([][]float32, len(embedResp.Embeddings))
	for i, vec := range embedResp.Embeddings {
		if len(vec) == 0 {
			return nil, fmt.Errorf("ollama: empty embedding at index %d: %w", i, domain.ErrProviderResponseInvalid)
		}
		embedding := make([]float32, len(vec))
		for j, v := range vec {
			embedding[j] = float32(v)
		}
		embeddings[i] = embedding
	}

	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (p *EmbeddingProvider) Dimensions() int {
	return p.dimensions
}

// ModelName returns the name of the embedding model being used.
func (p *EmbeddingProvider) ModelName() string {
	return p.model
}

// Ping validates the backend is reachable by checking the /api/tags
// endpoint. This is a lightweight check that validates connectivity without
// running inference.
func (p *EmbeddingProvider) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: failed to create ping request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: ping failed: %w: %w", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama: API returned status %d: %w", resp.StatusCode, domain.ErrProviderUnavailable)
	}
	return nil
}

// Close releases resources.
func (p *EmbeddingProvider) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
