// Package ollama provides a generation provider adapter using Ollama.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rackmesa/ragstack/internal/core/domain"
	"github.com/rackmesa/ragstack/internal/core/ports/driven"
)

// Ensure GenerationProvider implements the interface.
var _ driven.GenerationProvider = (*GenerationProvider)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2"
	DefaultTimeout = 120 * time.Second
)

// promptTemplate grounds the answer in the retrieved context. The model is
// told to answer only from the context and to say so when the context does
// not contain the answer.
const promptTemplate = `Context from documentation:
%s

Question: %s

Answer based only on the context above. If the answer is not in the context, say so.`

// Config holds configuration for the Ollama generation provider.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the generation model to use (default: llama3.2).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// MaxTokens caps the generated answer length. Zero leaves it unset.
	MaxTokens int

	// Temperature controls sampling randomness. Zero leaves it unset.
	Temperature float64
}

// GenerationProvider produces answers using Ollama's /api/generate endpoint.
type GenerationProvider struct {
	client      *http.Client
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
}

// generateRequest is the Ollama /api/generate request format.
type generateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	Stream  bool     `json:"stream"`
	Options *options `json:"options,omitempty"`
}

// options holds generation parameters.
type options struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// generateResponse is the Ollama /api/generate response format.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// New creates a new Ollama generation provider.
func New(cfg Config) *GenerationProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &GenerationProvider{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     cfg.BaseURL,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

// Generate produces an answer to question using the ordered context chunks.
// Chunks are concatenated in the order given, separated by a blank line, and
// are never truncated here; callers bound context size via topK.
func (p *GenerationProvider) Generate(ctx context.Context, question string, contexts []string) (string, error) {
	prompt := fmt.Sprintf(promptTemplate, strings.Join(contexts, "\n\n"), question)

	reqBody := generateRequest{
		Model:  p.model,
		Prompt: prompt,
		Stream: false,
	}
	if p.maxTokens > 0 || p.temperature > 0 {
		reqBody.Options = &options{
			NumPredict:  p.maxTokens,
			Temperature: p.temperature,
		}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.baseURL+"/api/generate",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama: send request: %w: %w", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("ollama error (status %d): %w", resp.StatusCode, domain.ErrProviderUnavailable)
		}
		return "", fmt.Errorf("ollama error (status %d): %s: %w", resp.StatusCode, string(body), domain.ErrProviderUnavailable)
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("ollama: decode response: %w: %w", domain.ErrProviderResponseInvalid, err)
	}

	if genResp.Response == "" {
		return "", fmt.Errorf("ollama: empty response: %w", domain.ErrProviderResponseInvalid)
	}

	return genResp.Response, nil
}

// ModelName returns the name of the generation model being used.
func (p *GenerationProvider) ModelName() string {
	return p.model
}

// Ping validates the backend is reachable by checking the /api/tags
// endpoint.
func (p *GenerationProvider) Ping(ctx context.Context) error {
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
func (p *GenerationProvider) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
