// Package anthropic provides a generation provider adapter using the
// Anthropic API.
package anthropic

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
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-3-5-sonnet-latest"
	DefaultTimeout   = 120 * time.Second
	DefaultMaxTokens = 1000

	// anthropicVersion is the required API version header.
	anthropicVersion = "2023-06-01"
)

// systemPrompt grounds the answer in the retrieved context.
const systemPrompt = `You are a helpful assistant that answers questions based on the provided context from documentation.
Answer only from the context. If the context doesn't contain relevant information, say so explicitly.`

// userPromptTemplate carries the context chunks, in ranking order, and the
// question.
const userPromptTemplate = `Context from documentation:
%s

Question: %s

Please provide a helpful answer based on the context above.`

// Config holds configuration for the Anthropic generation provider.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com).
	BaseURL string

	// Model is the generation model to use (default: claude-3-5-sonnet-latest).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// MaxTokens caps the generated answer length (default: 1000).
	MaxTokens int

	// Temperature controls sampling randomness. Zero leaves it unset.
	Temperature float64
}

// GenerationProvider produces answers using the Anthropic /v1/messages API.
type GenerationProvider struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
}

// messagesMessage is the Anthropic message format.
type messagesMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesRequest is the Anthropic /v1/messages request format.
type messagesRequest struct {
	Model       string            `json:"model"`
	Messages    []messagesMessage `json:"messages"`
	MaxTokens   int               `json:"max_tokens"`
	System      string            `json:"system,omitempty"`
	Temperature float64           `json:"temperature,omitempty"`
}

// messagesResponse is the Anthropic /v1/messages response format.
type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// New creates a new Anthropic generation provider.
func New(cfg Config) (*GenerationProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	return &GenerationProvider{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

// Generate produces an answer to question using the ordered context chunks.
func (p *GenerationProvider) Generate(ctx context.Context, question string, contexts []string) (string, error) {
	userPrompt := fmt.Sprintf(userPromptTemplate, strings.Join(contexts, "\n\n"), question)

	reqBody := messagesRequest{
		Model: p.model,
		Messages: []messagesMessage{
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   p.maxTokens,
		System:      systemPrompt,
		Temperature: p.temperature,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.baseURL+"/v1/messages",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("anthropic: send request: %w: %w", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("anthropic: read response: %w: %w", domain.ErrProviderUnavailable, err)
	}

	var msgResp messagesResponse
	if err := json.Unmarshal(body, &msgResp); err != nil {
		return "", fmt.Errorf("anthropic: decode response: %w: %w", domain.ErrProviderResponseInvalid, err)
	}

	if msgResp.Error != nil {
		return "", fmt.Errorf("anthropic error: %s: %w", msgResp.Error.Message, domain.ErrProviderResponseInvalid)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anthropic error (status %d): %s: %w", resp.StatusCode, string(body), domain.ErrProviderUnavailable)
	}

	var text strings.Builder
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("anthropic: empty completion: %w", domain.ErrProviderResponseInvalid)
	}

	return text.String(), nil
}

// ModelName returns the name of the generation model being used.
func (p *GenerationProvider) ModelName() string {
	return p.model
}

// Ping validates the backend is reachable. The messages endpoint rejects the
// empty request with a 4xx, which still proves connectivity and key format,
// so any response other than a transport failure or 401/403 counts as
// reachable.
func (p *GenerationProvider) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/messages", http.NoBody)
	if err != nil {
		return fmt.Errorf("anthropic: failed to create ping request: %w", err)
	}
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("anthropic: ping failed: %w: %w", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("anthropic: API returned status %d: %w", resp.StatusCode, domain.ErrProviderUnavailable)
	}
	return nil
}

// Close releases resources.
func (p *GenerationProvider) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
