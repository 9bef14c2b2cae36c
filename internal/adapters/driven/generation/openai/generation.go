// Package openai provides a generation provider adapter for the OpenAI chat
// completions API and any OpenAI-compatible endpoint (Groq, Together, vLLM)
// reached via a base URL override.
package openai

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
	DefaultBaseURL     = "https://api.openai.com/v1"
	GroqBaseURL        = "https://api.groq.com/openai/v1"
	DefaultModel       = "gpt-4o-mini"
	DefaultTimeout     = 120 * time.Second
	DefaultMaxTokens   = 1000
	DefaultTemperature = 0.7
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

// Config holds configuration for the OpenAI-compatible generation provider.
type Config struct {
	// APIKey is the API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Set to GroqBaseURL (or any compatible endpoint) to target another
	// backend.
	BaseURL string

	// Model is the generation model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// MaxTokens caps the generated answer length (default: 1000).
	MaxTokens int

	// Temperature controls sampling randomness (default: 0.7).
	Temperature float64
}

// GenerationProvider produces answers using the chat completions API.
type GenerationProvider struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
}

// chatMessage is the chat message format.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the /chat/completions request format.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

// chatResponse is the /chat/completions response format.
type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// New creates a new OpenAI-compatible generation provider.
func New(cfg Config) (*GenerationProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
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
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
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

	reqBody := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.baseURL+"/chat/completions",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai: send request: %w: %w", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("openai: read response: %w: %w", domain.ErrProviderUnavailable, err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("openai: decode response: %w: %w", domain.ErrProviderResponseInvalid, err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("openai error: %s: %w", chatResp.Error.Message, domain.ErrProviderResponseInvalid)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai error (status %d): %s: %w", resp.StatusCode, string(body), domain.ErrProviderUnavailable)
	}

	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai: empty completion: %w", domain.ErrProviderResponseInvalid)
	}

	return chatResp.Choices[0].Message.Content, nil
}

// ModelName returns the name of the generation model being used.
func (p *GenerationProvider) ModelName() string {
	return p.model
}

// Ping validates the backend is reachable by checking the /models endpoint.
func (p *GenerationProvider) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("openai: failed to create ping request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("openai: ping failed: %w: %w", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("openai: API returned status %d: %w", resp.StatusCode, domain.ErrProviderUnavailable)
	}
	return nil
}

// Close releases resources.
func (p *GenerationProvider) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
