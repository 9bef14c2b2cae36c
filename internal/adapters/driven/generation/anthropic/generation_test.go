package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rackmesa/ragstack/internal/core/domain"
)

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestGenerate(t *testing.T) {
	var gotReq messagesRequest
	var gotVersion, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		gotVersion = r.Header.Get("anthropic-version")
		gotKey = r.Header.Get("x-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		// Multiple content blocks concatenate; non-text blocks are skipped.
		w.Write([]byte(`{"content": [
			{"type": "text", "text": "Part one. "},
			{"type": "tool_use", "text": "ignored"},
			{"type": "text", "text": "Part two."}
		]}`))
	}))
	defer server.Close()

	p, err := New(Config{APIKey: "sk-ant", BaseURL: server.URL})
	require.NoError(t, err)

	answer, err := p.Generate(context.Background(), "why?", []string{"a chunk"})
	require.NoError(t, err)
	assert.Equal(t, "Part one. Part two.", answer)

	assert.Equal(t, anthropicVersion, gotVersion)
	assert.Equal(t, "sk-ant", gotKey)
	assert.NotEmpty(t, gotReq.System)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
	assert.Contains(t, gotReq.Messages[0].Content, "a chunk")
	assert.Contains(t, gotReq.Messages[0].Content, "why?")
}

func TestGenerateAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"type": "invalid_request_error", "message": "bad model"}}`))
	}))
	defer server.Close()

	p, err := New(Config{APIKey: "sk-ant", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), "q", []string{"c"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad model")
}

func TestGenerateEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content": []}`))
	}))
	defer server.Close()

	p, err := New(Config{APIKey: "sk-ant", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), "q", []string{"c"})
	assert.ErrorIs(t, err, domain.ErrProviderResponseInvalid)
}

func TestPingToleratesBadRequest(t *testing.T) {
	// The empty ping request is invalid, but a 4xx other than auth errors
	// still proves the endpoint is reachable.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	p, err := New(Config{APIKey: "sk-ant", BaseURL: server.URL})
	require.NoError(t, err)
	assert.NoError(t, p.Ping(context.Background()))
}

func TestPingRejectsAuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	p, err := New(Config{APIKey: "sk-bad", BaseURL: server.URL})
	require.NoError(t, err)
	assert.ErrorIs(t, p.Ping(context.Background()), domain.ErrProviderUnavailable)
}
