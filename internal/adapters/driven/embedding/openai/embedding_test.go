package openai

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

func TestNewModelDimensions(t *testing.T) {
	p, err := New(Config{APIKey: "sk-test", Model: "text-embedding-3-large"})
	require.NoError(t, err)
	assert.Equal(t, 3072, p.Dimensions())

	p, err = New(Config{APIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, 1536, p.Dimensions())

	p, err = New(Config{APIKey: "sk-test", Model: "text-embedding-3-small", Dimensions: 256})
	require.NoError(t, err)
	assert.Equal(t, 256, p.Dimensions())
}

func TestEmbedBatch(t *testing.T) {
	var gotAuth string
	var gotReq embeddingRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		// Out-of-order response data: the adapter must reorder by index.
		resp := embeddingResponse{}
		resp.Data = []struct {
			Embedding []float64 `json:"embedding"`
			Index     int       `json:"index"`
		}{
			{Embedding: []float64{0.3, 0.4}, Index: 1},
			{Embedding: []float64{0.1, 0.2}, Index: 0},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	p, err := New(Config{APIKey: "sk-test", BaseURL: server.URL, Dimensions: 2})
	require.NoError(t, err)

	embeddings, err := p.EmbedBatch(context.Background(), []string{"first", "second"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, 2, gotReq.Dimensions)

	require.Len(t, embeddings, 2)
	assert.Equal(t, []float32{0.1, 0.2}, embeddings[0])
	assert.Equal(t, []float32{0.3, 0.4}, embeddings[1])
}

func TestEmbedBatchAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "invalid key", "type": "auth"}}`))
	}))
	defer server.Close()

	p, err := New(Config{APIKey: "sk-bad", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = p.EmbedBatch(context.Background(), []string{"text"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProviderResponseInvalid)
	assert.Contains(t, err.Error(), "invalid key")
}

func TestEmbedBatchUnreachable(t *testing.T) {
	p, err := New(Config{APIKey: "sk-test", BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	_, err = p.EmbedBatch(context.Background(), []string{"text"})
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestEmbedBatchCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	p, err := New(Config{APIKey: "sk-test", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = p.EmbedBatch(context.Background(), []string{"text"})
	assert.ErrorIs(t, err, domain.ErrProviderResponseInvalid)
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	p, err := New(Config{APIKey: "sk-test", BaseURL: server.URL})
	require.NoError(t, err)
	assert.NoError(t, p.Ping(context.Background()))
}
