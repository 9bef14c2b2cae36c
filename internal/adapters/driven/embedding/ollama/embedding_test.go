package ollama

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

func TestNewDefaults(t *testing.T) {
	p := New(Config{})

	assert.Equal(t, DefaultModel, p.ModelName())
	assert.Equal(t, DefaultDimensions, p.Dimensions())
}

func TestEmbedBatch(t *testing.T) {
	var gotReq embedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(embedResponse{
			Embeddings: [][]float64{{0.1, 0.2}, {0.3, 0.4}},
		})
	}))
	defer server.Close()

	p := New(Config{BaseURL: server.URL, Model: "test-model", Dimensions: 2})

	embeddings, err := p.EmbedBatch(context.Background(), []string{"first", "second"})
	require.NoError(t, err)

	assert.Equal(t, "test-model", gotReq.Model)
	assert.Equal(t, []string{"first", "second"}, gotReq.Input)

	require.Len(t, embeddings, 2)
	assert.Equal(t, []float32{0.1, 0.2}, embeddings[0])
	assert.Equal(t, []float32{0.3, 0.4}, embeddings[1])
}

func TestEmbedSingle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float64{{1, 2, 3}}})
	}))
	defer server.Close()

	p := New(Config{BaseURL: server.URL})

	embedding, err := p.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, embedding)
}

func TestEmbedBatchEmptyInput(t *testing.T) {
	p := New(Config{BaseURL: "http://unused"})

	embeddings, err := p.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, embeddings)
}

func TestEmbedBatchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	p := New(Config{BaseURL: server.URL})

	_, err := p.EmbedBatch(context.Background(), []string{"text"})
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestEmbedBatchUnreachable(t *testing.T) {
	p := New(Config{BaseURL: "http://127.0.0.1:1"})

	_, err := p.EmbedBatch(context.Background(), []string{"text"})
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestEmbedBatchCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float64{{1}}})
	}))
	defer server.Close()

	p := New(Config{BaseURL: server.URL})

	_, err := p.EmbedBatch(context.Background(), []string{"one", "two"})
	assert.ErrorIs(t, err, domain.ErrProviderResponseInvalid)
}

func TestEmbedBatchMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	p := New(Config{BaseURL: server.URL})

	_, err := p.EmbedBatch(context.Background(), []string{"text"})
	assert.ErrorIs(t, err, domain.ErrProviderResponseInvalid)
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	p := New(Config{BaseURL: server.URL})
	assert.NoError(t, p.Ping(context.Background()))

	p = New(Config{BaseURL: "http://127.0.0.1:1"})
	assert.ErrorIs(t, p.Ping(context.Background()), domain.ErrProviderUnavailable)
}
