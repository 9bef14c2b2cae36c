package services

import (
	"context"

	"github.com/rackmesa/ragstack/internal/core/domain"
)

// --- Mock implementations ---

// mockEmbedding implements driven.EmbeddingProvider for testing.
type mockEmbedding struct {
	embedding  []float32
	dims       int
	embedErr   error
	batchErr   error
	embedCalls int
	batchCalls int
	lastBatch  []string

	// batchResult overrides the per-text embedding when set, allowing
	// mismatched counts and sizes.
	batchResult [][]float32
}

func (m *mockEmbedding) Embed(_ context.Context, _ string) ([]float32, error) {
	m.embedCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.embedding, nil
}

func (m *mockEmbedding) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.batchCalls++
	m.lastBatch = texts
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	if m.batchResult != nil {
		return m.batchResult, nil
	}
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = m.embedding
	}
	return result, nil
}

func (m *mockEmbedding) Dimensions() int {
	if m.dims > 0 {
		return m.dims
	}
	return len(m.embedding)
}

func (m *mockEmbedding) ModelName() string { return "mock-embed" }

func (m *mockEmbedding) Ping(_ context.Context) error { return nil }

func (m *mockEmbedding) Close() error { return nil }

// mockGeneration implements driven.GenerationProvider for testing.
type mockGeneration struct {
	response     string
	generateErr  error
	calls        int
	lastQuestion string
	lastContexts []string
}

func (m *mockGeneration) Generate(_ context.Context, question string, contexts []string) (string, error) {
	m.calls++
	m.lastQuestion = question
	m.lastContexts = contexts
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.response, nil
}

func (m *mockGeneration) ModelName() string { return "mock-gen" }

func (m *mockGeneration) Ping(_ context.Context) error { return nil }

func (m *mockGeneration) Close() error { return nil }

// mockStore implements driven.VectorStore for testing.
type mockStore struct {
	docs         map[string]*domain.Document // by file name
	inserted     []insertCall
	insertErr    error
	nearest      []domain.RetrievedChunk
	nearestErr   error
	nearestCalls int
	lastK        int
	deleted      []string
	deleteErr    error
	dims         int
}

type insertCall struct {
	doc    *domain.Document
	chunks []domain.Chunk
}

func (m *mockStore) FindDocumentByName(_ context.Context, fileName string) (*domain.Document, error) {
	if doc, ok := m.docs[fileName]; ok {
		return doc, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) InsertDocument(_ context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserted = append(m.inserted, insertCall{doc: doc, chunks: chunks})
	if m.docs == nil {
		m.docs = make(map[string]*domain.Document)
	}
	m.docs[doc.FileName] = doc
	return nil
}

func (m *mockStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	for _, doc := range m.docs {
		if doc.ID == id {
			return doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	var docs []domain.Document
	for _, doc := range m.docs {
		docs = append(docs, *doc)
	}
	return docs, nil
}

func (m *mockStore) DeleteDocument(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockStore) NearestChunks(_ context.Context, _ []float32, k int) ([]domain.RetrievedChunk, error) {
	m.nearestCalls++
	m.lastK = k
	if m.nearestErr != nil {
		return nil, m.nearestErr
	}
	if k < len(m.nearest) {
		return m.nearest[:k], nil
	}
	return m.nearest, nil
}

func (m *mockStore) EmbeddingDimensions(_ context.Context) (int, error) {
	return m.dims, nil
}

func (m *mockStore) Close() error { return nil }
