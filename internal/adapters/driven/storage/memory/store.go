// Package memory provides an in-memory vector store for development and
// tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/rackmesa/ragstack/internal/core/domain"
	"github.com/rackmesa/ragstack/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is an in-memory implementation of driven.VectorStore.
type Store struct {
	mu        sync.RWMutex
	documents map[string]domain.Document // by ID
	byName    map[string]string          // fileName -> ID
	chunks    map[string][]domain.Chunk  // by document ID
	dims      int
}

// NewStore creates a new in-memory vector store.
func NewStore() *Store {
	return &Store{
		documents: make(map[string]domain.Document),
		byName:    make(map[string]string),
		chunks:    make(map[string][]domain.Chunk),
	}
}

// FindDocumentByName returns the document with the given file name.
func (s *Store) FindDocumentByName(_ context.Context, fileName string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byName[fileName]
	if !ok {
		return nil, domain.ErrNotFound
	}
	doc := s.documents[id]
	return &doc, nil
}

// InsertDocument atomically persists a new document and all of its chunks.
func (s *Store) InsertDocument(_ context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byName[doc.FileName]; ok {
		return domain.ErrAlreadyExists
	}

	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			continue
		}
		if s.dims == 0 {
			s.dims = len(chunk.Embedding)
		} else if len(chunk.Embedding) != s.dims {
			return domain.ErrDimensionMismatch
		}
	}

	stored := *doc
	stored.ChunkCount = len(chunks)
	s.documents[stored.ID] = stored
	s.byName[stored.FileName] = stored.ID
	s.chunks[stored.ID] = append([]domain.Chunk(nil), chunks...)
	return nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListDocuments returns all documents, without their full content.
func (s *Store) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]domain.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		doc.Content = ""
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].FileName < docs[j].FileName
	})
	return docs, nil
}

// DeleteDocument removes a document and all of its chunks.
func (s *Store) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(s.documents, id)
	delete(s.byName, doc.FileName)
	delete(s.chunks, id)
	return nil
}

// NearestChunks returns up to k chunks with the smallest cosine distance to
// the query vector, ascending; ties break by chunk index, then file name.
func (s *Store) NearestChunks(_ context.Context, vector []float32, k int) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []domain.RetrievedChunk
	for docID, chunks := range s.chunks {
		fileName := s.documents[docID].FileName
		for _, chunk := range chunks {
			if len(chunk.Embedding) == 0 {
				continue
			}
			hits = append(hits, domain.RetrievedChunk{
				Chunk:    chunk,
				FileName: fileName,
				Distance: domain.CosineDistance(vector, chunk.Embedding),
			})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		if hits[i].Index != hits[j].Index {
			return hits[i].Index < hits[j].Index
		}
		return hits[i].FileName < hits[j].FileName
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// EmbeddingDimensions returns the dimensionality of stored vectors.
func (s *Store) EmbeddingDimensions(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dims, nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}
