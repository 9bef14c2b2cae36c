package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rackmesa/ragstack/internal/core/domain"
	"github.com/rackmesa/ragstack/internal/core/ports/driven"
	"github.com/rackmesa/ragstack/internal/core/ports/driving"
	"github.com/rackmesa/ragstack/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// IngestionService splits, embeds and stores documents.
//
// Ingestion is all-or-nothing: every chunk is embedded before anything is
// written, and the store commits the document with all of its chunks in one
// call, so retrieval can never observe a partially-embedded document.
type IngestionService struct {
	store    driven.VectorStore
	registry *ProviderRegistry
	splitter *Splitter
}

// NewIngestionService creates an ingestion service.
func NewIngestionService(store driven.VectorStore, registry *ProviderRegistry, splitter *Splitter) *IngestionService {
	if splitter == nil {
		splitter = NewSplitter()
	}
	return &IngestionService{
		store:    store,
		registry: registry,
		splitter: splitter,
	}
}

// Ingest stores one document under fileName. Re-ingesting an existing file
// name returns the stored document unchanged: chunks are not regenerated and
// nothing is re-embedded.
func (s *IngestionService) Ingest(ctx context.Context, fileName, filePath, content string) (*domain.IngestResult, error) {
	if fileName == "" {
		return nil, fmt.Errorf("ingest: file name: %w", domain.ErrInvalidInput)
	}

	existing, err := s.store.FindDocumentByName(ctx, fileName)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("ingest %q: lookup: %w", fileName, err)
	}
	if existing != nil {
		logger.Info("Document %q already exists, skipping", fileName)
		return &domain.IngestResult{
			DocumentID:     existing.ID,
			FileName:       existing.FileName,
			ChunkCount:     existing.ChunkCount,
			AlreadyExisted: true,
		}, nil
	}

	embedder, err := s.registry.Embedding()
	if err != nil {
		return nil, fmt.Errorf("ingest %q: %w", fileName, err)
	}

	texts := s.splitter.Split(content)
	logger.Info("Created %d chunks for %q", len(texts), fileName)

	doc := &domain.Document{
		ID:         uuid.New().String(),
		FileName:   fileName,
		FilePath:   filePath,
		Content:    content,
		IngestedAt: time.Now().UTC(),
		ChunkCount: len(texts),
	}

	chunks, err := s.embedChunks(ctx, embedder, doc.ID, texts)
	if err != nil {
		return nil, fmt.Errorf("ingest %q: %w: %w", fileName, domain.ErrIngestionFailed, err)
	}

	if err := s.store.InsertDocument(ctx, doc, chunks); err != nil {
		return nil, fmt.Errorf("ingest %q: %w: %w", fileName, domain.ErrIngestionFailed, err)
	}

	logger.Info("Ingested %q with %d chunks", fileName, len(chunks))
	return &domain.IngestResult{
		DocumentID: doc.ID,
		FileName:   doc.FileName,
		ChunkCount: len(chunks),
	}, nil
}

// embedChunks embeds every chunk text and assembles the chunk records.
// Indices are assigned by source order before the batch is dispatched, so a
// concurrent batch implementation cannot reorder them.
func (s *IngestionService) embedChunks(
	ctx context.Context, embedder driven.EmbeddingProvider, documentID string, texts []string,
) ([]domain.Chunk, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embed chunks: got %d vectors for %d texts: %w",
			len(vectors), len(texts), domain.ErrProviderResponseInvalid)
	}

	want := embedder.Dimensions()
	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		if len(vectors[i]) != want {
			return nil, fmt.Errorf("chunk %d: vector size %d, provider reports %d: %w",
				i, len(vectors[i]), want, domain.ErrDimensionMismatch)
		}
		chunks[i] = domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: documentID,
			Content:    text,
			Index:      i,
			Embedding:  vectors[i],
		}
	}

	return chunks, nil
}

// List returns all ingested documents.
func (s *IngestionService) List(ctx context.Context) ([]domain.Document, error) {
	return s.store.ListDocuments(ctx)
}

// Delete removes a document and its chunks.
func (s *IngestionService) Delete(ctx context.Context, documentID string) error {
	if documentID == "" {
		return fmt.Errorf("delete: document id: %w", domain.ErrInvalidInput)
	}
	return s.store.DeleteDocument(ctx, documentID)
}
