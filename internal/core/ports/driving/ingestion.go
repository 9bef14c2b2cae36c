package driving

import (
	"context"

	"github.com/rackmesa/ragstack/internal/core/domain"
)

// IngestionService ingests documents into the corpus.
type IngestionService interface {
	// Ingest splits, embeds and stores one document. Re-ingesting an
	// existing file name is a no-op returning the stored document unchanged.
	Ingest(ctx context.Context, fileName, filePath, content string) (*domain.IngestResult, error)

	// List returns all ingested documents, without their full content.
	List(ctx context.Context) ([]domain.Document, error)

	// Delete removes a document and its chunks.
	Delete(ctx context.Context, documentID string) error
}
