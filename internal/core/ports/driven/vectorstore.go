package driven

import (
	"context"

	"github.com/rackmesa/ragstack/internal/core/domain"
)

// VectorStore persists documents and their embedded chunks and answers
// nearest-K similarity queries.
//
// InsertDocument is the store's all-or-nothing write: callers embed every
// chunk before calling, and the store commits the document together with all
// of its chunks so that no concurrent reader ever observes a partially
// written document. Chunks become visible to NearestChunks only after the
// whole insert succeeds.
type VectorStore interface {
	// FindDocumentByName returns the document with the given file name, or
	// domain.ErrNotFound when absent.
	FindDocumentByName(ctx context.Context, fileName string) (*domain.Document, error)

	// InsertDocument atomically persists a new document and all of its
	// chunks. Returns domain.ErrAlreadyExists when the file name is taken
	// and domain.ErrDimensionMismatch when chunk vectors disagree with the
	// dimensionality already stored.
	InsertDocument(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID, or domain.ErrNotFound.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns all documents, without their full content.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteDocument removes a document and all of its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// NearestChunks returns up to k chunks with the smallest cosine distance
	// to the query vector, ascending. Only chunks with an embedding are
	// considered. Ties break by chunk index, then file name, so citation
	// order is deterministic.
	NearestChunks(ctx context.Context, vector []float32, k int) ([]domain.RetrievedChunk, error)

	// EmbeddingDimensions returns the dimensionality of stored vectors,
	// or 0 when the corpus is empty.
	EmbeddingDimensions(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
