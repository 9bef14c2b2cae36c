package domain

import "time"

// Document represents an ingested text document.
// It is created exactly once, on the first successful ingestion of its
// file name, and never mutated afterwards except by deletion.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// FileName is the document's file name. It is unique across the corpus
	// and is the idempotency key for ingestion.
	FileName string

	// FilePath is the original location the document was read from.
	// Kept for provenance only.
	FilePath string

	// Content is the full raw text of the document.
	Content string

	// IngestedAt is when the document was first ingested.
	IngestedAt time.Time

	// ChunkCount is the number of chunks the document was split into.
	ChunkCount int
}

// Chunk is the unit of embedding and retrieval: a contiguous slice of a
// document's text.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Index is the 0-based position within the document. Indices are
	// contiguous 0..N-1 in source order and stable across re-ingestion.
	Index int

	// Embedding is the vector representation. Nil means not yet embedded;
	// such a chunk must never be returned by similarity queries.
	Embedding []float32
}

// RetrievedChunk is a similarity search hit: a chunk together with its
// owning document's file name and the cosine distance to the query vector.
type RetrievedChunk struct {
	Chunk

	// FileName is the owning document's file name.
	FileName string

	// Distance is the cosine distance to the query vector. Lower is more
	// similar.
	Distance float64
}
