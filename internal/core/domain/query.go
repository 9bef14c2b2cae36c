package domain

// DefaultTopK is the number of chunks retrieved when the caller does not
// supply a positive value.
const DefaultTopK = 5

// PreviewLength is the maximum number of characters in a source preview
// before truncation.
const PreviewLength = 200

// NoRelevantInformation is the fixed answer returned when the corpus holds
// no embedded chunks. The generation provider is not called in that case.
const NoRelevantInformation = "I don't have any relevant information in the documentation to answer this question."

// QueryOptions configures a single question-answering request.
type QueryOptions struct {
	// TopK is the number of nearest chunks to retrieve. Non-positive values
	// fall back to DefaultTopK.
	TopK int

	// Provider optionally names the generation provider to use. Empty means
	// the configured default (with the registry's static fallback).
	Provider string
}

// Source cites one chunk that contributed to an answer.
type Source struct {
	// FileName is the owning document's file name.
	FileName string `json:"fileName"`

	// ChunkIndex is the chunk's position within its document.
	ChunkIndex int `json:"chunkIndex"`

	// Preview is the chunk content capped at PreviewLength characters,
	// with a trailing "..." when truncated.
	Preview string `json:"preview"`
}

// Answer is the result of one retrieval-and-generation round trip.
type Answer struct {
	// Question is the question as asked.
	Question string `json:"question"`

	// Answer is the generated answer text.
	Answer string `json:"answer"`

	// Sources cites the retrieved chunks in ranking order.
	Sources []Source `json:"sources"`

	// ChunksUsed is the number of chunks handed to the generation provider.
	ChunksUsed int `json:"chunksUsed"`

	// ProviderUsed is the resolved generation provider name. Empty when the
	// corpus was empty and no provider was called.
	ProviderUsed string `json:"providerUsed"`
}

// IngestResult summarises one successful ingestion.
type IngestResult struct {
	// DocumentID identifies the ingested document.
	DocumentID string `json:"documentId"`

	// FileName is the document's file name.
	FileName string `json:"fileName"`

	// ChunkCount is the number of chunks stored for the document.
	ChunkCount int `json:"chunkCount"`

	// AlreadyExisted is true when the file name had been ingested before
	// and the stored document was returned unchanged.
	AlreadyExisted bool `json:"alreadyExisted"`
}
