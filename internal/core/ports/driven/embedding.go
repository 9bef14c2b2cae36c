package driven

import "context"

// EmbeddingProvider generates vector embeddings from text.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//
// Failures are reported through the domain error taxonomy: transport and
// connection problems wrap domain.ErrProviderUnavailable, malformed or empty
// responses wrap domain.ErrProviderResponseInvalid. Implementations make one
// outbound call per operation and mutate no shared state.
type EmbeddingProvider interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, returned in input
	// order. More efficient than calling Embed in a loop for large batches.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 768, 1536).
	// Fixed per provider instance; every stored vector and every query
	// vector must have this size.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the backend is reachable with a lightweight request.
	// Used at startup diagnostics before accepting work.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
