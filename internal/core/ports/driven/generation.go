package driven

import "context"

// GenerationProvider produces a grounded answer from a question and ranked
// context chunks.
//
// Implementations must incorporate all provided context chunks into the
// outbound prompt, concatenated in the order given and separated by a blank
// line, and must instruct the backend to answer only from that context and to
// state explicitly when the context is insufficient. Context is never
// silently truncated; callers bound context size via topK before calling.
//
// Error taxonomy matches EmbeddingProvider: domain.ErrProviderUnavailable for
// transport failures, domain.ErrProviderResponseInvalid for malformed or
// empty responses.
type GenerationProvider interface {
	// Generate produces an answer to question using the ordered context
	// chunks.
	Generate(ctx context.Context, question string, contexts []string) (string, error)

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Ping validates the backend is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
