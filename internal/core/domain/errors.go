package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Provider Errors.

	// ErrProviderUnavailable indicates a transport or connection failure
	// reaching a provider backend. Transient: the caller may retry the same
	// provider later.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrProviderResponseInvalid indicates a malformed or empty provider
	// response. Not retriable until the provider or model configuration
	// changes.
	ErrProviderResponseInvalid = errors.New("provider response invalid")

	// ErrProviderNotConfigured indicates an explicitly requested provider
	// name was never registered.
	ErrProviderNotConfigured = errors.New("provider not configured")

	// ErrNoProviderAvailable indicates no generation provider could be
	// resolved: the default is unregistered and no unambiguous alternate
	// exists.
	ErrNoProviderAvailable = errors.New("no provider available")

	// Ingestion Errors.

	// ErrIngestionFailed indicates a document could not be fully ingested.
	// No partially-embedded document is left visible to retrieval.
	ErrIngestionFailed = errors.New("ingestion failed")

	// ErrDimensionMismatch indicates the embedding provider's vector size
	// does not match the dimensionality of vectors already stored. This is
	// a fatal configuration error, not a per-request one.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
