package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rackmesa/ragstack/internal/core/domain"
	"github.com/rackmesa/ragstack/internal/core/ports/driven"
)

// ProviderRegistry holds the named generation providers and the single
// system-wide embedding provider. It is built once at startup from
// configuration and never mutated afterwards, so concurrent reads need no
// locking.
//
// Only providers that successfully initialised are registered; resolving an
// unregistered name yields a typed error, never a silent substitute.
type ProviderRegistry struct {
	embedding   driven.EmbeddingProvider
	generation  map[string]driven.GenerationProvider
	defaultName string
}

// NewProviderRegistry creates a registry. Generation provider names are
// case-insensitive. defaultName names the provider used when a request does
// not specify one; it need not be registered (the single-alternate fallback
// then applies at resolution time).
func NewProviderRegistry(
	embedding driven.EmbeddingProvider,
	generation map[string]driven.GenerationProvider,
	defaultName string,
) *ProviderRegistry {
	normalized := make(map[string]driven.GenerationProvider, len(generation))
	for name, provider := range generation {
		if provider == nil {
			continue
		}
		normalized[strings.ToLower(name)] = provider
	}

	return &ProviderRegistry{
		embedding:   embedding,
		generation:  normalized,
		defaultName: strings.ToLower(defaultName),
	}
}

// Embedding returns the system embedding provider.
// Exactly one embedding provider serves the whole deployment: stored vector
// dimensionality must stay fixed, so embedding selection is never
// caller-configurable.
func (r *ProviderRegistry) Embedding() (driven.EmbeddingProvider, error) {
	if r.embedding == nil {
		return nil, fmt.Errorf("embedding: %w", domain.ErrNoProviderAvailable)
	}
	return r.embedding, nil
}

// Generation resolves a generation provider by name and returns it together
// with its registered name.
//
// A non-empty name resolves exactly: an unregistered name fails with
// domain.ErrProviderNotConfigured, never a substitute. An empty name resolves
// to the configured default; when the default itself was never registered,
// the single registered alternate is used if exactly one exists, otherwise
// domain.ErrNoProviderAvailable. This fallback is decided by registration
// state, not by per-call retries across providers.
func (r *ProviderRegistry) Generation(name string) (driven.GenerationProvider, string, error) {
	if name != "" {
		key := strings.ToLower(name)
		provider, ok := r.generation[key]
		if !ok {
			return nil, "", fmt.Errorf("generation provider %q: %w", name, domain.ErrProviderNotConfigured)
		}
		return provider, key, nil
	}

	if provider, ok := r.generation[r.defaultName]; ok && r.defaultName != "" {
		return provider, r.defaultName, nil
	}

	if len(r.generation) == 1 {
		for key, provider := range r.generation {
			return provider, key, nil
		}
	}

	return nil, "", fmt.Errorf("generation: %w", domain.ErrNoProviderAvailable)
}

// GenerationNames returns the registered generation provider names, sorted.
func (r *ProviderRegistry) GenerationNames() []string {
	names := make([]string, 0, len(r.generation))
	for name := range r.generation {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultGenerationName returns the configured default provider name.
func (r *ProviderRegistry) DefaultGenerationName() string {
	return r.defaultName
}

// Close releases every registered provider.
func (r *ProviderRegistry) Close() {
	if r.embedding != nil {
		r.embedding.Close()
	}
	for _, provider := range r.generation {
		provider.Close()
	}
}
