// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - EmbeddingProvider: text to fixed-length vector. Exactly one instance
//     is designated system-wide; mixing embedding backends within one corpus
//     would break distance comparisons.
//   - GenerationProvider: question + ranked context chunks to answer text.
//     Several named instances may be registered.
//   - VectorStore: document and chunk persistence with nearest-K similarity
//     queries.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: any adapter package
package driven
