// Package services implements the core orchestration logic: paragraph-aware
// chunk splitting, provider registration and resolution, document ingestion
// and retrieval-augmented answering.
//
// Services depend on the driven ports only; adapters are injected at
// bootstrap. All services are safe for concurrent use: the only shared state
// is the provider registry, which is immutable after construction.
package services
