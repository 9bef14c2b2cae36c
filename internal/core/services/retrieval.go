package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rackmesa/ragstack/internal/core/domain"
	"github.com/rackmesa/ragstack/internal/core/ports/driven"
	"github.com/rackmesa/ragstack/internal/core/ports/driving"
	"github.com/rackmesa/ragstack/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.QueryService = (*RetrievalService)(nil)

// RetrievalService answers questions grounded in the ingested corpus.
type RetrievalService struct {
	store       driven.VectorStore
	registry    *ProviderRegistry
	defaultTopK int
}

// RetrievalOption configures a RetrievalService.
type RetrievalOption func(*RetrievalService)

// WithDefaultTopK overrides the number of chunks retrieved when a query does
// not specify one.
func WithDefaultTopK(k int) RetrievalOption {
	return func(s *RetrievalService) {
		if k > 0 {
			s.defaultTopK = k
		}
	}
}

// NewRetrievalService creates a retrieval service.
func NewRetrievalService(store driven.VectorStore, registry *ProviderRegistry, opts ...RetrievalOption) *RetrievalService {
	s := &RetrievalService{
		store:       store,
		registry:    registry,
		defaultTopK: domain.DefaultTopK,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Answer embeds the question, retrieves the topK nearest chunks and hands
// their contents, in store ranking order, to the resolved generation
// provider. When the corpus holds no embedded chunks the fixed
// domain.NoRelevantInformation answer is returned and no generation provider
// is called. Source order mirrors the store's ranking; under equal distances
// the store's deterministic tie-break (chunk index, then file name) applies.
func (s *RetrievalService) Answer(ctx context.Context, question string, opts domain.QueryOptions) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("answer: question: %w", domain.ErrInvalidInput)
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = s.defaultTopK
	}

	embedder, err := s.registry.Embedding()
	if err != nil {
		return nil, fmt.Errorf("answer %q: %w", question, err)
	}

	logger.Section("Query Execution")
	logger.Debug("Question: %q, topK=%d", question, topK)

	vector, err := embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("answer %q: embed question: %w", question, err)
	}

	hits, err := s.store.NearestChunks(ctx, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("answer %q: nearest chunks: %w", question, err)
	}
	logger.Debug("Retrieved %d chunks", len(hits))

	if len(hits) == 0 {
		logger.Info("Empty corpus, skipping generation")
		return &domain.Answer{
			Question: question,
			Answer:   domain.NoRelevantInformation,
			Sources:  []domain.Source{},
		}, nil
	}

	provider, providerName, err := s.registry.Generation(opts.Provider)
	if err != nil {
		return nil, fmt.Errorf("answer %q: %w", question, err)
	}
	logger.Debug("Generation provider: %s (%s)", providerName, provider.ModelName())

	contexts := make([]string, len(hits))
	for i, hit := range hits {
		contexts[i] = hit.Content
	}

	answer, err := provider.Generate(ctx, question, contexts)
	if err != nil {
		return nil, fmt.Errorf("answer %q: generate: %w", question, err)
	}

	sources := make([]domain.Source, len(hits))
	for i, hit := range hits {
		sources[i] = domain.Source{
			FileName:   hit.FileName,
			ChunkIndex: hit.Index,
			Preview:    preview(hit.Content),
		}
	}

	return &domain.Answer{
		Question:     question,
		Answer:       answer,
		Sources:      sources,
		ChunksUsed:   len(hits),
		ProviderUsed: providerName,
	}, nil
}

// preview caps content at domain.PreviewLength characters, marking
// truncation with a trailing ellipsis.
func preview(content string) string {
	if utf8.RuneCountInString(content) <= domain.PreviewLength {
		return content
	}
	runes := []rune(content)
	return string(runes[:domain.PreviewLength]) + "..."
}
