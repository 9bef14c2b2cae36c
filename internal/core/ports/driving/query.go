package driving

import (
	"context"

	"github.com/rackmesa/ragstack/internal/core/domain"
)

// QueryService answers questions grounded in the ingested corpus.
type QueryService interface {
	// Answer embeds the question, retrieves the nearest chunks and hands
	// them to a generation provider. An empty corpus short-circuits with a
	// fixed no-information answer without calling any provider.
	Answer(ctx context.Context, question string, opts domain.QueryOptions) (*domain.Answer, error)
}
