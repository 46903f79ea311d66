package port

import (
	"context"

	"newsradar/internal/domain"
)

// RankOptions controls a single ranking run.
type RankOptions struct {
	// MinSimilarity drops results scoring below it.
	MinSimilarity float64

	// MaxResults truncates the final, sorted result set. Zero means
	// unlimited.
	MaxResults int

	// ChunkSize is the number of candidates batch-encoded per chunk by
	// the brute-force strategy. Zero picks the default.
	ChunkSize int

	// EarlyStop, when positive, lets the brute-force strategy stop once
	// that many threshold-qualifying results have been collected. The
	// returned set is then a qualifying prefix in chunk order, not a
	// global top-k.
	EarlyStop int

	// Progress, when set, is called after each processed chunk.
	Progress func(processed, total int)
}

// Ranker orders candidate articles by semantic relevance to a query.
// Results are filtered to score >= MinSimilarity, sorted by descending
// score with original candidate order breaking ties, and truncated to
// MaxResults.
type Ranker interface {
	Rank(ctx context.Context, query string, candidates []domain.Article, opts RankOptions) ([]domain.ScoredArticle, error)
}
