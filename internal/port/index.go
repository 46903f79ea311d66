package port

import (
	"context"

	"newsradar/internal/domain"
)

// VectorIndex is a persisted, append-only mapping from article id to
// embedding vector. Positions are permanent for the lifetime of a
// snapshot generation; there is no delete or re-index operation.
type VectorIndex interface {
	// AddIfAbsent encodes and appends articles whose ids are not yet
	// indexed. Already-indexed ids are skipped, so the operation is
	// idempotent with respect to id.
	AddIfAbsent(ctx context.Context, articles []domain.Article) error

	// Search returns up to k nearest neighbors by inner product,
	// descending. Fewer than k hits are returned when the index holds
	// fewer vectors; an empty index yields an empty result.
	Search(query []float32, k int) ([]IndexHit, error)

	// Len returns the number of indexed vectors.
	Len() int
}

// IndexHit is a single nearest-neighbor result.
type IndexHit struct {
	ID    string
	Score float64
}
