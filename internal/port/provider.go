package port

import (
	"context"

	"newsradar/internal/domain"
)

// Provider is a single news source. Implementations own their pagination,
// authentication and wire parsing, and return canonical articles only.
type Provider interface {
	// Name identifies the provider in logs and configuration.
	Name() string

	// Search fetches up to limit articles matching the query.
	Search(ctx context.Context, query string, limit int) ([]domain.Article, error)
}
