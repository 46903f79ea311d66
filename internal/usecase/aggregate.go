package usecase

import (
	"context"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"

	"newsradar/internal/domain"
	"newsradar/internal/port"
)

// Aggregator fans a query out to every configured provider and merges
// the results into one deduplicated, newest-first list.
//
// Providers run concurrently into fixed result slots, so the merge
// always sees provider output in declaration order regardless of which
// goroutine finished first. A provider that fails or times out
// contributes nothing; only all providers failing yields an empty list,
// never an error.
type Aggregator struct {
	providers []port.Provider
	timeout   time.Duration
	excludes  []string
	log       *logrus.Entry
}

// NewAggregator builds an aggregator over the given providers. excludes
// are doublestar glob patterns matched against each article URL's
// host+path; matching articles are dropped.
func NewAggregator(providers []port.Provider, timeout time.Duration, excludes []string) *Aggregator {
	return &Aggregator{
		providers: providers,
		timeout:   timeout,
		excludes:  excludes,
		log:       logrus.WithField("component", "aggregator"),
	}
}

// Aggregate validates the query, queries all providers concurrently,
// and returns the merged results. Duplicates (same content identity)
// keep the first occurrence in provider-declaration order. The merged
// list is stably sorted by publication time descending; articles
// without a date sort last.
func (a *Aggregator) Aggregate(ctx context.Context, query string, limit int) ([]domain.Article, error) {
	q, err := domain.ValidateQuery(query)
	if err != nil {
		return nil, err
	}

	results := make([][]domain.Article, len(a.providers))
	var wg sync.WaitGroup
	for i, p := range a.providers {
		wg.Add(1)
		go func(i int, p port.Provider) {
			defer wg.Done()

			pctx := ctx
			if a.timeout > 0 {
				var cancel context.CancelFunc
				pctx, cancel = context.WithTimeout(ctx, a.timeout)
				defer cancel()
			}

			articles, err := p.Search(pctx, q, limit)
			if err != nil {
				a.log.WithError(err).WithField("provider", p.Name()).Warn("provider search failed")
				return
			}
			results[i] = articles
		}(i, p)
	}
	wg.Wait()

	seen := make(map[string]bool)
	var merged []domain.Article
	for _, batch := range results {
		for _, article := range batch {
			if seen[article.ID] || a.excluded(article.URL) {
				continue
			}
			seen[article.ID] = true
			merged = append(merged, article)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].SortKey().After(merged[j].SortKey())
	})
	return merged, nil
}

func (a *Aggregator) excluded(raw string) bool {
	if len(a.excludes) == 0 {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	target := u.Host + u.Path
	for _, pattern := range a.excludes {
		if ok, err := doublestar.Match(pattern, target); err == nil && ok {
			return true
		}
	}
	return false
}
