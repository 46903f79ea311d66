package ranker

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"newsradar/internal/domain"
	"newsradar/internal/port"
)

const minSearchK = 50

// IndexedRanker ranks through the persisted vector index: candidates are
// first indexed (a no-op for ids already present), then a single
// nearest-neighbor search against the query scores them all at once.
// Repeated queries over overlapping candidate sets skip re-encoding
// everything the index has seen before.
//
// Any index failure falls back to the brute-force strategy for that
// call, so ranking degrades rather than erroring out.
type IndexedRanker struct {
	encoder  port.Encoder
	index    port.VectorIndex
	fallback *ChunkedRanker
	log      *logrus.Entry
}

func NewIndexedRanker(encoder port.Encoder, index port.VectorIndex) *IndexedRanker {
	return &IndexedRanker{
		encoder:  encoder,
		index:    index,
		fallback: NewChunkedRanker(encoder),
		log:      logrus.WithField("component", "indexed-ranker"),
	}
}

func (r *IndexedRanker) Rank(ctx context.Context, query string, candidates []domain.Article, opts port.RankOptions) ([]domain.ScoredArticle, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	if err := r.index.AddIfAbsent(ctx, candidates); err != nil {
		r.log.WithError(err).Warn("indexing failed, falling back to chunked ranking")
		return r.fallback.Rank(ctx, query, candidates, opts)
	}

	queryVec := r.encoder.Encode(ctx, query)

	// Over-fetch: the index may hold far more vectors than this
	// candidate set, and hits outside it are discarded below.
	k := len(candidates)
	if opts.MaxResults > 0 && 3*opts.MaxResults > k {
		k = 3 * opts.MaxResults
	}
	if k < minSearchK {
		k = minSearchK
	}

	hits, err := r.index.Search(queryVec, k)
	if err != nil {
		r.log.WithError(err).Warn("index search failed, falling back to chunked ranking")
		return r.fallback.Rank(ctx, query, candidates, opts)
	}

	scoreByID := make(map[string]float64, len(hits))
	for _, hit := range hits {
		scoreByID[hit.ID] = hit.Score
	}

	// Walk candidates in their original order so the stable sort breaks
	// equal scores the same way the chunked strategy does, rather than
	// by index insertion position.
	var scored []domain.ScoredArticle
	for _, a := range candidates {
		score, ok := scoreByID[a.ID]
		if !ok || score < opts.MinSimilarity {
			continue
		}
		scored = append(scored, domain.ScoredArticle{Article: a, Score: score})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if opts.MaxResults > 0 && len(scored) > opts.MaxResults {
		scored = scored[:opts.MaxResults]
	}

	if opts.Progress != nil {
		opts.Progress(len(candidates), len(candidates))
	}
	return scored, nil
}
