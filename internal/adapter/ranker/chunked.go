package ranker

import (
	"context"
	"math"
	"sort"

	"newsradar/internal/domain"
	"newsradar/internal/port"
)

const defaultChunkSize = 100

// ChunkedRanker is the brute-force strategy: it encodes the query once,
// batch-encodes candidates chunk by chunk, and scores each candidate by
// cosine similarity. With EarlyStop set it stops once enough qualifying
// results have accumulated, trading global completeness for latency.
type ChunkedRanker struct {
	encoder port.Encoder
}

func NewChunkedRanker(encoder port.Encoder) *ChunkedRanker {
	return &ChunkedRanker{encoder: encoder}
}

func (r *ChunkedRanker) Rank(ctx context.Context, query string, candidates []domain.Article, opts port.RankOptions) ([]domain.ScoredArticle, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	queryVec := r.encoder.Encode(ctx, query)

	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	var scored []domain.ScoredArticle
	for start := 0; start < len(candidates); start += chunkSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := start + chunkSize
		if end > len(candidates) {
			end = len(candidates)
		}
		chunk := candidates[start:end]

		texts := make([]string, len(chunk))
		for i, a := range chunk {
			texts[i] = a.EmbeddingText()
		}
		vectors := r.encoder.EncodeBatch(ctx, texts)

		for i, a := range chunk {
			score := cosine(queryVec, vectors[i])
			if score >= opts.MinSimilarity {
				scored = append(scored, domain.ScoredArticle{Article: a, Score: score})
			}
		}

		if opts.Progress != nil {
			opts.Progress(end, len(candidates))
		}
		if opts.EarlyStop > 0 && len(scored) >= opts.EarlyStop {
			break
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if opts.MaxResults > 0 && len(scored) > opts.MaxResults {
		scored = scored[:opts.MaxResults]
	}
	return scored, nil
}

// cosine computes cosine similarity; either operand being a zero vector
// yields 0 rather than NaN, which keeps degraded embeddings rankable.
func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
