package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"newsradar/config"
	"newsradar/internal/adapter/cache"
	"newsradar/internal/domain"
	"newsradar/internal/port"
)

// ErrSemanticUnavailable is returned when semantic search is requested
// but the embedding subsystem was never initialized. Keyword search is
// unaffected.
var ErrSemanticUnavailable = errors.New("semantic search unavailable: embedding subsystem not configured")

// SemanticRequest is one semantic search invocation. Zero values fall
// back to the configured ranking defaults.
type SemanticRequest struct {
	Query         string
	Num           int
	MinSimilarity *float64
	ChunkSize     int
	EarlyStop     int
	Strategy      string

	// Progress, when set, receives ranking progress for interactive
	// callers. It does not participate in cache identity.
	Progress func(processed, total int)
}

// SearchService exposes the two search operations. Both are memoized in
// independent result caches keyed by the full parameter set.
type SearchService struct {
	aggregator *Aggregator
	chunked    port.Ranker
	indexed    port.Ranker
	defaults   config.RankingConfig

	keywordCache  *cache.ResultCache[[]domain.Article]
	semanticCache *cache.ResultCache[[]domain.ScoredArticle]
	log           *logrus.Entry
}

// NewSearchService wires the search operations. chunked may be nil when
// the embedding subsystem is disabled; indexed may be nil when only the
// brute-force strategy is available.
func NewSearchService(aggregator *Aggregator, chunked, indexed port.Ranker, ranking config.RankingConfig, caches config.CacheConfig) *SearchService {
	sweep := time.Duration(caches.SweepSeconds) * time.Second
	return &SearchService{
		aggregator:    aggregator,
		chunked:       chunked,
		indexed:       indexed,
		defaults:      ranking,
		keywordCache:  cache.New[[]domain.Article](time.Duration(caches.KeywordTTL)*time.Second, sweep),
		semanticCache: cache.New[[]domain.ScoredArticle](time.Duration(caches.SemanticTTL)*time.Second, sweep),
		log:           logrus.WithField("component", "search"),
	}
}

// SemanticEnabled reports whether semantic search can serve requests.
func (s *SearchService) SemanticEnabled() bool {
	return s.chunked != nil
}

// SearchKeyword aggregates provider results for the query. Aggregator
// order is the ranking: newest first, providers breaking ties.
func (s *SearchService) SearchKeyword(ctx context.Context, query string, num int) ([]domain.Article, error) {
	q, err := domain.ValidateQuery(query)
	if err != nil {
		return nil, err
	}
	if num <= 0 {
		num = s.defaults.MaxResults
	}

	params := map[string]string{
		"op":  "keyword",
		"q":   q,
		"num": strconv.Itoa(num),
	}
	if hit, ok := s.keywordCache.Get(params); ok {
		s.log.WithField("query", q).Debug("keyword cache hit")
		return hit, nil
	}

	articles, err := s.aggregator.Aggregate(ctx, q, num)
	if err != nil {
		return nil, err
	}
	if len(articles) > num {
		articles = articles[:num]
	}

	s.keywordCache.Set(params, articles)
	return articles, nil
}

// SearchSemantic aggregates a wider candidate pool, ranks it against
// the query with the selected strategy, and returns the top results.
func (s *SearchService) SearchSemantic(ctx context.Context, req SemanticRequest) ([]domain.ScoredArticle, error) {
	q, err := domain.ValidateQuery(req.Query)
	if err != nil {
		return nil, err
	}
	if !s.SemanticEnabled() {
		return nil, ErrSemanticUnavailable
	}

	num := req.Num
	if num <= 0 {
		num = s.defaults.MaxResults
	}
	minSim := s.defaults.MinSimilarity
	if req.MinSimilarity != nil {
		minSim = *req.MinSimilarity
	}
	chunkSize := req.ChunkSize
	if chunkSize <= 0 {
		chunkSize = s.defaults.ChunkSize
	}
	earlyStop := req.EarlyStop
	if earlyStop <= 0 && minSim > 0 {
		// With a threshold set, collecting a few times the requested
		// count is enough to fill the final page.
		earlyStop = num * 3
	}
	strategy := req.Strategy
	if strategy == "" {
		strategy = s.defaults.Strategy
	}

	params := map[string]string{
		"op":             "semantic",
		"q":              q,
		"num":            strconv.Itoa(num),
		"min_similarity": fmt.Sprintf("%g", minSim),
		"chunk_size":     strconv.Itoa(chunkSize),
		"early_stop":     strconv.Itoa(earlyStop),
		"strategy":       strategy,
	}
	if hit, ok := s.semanticCache.Get(params); ok {
		s.log.WithField("query", q).Debug("semantic cache hit")
		return hit, nil
	}

	// Over-fetch candidates so ranking has room to discard weak matches.
	candidates, err := s.aggregator.Aggregate(ctx, q, num*2)
	if err != nil {
		return nil, err
	}

	ranker := s.chunked
	if strategy == "indexed" && s.indexed != nil {
		ranker = s.indexed
	}

	scored, err := ranker.Rank(ctx, q, candidates, port.RankOptions{
		MinSimilarity: minSim,
		MaxResults:    num,
		ChunkSize:     chunkSize,
		EarlyStop:     earlyStop,
		Progress:      req.Progress,
	})
	if err != nil {
		return nil, fmt.Errorf("ranking failed: %w", err)
	}

	s.semanticCache.Set(params, scored)
	return scored, nil
}

// CacheStats reports occupancy of both search caches.
func (s *SearchService) CacheStats() (keyword, semantic cache.Stats) {
	return s.keywordCache.GetStats(), s.semanticCache.GetStats()
}
