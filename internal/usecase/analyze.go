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
	"newsradar/internal/adapter/llm"
	"newsradar/internal/domain"
)

// ErrAnalysisUnavailable is returned when analysis is requested but no
// analysis model is configured.
var ErrAnalysisUnavailable = errors.New("analysis unavailable: no analysis model configured")

// Analyzer produces a structured analysis of articles against a query.
type Analyzer interface {
	Analyze(ctx context.Context, query string, articles []domain.Article) (llm.Analysis, error)
	ModelName() string
}

// AnalysisResult bundles the analysis with the articles it was built from.
type AnalysisResult struct {
	Query    string           `json:"query"`
	Model    string           `json:"model"`
	Analysis llm.Analysis     `json:"analysis"`
	Articles []domain.Article `json:"articles"`
}

// AnalysisService runs query analysis over freshly aggregated articles.
// Results are cached longer than searches since analysis is the most
// expensive operation.
type AnalysisService struct {
	search      *SearchService
	analyzer    Analyzer
	maxArticles int
	cache       *cache.ResultCache[AnalysisResult]
	log         *logrus.Entry
}

// NewAnalysisService wires analysis on top of keyword search. analyzer
// may be nil when the feature is disabled.
func NewAnalysisService(search *SearchService, analyzer Analyzer, maxArticles int, caches config.CacheConfig) *AnalysisService {
	if maxArticles <= 0 {
		maxArticles = 20
	}
	return &AnalysisService{
		search:      search,
		analyzer:    analyzer,
		maxArticles: maxArticles,
		cache: cache.New[AnalysisResult](
			time.Duration(caches.AnalysisTTL)*time.Second,
			time.Duration(caches.SweepSeconds)*time.Second,
		),
		log: logrus.WithField("component", "analysis"),
	}
}

// Enabled reports whether analysis can serve requests.
func (s *AnalysisService) Enabled() bool {
	return s.analyzer != nil
}

// Analyze aggregates articles for the query and asks the model for a
// structured read on them.
func (s *AnalysisService) Analyze(ctx context.Context, query string, num int) (AnalysisResult, error) {
	if !s.Enabled() {
		return AnalysisResult{}, ErrAnalysisUnavailable
	}
	q, err := domain.ValidateQuery(query)
	if err != nil {
		return AnalysisResult{}, err
	}
	if num <= 0 || num > s.maxArticles {
		num = s.maxArticles
	}

	params := map[string]string{
		"op":  "analyze",
		"q":   q,
		"num": strconv.Itoa(num),
	}
	if hit, ok := s.cache.Get(params); ok {
		s.log.WithField("query", q).Debug("analysis cache hit")
		return hit, nil
	}

	articles, err := s.search.SearchKeyword(ctx, q, num)
	if err != nil {
		return AnalysisResult{}, err
	}

	analysis, err := s.analyzer.Analyze(ctx, q, articles)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("analysis failed: %w", err)
	}

	result := AnalysisResult{
		Query:    q,
		Model:    s.analyzer.ModelName(),
		Analysis: analysis,
		Articles: articles,
	}
	s.cache.Set(params, result)
	return result, nil
}
