package cli

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"newsradar/config"
	"newsradar/internal/adapter/embedding"
	"newsradar/internal/adapter/index"
	"newsradar/internal/adapter/llm"
	"newsradar/internal/adapter/provider"
	"newsradar/internal/adapter/ranker"
	"newsradar/internal/port"
	"newsradar/internal/usecase"
)

// buildProviders constructs every provider whose credentials are
// present. A provider without credentials is simply left out; the
// aggregator works with whatever remains.
func buildProviders(cfg *config.Config) []port.Provider {
	timeout := time.Duration(cfg.Providers.TimeoutSeconds) * time.Second
	var providers []port.Provider

	if key := os.Getenv(cfg.Providers.SerpAPI.APIKeyEnv); key != "" {
		sc := cfg.Providers.SerpAPI
		providers = append(providers, provider.NewSerpAPI(key, sc.BaseURL, sc.Language, sc.Country, sc.MaxResults, timeout))
	} else {
		logrus.Debugf("%s not set, serpapi provider disabled", cfg.Providers.SerpAPI.APIKeyEnv)
	}

	id := os.Getenv(cfg.Providers.Naver.ClientIDEnv)
	secret := os.Getenv(cfg.Providers.Naver.ClientSecretEnv)
	if id != "" && secret != "" {
		nc := cfg.Providers.Naver
		providers = append(providers, provider.NewNaver(id, secret, nc.BaseURL, nc.MaxResults, timeout))
	} else {
		logrus.Debug("naver credentials not set, naver provider disabled")
	}

	if len(cfg.Providers.RSS.Feeds) > 0 {
		feeds := make([]provider.Feed, len(cfg.Providers.RSS.Feeds))
		for i, f := range cfg.Providers.RSS.Feeds {
			feeds[i] = provider.Feed{Name: f.Name, URL: f.URL}
		}
		providers = append(providers, provider.NewRSS(feeds, cfg.Providers.RSS.MaxPerFeed))
	}

	return providers
}

// buildSearch wires the aggregator, rankers, and search service from
// config. The returned cleanup closes the vector index if one was
// opened.
func buildSearch(cfg *config.Config) (*usecase.SearchService, func(), error) {
	agg := usecase.NewAggregator(
		buildProviders(cfg),
		time.Duration(cfg.Providers.TimeoutSeconds)*time.Second,
		cfg.Providers.ExcludeURLs,
	)

	cleanup := func() {}
	var chunked, indexed port.Ranker

	if cfg.Embedding.Enabled {
		if key := os.Getenv(cfg.Embedding.APIKeyEnv); key != "" {
			ec := cfg.Embedding
			enc := embedding.NewOpenAIEncoder(key, ec.BaseURL, ec.Model, ec.Dimension, ec.BatchSize)
			chunked = ranker.NewChunkedRanker(enc)

			if err := cfg.EnsureDataDir(); err != nil {
				return nil, nil, err
			}
			store, err := index.New(cfg.IndexDir(), enc)
			if err != nil {
				logrus.WithError(err).Warn("vector index unavailable, using chunked ranking only")
			} else {
				indexed = ranker.NewIndexedRanker(enc, store)
				cleanup = func() { store.Close() }
			}
		} else {
			logrus.Debugf("%s not set, semantic search disabled", cfg.Embedding.APIKeyEnv)
		}
	}

	return usecase.NewSearchService(agg, chunked, indexed, cfg.Ranking, cfg.Cache), cleanup, nil
}

// buildAnalysis wires the analysis service; without a configured model
// it serves only ErrAnalysisUnavailable.
func buildAnalysis(cfg *config.Config, search *usecase.SearchService) *usecase.AnalysisService {
	var analyzer usecase.Analyzer
	if cfg.Analysis.Enabled {
		if key := os.Getenv(cfg.Analysis.APIKeyEnv); key != "" {
			ac := cfg.Analysis
			analyzer = llm.NewAnalyzer(key, ac.BaseURL, ac.Model, ac.MaxArticles)
		} else {
			logrus.Debugf("%s not set, analysis disabled", cfg.Analysis.APIKeyEnv)
		}
	}
	return usecase.NewAnalysisService(search, analyzer, cfg.Analysis.MaxArticles, cfg.Cache)
}
