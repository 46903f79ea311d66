package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"newsradar/config"
	"newsradar/internal/adapter/embedding"
	"newsradar/internal/adapter/ranker"
	"newsradar/internal/domain"
	"newsradar/internal/port"
	"newsradar/internal/usecase"
)

type fakeProvider struct {
	articles []domain.Article
}

func (p *fakeProvider) Name() string {
	return "fake"
}

func (p *fakeProvider) Search(context.Context, string, int) ([]domain.Article, error) {
	return p.articles, nil
}

func newTestServer(t *testing.T, semantic bool) *Server {
	t.Helper()

	a1, _ := domain.NewArticle("ai chip exports surge", "https://news.example.com/1", "fake", nil, "record quarter", "")
	a2, _ := domain.NewArticle("weekend storm warning", "https://news.example.com/2", "fake", nil, "", "")
	agg := usecase.NewAggregator([]port.Provider{&fakeProvider{articles: []domain.Article{a1, a2}}}, time.Second, nil)

	var chunked port.Ranker
	if semantic {
		chunked = ranker.NewChunkedRanker(embedding.NewMockEncoder(64))
	}
	search := usecase.NewSearchService(agg, chunked, nil, config.RankingConfig{
		Strategy:   "chunked",
		ChunkSize:  100,
		MaxResults: 100,
	}, config.CacheConfig{KeywordTTL: 300, SemanticTTL: 300, SweepSeconds: 60})

	return NewServer(config.ServerConfig{
		Host:               "127.0.0.1",
		Port:               0,
		RateLimitPerMinute: 60,
		AllowedOrigins:     []string{"*"},
	}, search, nil)
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, false).Handler()

	w := doJSON(t, h, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body healthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" {
		t.Errorf("unexpected status %q", body.Status)
	}
	if body.SemanticSearch {
		t.Error("semantic search should be reported disabled")
	}
}

func TestSearchEndpoint(t *testing.T) {
	h := newTestServer(t, false).Handler()

	w := doJSON(t, h, http.MethodPost, "/api/news/search", `{"query": "chip", "num": 10}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body searchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 2 || len(body.Articles) != 2 {
		t.Errorf("expected 2 articles, got count=%d len=%d", body.Count, len(body.Articles))
	}
}

func TestSearchValidation(t *testing.T) {
	h := newTestServer(t, false).Handler()

	tests := []struct {
		name string
		body string
	}{
		{"blank query", `{"query": "   "}`},
		{"missing query", `{}`},
		{"over-long query", `{"query": "` + strings.Repeat("x", 201) + `"}`},
		{"malformed body", `{not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, h, http.MethodPost, "/api/news/search", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestSemanticSearchEndpoint(t *testing.T) {
	h := newTestServer(t, true).Handler()

	w := doJSON(t, h, http.MethodPost, "/api/news/semantic-search", `{"query": "ai chip", "num": 1}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body semanticSearchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 1 {
		t.Fatalf("expected 1 result, got %d", body.Count)
	}
	if body.Results[0].Title != "ai chip exports surge" {
		t.Errorf("unexpected top result %q", body.Results[0].Title)
	}
	if body.Results[0].SimilarityScore <= 0 {
		t.Errorf("expected positive similarity score, got %f", body.Results[0].SimilarityScore)
	}
}

func TestSemanticSearchUnavailable(t *testing.T) {
	h := newTestServer(t, false).Handler()

	w := doJSON(t, h, http.MethodPost, "/api/news/semantic-search", `{"query": "anything"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestAnalyzeUnavailable(t *testing.T) {
	h := newTestServer(t, false).Handler()

	w := doJSON(t, h, http.MethodPost, "/api/news/analyze", `{"query": "anything"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	h := newTestServer(t, false).Handler()

	w := doJSON(t, h, http.MethodGet, "/health", "")
	if w.Header().Get(requestIDHeader) == "" {
		t.Error("expected a generated request id header")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "caller-id")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get(requestIDHeader); got != "caller-id" {
		t.Errorf("expected caller id echoed, got %q", got)
	}
}

func TestRateLimiterWindow(t *testing.T) {
	l := newRateLimiter(3)
	now := time.Now()

	for i := 0; i < 3; i++ {
		if !l.allow("1.2.3.4", now) {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if l.allow("1.2.3.4", now) {
		t.Error("4th request within the window should be rejected")
	}
	if !l.allow("5.6.7.8", now) {
		t.Error("other clients must not share the budget")
	}
	if !l.allow("1.2.3.4", now.Add(61*time.Second)) {
		t.Error("request after the window should be allowed")
	}
}

func TestRateLimitExemptsHealth(t *testing.T) {
	srv := newTestServer(t, false)
	srv.cfg.RateLimitPerMinute = 1
	h := srv.Handler()

	if w := doJSON(t, h, http.MethodPost, "/api/news/search", `{"query": "chip"}`); w.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", w.Code)
	}
	if w := doJSON(t, h, http.MethodPost, "/api/news/search", `{"query": "chip"}`); w.Code != http.StatusTooManyRequests {
		t.Errorf("second request should be limited, got %d", w.Code)
	}
	if w := doJSON(t, h, http.MethodGet, "/health", ""); w.Code != http.StatusOK {
		t.Errorf("health must be exempt from rate limiting, got %d", w.Code)
	}
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	l := newRateLimiter(10)
	now := time.Now()

	if !l.allow("1.2.3.4", now) {
		t.Fatal("first request should be allowed")
	}
	if _, ok := l.hits["1.2.3.4"]; !ok {
		t.Fatal("expected client tracked after a request")
	}

	// Another client arriving after the first one's window has fully
	// expired triggers the sweep.
	if !l.allow("5.6.7.8", now.Add(2*time.Minute)) {
		t.Fatal("request from a new client should be allowed")
	}
	if _, ok := l.hits["1.2.3.4"]; ok {
		t.Error("expected idle client evicted after its window expired")
	}
	if _, ok := l.hits["5.6.7.8"]; !ok {
		t.Error("expected the active client to stay tracked")
	}
}
