package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"newsradar/internal/domain"
)

const (
	defaultSerpBaseURL = "https://serpapi.com/search.json"
	serpPageSize       = 100
)

// SerpAPI searches Google News through the SerpAPI proxy. Results come
// back a page at a time; fetching stops at the first empty or short page.
// A failure on a page after the first returns what was already collected.
type SerpAPI struct {
	apiKey     string
	baseURL    string
	language   string
	country    string
	maxResults int
	client     *http.Client
	log        *logrus.Entry
}

func NewSerpAPI(apiKey, baseURL, language, country string, maxResults int, timeout time.Duration) *SerpAPI {
	if baseURL == "" {
		baseURL = defaultSerpBaseURL
	}
	if maxResults <= 0 {
		maxResults = serpPageSize
	}
	return &SerpAPI{
		apiKey:     apiKey,
		baseURL:    baseURL,
		language:   language,
		country:    country,
		maxResults: maxResults,
		client:     &http.Client{Timeout: timeout},
		log:        logrus.WithField("provider", "serpapi"),
	}
}

func (p *SerpAPI) Name() string {
	return "serpapi"
}

func (p *SerpAPI) Search(ctx context.Context, query string, limit int) ([]domain.Article, error) {
	if limit <= 0 || limit > p.maxResults {
		limit = p.maxResults
	}

	var articles []domain.Article
	for start := 0; start < limit; start += serpPageSize {
		page, err := p.fetchPage(ctx, query, start)
		if err != nil {
			if start == 0 {
				return nil, err
			}
			p.log.WithError(err).WithField("start", start).Warn("page fetch failed, returning partial results")
			break
		}
		if len(page) == 0 {
			break
		}
		articles = append(articles, page...)
		if len(page) < serpPageSize {
			break
		}
	}

	if len(articles) > limit {
		articles = articles[:limit]
	}
	return articles, nil
}

func (p *SerpAPI) fetchPage(ctx context.Context, query string, start int) ([]domain.Article, error) {
	params := url.Values{}
	params.Set("engine", "google_news")
	params.Set("q", query)
	params.Set("api_key", p.apiKey)
	params.Set("hl", p.language)
	params.Set("gl", p.country)
	params.Set("num", strconv.Itoa(serpPageSize))
	if start > 0 {
		params.Set("start", strconv.Itoa(start))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build serpapi request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serpapi request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serpapi returned status %d", resp.StatusCode)
	}

	var body serpResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode serpapi response: %w", err)
	}
	if body.Error != "" {
		return nil, fmt.Errorf("serpapi error: %s", body.Error)
	}

	articles := make([]domain.Article, 0, len(body.NewsResults))
	for _, r := range body.NewsResults {
		a, ok := domain.NewArticle(r.Title, r.Link, r.Source.Name, ParseDate(r.Date), r.Snippet, r.Thumbnail)
		if !ok {
			continue
		}
		articles = append(articles, a)
	}
	return articles, nil
}

type serpResponse struct {
	NewsResults []serpNewsResult `json:"news_results"`
	Error       string           `json:"error"`
}

type serpNewsResult struct {
	Title     string     `json:"title"`
	Link      string     `json:"link"`
	Source    serpSource `json:"source"`
	Date      string     `json:"date"`
	Snippet   string     `json:"snippet"`
	Thumbnail string     `json:"thumbnail"`
}

// serpSource absorbs both shapes SerpAPI uses for the source field: a
// bare string or an object with a name.
type serpSource struct {
	Name string
}

func (s *serpSource) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &s.Name)
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	s.Name = obj.Name
	return nil
}
