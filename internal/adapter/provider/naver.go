package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"newsradar/internal/domain"
)

const (
	defaultNaverBaseURL = "https://openapi.naver.com/v1/search/news.json"
	naverPageSize       = 100
	naverMaxStart       = 1000 // the API rejects start offsets beyond this
)

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

// Naver searches the Naver open news API. Pagination uses 1-based start
// offsets in steps of 100 up to the API's hard ceiling.
type Naver struct {
	clientID     string
	clientSecret string
	baseURL      string
	maxResults   int
	client       *http.Client
	log          *logrus.Entry
}

func NewNaver(clientID, clientSecret, baseURL string, maxResults int, timeout time.Duration) *Naver {
	if baseURL == "" {
		baseURL = defaultNaverBaseURL
	}
	if maxResults <= 0 || maxResults > naverMaxStart {
		maxResults = naverMaxStart
	}
	return &Naver{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      baseURL,
		maxResults:   maxResults,
		client:       &http.Client{Timeout: timeout},
		log:          logrus.WithField("provider", "naver"),
	}
}

func (p *Naver) Name() string {
	return "naver"
}

func (p *Naver) Search(ctx context.Context, query string, limit int) ([]domain.Article, error) {
	if limit <= 0 || limit > p.maxResults {
		limit = p.maxResults
	}

	var articles []domain.Article
	for start := 1; start <= limit && start <= naverMaxStart; start += naverPageSize {
		page, err := p.fetchPage(ctx, query, start)
		if err != nil {
			if start == 1 {
				return nil, err
			}
			p.log.WithError(err).WithField("start", start).Warn("page fetch failed, returning partial results")
			break
		}
		if len(page) == 0 {
			break
		}
		articles = append(articles, page...)
		if len(page) < naverPageSize {
			break
		}
	}

	if len(articles) > limit {
		articles = articles[:limit]
	}
	return articles, nil
}

func (p *Naver) fetchPage(ctx context.Context, query string, start int) ([]domain.Article, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("display", strconv.Itoa(naverPageSize))
	params.Set("start", strconv.Itoa(start))
	params.Set("sort", "date")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build naver request: %w", err)
	}
	req.Header.Set("X-Naver-Client-Id", p.clientID)
	req.Header.Set("X-Naver-Client-Secret", p.clientSecret)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("naver request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("naver returned status %d", resp.StatusCode)
	}

	var body naverResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode naver response: %w", err)
	}

	articles := make([]domain.Article, 0, len(body.Items))
	for _, item := range body.Items {
		link := item.OriginalLink
		if link == "" {
			link = item.Link
		}
		a, ok := domain.NewArticle(
			stripHTML(item.Title),
			link,
			"naver",
			ParseDate(item.PubDate),
			stripHTML(item.Description),
			"",
		)
		if !ok {
			continue
		}
		articles = append(articles, a)
	}
	return articles, nil
}

type naverResponse struct {
	Total int         `json:"total"`
	Items []naverItem `json:"items"`
}

type naverItem struct {
	Title        string `json:"title"`
	OriginalLink string `json:"originallink"`
	Link         string `json:"link"`
	Description  string `json:"description"`
	PubDate      string `json:"pubDate"`
}

// stripHTML removes markup tags (Naver wraps query matches in <b>) and
// decodes HTML entities.
func stripHTML(s string) string {
	return strings.TrimSpace(html.UnescapeString(htmlTagPattern.ReplaceAllString(s, "")))
}
