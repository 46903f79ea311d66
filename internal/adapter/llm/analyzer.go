package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"newsradar/internal/domain"
)

const analysisSystemPrompt = `You are a news analyst. Given a search query and a list of headlines,
respond with a JSON object only, no prose, using this shape:
{"summary": "...", "key_points": ["..."], "sentiment": "positive|negative|neutral|mixed", "trends": ["..."]}
Write the summary in the language of the query.`

// Analysis is the structured output of a news analysis run. When the
// model reply cannot be parsed as JSON, Summary carries the reply text
// verbatim and Degraded is set.
type Analysis struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"key_points,omitempty"`
	Sentiment string   `json:"sentiment,omitempty"`
	Trends    []string `json:"trends,omitempty"`
	Degraded  bool     `json:"degraded,omitempty"`
}

// Analyzer summarizes a set of articles against a query through an
// OpenAI-compatible chat endpoint.
type Analyzer struct {
	client      *openai.Client
	model       string
	maxArticles int
	log         *logrus.Entry
}

func NewAnalyzer(apiKey, baseURL, model string, maxArticles int) *Analyzer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if maxArticles <= 0 {
		maxArticles = 20
	}
	return &Analyzer{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		maxArticles: maxArticles,
		log:         logrus.WithField("component", "analyzer"),
	}
}

func (a *Analyzer) ModelName() string {
	return a.model
}

// Analyze asks the model for a structured read on the top articles.
func (a *Analyzer) Analyze(ctx context.Context, query string, articles []domain.Article) (Analysis, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: analysisSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: a.buildPrompt(query, articles)},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return Analysis{}, fmt.Errorf("analysis request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Analysis{}, errors.New("analysis returned no choices")
	}

	analysis := parseAnalysis(resp.Choices[0].Message.Content)
	if analysis.Degraded {
		a.log.WithField("query", query).Warn("analysis reply was not valid JSON, returning raw text")
	}
	return analysis, nil
}

func (a *Analyzer) buildPrompt(query string, articles []domain.Article) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n\nHeadlines:\n", query)
	for i, article := range articles {
		if i >= a.maxArticles {
			break
		}
		fmt.Fprintf(&b, "%d. %s (%s)", i+1, article.Title, article.Source)
		if article.Snippet != "" {
			fmt.Fprintf(&b, ": %s", article.Snippet)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// parseAnalysis decodes the model reply, tolerating a markdown code
// fence around the JSON. Anything else comes back as a degraded,
// text-only analysis rather than an error.
func parseAnalysis(content string) Analysis {
	cleaned := stripCodeFence(content)

	var analysis Analysis
	if err := json.Unmarshal([]byte(cleaned), &analysis); err != nil || strings.TrimSpace(analysis.Summary) == "" {
		return Analysis{Summary: strings.TrimSpace(content), Degraded: true}
	}
	return analysis
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
