package llm

import (
	"strings"
	"testing"

	"newsradar/internal/domain"
)

func TestParseAnalysisPlainJSON(t *testing.T) {
	content := `{"summary": "Chip exports keep growing.", "key_points": ["exports up", "new fabs"], "sentiment": "positive", "trends": ["capacity expansion"]}`

	got := parseAnalysis(content)
	if got.Degraded {
		t.Fatal("expected clean parse")
	}
	if got.Summary != "Chip exports keep growing." {
		t.Errorf("unexpected summary %q", got.Summary)
	}
	if len(got.KeyPoints) != 2 || got.KeyPoints[0] != "exports up" {
		t.Errorf("unexpected key points %v", got.KeyPoints)
	}
	if got.Sentiment != "positive" {
		t.Errorf("unexpected sentiment %q", got.Sentiment)
	}
}

func TestParseAnalysisFencedJSON(t *testing.T) {
	content := "```json\n{\"summary\": \"All quiet.\", \"sentiment\": \"neutral\"}\n```"

	got := parseAnalysis(content)
	if got.Degraded {
		t.Fatal("expected fenced JSON to parse")
	}
	if got.Summary != "All quiet." {
		t.Errorf("unexpected summary %q", got.Summary)
	}
}

func TestParseAnalysisBareFence(t *testing.T) {
	content := "```\n{\"summary\": \"Mixed signals.\"}\n```"

	got := parseAnalysis(content)
	if got.Degraded {
		t.Fatal("expected bare-fenced JSON to parse")
	}
	if got.Summary != "Mixed signals." {
		t.Errorf("unexpected summary %q", got.Summary)
	}
}

func TestParseAnalysisProseFallback(t *testing.T) {
	content := "The news is generally positive, with exports rising."

	got := parseAnalysis(content)
	if !got.Degraded {
		t.Fatal("expected degraded analysis for prose reply")
	}
	if got.Summary != content {
		t.Errorf("expected raw text preserved, got %q", got.Summary)
	}
}

func TestParseAnalysisEmptySummaryDegrades(t *testing.T) {
	got := parseAnalysis(`{"key_points": ["something"]}`)
	if !got.Degraded {
		t.Error("expected JSON without a summary to degrade")
	}
}

func TestBuildPromptCapsArticles(t *testing.T) {
	a := NewAnalyzer("key", "", "test-model", 2)

	var articles []domain.Article
	for _, title := range []string{"one", "two", "three"} {
		article, ok := domain.NewArticle(title, "https://example.com/"+title, "test", nil, "", "")
		if !ok {
			t.Fatal("invalid test article")
		}
		articles = append(articles, article)
	}
	prompt := a.buildPrompt("query", articles)

	if !strings.Contains(prompt, "1. one") {
		t.Error("prompt missing first article")
	}
	if strings.Contains(prompt, "3. three") {
		t.Error("prompt should cap at 2 articles")
	}
}
