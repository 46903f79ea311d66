package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Article is the canonical news record produced by every provider adapter.
type Article struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Source      string     `json:"source"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	Snippet     string     `json:"snippet,omitempty"`
	Thumbnail   string     `json:"thumbnail,omitempty"`
}

// ScoredArticle pairs an article with its similarity score against a query.
type ScoredArticle struct {
	Article Article `json:"article"`
	Score   float64 `json:"score"`
}

// NewsID derives the content identity of an article from its url and title.
// The same story fetched twice, or from two providers, maps to the same id.
func NewsID(url, title string) string {
	h := sha256.Sum256([]byte(url + "|" + title))
	return hex.EncodeToString(h[:])[:24]
}

// NewArticle builds a canonical article from provider fields. Records
// missing a title or url are rejected.
func NewArticle(title, url, source string, publishedAt *time.Time, snippet, thumbnail string) (Article, bool) {
	if title == "" || url == "" {
		return Article{}, false
	}
	return Article{
		ID:          NewsID(url, title),
		Title:       title,
		URL:         url,
		Source:      source,
		PublishedAt: publishedAt,
		Snippet:     snippet,
		Thumbnail:   thumbnail,
	}, true
}

// SortKey returns the timestamp used for newest-first ordering. Articles
// without a published date sort as the epoch.
func (a Article) SortKey() time.Time {
	if a.PublishedAt == nil {
		return time.Unix(0, 0).UTC()
	}
	return a.PublishedAt.UTC()
}

// EmbeddingText is the text an article is embedded under: title plus
// snippet when present. Once indexed under an id it is never refreshed.
func (a Article) EmbeddingText() string {
	if a.Snippet != "" {
		return a.Title + " " + a.Snippet
	}
	return a.Title
}
