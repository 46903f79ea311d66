package provider

import (
	"context"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/sirupsen/logrus"

	"newsradar/internal/domain"
)

const maxSnippetRunes = 500

// Feed is one configured RSS source.
type Feed struct {
	Name string
	URL  string
}

// RSS pulls headline feeds and filters them by the query, since feeds
// have no search of their own. A feed that fails to fetch or parse is
// skipped; the remaining feeds still contribute.
type RSS struct {
	feeds      []Feed
	maxPerFeed int
	parser     *gofeed.Parser
	log        *logrus.Entry
}

func NewRSS(feeds []Feed, maxPerFeed int) *RSS {
	if maxPerFeed <= 0 {
		maxPerFeed = 50
	}
	return &RSS{
		feeds:      feeds,
		maxPerFeed: maxPerFeed,
		parser:     gofeed.NewParser(),
		log:        logrus.WithField("provider", "rss"),
	}
}

func (p *RSS) Name() string {
	return "rss"
}

func (p *RSS) Search(ctx context.Context, query string, limit int) ([]domain.Article, error) {
	needle := strings.ToLower(strings.TrimSpace(query))

	var articles []domain.Article
	for _, feed := range p.feeds {
		parsed, err := p.parser.ParseURLWithContext(feed.URL, ctx)
		if err != nil {
			p.log.WithError(err).WithField("feed", feed.Name).Warn("feed fetch failed, skipping")
			continue
		}

		taken := 0
		for _, item := range parsed.Items {
			if taken >= p.maxPerFeed {
				break
			}
			if !matchesQuery(item, needle) {
				continue
			}

			thumbnail := ""
			if item.Image != nil {
				thumbnail = item.Image.URL
			}
			a, ok := domain.NewArticle(
				strings.TrimSpace(item.Title),
				item.Link,
				feed.Name,
				item.PublishedParsed,
				truncateRunes(stripHTML(item.Description), maxSnippetRunes),
				thumbnail,
			)
			if !ok {
				continue
			}
			articles = append(articles, a)
			taken++
		}
	}

	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}
	return articles, nil
}

// matchesQuery reports whether the query appears in the item's title or
// description. An empty query matches everything.
func matchesQuery(item *gofeed.Item, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(item.Title), needle) ||
		strings.Contains(strings.ToLower(item.Description), needle)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
