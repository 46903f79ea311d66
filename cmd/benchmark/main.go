package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"newsradar/internal/adapter/embedding"
	"newsradar/internal/adapter/index"
	"newsradar/internal/adapter/ranker"
	"newsradar/internal/domain"
	"newsradar/internal/port"
)

var topics = []string{
	"semiconductor exports", "interest rate decision", "ai model release",
	"election polling", "climate policy", "football transfer",
	"startup funding round", "housing market", "vaccine trial", "space launch",
}

func main() {
	query := flag.String("q", "ai model release", "query to rank against")
	candidates := flag.Int("n", 1000, "number of synthetic candidate articles")
	topK := flag.Int("k", 10, "number of results")
	dimension := flag.Int("dim", 256, "embedding dimension")
	flag.Parse()

	enc := embedding.NewMockEncoder(*dimension)
	articles := syntheticArticles(*candidates)

	fmt.Println("RANKING STRATEGY BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Candidates: %d  Dimension: %d  Query: %q\n\n", len(articles), *dimension, *query)

	opts := port.RankOptions{MaxResults: *topK, ChunkSize: 100}
	ctx := context.Background()

	chunked := ranker.NewChunkedRanker(enc)
	start := time.Now()
	chunkedResults, err := chunked.Rank(ctx, *query, articles, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chunked ranking failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("chunked:  %8s  (%d results)\n", time.Since(start).Round(time.Microsecond), len(chunkedResults))

	dir, err := os.MkdirTemp("", "newsradar-bench")
	if err != nil {
		fmt.Fprintf(os.Stderr, "tempdir: %v\n", err)
		os.Exit(1)
	}
	defer os.RemoveAll(dir)

	store, err := index.New(dir, enc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "index: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()
	indexed := ranker.NewIndexedRanker(enc, store)

	// First run pays for encoding and persisting every candidate.
	start = time.Now()
	if _, err := indexed.Rank(ctx, *query, articles, opts); err != nil {
		fmt.Fprintf(os.Stderr, "indexed ranking failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("indexed (cold): %8s\n", time.Since(start).Round(time.Microsecond))

	// Repeat runs skip everything already indexed.
	start = time.Now()
	indexedResults, err := indexed.Rank(ctx, *query, articles, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "indexed ranking failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("indexed (warm): %8s  (%d results)\n\n", time.Since(start).Round(time.Microsecond), len(indexedResults))

	fmt.Printf("Top %d (chunked):\n", *topK)
	for i, r := range chunkedResults {
		fmt.Printf("%3d. [%.3f] %s\n", i+1, r.Score, r.Article.Title)
	}
}

func syntheticArticles(n int) []domain.Article {
	articles := make([]domain.Article, 0, n)
	for i := 0; i < n; i++ {
		topic := topics[i%len(topics)]
		title := fmt.Sprintf("%s update %d", topic, i)
		a, ok := domain.NewArticle(title, fmt.Sprintf("https://bench.example.com/%d", i), "bench", nil, "", "")
		if ok {
			articles = append(articles, a)
		}
	}
	return articles
}
