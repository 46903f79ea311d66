package index

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"newsradar/internal/adapter/embedding"
	"newsradar/internal/domain"
)

func testArticle(title, url string) domain.Article {
	a, _ := domain.NewArticle(title, url, "test", nil, "", "")
	return a
}

func openTestStore(t *testing.T, dir string) *Store {
	t.Helper()
	s, err := New(dir, embedding.NewMockEncoder(32))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddIfAbsentIdempotent(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	ctx := context.Background()

	articles := []domain.Article{
		testArticle("ai breakthrough", "https://example.com/1"),
		testArticle("market rally", "https://example.com/2"),
	}

	if err := s.AddIfAbsent(ctx, articles); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 vectors, got %d", s.Len())
	}

	// Same batch again: no growth, no error.
	if err := s.AddIfAbsent(ctx, articles); err != nil {
		t.Fatalf("second insert failed: %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("expected no growth on duplicate insert, got %d", s.Len())
	}
}

func TestSearchTopK(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	ctx := context.Background()

	articles := []domain.Article{
		testArticle("ai technology advances", "https://example.com/ai"),
		testArticle("football championship final", "https://example.com/sport"),
		testArticle("ai research funding", "https://example.com/ai2"),
	}
	if err := s.AddIfAbsent(ctx, articles); err != nil {
		t.Fatal(err)
	}

	query := embedding.NewMockEncoder(32).Encode(ctx, "ai technology")
	hits, err := s.Search(query, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Score < hits[1].Score {
		t.Error("expected hits sorted by descending score")
	}
	if hits[0].ID != articles[0].ID && hits[0].ID != articles[2].ID {
		t.Errorf("expected an ai article first, got %s", hits[0].ID)
	}

	// k beyond index size clamps.
	hits, err = s.Search(query, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 3 {
		t.Errorf("expected all 3 vectors, got %d", len(hits))
	}
}

func TestSearchEmptyIndex(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	query := make([]float32, 32)
	hits, err := s.Search(query, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits on empty index, got %d", len(hits))
	}
}

func TestSearchDimensionMismatch(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	if _, err := s.Search(make([]float32, 8), 5); err == nil {
		t.Error("expected error for mismatched query dimension")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s := openTestStore(t, dir)
	articles := []domain.Article{
		testArticle("climate summit opens", "https://example.com/a"),
		testArticle("new vaccine approved", "https://example.com/b"),
		testArticle("climate policy debate", "https://example.com/c"),
	}
	if err := s.AddIfAbsent(ctx, articles); err != nil {
		t.Fatal(err)
	}

	query := embedding.NewMockEncoder(32).Encode(ctx, "climate policy")
	before, err := s.Search(query, 3)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	// A fresh instance over the same directory must reproduce the
	// search results from the snapshot.
	restored := openTestStore(t, dir)
	if restored.Len() != 3 {
		t.Fatalf("expected 3 restored vectors, got %d", restored.Len())
	}

	after, err := restored.Search(query, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(after) != len(before) {
		t.Fatalf("expected %d hits after restore, got %d", len(before), len(after))
	}
	for i := range before {
		if after[i].ID != before[i].ID {
			t.Errorf("hit %d: expected id %s, got %s", i, before[i].ID, after[i].ID)
		}
		if math.Abs(after[i].Score-before[i].Score) > 1e-6 {
			t.Errorf("hit %d: score drifted from %f to %f", i, before[i].Score, after[i].Score)
		}
	}

	text, ok := restored.IndexedText(articles[0].ID)
	if !ok || text != articles[0].EmbeddingText() {
		t.Errorf("expected indexed text restored, got %q", text)
	}
}

func TestCorruptSnapshotStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s := openTestStore(t, dir)
	if err := s.AddIfAbsent(ctx, []domain.Article{testArticle("hello", "https://example.com/x")}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	if err := os.WriteFile(filepath.Join(dir, snapshotFile), []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}

	restored := openTestStore(t, dir)
	if restored.Len() != 0 {
		t.Errorf("expected empty index after corrupt snapshot, got %d vectors", restored.Len())
	}

	// The reset index must accept new inserts again.
	if err := restored.AddIfAbsent(ctx, []domain.Article{testArticle("fresh", "https://example.com/y")}); err != nil {
		t.Fatalf("insert after reset failed: %v", err)
	}
	if restored.Len() != 1 {
		t.Errorf("expected 1 vector after reinsert, got %d", restored.Len())
	}
}

func TestMissingSidecarStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s := openTestStore(t, dir)
	if err := s.AddIfAbsent(ctx, []domain.Article{testArticle("hello", "https://example.com/x")}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Losing the metadata sidecar orphans the vector snapshot; the pair
	// is treated as "no snapshot".
	if err := os.Remove(filepath.Join(dir, metaFile)); err != nil {
		t.Fatal(err)
	}

	restored := openTestStore(t, dir)
	if restored.Len() != 0 {
		t.Errorf("expected empty index without sidecar, got %d vectors", restored.Len())
	}
}

func TestPositionsStableAcrossBatches(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	ctx := context.Background()

	first := testArticle("first", "https://example.com/1")
	if err := s.AddIfAbsent(ctx, []domain.Article{first}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddIfAbsent(ctx, []domain.Article{
		first, // already present
		testArticle("second", "https://example.com/2"),
	}); err != nil {
		t.Fatal(err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.positions[first.ID] != 0 {
		t.Errorf("expected first article to keep position 0, got %d", s.positions[first.ID])
	}
	if len(s.ids) != 2 {
		t.Errorf("expected 2 positions, got %d", len(s.ids))
	}
}
