package embedding

import (
	"context"
	"testing"
)

func TestMockEncoderDeterministic(t *testing.T) {
	e := NewMockEncoder(64)
	ctx := context.Background()

	a := e.Encode(ctx, "ai technology news")
	b := e.Encode(ctx, "ai technology news")

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("expected deterministic vectors, differ at %d", i)
		}
	}
}

func TestMockEncoderBatchEquivalence(t *testing.T) {
	e := NewMockEncoder(64)
	ctx := context.Background()

	texts := []string{"climate policy", "stock market rally", "olympic gold"}
	batch := e.EncodeBatch(ctx, texts)

	if len(batch) != len(texts) {
		t.Fatalf("expected %d vectors, got %d", len(texts), len(batch))
	}
	for i, text := range texts {
		single := e.Encode(ctx, text)
		for j := range single {
			if batch[i][j] != single[j] {
				t.Fatalf("batch and single encode differ for %q at %d", text, j)
			}
		}
	}
}

func TestMockEncoderEmptyText(t *testing.T) {
	e := NewMockEncoder(16)

	vec := e.Encode(context.Background(), "   ")
	if len(vec) != 16 {
		t.Fatalf("expected dimension 16, got %d", len(vec))
	}
	for i, v := range vec {
		if v != 0 {
			t.Fatalf("expected zero vector for blank text, got %f at %d", v, i)
		}
	}
}
