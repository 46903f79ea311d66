package embedding

import (
	"context"
	"hash/fnv"
	"strings"
)

// MockEncoder produces deterministic vectors without network access.
// Texts sharing words land near each other, which is enough structure
// for ranking tests.
type MockEncoder struct {
	dimension int
}

func NewMockEncoder(dimension int) *MockEncoder {
	return &MockEncoder{dimension: dimension}
}

func (e *MockEncoder) Encode(_ context.Context, text string) []float32 {
	return e.encode(text)
}

func (e *MockEncoder) EncodeBatch(_ context.Context, texts []string) [][]float32 {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = e.encode(text)
	}
	return out
}

func (e *MockEncoder) encode(text string) []float32 {
	vec := make([]float32, e.dimension)
	if strings.TrimSpace(text) == "" {
		return vec
	}
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(word))
		vec[int(h.Sum32()%uint32(e.dimension))]++
	}
	return vec
}

func (e *MockEncoder) Dimension() int {
	return e.dimension
}

func (e *MockEncoder) ModelName() string {
	return "mock"
}
