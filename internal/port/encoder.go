package port

import "context"

// Encoder maps free text to a fixed-dimension vector.
//
// Encoding never fails: empty input or a backend error yields a zero
// vector of the correct dimension, so one bad input cannot abort a batch
// ranking operation. Batch encoding is semantically equivalent to
// per-item encoding; only throughput differs.
type Encoder interface {
	Encode(ctx context.Context, text string) []float32

	EncodeBatch(ctx context.Context, texts []string) [][]float32

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}
