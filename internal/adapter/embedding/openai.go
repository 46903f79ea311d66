package embedding

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

const defaultBatchSize = 100

// OpenAIEncoder encodes text through an OpenAI-compatible embeddings
// endpoint. A failed or empty encode yields a zero vector of the model
// dimension instead of an error, so a single bad input never aborts a
// batch ranking operation.
type OpenAIEncoder struct {
	client    *openai.Client
	model     string
	dimension int
	batchSize int
	log       *logrus.Entry
}

// NewOpenAIEncoder creates an encoder for the given model. baseURL may
// point at any OpenAI-compatible endpoint; empty means api.openai.com.
// dimension overrides the model default when positive.
func NewOpenAIEncoder(apiKey, baseURL, model string, dimension, batchSize int) *OpenAIEncoder {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	if dimension <= 0 {
		switch model {
		case "text-embedding-3-large":
			dimension = 3072
		case "text-embedding-3-small", "text-embedding-ada-002":
			dimension = 1536
		default:
			dimension = 1536
		}
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	return &OpenAIEncoder{
		client:    openai.NewClientWithConfig(cfg),
		model:     model,
		dimension: dimension,
		batchSize: batchSize,
		log:       logrus.WithField("component", "encoder"),
	}
}

// Encode returns the embedding vector for a single text.
func (e *OpenAIEncoder) Encode(ctx context.Context, text string) []float32 {
	return e.EncodeBatch(ctx, []string{text})[0]
}

// EncodeBatch returns one vector per input text, in input order. Inputs
// are sent in batches; a failed batch degrades to zero vectors for its
// members while the remaining batches still run.
func (e *OpenAIEncoder) EncodeBatch(ctx context.Context, texts []string) [][]float32 {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = make([]float32, e.dimension)
	}

	// Blank inputs stay zero vectors and are not sent to the API.
	var idx []int
	var batch []string
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		idx = append(idx, i)
		batch = append(batch, text)
	}

	for start := 0; start < len(batch); start += e.batchSize {
		end := start + e.batchSize
		if end > len(batch) {
			end = len(batch)
		}

		resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: batch[start:end],
			Model: openai.EmbeddingModel(e.model),
		})
		if err != nil {
			e.log.WithError(err).WithField("batch_size", end-start).Warn("embedding batch failed, degrading to zero vectors")
			continue
		}

		for _, data := range resp.Data {
			if data.Index < 0 || data.Index >= end-start {
				continue
			}
			if len(data.Embedding) == e.dimension {
				out[idx[start+data.Index]] = data.Embedding
			}
		}
	}

	return out
}

// Dimension returns the embedding vector dimension.
func (e *OpenAIEncoder) Dimension() int {
	return e.dimension
}

// ModelName returns the name of the embedding model.
func (e *OpenAIEncoder) ModelName() string {
	return e.model
}
