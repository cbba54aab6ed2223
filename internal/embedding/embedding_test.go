package embedding

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/embeddings"

	"secure-rag/internal/config"
)

func TestNewEmbeddingFunc(t *testing.T) {
	var seen []string
	client := embeddings.EmbedderClientFunc(func(_ context.Context, texts []string) ([][]float32, error) {
		seen = append(seen, texts...)
		out := make([][]float32, len(texts))
		for i, text := range texts {
			out[i] = []float32{float32(len(text)), 1}
		}
		return out, nil
	})
	embedder, err := NewEmbedderFromClient(client)
	require.NoError(t, err)

	v, err := NewEmbeddingFunc(embedder)(context.Background(), "two\nlines")
	require.NoError(t, err)
	require.Len(t, v, 2)
	assert.InDelta(t, 9/math.Sqrt(82), v[0], 1e-6)
	assert.InDelta(t, 1/math.Sqrt(82), v[1], 1e-6)
	assert.Equal(t, []string{"two lines"}, seen)
}

func TestNewEmbeddingFunc_UnitLength(t *testing.T) {
	client := embeddings.EmbedderClientFunc(func(_ context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{4, 4, 0, 2}
		}
		return out, nil
	})
	embedder, err := NewEmbedderFromClient(client)
	require.NoError(t, err)

	v, err := NewEmbeddingFunc(embedder)(context.Background(), "anything")
	require.NoError(t, err)
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	assert.InDelta(t, 1, sum, 1e-6)
	assert.InDelta(t, v[0], v[1], 1e-9)
	assert.InDelta(t, float64(v[0])/2, v[3], 1e-6)
}

func TestNewEmbeddingFunc_Errors(t *testing.T) {
	failing := embeddings.EmbedderClientFunc(func(context.Context, []string) ([][]float32, error) {
		return nil, errors.New("model not loaded")
	})
	embedder, err := NewEmbedderFromClient(failing)
	require.NoError(t, err)
	_, err = NewEmbeddingFunc(embedder)(context.Background(), "x")
	assert.ErrorContains(t, err, "model not loaded")

	empty := embeddings.EmbedderClientFunc(func(_ context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{}}, nil
	})
	embedder, err = NewEmbedderFromClient(empty)
	require.NoError(t, err)
	_, err = NewEmbeddingFunc(embedder)(context.Background(), "x")
	assert.Error(t, err)

	zero := embeddings.EmbedderClientFunc(func(_ context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{0, 0, 0}}, nil
	})
	embedder, err = NewEmbedderFromClient(zero)
	require.NoError(t, err)
	_, err = NewEmbeddingFunc(embedder)(context.Background(), "x")
	assert.ErrorContains(t, err, "zero vector")
}

func TestNewEmbedder_Providers(t *testing.T) {
	_, err := NewEmbedder(&config.LLMConfig{Provider: "ollama", BaseURL: "http://localhost:11434", Model: "all-minilm"})
	assert.NoError(t, err)

	_, err = NewEmbedder(&config.LLMConfig{Provider: "openai", BaseURL: "http://localhost:1", Key: "Bearer k", Model: "text-embedding-3-small"})
	assert.NoError(t, err)

	_, err = NewEmbedder(&config.LLMConfig{Provider: "other"})
	assert.Error(t, err)
}
