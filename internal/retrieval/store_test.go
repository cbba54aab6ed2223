package retrieval

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/embeddings"

	"secure-rag/internal/chromemdb"
	"secure-rag/internal/embedding"
	"secure-rag/internal/models"
)

// rawVectors serves fixed vectors of arbitrary length, like an ollama model.
func rawVectors(t *testing.T, vectors map[string][]float32) *chromemdb.VectorDBManager {
	t.Helper()
	client := embeddings.EmbedderClientFunc(func(_ context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i, text := range texts {
			v, ok := vectors[text]
			if !ok {
				return nil, fmt.Errorf("no vector for %q", text)
			}
			out[i] = v
		}
		return out, nil
	})
	embedder, err := embedding.NewEmbedderFromClient(client)
	require.NoError(t, err)

	vdb, err := chromemdb.NewVectorDBManager(chromemdb.Options{InMemory: true}, embedding.NewEmbeddingFunc(embedder))
	require.NoError(t, err)
	_, err = vdb.GetOrCreateCollection("rag")
	require.NoError(t, err)
	return vdb
}

func hrDoc(id, text string) models.VectorDocument {
	return models.VectorDocument{
		ID:   id,
		Text: text,
		Metadata: map[string]string{
			models.MetaAccessTier:    string(models.TierHR),
			models.MetaTimePartition: string(models.QuarterNone),
		},
	}
}

func TestRetrieve_UnnormalizedEmbeddingsKeepDistanceGate(t *testing.T) {
	ctx := context.Background()
	vdb := rawVectors(t, map[string][]float32{
		"salary of Alice":       {3, 0},
		"office parking rules":  {4, 4},
		"Alice salary band: L5": {5, 1},
	})
	require.NoError(t, vdb.Upsert(ctx, []models.VectorDocument{hrDoc("far", "office parking rules")}))

	r := NewRetriever(vdb, models.DefaultRetrievalPolicy())
	result, err := r.Retrieve(ctx, models.TierHR, "salary of Alice")
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.InDelta(t, 0.586, result.Hits[0].Distance, 1e-3)
	assert.True(t, result.NoInformation())
	assert.Empty(t, result.Context)

	require.NoError(t, vdb.Upsert(ctx, []models.VectorDocument{hrDoc("near", "Alice salary band: L5")}))
	result, err = r.Retrieve(ctx, models.TierHR, "salary of Alice")
	require.NoError(t, err)
	require.Len(t, result.Hits, 2)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "near", result.Items[0].ID)
	assert.InDelta(t, 0.039, result.Items[0].Distance, 1e-3)
}
