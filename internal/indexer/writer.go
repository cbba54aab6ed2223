package indexer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"secure-rag/internal/models"
)

// VectorUpserter is the id-keyed write side of the vector store.
type VectorUpserter interface {
	Upsert(ctx context.Context, docs []models.VectorDocument) error
}

const DefaultBatchSize = 256

// Writer hands chunks to the vector store as (id, text, metadata) triples.
type Writer struct {
	store     VectorUpserter
	batchSize int
}

func NewWriter(store VectorUpserter, batchSize int) *Writer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Writer{store: store, batchSize: batchSize}
}

// Documents converts chunks into store documents. When an id occurs more
// than once the last chunk wins and keeps the position of the first.
func Documents(chunks []models.Chunk) []models.VectorDocument {
	docs := make([]models.VectorDocument, 0, len(chunks))
	index := make(map[string]int, len(chunks))
	for _, c := range chunks {
		doc := models.VectorDocument{ID: c.ID, Text: c.Text, Metadata: c.Metadata()}
		if i, ok := index[c.ID]; ok {
			log.Warn().Str("id", c.ID).Msg("Duplicate chunk id, keeping the last occurrence")
			docs[i] = doc
			continue
		}
		index[c.ID] = len(docs)
		docs = append(docs, doc)
	}
	return docs
}

// Write upserts chunks in batches and returns the number of documents written.
func (w *Writer) Write(ctx context.Context, chunks []models.Chunk) (int, error) {
	docs := Documents(chunks)

	written := 0
	for start := 0; start < len(docs); start += w.batchSize {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		end := min(start+w.batchSize, len(docs))
		if err := w.store.Upsert(ctx, docs[start:end]); err != nil {
			return written, fmt.Errorf("failed to upsert batch %d-%d: %w", start, end, err)
		}
		written += end - start
		log.Debug().Int("written", written).Int("total", len(docs)).Msg("Upserted batch")
	}

	log.Info().Int("documents", written).Msg("Index updated")
	return written, nil
}
