package chromemdb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"secure-rag/internal/models"
)

// VectorDBManager encapsulates the chromem-go database operations
type VectorDBManager struct {
	db            *chromem.DB
	collection    *chromem.Collection
	embed         chromem.EmbeddingFunc
	dbPath        string
	compress      bool
	encryptionKey string
	filePath      string
}

// Options configures NewVectorDBManager.
type Options struct {
	Path          string
	InMemory      bool
	Compress      bool
	EncryptionKey string

	// ExportPath is the file used by Export and Import. Defaults to
	// <Path>/<collection>.chromem.
	ExportPath string
}

// NewVectorDBManager initializes a new vector database manager
func NewVectorDBManager(opts Options, embed chromem.EmbeddingFunc) (*VectorDBManager, error) {
	var db *chromem.DB
	var err error
	if opts.InMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(opts.Path, opts.Compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
	}

	return &VectorDBManager{
		db:            db,
		embed:         embed,
		dbPath:        opts.Path,
		compress:      opts.Compress,
		encryptionKey: opts.EncryptionKey,
		filePath:      opts.ExportPath,
	}, nil
}

// create or read collection
func (m *VectorDBManager) GetOrCreateCollection(collectionName string) (*chromem.Collection, error) {
	c, err := m.db.GetOrCreateCollection(collectionName, nil, m.embed)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %w", err)
	}
	m.collection = c
	if m.filePath == "" {
		m.filePath = filepath.Join(m.dbPath, collectionName+".chromem")
	}
	return c, nil
}

func (m *VectorDBManager) requireCollection() error {
	if m.collection == nil {
		return errors.New("collection is required")
	}
	return nil
}

// Upsert adds documents, replacing any stored document with the same id.
// Embeddings are computed concurrently by the collection.
func (m *VectorDBManager) Upsert(ctx context.Context, docs []models.VectorDocument) error {
	if err := m.requireCollection(); err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}

	chromemDocs := make([]chromem.Document, len(docs))
	for i, d := range docs {
		chromemDocs[i] = chromem.Document{
			ID:       d.ID,
			Content:  d.Text,
			Metadata: d.Metadata,
		}
	}

	if err := m.collection.AddDocuments(ctx, chromemDocs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	return nil
}

// Search returns the nearest documents to text that match every key of
// where. count is clamped to the collection size.
func (m *VectorDBManager) Search(ctx context.Context, text string, count int, where map[string]string) ([]models.SearchHit, error) {
	if err := m.requireCollection(); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, errors.New("query text must be provided")
	}

	if total := m.collection.Count(); count > total {
		count = total
	}
	if count <= 0 {
		return nil, nil
	}

	results, err := m.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryText: text,
		NResults:  count,
		Where:     where,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}

	hits := make([]models.SearchHit, len(results))
	for i, r := range results {
		hits[i] = models.SearchHit{
			ID:       r.ID,
			Text:     r.Content,
			Metadata: r.Metadata,
			Distance: Distance(r.Similarity),
		}
	}
	return hits, nil
}

// Distance converts a cosine similarity of unit vectors into their squared
// euclidean distance.
func Distance(similarity float32) float64 {
	d := 2 - 2*float64(similarity)
	if d < 0 {
		return 0
	}
	return d
}

func (m *VectorDBManager) Count() int {
	if m.collection == nil {
		return 0
	}
	return m.collection.Count()
}

// delete collection
func (m *VectorDBManager) DeleteCollection() error {
	if err := m.requireCollection(); err != nil {
		return err
	}
	if err := m.db.DeleteCollection(m.collection.Name); err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	name := m.collection.Name
	m.collection = nil
	_, err := m.GetOrCreateCollection(name)
	return err
}

// export to file
func (m *VectorDBManager) Export(ctx context.Context) error {
	if m.encryptionKey == "" {
		return errors.New("encryption key is required")
	}
	if err := m.requireCollection(); err != nil {
		return err
	}
	if m.filePath == "" {
		return errors.New("export path is required")
	}

	log.Debug().
		Str("collection", m.collection.Name).
		Str("file", m.filePath).
		Bool("compress", m.compress).
		Msg("Exporting collection")

	if err := m.db.ExportToFile(m.filePath, m.compress, m.encryptionKey, m.collection.Name); err != nil {
		return fmt.Errorf("failed to export database: %w", err)
	}
	return nil
}

// import from file
func (m *VectorDBManager) Import(ctx context.Context) error {
	if err := m.requireCollection(); err != nil {
		return err
	}
	name := m.collection.Name
	if err := m.db.ImportFromFile(m.filePath, m.encryptionKey, name); err != nil {
		return fmt.Errorf("failed to import database: %w", err)
	}

	// the import replaces the collection object, without an embedding func
	c, err := m.db.GetOrCreateCollection(name, nil, m.embed)
	if err != nil {
		return fmt.Errorf("failed to reopen collection: %w", err)
	}
	m.collection = c
	log.Debug().Str("collection", name).Int("documents", c.Count()).Msg("Imported collection")
	return nil
}
