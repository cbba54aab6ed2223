package parser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"secure-rag/internal/models"
)

// Discover lists the document sources under dataDir. Every directory
// directly below dataDir is an access tier; the files directly inside it are
// its documents.
func Discover(dataDir string) ([]Source, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data dir: %w", err)
	}

	var sources []Source
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		tier := models.ParseAccessTier(entry.Name())
		tierDir := filepath.Join(dataDir, entry.Name())
		files, err := os.ReadDir(tierDir)
		if err != nil {
			return nil, fmt.Errorf("failed to read tier dir %s: %w", tierDir, err)
		}
		for _, f := range files {
			if f.IsDir() || !IsDocument(f.Name()) {
				continue
			}
			sources = append(sources, Source{
				Path:       filepath.ToSlash(filepath.Join(tierDir, f.Name())),
				AccessTier: tier,
			})
		}
	}

	sort.Slice(sources, func(i, j int) bool { return sources[i].Path < sources[j].Path })
	return sources, nil
}

// Skipped records a source that could not be chunked.
type Skipped struct {
	Source string
	Err    error
}

type Result struct {
	Chunks  []models.Chunk
	Skipped []Skipped
}

// Pipeline chunks documents and tables according to a chunking policy.
type Pipeline struct {
	policy      models.ChunkingPolicy
	concurrency int
}

type Option func(*Pipeline)

// WithConcurrency bounds the number of sources processed at once.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

func NewPipeline(policy models.ChunkingPolicy, opts ...Option) *Pipeline {
	p := &Pipeline{
		policy:      policy,
		concurrency: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ChunkDocument reads one document and chunks it with its tier's size.
func (p *Pipeline) ChunkDocument(src Source) ([]models.Chunk, error) {
	content, err := ReadDocument(src.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrSourceParse, src.Path, err)
	}
	if !utf8.ValidString(content) {
		return nil, fmt.Errorf("%w: %s: content is not valid UTF-8", models.ErrSourceParse, src.Path)
	}
	return ChunkMarkdown(src, content, p.policy.Lookup(src.AccessTier))
}

// Run chunks all sources. Sources are independent and processed in
// parallel; the output keeps documents first, then tables, each in the
// given order. A source that fails is logged and skipped. Only context
// cancellation aborts the run.
func (p *Pipeline) Run(ctx context.Context, docs []Source, tables []TableSource) (*Result, error) {
	chunks := make([][]models.Chunk, len(docs)+len(tables))
	errs := make([]error, len(docs)+len(tables))
	names := make([]string, len(docs)+len(tables))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, doc := range docs {
		names[i] = doc.Path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			chunks[i], errs[i] = p.ChunkDocument(doc)
			return nil
		})
	}
	for j, table := range tables {
		i := len(docs) + j
		names[i] = table.Path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			chunks[i], errs[i] = ChunkTable(table)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{}
	for i := range chunks {
		if errs[i] != nil {
			log.Warn().Err(errs[i]).Str("source", names[i]).Msg("skipping source")
			res.Skipped = append(res.Skipped, Skipped{Source: names[i], Err: errs[i]})
			continue
		}
		log.Debug().Str("source", names[i]).Int("chunks", len(chunks[i])).Msg("chunked source")
		res.Chunks = append(res.Chunks, chunks[i]...)
	}
	return res, nil
}
