package parser

import (
	"fmt"
	"path/filepath"

	"secure-rag/internal/models"
)

// Source is a document discovered under a tier directory.
type Source struct {
	Path       string
	AccessTier models.AccessTier
}

// ChunkMarkdown turns a markdown document into ordered chunks. Sequence
// numbers restart at 0 per document and follow section then sub-chunk
// order, so ids are stable across runs.
func ChunkMarkdown(src Source, content string, size models.ChunkSize) ([]models.Chunk, error) {
	fileName := filepath.Base(src.Path)
	fileQuarter := QuarterFromFilename(fileName)
	splitter := NewSplitter(size)

	var (
		chunks []models.Chunk
		seq    int
	)
	for _, section := range ParseMarkdownSections([]byte(content)) {
		parts, err := splitter.Split(section.Content)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", models.ErrSourceParse, src.Path, err)
		}

		quarter := fileQuarter
		if q, ok := QuarterFromHeading(section.Headings[1]); ok {
			quarter = q
		}

		prov := models.Provenance{
			Source:   src.Path,
			Kind:     models.SourceMarkdown,
			Headings: section.Headings,
		}
		crumb := models.Breadcrumb(fileName, prov.HeadingChain())

		for _, part := range parts {
			chunks = append(chunks, models.Chunk{
				ID:         fmt.Sprintf("md:%s:%d", src.Path, seq),
				Text:       crumb + "\n\n" + part,
				AccessTier: src.AccessTier,
				Quarter:    quarter,
				Provenance: prov,
			})
			seq++
		}
	}
	return chunks, nil
}
