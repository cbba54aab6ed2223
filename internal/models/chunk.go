package models

import (
	"strconv"
	"strings"
)

// Provenance records where a chunk came from.
type Provenance struct {
	Source string
	Kind   SourceKind

	// Headings is the h1..h4 chain of a markdown section.
	Headings [MaxHeadingLevel]string

	// Row is the zero-based row index of a tabular chunk.
	Row int

	// Fields holds the non-text columns of a tabular row.
	Fields map[string]string
}

// HeadingChain returns the non-empty headings in order.
func (p Provenance) HeadingChain() []string {
	var chain []string
	for _, h := range p.Headings {
		if h != "" {
			chain = append(chain, h)
		}
	}
	return chain
}

// Chunk is the retrieval unit written to the vector store.
type Chunk struct {
	ID         string
	Text       string
	AccessTier AccessTier
	Quarter    Quarter
	Provenance Provenance
}

// Metadata flattens the provenance together with the access tier and the
// time partition. Reserved keys win over tabular fields of the same name.
func (c Chunk) Metadata() map[string]string {
	m := make(map[string]string, len(c.Provenance.Fields)+8)
	for k, v := range c.Provenance.Fields {
		m[k] = v
	}

	m[MetaSource] = c.Provenance.Source
	m[MetaSourceType] = string(c.Provenance.Kind)
	m[MetaAccessTier] = string(c.AccessTier)

	quarter := c.Quarter
	if quarter == "" {
		quarter = QuarterNone
	}
	m[MetaTimePartition] = string(quarter)

	switch c.Provenance.Kind {
	case SourceMarkdown:
		for i, h := range c.Provenance.Headings {
			if h != "" {
				m[HeadingKeys[i]] = h
			}
		}
	case SourceTabular:
		m[MetaRow] = strconv.Itoa(c.Provenance.Row)
	}
	return m
}

// Breadcrumb is the human readable location line prefixed to markdown chunks.
func Breadcrumb(fileName string, headings []string) string {
	var b strings.Builder
	b.WriteString("Document: ")
	b.WriteString(fileName)
	if len(headings) > 0 {
		b.WriteString("\nSection: ")
		b.WriteString(strings.Join(headings, BreadcrumbSeparator))
	}
	return b.String()
}

// VectorDocument is the (id, text, metadata) triple handed to the store.
type VectorDocument struct {
	ID       string
	Text     string
	Metadata map[string]string
}

// SearchHit is one raw nearest-neighbour result. Smaller distance means a
// closer match.
type SearchHit struct {
	ID       string
	Text     string
	Metadata map[string]string
	Distance float64
}

// RetrievedItem is a hit that survived authorization and relevance gating.
type RetrievedItem struct {
	ID         string            `json:"chunk_id"`
	Text       string            `json:"text"`
	Provenance map[string]string `json:"meta"`
	Distance   float64           `json:"distance"`
}
