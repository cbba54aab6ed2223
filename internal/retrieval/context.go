package retrieval

import (
	"fmt"
	"strings"

	"secure-rag/internal/models"
)

// FilterByDistance keeps the hits at or below maxDistance, in rank order.
func FilterByDistance(hits []models.SearchHit, maxDistance float64) []models.SearchHit {
	kept := make([]models.SearchHit, 0, len(hits))
	for _, h := range hits {
		if h.Distance <= maxDistance {
			kept = append(kept, h)
		}
	}
	return kept
}

// Location is the citation location of a retrieved item: the row of a
// tabular chunk, else its heading chain.
func Location(meta map[string]string) string {
	if row := meta[models.MetaRow]; row != "" {
		return "row " + row
	}

	var headings []string
	for _, key := range models.HeadingKeys {
		if h := meta[key]; h != "" {
			headings = append(headings, h)
		}
	}
	if len(headings) > 0 {
		return strings.Join(headings, models.LocationSeparator)
	}
	return models.MissingValue
}

func valueOrMissing(meta map[string]string, key string) string {
	if v := meta[key]; v != "" {
		return v
	}
	return models.MissingValue
}

// BuildContext renders the numbered source blocks handed to the model.
func BuildContext(items []models.RetrievedItem) string {
	blocks := make([]string, len(items))
	for i, item := range items {
		var b strings.Builder
		fmt.Fprintf(&b, "[SRC %d]\n", i+1)
		fmt.Fprintf(&b, "source_path: %s\n", valueOrMissing(item.Provenance, models.MetaSource))
		fmt.Fprintf(&b, "location: %s\n", Location(item.Provenance))
		b.WriteString("META:\n")
		for _, field := range models.ContextFields {
			fmt.Fprintf(&b, "  %s: %s\n", field, valueOrMissing(item.Provenance, field))
		}
		b.WriteString("TEXT:\n")
		b.WriteString(item.Text)
		blocks[i] = b.String()
	}
	return strings.Join(blocks, models.ContextSeparator)
}
