package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/textsplitter"

	"secure-rag/internal/models"
)

const sentenceSeparator = ". "

// splitSeparators are tried in order: paragraph, line, sentence, word and
// finally single characters for tokens longer than the chunk size.
var splitSeparators = []string{"\n\n", "\n", sentenceSeparator, " ", ""}

// Splitter cuts section content into overlapping sub-chunks of at most
// Size characters. Separators are kept, so no text is lost at a cut.
type Splitter struct {
	splitter textsplitter.RecursiveCharacter
	size     int
}

func NewSplitter(size models.ChunkSize) Splitter {
	return Splitter{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(size.Size),
			textsplitter.WithChunkOverlap(size.Overlap),
			textsplitter.WithSeparators(splitSeparators),
			textsplitter.WithKeepSeparator(true),
			textsplitter.WithLenFunc(utf8.RuneCountInString),
		),
		size: size.Size,
	}
}

func (s Splitter) Split(content string) ([]string, error) {
	if content == "" {
		return nil, nil
	}
	parts, err := s.splitter.SplitText(content)
	if err != nil {
		return nil, err
	}
	return s.attachSentenceEnds(parts), nil
}

// attachSentenceEnds moves the period of a kept sentence separator from the
// start of a part to the end of the part before it, which is where the
// sentence ends in the source, when that part has room for it.
func (s Splitter) attachSentenceEnds(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if len(out) == 0 || (part != "." && !strings.HasPrefix(part, sentenceSeparator)) {
			out = append(out, part)
			continue
		}
		last := len(out) - 1
		if utf8.RuneCountInString(out[last]) < s.size {
			out[last] += "."
			part = strings.TrimSpace(part[1:])
			if part == "" {
				continue
			}
		}
		out = append(out, part)
	}
	return out
}
