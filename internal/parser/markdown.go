package parser

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"secure-rag/internal/models"
)

// Section is the content between two headings together with the chain of
// headings active at that point.
type Section struct {
	Headings [models.MaxHeadingLevel]string
	Content  string
}

// ParseMarkdownSections splits a markdown document on its top level
// headings. Levels deeper than MaxHeadingLevel are folded into the last
// level. Headings inside code blocks, lists or quotes do not split. Blank
// sections are dropped.
func ParseMarkdownSections(source []byte) []Section {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(text.NewReader(source))

	var (
		sections []Section
		chain    [models.MaxHeadingLevel]string
		start    int
	)

	flush := func(end int) {
		if end < start {
			return
		}
		content := strings.TrimSpace(string(source[start:end]))
		if content == "" {
			return
		}
		sections = append(sections, Section{Headings: chain, Content: content})
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		heading, ok := n.(*ast.Heading)
		if !ok || heading.Lines().Len() == 0 {
			continue
		}
		lines := heading.Lines()
		first := lines.At(0)
		last := lines.At(lines.Len() - 1)

		headStart := lineStart(source, first.Start)
		flush(headStart)

		level := min(heading.Level, models.MaxHeadingLevel)
		chain[level-1] = headingText(lines, source)
		for i := level; i < models.MaxHeadingLevel; i++ {
			chain[i] = ""
		}

		start = lineEnd(source, last.Start)
		if !isATX(source[headStart:]) {
			// setext: skip the underline
			start = lineEnd(source, start)
		}
	}
	flush(len(source))

	return sections
}

func headingText(lines *text.Segments, source []byte) string {
	parts := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		if part := strings.TrimSpace(string(seg.Value(source))); part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " ")
}

// isATX reports whether line opens with an ATX marker: up to three spaces,
// one to six '#' and then a space, a tab or the end of the line. Setext
// heading text may itself start with '#'.
func isATX(line []byte) bool {
	trimmed := bytes.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return false
	}
	level := 0
	for level < len(trimmed) && trimmed[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return false
	}
	if level == len(trimmed) {
		return true
	}
	switch trimmed[level] {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

func lineStart(source []byte, pos int) int {
	if pos > len(source) {
		pos = len(source)
	}
	return bytes.LastIndexByte(source[:pos], '\n') + 1
}

func lineEnd(source []byte, pos int) int {
	if pos >= len(source) {
		return len(source)
	}
	i := bytes.IndexByte(source[pos:], '\n')
	if i < 0 {
		return len(source)
	}
	return pos + i + 1
}
