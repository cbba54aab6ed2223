package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chain(h ...string) [4]string {
	var c [4]string
	copy(c[:], h)
	return c
}

func TestParseMarkdownSections(t *testing.T) {
	src := `intro text

# Title
para one

## Q3 Results
revenue up

### Detail
more

##### Deep
deepest

## Other
other text
`

	sections := ParseMarkdownSections([]byte(src))
	require.Len(t, sections, 6)

	want := []Section{
		{Headings: chain(), Content: "intro text"},
		{Headings: chain("Title"), Content: "para one"},
		{Headings: chain("Title", "Q3 Results"), Content: "revenue up"},
		{Headings: chain("Title", "Q3 Results", "Detail"), Content: "more"},
		{Headings: chain("Title", "Q3 Results", "Detail", "Deep"), Content: "deepest"},
		{Headings: chain("Title", "Other"), Content: "other text"},
	}
	assert.Equal(t, want, sections)
}

func TestParseMarkdownSections_DropsBlankSections(t *testing.T) {
	sections := ParseMarkdownSections([]byte("# A\n## B\ntext\n"))

	require.Len(t, sections, 1)
	assert.Equal(t, chain("A", "B"), sections[0].Headings)
	assert.Equal(t, "text", sections[0].Content)
}

func TestParseMarkdownSections_Setext(t *testing.T) {
	src := "Title\n=====\nbody\n\nSub\n---\nchild\n"

	sections := ParseMarkdownSections([]byte(src))
	require.Len(t, sections, 2)
	assert.Equal(t, Section{Headings: chain("Title"), Content: "body"}, sections[0])
	assert.Equal(t, Section{Headings: chain("Title", "Sub"), Content: "child"}, sections[1])
}

func TestParseMarkdownSections_SetextStartingWithHash(t *testing.T) {
	sections := ParseMarkdownSections([]byte("#tag\n===\nafter\n"))
	require.Len(t, sections, 1)
	assert.Equal(t, Section{Headings: chain("#tag"), Content: "after"}, sections[0])

	sections = ParseMarkdownSections([]byte("# Real\n#hashtag line\n---\nbody\n"))
	require.Len(t, sections, 1)
	assert.Equal(t, Section{Headings: chain("Real", "#hashtag line"), Content: "body"}, sections[0])
}

func TestIsATX(t *testing.T) {
	assert.True(t, isATX([]byte("# Title\n")))
	assert.True(t, isATX([]byte("   ###\ttabbed")))
	assert.True(t, isATX([]byte("##\n")))
	assert.True(t, isATX([]byte("#")))
	assert.False(t, isATX([]byte("#tag\n===")))
	assert.False(t, isATX([]byte("####### seven")))
	assert.False(t, isATX([]byte("    # indented code")))
	assert.False(t, isATX([]byte("plain")))
}

func TestParseMarkdownSections_IgnoresHeadingsInCode(t *testing.T) {
	src := "# Setup\n```sh\n# not a heading\nmake\n```\n"

	sections := ParseMarkdownSections([]byte(src))
	require.Len(t, sections, 1)
	assert.Equal(t, chain("Setup"), sections[0].Headings)
	assert.Contains(t, sections[0].Content, "# not a heading")
}

func TestParseMarkdownSections_Empty(t *testing.T) {
	assert.Empty(t, ParseMarkdownSections(nil))
	assert.Empty(t, ParseMarkdownSections([]byte("# Only heading\n")))
}
