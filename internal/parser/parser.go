package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

var documentExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
	".pdf":      true,
	".docx":     true,
}

// IsDocument reports whether path has an extension ReadDocument understands.
func IsDocument(path string) bool {
	return documentExtensions[strings.ToLower(filepath.Ext(path))]
}

// ReadDocument returns the text of a document source. Markdown and plain
// text are returned as is; PDF and DOCX text is extracted so that it can go
// through the same section splitting.
func ReadDocument(filePath string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".md", ".markdown", ".txt":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", err
		}
		return string(data), nil
	case ".pdf":
		return parsePDF(filePath)
	case ".docx":
		return parseDOCX(filePath)
	default:
		return "", fmt.Errorf("unsupported file format: %s", ext)
	}
}

func parsePDF(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return "", err
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		if strings.TrimSpace(pageText) != "" {
			pages = append(pages, pageText)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}

func parseDOCX(filePath string) (string, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return "", err
	}
	defer r.Close()

	return extractTextFromXML(r.Editable().GetContent()), nil
}

// extractTextFromXML collects the w:t runs of a WordprocessingML body, one
// line per paragraph.
func extractTextFromXML(xmlContent string) string {
	var out strings.Builder
	for _, paragraph := range strings.Split(xmlContent, "</w:p>") {
		var line strings.Builder
		for i, part := range strings.Split(paragraph, "<w:t") {
			// skip <w:tab>, <w:tbl>, <w:tc> and friends
			if i == 0 || part == "" || (part[0] != '>' && part[0] != ' ') {
				continue
			}
			open := strings.IndexByte(part, '>')
			if open < 0 {
				continue
			}
			body := part[open+1:]
			if end := strings.Index(body, "</w:t>"); end >= 0 {
				line.WriteString(body[:end])
			}
		}
		if s := strings.TrimSpace(line.String()); s != "" {
			out.WriteString(unescapeXML(s))
			out.WriteString("\n\n")
		}
	}
	return strings.TrimSpace(out.String())
}

var xmlEntities = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'", "&amp;", "&")

func unescapeXML(s string) string {
	return xmlEntities.Replace(s)
}
