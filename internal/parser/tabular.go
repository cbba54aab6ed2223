package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"secure-rag/internal/models"
)

// TableSource is a delimited or spreadsheet table with operator supplied
// column roles.
type TableSource struct {
	Path        string
	AccessTier  models.AccessTier
	TextColumns []string
	IDColumn    string
	// Sheet selects the worksheet of spreadsheet files. Empty means the first.
	Sheet string
}

// ChunkTable loads the table and emits one chunk per row with text.
func ChunkTable(src TableSource) ([]models.Chunk, error) {
	header, rows, err := loadTable(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrSourceParse, src.Path, err)
	}
	return ChunkRows(src, header, rows), nil
}

// ChunkRows builds chunks from an already loaded header and rows. Rows
// without any text column value are skipped. A nil row marks a record that
// could not be read; it keeps its index but yields no chunk.
func ChunkRows(src TableSource, header []string, rows [][]string) []models.Chunk {
	for _, col := range src.TextColumns {
		if !slices.Contains(header, col) {
			log.Warn().Str("source", src.Path).Str("column", col).Msg("text column not found in table header")
		}
	}

	chunks := make([]models.Chunk, 0, len(rows))
	for i, row := range rows {
		if row == nil {
			continue
		}
		values := make(map[string]string, len(header))
		for j, col := range header {
			if j < len(row) {
				values[col] = strings.TrimSpace(row[j])
			}
		}

		parts := make([]string, 0, len(src.TextColumns))
		for _, col := range src.TextColumns {
			if v := values[col]; v != "" {
				parts = append(parts, col+": "+v)
			}
		}
		if len(parts) == 0 {
			log.Debug().Str("source", src.Path).Int("row", i).Msg("skipping row without text")
			continue
		}

		fields := make(map[string]string)
		for col, v := range values {
			if v != "" && !slices.Contains(src.TextColumns, col) {
				fields[col] = v
			}
		}

		key := "row:" + strconv.Itoa(i)
		if src.IDColumn != "" {
			if v := values[src.IDColumn]; v != "" {
				key = v
			}
		}

		chunks = append(chunks, models.Chunk{
			ID:         fmt.Sprintf("csv:%s:%s", src.Path, key),
			Text:       strings.Join(parts, "\n"),
			AccessTier: src.AccessTier,
			Quarter:    models.QuarterNone,
			Provenance: models.Provenance{
				Source: src.Path,
				Kind:   models.SourceTabular,
				Row:    i,
				Fields: fields,
			},
		})
	}
	return chunks
}

func loadTable(src TableSource) ([]string, [][]string, error) {
	switch strings.ToLower(filepath.Ext(src.Path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return loadSpreadsheet(src.Path, src.Sheet)
	default:
		return loadCSV(src.Path)
	}
}

func loadCSV(filePath string) ([]string, [][]string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}
	header = normalizeHeader(header)

	var rows [][]string
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			log.Warn().Err(err).Str("source", filePath).Int("row", len(rows)).Msg("skipping malformed row")
			rows = append(rows, nil)
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, record)
	}
	return header, rows, nil
}

func loadSpreadsheet(filePath, sheet string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	all, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("sheet %q: %w", sheet, err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("sheet %q is empty", sheet)
	}
	return normalizeHeader(all[0]), all[1:], nil
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}
