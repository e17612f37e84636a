// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package table reads compound lists from spreadsheets or delimited text and
// writes the resolved three-column output.
package table

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/cas2smiles/pkg/types"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// FormatError reports an input file that cannot be parsed in the selected
// format. Line is 1-based and zero when unknown.
type FormatError struct {
	Path   string
	Format types.InputFormat
	Line   int
	Err    error
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parsing %s as %s (line %d): %v", e.Path, e.Format, e.Line, e.Err)
	}
	return fmt.Sprintf("parsing %s as %s: %v", e.Path, e.Format, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Load reads (Name, CAS) pairs from path. Rows with an empty name or CAS are
// dropped, CAS values are trimmed, and only the first row for each CAS is
// kept. Table order follows the file.
func Load(path string, format types.InputFormat) (*types.Table, error) {
	switch format {
	case types.FormatSpreadsheet:
		return loadSpreadsheet(path)
	case types.FormatDelimited, "":
		return loadDelimited(path)
	default:
		return nil, fmt.Errorf("unsupported input format %q", format)
	}
}

// DetectDelimiter reads the first line of r and returns ',' if it contains a
// comma, otherwise '\t'.
func DetectDelimiter(r io.Reader) (rune, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, err
	}
	if strings.Contains(line, ",") {
		return ',', nil
	}
	return '\t', nil
}

func loadDelimited(path string) (*types.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	delim, err := DetectDelimiter(bytes.NewReader(data))
	if err != nil {
		return nil, &FormatError{Path: path, Format: types.FormatDelimited, Err: err}
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	t := types.NewTable()
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fe := &FormatError{Path: path, Format: types.FormatDelimited, Err: err}
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				fe.Line = pe.Line
			}
			return nil, fe
		}

		for _, extra := range record[min(len(record), 2):] {
			if strings.TrimSpace(extra) != "" {
				line, _ := r.FieldPos(0)
				return nil, &FormatError{
					Path:   path,
					Format: types.FormatDelimited,
					Line:   line,
					Err:    fmt.Errorf("expected 2 fields, got %d", len(record)),
				}
			}
		}

		addRow(t, field(record, 0), field(record, 1))
	}
	return t, nil
}

func loadSpreadsheet(path string) (*types.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &FormatError{Path: path, Format: types.FormatSpreadsheet, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &FormatError{Path: path, Format: types.FormatSpreadsheet, Err: errors.New("workbook has no sheets")}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &FormatError{Path: path, Format: types.FormatSpreadsheet, Err: fmt.Errorf("reading sheet %q: %w", sheets[0], err)}
	}

	t := types.NewTable()
	for _, row := range rows {
		addRow(t, field(row, 0), field(row, 1))
	}
	return t, nil
}

// addRow applies the shared post-processing: trim CAS, drop incomplete rows,
// keep the first row per CAS.
func addRow(t *types.Table, name, cas string) {
	cas = strings.TrimSpace(cas)
	if strings.TrimSpace(name) == "" || cas == "" {
		return
	}
	t.Add(types.Row{Name: name, CAS: cas})
}

func field(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}
