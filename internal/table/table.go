// Package table reads loosely structured CSV/TSV exports into a padded grid.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// Options controls how raw tabular input is read.
type Options struct {
	// MaxRows limits data rows kept; 0 means unlimited.
	MaxRows int
	// Delimiter for CSV. If 0, it is chosen from the file extension.
	Delimiter rune
}

// DefaultOptions returns reasonable defaults for roster-sized files.
func DefaultOptions() Options {
	return Options{MaxRows: 100000}
}

// Table is a header row plus data rows, every row padded to the widest row seen.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
	// Truncated reports rows skipped because of MaxRows.
	Truncated int
}

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.Header) }

// Cell returns the trimmed value at (row, col), or "" when out of range.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[row][col])
}

// WithHeaderAsData returns a copy of t whose header row is treated as the first
// data row. Headers become positional labels ("col1", "col2", ...).
func (t *Table) WithHeaderAsData() *Table {
	out := &Table{Name: t.Name, Truncated: t.Truncated}
	out.Header = make([]string, len(t.Header))
	for i := range out.Header {
		out.Header[i] = fmt.Sprintf("col%d", i+1)
	}
	first := make([]string, len(t.Header))
	copy(first, t.Header)
	out.Rows = append([][]string{first}, t.Rows...)
	return out
}

// ReadFile opens path and reads it with Read. The table is named after the file.
func ReadFile(path string, opt Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	t, err := Read(f, opt)
	if err != nil {
		return nil, err
	}
	t.Name = filepath.Base(path)
	return t, nil
}

// Read parses delimited text. An empty input yields an empty table, not an error.
func Read(r io.Reader, opt Options) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}

	t := &Table{}
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return t, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	t.Header = make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		t.Header[i] = strings.TrimSpace(h)
	}

	maxRows := opt.MaxRows
	if maxRows <= 0 {
		maxRows = math.MaxInt
	}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		if len(t.Rows) >= maxRows {
			t.Truncated++
			continue
		}
		row := make([]string, len(rec))
		copy(row, rec)
		t.Rows = append(t.Rows, row)
	}
	t.pad()
	return t, nil
}

// pad widens the header and every row to the widest record.
func (t *Table) pad() {
	width := len(t.Header)
	for _, r := range t.Rows {
		if len(r) > width {
			width = len(r)
		}
	}
	for len(t.Header) < width {
		t.Header = append(t.Header, "")
	}
	for i, r := range t.Rows {
		if len(r) < width {
			tmp := make([]string, width)
			copy(tmp, r)
			t.Rows[i] = tmp
		}
	}
}

func sniffDelimiter(path string) rune {
	name := strings.ToLower(path)
	if strings.HasSuffix(name, ".tsv") {
		return '\t'
	}
	return ','
}
