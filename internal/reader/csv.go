// Package reader supplies rows.Source implementations backed by delimited
// text files. It owns the physical-format concerns the core must never see:
// character decoding, header sanitization, and record numbering.
package reader

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/igtools/igmigrate/pkg/errors"
	"github.com/igtools/igmigrate/pkg/rows"
)

// CSV reads one comma-separated export file as a rows.Source.
type CSV struct {
	name string
	path string
}

// NewCSV creates a source that reads path and reports itself as name in
// diagnostics.
func NewCSV(name, path string) *CSV {
	return &CSV{name: name, path: path}
}

// Name identifies the source in diagnostics.
func (c *CSV) Name() string {
	return c.name
}

// Rows reads the whole file into memory. The first record is the header;
// data rows are numbered from line 2.
func (c *CSV) Rows() ([]rows.Row, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, errors.WrapIO("open", c.path, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	return Parse(c.path, f)
}

// Parse decodes CSV content from r. The exports come from systems that write
// a UTF-8 byte order mark, so the stream is decoded BOM-tolerantly before
// parsing. Header cells are sanitized (whitespace and stray quotes stripped);
// ragged rows are tolerated, with missing cells reading as blank.
func Parse(file string, r io.Reader) ([]rows.Row, error) {
	cr := csv.NewReader(transform.NewReader(r, unicode.UTF8BOM.NewDecoder()))
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.WrapParse("csv", file, err)
	}
	if len(records) == 0 {
		return nil, errors.NewParseError("csv", file, "missing header row", nil)
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = cleanHeader(h)
	}

	// Records are numbered, not physical lines: the exports never quote
	// embedded newlines, so record n sits on line n+1.
	out := make([]rows.Row, 0, len(records)-1)
	for i, rec := range records[1:] {
		fields := make(map[string]string, len(header))
		for j, h := range header {
			if j < len(rec) {
				fields[h] = rec[j]
			}
		}
		out = append(out, rows.Row{Line: i + 2, Fields: fields})
	}
	return out, nil
}

// cleanHeader strips whitespace and surrounding quotes from a header cell.
func cleanHeader(h string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(h), `"`))
}
