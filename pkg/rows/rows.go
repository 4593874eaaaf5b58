// Package rows defines the boundary between the reconciliation core and
// whatever physically reads the source exports. The core consumes ordered
// row mappings with their 1-based line numbers and never opens files itself;
// anything that can hand over rows (a CSV file, a fixture slice in a test)
// implements Source.
package rows

// Row is one record from a source export: a key→value mapping plus the
// 1-based line number it came from, kept for diagnostics. The header row is
// line 1, so the first data row is line 2.
type Row struct {
	Line   int
	Fields map[string]string
}

// Get returns the raw value for a column, or "" when the column is absent.
// Trimming and coercion are the extractors' job.
func (r Row) Get(key string) string {
	return r.Fields[key]
}

// Source yields the rows of one source export.
type Source interface {
	// Name identifies the source in diagnostics, e.g. "contracts".
	Name() string

	// Rows returns all rows in file order.
	Rows() ([]Row, error)
}

// Static is an in-memory Source, used by tests and programmatic callers.
type Static struct {
	SourceName string
	Data       []Row
}

// NewStatic builds a Static source from field maps, assigning line numbers
// the way a file reader would (first data row is line 2).
func NewStatic(name string, fields ...map[string]string) *Static {
	data := make([]Row, 0, len(fields))
	for i, f := range fields {
		data = append(data, Row{Line: i + 2, Fields: f})
	}
	return &Static{SourceName: name, Data: data}
}

// Name identifies the source in diagnostics.
func (s *Static) Name() string {
	return s.SourceName
}

// Rows returns all rows in order.
func (s *Static) Rows() ([]Row, error) {
	return s.Data, nil
}
