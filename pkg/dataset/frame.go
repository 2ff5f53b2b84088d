package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ColumnKind classifies a column as numeric or categorical.
type ColumnKind string

const (
	// KindNumeric marks columns where every non-missing cell parses as a
	// number or bool literal.
	KindNumeric ColumnKind = "numeric"

	// KindCategorical marks all other columns.
	KindCategorical ColumnKind = "categorical"
)

// Column is one typed column of a Frame.
type Column struct {
	// Name is the header name.
	Name string

	// Kind is the inferred column kind.
	Kind ColumnKind

	// Values holds the raw string cells, missing cells included as "".
	Values []string

	// Floats holds parsed numeric values; only meaningful for numeric
	// columns, and only at positions where Missing is false.
	Floats []float64

	// Missing marks cells that were empty or an NA token.
	Missing []bool
}

// NMissing returns the number of missing cells in the column.
func (c *Column) NMissing() int {
	n := 0
	for _, m := range c.Missing {
		if m {
			n++
		}
	}
	return n
}

// NUnique returns the number of distinct non-missing values in the column.
func (c *Column) NUnique() int {
	seen := make(map[string]struct{})
	for i, v := range c.Values {
		if c.Missing[i] {
			continue
		}
		seen[v] = struct{}{}
	}
	return len(seen)
}

// Frame is a column-oriented snapshot of one tabular dataset.
type Frame struct {
	columns []*Column
	byName  map[string]*Column
	rows    int
}

// Rows returns the number of data rows.
func (f *Frame) Rows() int { return f.rows }

// Cols returns the number of columns.
func (f *Frame) Cols() int { return len(f.columns) }

// ColumnNames returns the column names in file order.
func (f *Frame) ColumnNames() []string {
	names := make([]string, len(f.columns))
	for i, c := range f.columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column, or false if it does not exist.
func (f *Frame) Column(name string) (*Column, bool) {
	c, ok := f.byName[name]
	return c, ok
}

// HasColumn reports whether the frame contains the named column.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.byName[name]
	return ok
}

// naTokens are cell values treated as missing, matching common CSV
// conventions.
var naTokens = map[string]struct{}{
	"":     {},
	"na":   {},
	"n/a":  {},
	"nan":  {},
	"null": {},
	"none": {},
}

func isMissingCell(v string) bool {
	_, ok := naTokens[strings.ToLower(strings.TrimSpace(v))]
	return ok
}

// parseNumeric parses a cell as a float, accepting bool literals as 0/1.
func parseNumeric(v string) (float64, bool) {
	s := strings.TrimSpace(v)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, true
	}
	switch strings.ToLower(s) {
	case "true":
		return 1, true
	case "false":
		return 0, true
	}
	return 0, false
}

// LoadCSV reads a CSV file with a header row into a Frame.
// An unreadable file, a malformed record, or a file with no data rows is an
// error.
func LoadCSV(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset %s is empty", path)
	}

	header := records[0]
	body := records[1:]
	if len(body) == 0 {
		return nil, fmt.Errorf("dataset %s has a header but no data rows", path)
	}

	return NewFrame(header, body)
}

// NewFrame builds a Frame from a header and data rows, inferring column
// kinds. Exposed for tests and synthetic data.
func NewFrame(header []string, rows [][]string) (*Frame, error) {
	if len(header) == 0 {
		return nil, fmt.Errorf("dataset has no columns")
	}

	f := &Frame{
		columns: make([]*Column, len(header)),
		byName:  make(map[string]*Column, len(header)),
		rows:    len(rows),
	}

	for j, name := range header {
		col := &Column{
			Name:    name,
			Values:  make([]string, len(rows)),
			Floats:  make([]float64, len(rows)),
			Missing: make([]bool, len(rows)),
		}

		numeric := true
		nonMissing := 0
		for i, row := range rows {
			if j >= len(row) {
				return nil, fmt.Errorf("row %d has %d fields, header has %d", i+1, len(row), len(header))
			}
			cell := row[j]
			if isMissingCell(cell) {
				col.Missing[i] = true
				continue
			}
			nonMissing++
			col.Values[i] = strings.TrimSpace(cell)
			if numeric {
				val, ok := parseNumeric(cell)
				if ok {
					col.Floats[i] = val
				} else {
					numeric = false
				}
			}
		}

		// An all-missing column carries no numeric evidence.
		if numeric && nonMissing > 0 {
			col.Kind = KindNumeric
		} else {
			col.Kind = KindCategorical
		}

		f.columns[j] = col
		f.byName[name] = col
	}

	return f, nil
}
