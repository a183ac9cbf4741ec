package output

import (
	"io"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/value"
)

// Formatter defines the interface for output formatters.
type Formatter interface {
	// Format writes rows, laid out by schema, in the formatter's format
	Format(schema expression.Schema, rows []value.Tuple) error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)
}

// Formats lists the names New accepts
var Formats = []string{"jsonl", "csv", "table"}

// New returns the formatter registered under name
func New(name string, w io.Writer) (Formatter, error) {
	switch strings.ToLower(name) {
	case "jsonl", "json":
		return NewJSONFormatter(w), nil
	case "csv":
		return NewCSVFormatter(w), nil
	case "table":
		return NewTableFormatter(w), nil
	}
	return nil, errors.Newf("unknown output format %q, expected one of %s", name, strings.Join(Formats, ", "))
}

// Header returns the output name of every column
func Header(schema expression.Schema) []string {
	seen := make(map[string]int, len(schema))
	for _, c := range schema {
		seen[c.Name]++
	}
	names := make([]string, len(schema))
	for i, c := range schema {
		if seen[c.Name] > 1 {
			names[i] = c.QualifiedName()
		} else {
			names[i] = c.Name
		}
	}
	return names
}

// cell returns the value of column i, treating short rows as MISSING
func cell(row value.Tuple, i int) value.ExprValue {
	if i >= row.Len() {
		return value.Missing
	}
	return row.At(i)
}
