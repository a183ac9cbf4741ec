// Package storage defines the scan capability the query core consumes.
//
// A Table is opened with a ScanRequest whose fields are hints. An adapter
// reports in Applied which hints it honored; the scan operator applies the
// rest itself, so an adapter that ignores every hint still yields correct
// results.
package storage

import (
	"context"
	"io"

	"github.com/cockroachdb/errors"

	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/planner/logical"
)

// ErrTableNotFound is returned by an Engine for an unknown table name
var ErrTableNotFound = errors.New("table not found")

// Engine resolves table names
type Engine interface {
	Table(name string) (Table, error)
}

// Table is a scannable relation
type Table interface {
	// Schema returns the unqualified columns in row order
	Schema() expression.Schema
	// Open starts a scan. Filter and Sort expressions in req are bound to
	// the slots of Schema.
	Open(ctx context.Context, req ScanRequest) (RowIterator, Applied, error)
}

// ScanRequest carries the operations the optimizer pushed to a relation
type ScanRequest struct {
	Filter     expression.Expression
	Sort       []logical.SortItem
	Projection []string
	// Limit is -1 for no limit
	Limit  int
	Offset int
}

// HasLimit reports whether the request carries a limit
func (r ScanRequest) HasLimit() bool { return r.Limit >= 0 }

// Applied reports the hints an adapter honored. An adapter may only honor a
// limit when it also honored the filter and sort of the same request.
type Applied struct {
	Filter     bool
	Sort       bool
	Projection bool
	Limit      bool
}

// RowIterator yields rows in Table.Schema order. Columns dropped by an
// honored projection hold MISSING. Next returns io.EOF after the last row.
type RowIterator interface {
	Next() (expression.Row, error)
	Close() error
}

// SliceIterator iterates rows held in memory
type SliceIterator struct {
	rows []expression.Row
	pos  int
}

// NewSliceIterator returns an iterator over rows
func NewSliceIterator(rows []expression.Row) *SliceIterator {
	return &SliceIterator{rows: rows}
}

func (it *SliceIterator) Next() (expression.Row, error) {
	if it.pos >= len(it.rows) {
		return nil, io.EOF
	}
	row := it.rows[it.pos]
	it.pos++
	return row, nil
}

func (it *SliceIterator) Close() error { return nil }

// MapEngine is an Engine over a fixed set of named tables
type MapEngine map[string]Table

func (e MapEngine) Table(name string) (Table, error) {
	t, ok := e[name]
	if !ok {
		return nil, errors.Wrapf(ErrTableNotFound, "%s", name)
	}
	return t, nil
}
