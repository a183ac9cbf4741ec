// Package memory is an in-memory storage adapter. It honors every scan hint
// unless told otherwise, which makes it the reference backend for tests.
package memory

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/storage"
	"github.com/vegasq/sqlcore/value"
)

// Hints selects which scan hints a table honors
type Hints struct {
	Filter     bool
	Sort       bool
	Projection bool
	Limit      bool
}

// AllHints honors every hint
var AllHints = Hints{Filter: true, Sort: true, Projection: true, Limit: true}

// Table holds rows in schema order
type Table struct {
	schema expression.Schema
	rows   []expression.Row
	honors Hints
	// Opens counts Open calls
	Opens int
}

// NewTable returns a table honoring every hint
func NewTable(schema expression.Schema) *Table {
	return &Table{schema: schema, honors: AllHints}
}

// WithHints changes the hints the table honors
func (t *Table) WithHints(h Hints) *Table {
	t.honors = h
	return t
}

// Insert appends a row of native Go values converted to the column types
func (t *Table) Insert(vals ...interface{}) error {
	if len(vals) != len(t.schema) {
		return errors.Newf("insert of %d values into a %d column table", len(vals), len(t.schema))
	}
	row := make(expression.Row, len(vals))
	for i, v := range vals {
		cv, err := value.Convert(v, t.schema[i].Type)
		if err != nil {
			return errors.Wrapf(err, "column %s", t.schema[i].Name)
		}
		row[i] = cv
	}
	t.rows = append(t.rows, row)
	return nil
}

// MustInsert is Insert for fixtures
func (t *Table) MustInsert(vals ...interface{}) *Table {
	if err := t.Insert(vals...); err != nil {
		panic(err)
	}
	return t
}

func (t *Table) Schema() expression.Schema { return t.schema }

func (t *Table) Open(_ context.Context, req storage.ScanRequest) (storage.RowIterator, storage.Applied, error) {
	t.Opens++
	rows := append([]expression.Row(nil), t.rows...)
	var applied storage.Applied
	var err error

	if req.Filter != nil && t.honors.Filter {
		if rows, err = storage.FilterRows(rows, req.Filter); err != nil {
			return nil, applied, err
		}
		applied.Filter = true
	}
	if len(req.Sort) > 0 && t.honors.Sort {
		if err = storage.SortRows(rows, req.Sort); err != nil {
			return nil, applied, err
		}
		applied.Sort = true
	}
	filtered := req.Filter == nil || applied.Filter
	sorted := len(req.Sort) == 0 || applied.Sort
	if req.HasLimit() && t.honors.Limit && filtered && sorted {
		rows = storage.Window(rows, req.Limit, req.Offset)
		applied.Limit = true
	}
	if len(req.Projection) > 0 && t.honors.Projection {
		p := storage.NewProjector(t.schema, req.Projection)
		for i, r := range rows {
			rows[i] = p.Apply(r)
		}
		applied.Projection = true
	}
	return storage.NewSliceIterator(rows), applied, nil
}
