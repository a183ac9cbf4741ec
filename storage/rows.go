package storage

import (
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/planner/logical"
	"github.com/vegasq/sqlcore/value"
)

// FilterRows keeps the rows for which a bound condition is TRUE
func FilterRows(rows []expression.Row, cond expression.Expression) ([]expression.Row, error) {
	if cond == nil {
		return rows, nil
	}
	out := rows[:0:0]
	for _, r := range rows {
		v, err := cond.ValueOf(r)
		if err != nil {
			return nil, err
		}
		if expression.IsTrue(v) {
			out = append(out, r)
		}
	}
	return out, nil
}

// SortRows stably sorts rows in place by bound sort items
func SortRows(rows []expression.Row, items []logical.SortItem) error {
	if len(items) == 0 {
		return nil
	}
	var sortErr error
	sort.SliceStable(rows, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		c, err := logical.CompareRows(items, rows[i], rows[j])
		if err != nil {
			sortErr = err
			return false
		}
		return c < 0
	})
	return errors.Wrap(sortErr, "sort rows")
}

// Window applies offset and limit. A negative limit keeps every row after
// the offset.
func Window(rows []expression.Row, limit, offset int) []expression.Row {
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if limit >= 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

// Projector blanks the columns a projection drops
type Projector struct {
	keep []bool
}

// NewProjector builds a projector for schema. An empty projection keeps
// every column.
func NewProjector(schema expression.Schema, projection []string) *Projector {
	if len(projection) == 0 {
		return nil
	}
	want := make(map[string]bool, len(projection))
	for _, name := range projection {
		want[name] = true
	}
	keep := make([]bool, len(schema))
	for i, c := range schema {
		keep[i] = want[c.Name]
	}
	return &Projector{keep: keep}
}

// Keeps reports whether slot i survives the projection
func (p *Projector) Keeps(i int) bool { return p == nil || p.keep[i] }

// Apply returns a copy of row with dropped columns set to MISSING
func (p *Projector) Apply(row expression.Row) expression.Row {
	if p == nil {
		return row
	}
	out := make(expression.Row, len(row))
	for i, v := range row {
		if p.keep[i] {
			out[i] = v
		} else {
			out[i] = value.Missing
		}
	}
	return out
}
