package physical

import (
	"strconv"

	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/value"
)

// Values yields a fixed list of literal rows once, in order
type Values struct {
	schema expression.Schema
	rows   [][]*expression.Literal
	names  []string
	pos    int
}

// NewValues returns an operator over rows. Rows shorter than the schema are
// padded with NULL.
func NewValues(schema expression.Schema, rows [][]*expression.Literal) *Values {
	return &Values{schema: schema, rows: rows, names: schema.Names()}
}

func (p *Values) Children() []PhysicalPlan  { return nil }
func (p *Values) Schema() expression.Schema { return p.schema }
func (p *Values) HasNext() (bool, error)    { return p.pos < len(p.rows), nil }

func (p *Values) CanRescan() bool { return true }

// Rescan restarts from the first row
func (p *Values) Rescan(extra expression.Expression) (PhysicalPlan, error) {
	fresh := NewValues(p.schema, p.rows)
	if extra == nil {
		return fresh, nil
	}
	return NewFilter(fresh, extra)
}

func (p *Values) Next() (value.ExprValue, error) {
	if p.pos >= len(p.rows) {
		return nil, exhausted("Values")
	}
	lits := p.rows[p.pos]
	p.pos++
	row := make([]value.ExprValue, len(p.schema))
	for i := range row {
		row[i] = value.Null
		if i < len(lits) {
			row[i] = lits[i].Value
		}
	}
	return value.NewTuple(p.names, row), nil
}

func (p *Values) Describe() Description {
	return Description{Name: "Values", Params: []Param{{Key: "rows", Value: strconv.Itoa(len(p.rows))}}}
}
