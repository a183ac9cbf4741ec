// Package physical implements pull-based operators. A parent drives its
// children with HasNext and Next from a single goroutine; operators that
// buffer do so on the first pull, never at construction.
package physical

import (
	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/sqlerr"
	"github.com/vegasq/sqlcore/value"
)

// PhysicalPlan is an executable operator
type PhysicalPlan interface {
	// Children returns the input operators
	Children() []PhysicalPlan
	// Schema returns the columns of every produced row
	Schema() expression.Schema
	// HasNext reports whether Next will produce a row. Repeated calls
	// without Next return the same answer.
	HasNext() (bool, error)
	// Next returns the next row as a tuple. Calling it when HasNext is
	// false is a contract violation.
	Next() (value.ExprValue, error)
	// Describe names the operator and its parameters for explain output
	Describe() Description
}

// Rescannable operators can restart from the beginning, optionally with an
// extra unbound condition pushed to their source
type Rescannable interface {
	PhysicalPlan
	// CanRescan reports whether Rescan will succeed. Wrapping operators
	// are only as rescannable as their child.
	CanRescan() bool
	Rescan(extra expression.Expression) (PhysicalPlan, error)
}

func rescannable(p PhysicalPlan) (Rescannable, bool) {
	r, ok := p.(Rescannable)
	return r, ok && r.CanRescan()
}

// Param is one explain parameter
type Param struct {
	Key   string
	Value string
}

// Description is the explain view of one operator
type Description struct {
	Name   string
	Params []Param
}

// Cost is the estimate an operator reports to a cost-based planner
type Cost struct {
	Rows   float64
	CPU    float64
	Memory float64
}

// Drain pulls every remaining row of p
func Drain(p PhysicalPlan) ([]value.ExprValue, error) {
	var out []value.ExprValue
	for {
		ok, err := p.HasNext()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		v, err := p.Next()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}

// pullRow returns the next row of p as slot values, or nil at the end
func pullRow(p PhysicalPlan) (expression.Row, error) {
	ok, err := p.HasNext()
	if err != nil || !ok {
		return nil, err
	}
	v, err := p.Next()
	if err != nil {
		return nil, err
	}
	t, ok := v.(value.Tuple)
	if !ok {
		return nil, sqlerr.Contract("operator %s produced %s instead of a tuple", p.Describe().Name, v.Type())
	}
	return expression.Row(t.Values()), nil
}

func exhausted(name string) error {
	return sqlerr.Contract("%s: next called after the last row", name)
}

// cursor hands out already computed rows. Operators embed it and fill it
// through their load functions.
type cursor struct {
	names []string
	rows  []expression.Row
	pos   int
}

func newCursor(schema expression.Schema) cursor {
	return cursor{names: schema.Names()}
}

func (c *cursor) more() bool { return c.pos < len(c.rows) }

func (c *cursor) next(name string) (value.ExprValue, error) {
	if !c.more() {
		return nil, exhausted(name)
	}
	row := c.rows[c.pos]
	c.rows[c.pos] = nil
	c.pos++
	return value.NewTuple(c.names, row), nil
}

func tuple(names []string, row expression.Row) value.ExprValue {
	return value.NewTuple(names, row)
}

func errNotRescannable(p PhysicalPlan) error {
	return sqlerr.Contract("operator %s cannot be rescanned", p.Describe().Name)
}
