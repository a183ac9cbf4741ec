package physical

import (
	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/value"
)

// Filter passes the child rows whose condition is TRUE, in child order
type Filter struct {
	child     PhysicalPlan
	condition expression.Expression
	bound     expression.Expression
	names     []string
	pending   expression.Row
}

// NewFilter binds condition against the child schema
func NewFilter(child PhysicalPlan, condition expression.Expression) (*Filter, error) {
	bound, err := expression.Bind(condition, child.Schema())
	if err != nil {
		return nil, err
	}
	return &Filter{child: child, condition: condition, bound: bound, names: child.Schema().Names()}, nil
}

func (p *Filter) Children() []PhysicalPlan  { return []PhysicalPlan{p.child} }
func (p *Filter) Schema() expression.Schema { return p.child.Schema() }

func (p *Filter) HasNext() (bool, error) {
	for p.pending == nil {
		row, err := pullRow(p.child)
		if err != nil || row == nil {
			return false, err
		}
		v, err := p.bound.ValueOf(row)
		if err != nil {
			return false, err
		}
		if expression.IsTrue(v) {
			p.pending = row
		}
	}
	return true, nil
}

func (p *Filter) Next() (value.ExprValue, error) {
	ok, err := p.HasNext()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, exhausted("Filter")
	}
	row := p.pending
	p.pending = nil
	return tuple(p.names, row), nil
}

func (p *Filter) CanRescan() bool {
	_, ok := rescannable(p.child)
	return ok
}

// Rescan restarts the child and filters it again
func (p *Filter) Rescan(extra expression.Expression) (PhysicalPlan, error) {
	r, ok := rescannable(p.child)
	if !ok {
		return nil, errNotRescannable(p.child)
	}
	fresh, err := r.Rescan(extra)
	if err != nil {
		return nil, err
	}
	return NewFilter(fresh, p.condition)
}

func (p *Filter) Describe() Description {
	return Description{Name: "Filter", Params: []Param{{Key: "condition", Value: p.condition.String()}}}
}
