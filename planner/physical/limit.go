package physical

import (
	"strconv"

	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/value"
)

// Limit skips offset rows, then passes at most count rows
type Limit struct {
	child  PhysicalPlan
	count  int
	offset int
	skip   int
	left   int
}

// NewLimit limits child
func NewLimit(child PhysicalPlan, count, offset int) *Limit {
	return &Limit{child: child, count: count, offset: offset, skip: offset, left: count}
}

func (p *Limit) Children() []PhysicalPlan  { return []PhysicalPlan{p.child} }
func (p *Limit) Schema() expression.Schema { return p.child.Schema() }

func (p *Limit) HasNext() (bool, error) {
	if p.left <= 0 {
		return false, nil
	}
	for p.skip > 0 {
		ok, err := p.child.HasNext()
		if err != nil || !ok {
			return false, err
		}
		if _, err := p.child.Next(); err != nil {
			return false, err
		}
		p.skip--
	}
	return p.child.HasNext()
}

func (p *Limit) Next() (value.ExprValue, error) {
	ok, err := p.HasNext()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, exhausted("Limit")
	}
	p.left--
	return p.child.Next()
}

func (p *Limit) Describe() Description {
	return Description{Name: "Limit", Params: []Param{
		{Key: "count", Value: strconv.Itoa(p.count)},
		{Key: "offset", Value: strconv.Itoa(p.offset)},
	}}
}
