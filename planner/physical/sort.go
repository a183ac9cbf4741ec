package physical

import (
	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/planner/logical"
	"github.com/vegasq/sqlcore/storage"
	"github.com/vegasq/sqlcore/value"
)

// Sort buffers its whole input on the first pull and yields it in order.
// Equal keys keep their input order.
type Sort struct {
	child  PhysicalPlan
	items  []logical.SortItem
	bound  []logical.SortItem
	loaded bool
	cursor
}

// NewSort binds the sort keys against the child schema
func NewSort(child PhysicalPlan, items []logical.SortItem) (*Sort, error) {
	bound, err := logical.BindSortItems(items, child.Schema())
	if err != nil {
		return nil, err
	}
	return &Sort{child: child, items: items, bound: bound, cursor: newCursor(child.Schema())}, nil
}

func (p *Sort) Children() []PhysicalPlan  { return []PhysicalPlan{p.child} }
func (p *Sort) Schema() expression.Schema { return p.child.Schema() }

func (p *Sort) load() error {
	p.loaded = true
	for {
		row, err := pullRow(p.child)
		if err != nil {
			return err
		}
		if row == nil {
			break
		}
		p.rows = append(p.rows, row)
	}
	return storage.SortRows(p.rows, p.bound)
}

func (p *Sort) HasNext() (bool, error) {
	if !p.loaded {
		if err := p.load(); err != nil {
			return false, err
		}
	}
	return p.more(), nil
}

func (p *Sort) Next() (value.ExprValue, error) {
	if _, err := p.HasNext(); err != nil {
		return nil, err
	}
	return p.next("Sort")
}

func (p *Sort) Describe() Description {
	return Description{Name: "Sort", Params: []Param{{Key: "sortList", Value: "[" + logical.FormatSortItems(p.items) + "]"}}}
}
