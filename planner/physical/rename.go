package physical

import (
	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/value"
)

// Rename passes the child rows through unchanged and qualifies every output
// column with an alias, so a nested plan can be addressed like a table
type Rename struct {
	child  PhysicalPlan
	alias  string
	schema expression.Schema
}

// NewRename qualifies the child columns with alias
func NewRename(child PhysicalPlan, alias string) *Rename {
	return &Rename{child: child, alias: alias, schema: child.Schema().Qualify(alias)}
}

func (p *Rename) Children() []PhysicalPlan       { return []PhysicalPlan{p.child} }
func (p *Rename) Schema() expression.Schema      { return p.schema }
func (p *Rename) HasNext() (bool, error)         { return p.child.HasNext() }
func (p *Rename) Next() (value.ExprValue, error) { return p.child.Next() }

func (p *Rename) CanRescan() bool {
	_, ok := rescannable(p.child)
	return ok
}

// Rescan restarts the child. The extra condition names aliased columns, so
// it is applied above the rename instead of being pushed into the child.
func (p *Rename) Rescan(extra expression.Expression) (PhysicalPlan, error) {
	r, ok := rescannable(p.child)
	if !ok {
		return nil, errNotRescannable(p.child)
	}
	fresh, err := r.Rescan(nil)
	if err != nil {
		return nil, err
	}
	renamed := NewRename(fresh, p.alias)
	if extra == nil {
		return renamed, nil
	}
	return NewFilter(renamed, extra)
}

func (p *Rename) Describe() Description {
	return Description{Name: "Rename", Params: []Param{{Key: "alias", Value: p.alias}}}
}
