package physical

import (
	"strings"

	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/value"
)

// Project evaluates named expressions over every child row
type Project struct {
	child       PhysicalPlan
	projections []*expression.Named
	bound       []expression.Expression
	schema      expression.Schema
	names       []string
}

// NewProject binds the projections against the child schema
func NewProject(child PhysicalPlan, projections []*expression.Named) (*Project, error) {
	p := &Project{child: child, projections: projections}
	for _, n := range projections {
		b, err := expression.Bind(n.Expr, child.Schema())
		if err != nil {
			return nil, err
		}
		p.bound = append(p.bound, b)
		p.schema = append(p.schema, expression.Column{Name: n.Name, Type: n.Type()})
	}
	p.names = p.schema.Names()
	return p, nil
}

func (p *Project) Children() []PhysicalPlan  { return []PhysicalPlan{p.child} }
func (p *Project) Schema() expression.Schema { return p.schema }
func (p *Project) HasNext() (bool, error)    { return p.child.HasNext() }

func (p *Project) Next() (value.ExprValue, error) {
	row, err := pullRow(p.child)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, exhausted("Project")
	}
	out := make([]value.ExprValue, len(p.bound))
	for i, e := range p.bound {
		if out[i], err = e.ValueOf(row); err != nil {
			return nil, err
		}
	}
	return value.NewTuple(p.names, out), nil
}

func (p *Project) Describe() Description {
	names := make([]string, len(p.projections))
	for i, n := range p.projections {
		names[i] = n.String()
	}
	return Description{Name: "Project", Params: []Param{{Key: "fields", Value: "[" + strings.Join(names, ", ") + "]"}}}
}
