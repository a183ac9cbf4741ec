package physical

import (
	"strings"

	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/value"
)

// Aggregation groups its input by the group-by expressions and folds every
// group with the aggregators. Groups come out in first-seen order. Without
// group-by expressions a single row is produced, even for empty input.
type Aggregation struct {
	child   PhysicalPlan
	aggs    []expression.NamedAggregator
	groupBy []*expression.Named
	bound   []*expression.Aggregator
	keys    []expression.Expression
	schema  expression.Schema
	loaded  bool
	cursor
}

// NewAggregation binds aggregators and group keys against the child schema
func NewAggregation(child PhysicalPlan, aggs []expression.NamedAggregator, groupBy []*expression.Named) (*Aggregation, error) {
	p := &Aggregation{child: child, aggs: aggs, groupBy: groupBy}
	in := child.Schema()
	for _, g := range groupBy {
		k, err := expression.Bind(g.Expr, in)
		if err != nil {
			return nil, err
		}
		p.keys = append(p.keys, k)
		p.schema = append(p.schema, expression.Column{Name: g.Name, Type: g.Type()})
	}
	for _, a := range aggs {
		b, err := a.Agg.Bind(in)
		if err != nil {
			return nil, err
		}
		p.bound = append(p.bound, b)
		p.schema = append(p.schema, expression.Column{Name: a.Name, Type: a.Agg.ReturnType})
	}
	p.cursor = newCursor(p.schema)
	return p, nil
}

func (p *Aggregation) Children() []PhysicalPlan  { return []PhysicalPlan{p.child} }
func (p *Aggregation) Schema() expression.Schema { return p.schema }

type group struct {
	key    []value.ExprValue
	states []expression.AggregationState
}

func (p *Aggregation) newGroup(key []value.ExprValue) *group {
	g := &group{key: key, states: make([]expression.AggregationState, len(p.bound))}
	for i, a := range p.bound {
		g.states[i] = a.NewState()
	}
	return g
}

func (p *Aggregation) load() error {
	p.loaded = true
	index := map[string]*group{}
	var order []*group
	var buf []byte
	for {
		row, err := pullRow(p.child)
		if err != nil {
			return err
		}
		if row == nil {
			break
		}
		key := make([]value.ExprValue, len(p.keys))
		buf = buf[:0]
		for i, k := range p.keys {
			if key[i], err = k.ValueOf(row); err != nil {
				return err
			}
			buf = value.AppendKey(buf, key[i])
		}
		g, ok := index[string(buf)]
		if !ok {
			g = p.newGroup(key)
			index[string(buf)] = g
			order = append(order, g)
		}
		for _, s := range g.states {
			if err := s.Iterate(row); err != nil {
				return err
			}
		}
	}
	if len(order) == 0 && len(p.keys) == 0 {
		order = append(order, p.newGroup(nil))
	}
	for _, g := range order {
		out := append(expression.Row{}, g.key...)
		for _, s := range g.states {
			out = append(out, s.Result())
		}
		p.rows = append(p.rows, out)
	}
	return nil
}

func (p *Aggregation) HasNext() (bool, error) {
	if !p.loaded {
		if err := p.load(); err != nil {
			return false, err
		}
	}
	return p.more(), nil
}

func (p *Aggregation) Next() (value.ExprValue, error) {
	if _, err := p.HasNext(); err != nil {
		return nil, err
	}
	return p.next("Aggregation")
}

func (p *Aggregation) Describe() Description {
	aggs := make([]string, len(p.aggs))
	for i, a := range p.aggs {
		aggs[i] = a.Agg.String() + " AS " + a.Name
	}
	groups := make([]string, len(p.groupBy))
	for i, g := range p.groupBy {
		groups[i] = g.String()
	}
	return Description{Name: "Aggregation", Params: []Param{
		{Key: "aggregators", Value: "[" + strings.Join(aggs, ", ") + "]"},
		{Key: "groupBy", Value: "[" + strings.Join(groups, ", ") + "]"},
	}}
}
