package physical

import (
	"sort"
	"strconv"
	"strings"

	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/planner/logical"
	"github.com/vegasq/sqlcore/value"
)

// DefaultRareTopNSize is the number of results when a query gives none
const DefaultRareTopNSize = 10

// RareTopN counts the distinct combinations of the field values within each
// group and keeps the n least (RARE) or most (TOP) frequent ones. It consumes
// its whole input before producing anything. Rows with equal counts keep the
// order in which their combination was first seen.
type RareTopN struct {
	child   PhysicalPlan
	command logical.CommandType
	n       int
	fields  []expression.Expression
	groupBy []expression.Expression
	bFields []expression.Expression
	bGroups []expression.Expression
	schema  expression.Schema
	loaded  bool
	cursor
}

// NewRareTopN binds fields and group keys against the child schema. A
// non-positive n selects DefaultRareTopNSize.
func NewRareTopN(child PhysicalPlan, command logical.CommandType, n int, fields, groupBy []expression.Expression) (*RareTopN, error) {
	if n <= 0 {
		n = DefaultRareTopNSize
	}
	p := &RareTopN{child: child, command: command, n: n, fields: fields, groupBy: groupBy}
	in := child.Schema()
	for _, g := range groupBy {
		b, err := expression.Bind(g, in)
		if err != nil {
			return nil, err
		}
		p.bGroups = append(p.bGroups, b)
		p.schema = append(p.schema, expression.Column{Name: expression.OutputName(g), Type: g.Type()})
	}
	for _, f := range fields {
		b, err := expression.Bind(f, in)
		if err != nil {
			return nil, err
		}
		p.bFields = append(p.bFields, b)
		p.schema = append(p.schema, expression.Column{Name: expression.OutputName(f), Type: f.Type()})
	}
	p.cursor = newCursor(p.schema)
	return p, nil
}

func (p *RareTopN) Children() []PhysicalPlan  { return []PhysicalPlan{p.child} }
func (p *RareTopN) Schema() expression.Schema { return p.schema }

type frequency struct {
	values []value.ExprValue
	count  int
}

type frequencyGroup struct {
	key        []value.ExprValue
	candidates []*frequency
}

func evalAll(exprs []expression.Expression, row expression.Row, buf []byte) ([]value.ExprValue, []byte, error) {
	out := make([]value.ExprValue, len(exprs))
	for i, e := range exprs {
		v, err := e.ValueOf(row)
		if err != nil {
			return nil, nil, err
		}
		out[i] = v
		buf = value.AppendKey(buf, v)
	}
	return out, buf, nil
}

func (p *RareTopN) load() error {
	p.loaded = true
	groupIndex, freqIndex := newHashIndex(), newHashIndex()
	var groups []*frequencyGroup
	var freqs []*frequency
	var buf []byte
	for {
		row, err := pullRow(p.child)
		if err != nil {
			return err
		}
		if row == nil {
			break
		}
		gvals, gkey, err := evalAll(p.bGroups, row, buf[:0])
		if err != nil {
			return err
		}
		var g *frequencyGroup
		if ids := groupIndex.get(gkey); ids != nil {
			g = groups[ids[0]]
		} else {
			g = &frequencyGroup{key: gvals}
			groupIndex.add(gkey, len(groups))
			groups = append(groups, g)
		}
		fvals, key, err := evalAll(p.bFields, row, gkey)
		if err != nil {
			return err
		}
		buf = key
		if ids := freqIndex.get(key); ids != nil {
			freqs[ids[0]].count++
			continue
		}
		f := &frequency{values: fvals, count: 1}
		freqIndex.add(key, len(freqs))
		freqs = append(freqs, f)
		g.candidates = append(g.candidates, f)
	}

	for _, g := range groups {
		cands := g.candidates
		sort.SliceStable(cands, func(a, b int) bool {
			if p.command == logical.Rare {
				return cands[a].count < cands[b].count
			}
			return cands[a].count > cands[b].count
		})
		if len(cands) > p.n {
			cands = cands[:p.n]
		}
		for _, f := range cands {
			out := make(expression.Row, 0, len(g.key)+len(f.values))
			out = append(append(out, g.key...), f.values...)
			p.rows = append(p.rows, out)
		}
	}
	return nil
}

func (p *RareTopN) HasNext() (bool, error) {
	if !p.loaded {
		if err := p.load(); err != nil {
			return false, err
		}
	}
	return p.more(), nil
}

func (p *RareTopN) Next() (value.ExprValue, error) {
	if _, err := p.HasNext(); err != nil {
		return nil, err
	}
	return p.next("RareTopN")
}

func (p *RareTopN) Describe() Description {
	fields := make([]string, len(p.fields))
	for i, f := range p.fields {
		fields[i] = f.String()
	}
	groups := make([]string, len(p.groupBy))
	for i, g := range p.groupBy {
		groups[i] = g.String()
	}
	return Description{Name: "RareTopN", Params: []Param{
		{Key: "command", Value: p.command.String()},
		{Key: "noOfResults", Value: strconv.Itoa(p.n)},
		{Key: "fields", Value: "[" + strings.Join(fields, ", ") + "]"},
		{Key: "groupBy", Value: "[" + strings.Join(groups, ", ") + "]"},
	}}
}
