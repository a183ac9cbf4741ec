package logical

import (
	"fmt"
	"strings"

	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/value"
)

// Relation scans a table by name. Columns are qualified by the alias, or by
// the table name when no alias is given.
type Relation struct {
	Name        string
	Alias       string
	TableSchema expression.Schema
}

// NewRelation returns a scan of name producing schema
func NewRelation(name string, schema expression.Schema) *Relation {
	return &Relation{Name: name, TableSchema: schema}
}

func (p *Relation) Children() []LogicalPlan                   { return nil }
func (p *Relation) ReplaceChildren([]LogicalPlan) LogicalPlan { c := *p; return &c }
func (p *Relation) Schema() expression.Schema                 { return p.TableSchema.Qualify(qualifier(p.Name, p.Alias)) }
func (p *Relation) String() string                            { return "Relation(" + relationName(p.Name, p.Alias) + ")" }
func (*Relation) logicalPlan()                                {}

func qualifier(name, alias string) string {
	if alias != "" {
		return alias
	}
	return name
}

func relationName(name, alias string) string {
	if alias == "" || alias == name {
		return name
	}
	return name + " AS " + alias
}

// RelationSubquery scans a nested plan under an alias that acts as its
// table name
type RelationSubquery struct {
	Alias string
	Child LogicalPlan
}

// NewRelationSubquery wraps child under alias
func NewRelationSubquery(alias string, child LogicalPlan) *RelationSubquery {
	return &RelationSubquery{Alias: alias, Child: child}
}

func (p *RelationSubquery) Children() []LogicalPlan { return []LogicalPlan{p.Child} }
func (p *RelationSubquery) ReplaceChildren(c []LogicalPlan) LogicalPlan {
	return &RelationSubquery{Alias: p.Alias, Child: c[0]}
}
func (p *RelationSubquery) Schema() expression.Schema { return p.Child.Schema().Qualify(p.Alias) }
func (p *RelationSubquery) String() string            { return "RelationSubquery(" + p.Alias + ")" }
func (*RelationSubquery) logicalPlan()                {}

// Filter keeps the rows for which Condition is TRUE
type Filter struct {
	Child     LogicalPlan
	Condition expression.Expression
}

// NewFilter filters child by condition
func NewFilter(child LogicalPlan, condition expression.Expression) *Filter {
	return &Filter{Child: child, Condition: condition}
}

func (p *Filter) Children() []LogicalPlan { return []LogicalPlan{p.Child} }
func (p *Filter) ReplaceChildren(c []LogicalPlan) LogicalPlan {
	return &Filter{Child: c[0], Condition: p.Condition}
}
func (p *Filter) Schema() expression.Schema { return p.Child.Schema() }
func (p *Filter) String() string            { return "Filter(" + p.Condition.String() + ")" }
func (*Filter) logicalPlan()                {}

// Project evaluates named expressions over each row
type Project struct {
	Child       LogicalPlan
	Projections []*expression.Named
}

// NewProject projects child onto the named expressions
func NewProject(child LogicalPlan, projections ...*expression.Named) *Project {
	return &Project{Child: child, Projections: projections}
}

func (p *Project) Children() []LogicalPlan { return []LogicalPlan{p.Child} }
func (p *Project) ReplaceChildren(c []LogicalPlan) LogicalPlan {
	return &Project{Child: c[0], Projections: p.Projections}
}
func (p *Project) Schema() expression.Schema { return schemaOf(p.exprs()) }
func (p *Project) String() string            { return "Project(" + joinExprs(p.exprs()) + ")" }
func (*Project) logicalPlan()                {}

func (p *Project) exprs() []expression.Expression {
	out := make([]expression.Expression, len(p.Projections))
	for i, n := range p.Projections {
		out[i] = n
	}
	return out
}

// Aggregation groups rows by GroupBy and folds each group with Aggregators.
// Output columns are the group keys followed by the aggregates.
type Aggregation struct {
	Child       LogicalPlan
	Aggregators []expression.NamedAggregator
	GroupBy     []*expression.Named
}

// NewAggregation aggregates child
func NewAggregation(child LogicalPlan, aggs []expression.NamedAggregator, groupBy []*expression.Named) *Aggregation {
	return &Aggregation{Child: child, Aggregators: aggs, GroupBy: groupBy}
}

func (p *Aggregation) Children() []LogicalPlan { return []LogicalPlan{p.Child} }
func (p *Aggregation) ReplaceChildren(c []LogicalPlan) LogicalPlan {
	return &Aggregation{Child: c[0], Aggregators: p.Aggregators, GroupBy: p.GroupBy}
}

func (p *Aggregation) Schema() expression.Schema {
	schema := make(expression.Schema, 0, len(p.GroupBy)+len(p.Aggregators))
	for _, g := range p.GroupBy {
		schema = append(schema, expression.Column{Name: g.Name, Type: g.Type()})
	}
	for _, a := range p.Aggregators {
		schema = append(schema, expression.Column{Name: a.Name, Type: a.Agg.ReturnType})
	}
	return schema
}

func (p *Aggregation) String() string {
	aggs := make([]string, len(p.Aggregators))
	for i, a := range p.Aggregators {
		aggs[i] = a.Agg.String() + " AS " + a.Name
	}
	groups := make([]expression.Expression, len(p.GroupBy))
	for i, g := range p.GroupBy {
		groups[i] = g
	}
	return fmt.Sprintf("Aggregation(aggregators=[%s], groupBy=[%s])", strings.Join(aggs, ", "), joinExprs(groups))
}

func (*Aggregation) logicalPlan() {}

// Sort orders rows by a list of sort keys
type Sort struct {
	Child LogicalPlan
	Items []SortItem
}

// NewSort sorts child
func NewSort(child LogicalPlan, items ...SortItem) *Sort {
	return &Sort{Child: child, Items: items}
}

func (p *Sort) Children() []LogicalPlan { return []LogicalPlan{p.Child} }
func (p *Sort) ReplaceChildren(c []LogicalPlan) LogicalPlan {
	return &Sort{Child: c[0], Items: p.Items}
}
func (p *Sort) Schema() expression.Schema { return p.Child.Schema() }
func (p *Sort) String() string            { return "Sort(" + FormatSortItems(p.Items) + ")" }
func (*Sort) logicalPlan()                {}

// CommandType selects between the RARE and TOP variants of RareTopN
type CommandType int

const (
	Top CommandType = iota
	Rare
)

func (c CommandType) String() string {
	if c == Rare {
		return "RARE"
	}
	return "TOP"
}

// RareTopN returns the N least (RARE) or most (TOP) frequent combinations of
// Fields within each GroupBy combination
type RareTopN struct {
	Child       LogicalPlan
	Command     CommandType
	NoOfResults int
	Fields      []expression.Expression
	GroupBy     []expression.Expression
}

// NewRareTopN builds a RARE or TOP node. A non-positive n selects the
// configured default when the plan is lowered.
func NewRareTopN(child LogicalPlan, cmd CommandType, n int, fields, groupBy []expression.Expression) *RareTopN {
	return &RareTopN{Child: child, Command: cmd, NoOfResults: n, Fields: fields, GroupBy: groupBy}
}

func (p *RareTopN) Children() []LogicalPlan { return []LogicalPlan{p.Child} }
func (p *RareTopN) ReplaceChildren(c []LogicalPlan) LogicalPlan {
	n := *p
	n.Child = c[0]
	return &n
}
func (p *RareTopN) Schema() expression.Schema {
	return append(schemaOf(p.GroupBy), schemaOf(p.Fields)...)
}
func (p *RareTopN) String() string {
	return fmt.Sprintf("RareTopN(command=%s, noOfResults=%d, fields=[%s], groupBy=[%s])",
		p.Command, p.NoOfResults, joinExprs(p.Fields), joinExprs(p.GroupBy))
}
func (*RareTopN) logicalPlan() {}

// Values produces literal rows. Columns are named $0, $1, ...
type Values struct {
	Rows [][]*expression.Literal
}

// NewValues builds a Values node from native Go rows
func NewValues(rows ...[]interface{}) *Values {
	v := &Values{}
	for _, r := range rows {
		lits := make([]*expression.Literal, len(r))
		for i, x := range r {
			lits[i] = expression.Lit(x)
		}
		v.Rows = append(v.Rows, lits)
	}
	return v
}

func (p *Values) Children() []LogicalPlan                   { return nil }
func (p *Values) ReplaceChildren([]LogicalPlan) LogicalPlan { c := *p; return &c }

func (p *Values) Schema() expression.Schema {
	if len(p.Rows) == 0 {
		return nil
	}
	schema := make(expression.Schema, len(p.Rows[0]))
	for i, lit := range p.Rows[0] {
		schema[i] = expression.Column{Name: fmt.Sprintf("$%d", i), Type: lit.Type()}
		// the first present value decides the column type
		for _, row := range p.Rows {
			if i < len(row) && !value.IsAbsent(row[i].Value) {
				schema[i].Type = row[i].Type()
				break
			}
		}
	}
	return schema
}

func (p *Values) String() string {
	rows := make([]string, len(p.Rows))
	for i, r := range p.Rows {
		exprs := make([]expression.Expression, len(r))
		for j, l := range r {
			exprs[j] = l
		}
		rows[i] = "[" + joinExprs(exprs) + "]"
	}
	return "Values(" + strings.Join(rows, ", ") + ")"
}

func (*Values) logicalPlan() {}

// Limit skips Offset rows and then passes at most Count rows
type Limit struct {
	Child  LogicalPlan
	Count  int
	Offset int
}

// NewLimit limits child
func NewLimit(child LogicalPlan, count, offset int) *Limit {
	return &Limit{Child: child, Count: count, Offset: offset}
}

func (p *Limit) Children() []LogicalPlan { return []LogicalPlan{p.Child} }
func (p *Limit) ReplaceChildren(c []LogicalPlan) LogicalPlan {
	return &Limit{Child: c[0], Count: p.Count, Offset: p.Offset}
}
func (p *Limit) Schema() expression.Schema { return p.Child.Schema() }
func (p *Limit) String() string            { return fmt.Sprintf("Limit(count=%d, offset=%d)", p.Count, p.Offset) }
func (*Limit) logicalPlan()                {}
