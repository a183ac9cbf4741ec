package optimizer

import (
	"slices"

	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/planner/logical"
)

// scanOf returns a modifiable TableScan for a relation or an existing scan
func scanOf(p logical.LogicalPlan) (*logical.TableScan, bool) {
	switch x := p.(type) {
	case *logical.Relation:
		return logical.ScanOf(x), true
	case *logical.TableScan:
		return x.Clone(), true
	}
	return nil, false
}

// MergeFilterAndFilter folds Filter(Filter(x)) into a single filter over x
type MergeFilterAndFilter struct{}

func (MergeFilterAndFilter) Name() string { return "MergeFilterAndFilter" }

func (MergeFilterAndFilter) Pattern(node logical.LogicalPlan) (*Match, bool) {
	f, ok := node.(*logical.Filter)
	if !ok {
		return nil, false
	}
	inner, ok := f.Child.(*logical.Filter)
	if !ok {
		return nil, false
	}
	return &Match{Node: f, Captured: inner}, true
}

func (r MergeFilterAndFilter) Apply(m *Match) (logical.LogicalPlan, error) {
	m, err := capture(r, m)
	if err != nil {
		return nil, err
	}
	outer, inner := m.Node.(*logical.Filter), m.Captured.(*logical.Filter)
	return logical.NewFilter(inner.Child, expression.AndOf(inner.Condition, outer.Condition)), nil
}

// PushFilterUnderSort swaps Filter(Sort(x)) into Sort(Filter(x)) so the
// filter can reach the relation
type PushFilterUnderSort struct{}

func (PushFilterUnderSort) Name() string { return "PushFilterUnderSort" }

func (PushFilterUnderSort) Pattern(node logical.LogicalPlan) (*Match, bool) {
	f, ok := node.(*logical.Filter)
	if !ok {
		return nil, false
	}
	s, ok := f.Child.(*logical.Sort)
	if !ok {
		return nil, false
	}
	return &Match{Node: f, Captured: s}, true
}

func (r PushFilterUnderSort) Apply(m *Match) (logical.LogicalPlan, error) {
	m, err := capture(r, m)
	if err != nil {
		return nil, err
	}
	f, s := m.Node.(*logical.Filter), m.Captured.(*logical.Sort)
	return logical.NewSort(logical.NewFilter(s.Child, f.Condition), s.Items...), nil
}

// MergeFilterAndRelation moves a filter into the scan below it. A scan that
// already carries a limit cannot take a filter.
type MergeFilterAndRelation struct{}

func (MergeFilterAndRelation) Name() string { return "MergeFilterAndRelation" }

func (MergeFilterAndRelation) Pattern(node logical.LogicalPlan) (*Match, bool) {
	f, ok := node.(*logical.Filter)
	if !ok {
		return nil, false
	}
	switch x := f.Child.(type) {
	case *logical.Relation:
		return &Match{Node: f, Captured: x}, true
	case *logical.TableScan:
		if x.HasLimit() {
			return nil, false
		}
		return &Match{Node: f, Captured: x}, true
	}
	return nil, false
}

func (r MergeFilterAndRelation) Apply(m *Match) (logical.LogicalPlan, error) {
	m, err := capture(r, m)
	if err != nil {
		return nil, err
	}
	scan, _ := scanOf(m.Captured)
	scan.Filter = expression.AndOf(scan.Filter, m.Node.(*logical.Filter).Condition)
	return scan, nil
}

// MergeSortAndRelation pushes a sort into the scan when every key is a plain
// column with a default sort option
type MergeSortAndRelation struct{}

func (MergeSortAndRelation) Name() string { return "MergeSortAndRelation" }

func (MergeSortAndRelation) Pattern(node logical.LogicalPlan) (*Match, bool) {
	s, ok := node.(*logical.Sort)
	if !ok || !logical.SortByFieldsOnly(s.Items) || !logical.SortByDefaultOptionsOnly(s.Items) {
		return nil, false
	}
	switch x := s.Child.(type) {
	case *logical.Relation:
		return &Match{Node: s, Captured: x}, true
	case *logical.TableScan:
		if len(x.Sort) > 0 || x.HasLimit() {
			return nil, false
		}
		return &Match{Node: s, Captured: x}, true
	}
	return nil, false
}

func (r MergeSortAndRelation) Apply(m *Match) (logical.LogicalPlan, error) {
	m, err := capture(r, m)
	if err != nil {
		return nil, err
	}
	scan, _ := scanOf(m.Captured)
	scan.Sort = append(scan.Sort, m.Node.(*logical.Sort).Items...)
	return scan, nil
}

// MergeLimitAndRelation pushes a limit into a scan that has none
type MergeLimitAndRelation struct{}

func (MergeLimitAndRelation) Name() string { return "MergeLimitAndRelation" }

func (MergeLimitAndRelation) Pattern(node logical.LogicalPlan) (*Match, bool) {
	l, ok := node.(*logical.Limit)
	if !ok {
		return nil, false
	}
	switch x := l.Child.(type) {
	case *logical.Relation:
		return &Match{Node: l, Captured: x}, true
	case *logical.TableScan:
		if x.HasLimit() {
			return nil, false
		}
		return &Match{Node: l, Captured: x}, true
	}
	return nil, false
}

func (r MergeLimitAndRelation) Apply(m *Match) (logical.LogicalPlan, error) {
	m, err := capture(r, m)
	if err != nil {
		return nil, err
	}
	l := m.Node.(*logical.Limit)
	scan, _ := scanOf(m.Captured)
	scan.Limit, scan.Offset = l.Count, l.Offset
	return scan, nil
}

// PushProjectIntoRelation records the columns a projection reads as the scan
// projection. The Project itself stays in place. Columns read by a pushed
// filter or sort are kept so the scan can still apply them locally.
type PushProjectIntoRelation struct{}

func (PushProjectIntoRelation) Name() string { return "PushProjectIntoRelation" }

func (PushProjectIntoRelation) Pattern(node logical.LogicalPlan) (*Match, bool) {
	p, ok := node.(*logical.Project)
	if !ok {
		return nil, false
	}
	scan, ok := scanOf(p.Child)
	if !ok {
		return nil, false
	}
	cols, ok := projectedColumns(p, scan)
	if !ok || len(cols) == 0 || slices.Equal(cols, scan.Projection) {
		return nil, false
	}
	return &Match{Node: p, Captured: p.Child}, true
}

func (r PushProjectIntoRelation) Apply(m *Match) (logical.LogicalPlan, error) {
	m, err := capture(r, m)
	if err != nil {
		return nil, err
	}
	p := m.Node.(*logical.Project)
	scan, _ := scanOf(m.Captured)
	scan.Projection, _ = projectedColumns(p, scan)
	return logical.NewProject(scan, p.Projections...), nil
}

// projectedColumns returns the table columns read by the project and by the
// scan's own filter and sort, in table order
func projectedColumns(p *logical.Project, scan *logical.TableScan) ([]string, bool) {
	exprs := make([]expression.Expression, 0, len(p.Projections)+len(scan.Sort)+1)
	for _, n := range p.Projections {
		exprs = append(exprs, n)
	}
	exprs = append(exprs, scan.Filter)
	for _, it := range scan.Sort {
		exprs = append(exprs, it.Expr)
	}

	schema := scan.Schema()
	used := make([]bool, len(schema))
	for _, name := range expression.References(exprs...) {
		i, ok := schema.IndexOf(name)
		if !ok {
			return nil, false
		}
		used[i] = true
	}
	var cols []string
	for i, u := range used {
		if u {
			cols = append(cols, schema[i].Name)
		}
	}
	return cols, true
}
