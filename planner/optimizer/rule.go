// Package optimizer rewrites logical plans with an ordered set of pattern
// rules until the plan stops changing.
package optimizer

import (
	"github.com/vegasq/sqlcore/planner/logical"
	"github.com/vegasq/sqlcore/sqlerr"
)

// Match is the result of a successful pattern match: the matched node and
// the child the pattern captured, if any
type Match struct {
	Node     logical.LogicalPlan
	Captured logical.LogicalPlan
}

// Rule is a single rewrite. Pattern must be free of side effects; Apply must
// only be called with a Match produced by the same rule's Pattern.
type Rule interface {
	Name() string
	Pattern(node logical.LogicalPlan) (*Match, bool)
	Apply(m *Match) (logical.LogicalPlan, error)
}

// capture matches node against the rule and fails with a precondition error
// otherwise. Every Apply starts with it.
func capture(r Rule, m *Match) (*Match, error) {
	if m == nil || m.Node == nil {
		return nil, sqlerr.RulePrecondition(r.Name(), nodeString("<nil>"))
	}
	again, ok := r.Pattern(m.Node)
	if !ok {
		return nil, sqlerr.RulePrecondition(r.Name(), m.Node)
	}
	return again, nil
}

type nodeString string

func (s nodeString) String() string { return string(s) }

// DefaultRules returns the rule set in firing order
func DefaultRules() []Rule {
	return []Rule{
		MergeFilterAndFilter{},
		PushFilterUnderSort{},
		MergeFilterAndRelation{},
		MergeSortAndRelation{},
		MergeLimitAndRelation{},
		PushProjectIntoRelation{},
	}
}
