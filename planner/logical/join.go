package logical

import (
	"fmt"
	"strings"

	"github.com/vegasq/sqlcore/expression"
)

// JoinType selects which unmatched rows a join keeps
type JoinType int

const (
	InnerJoin JoinType = iota
	LeftJoin
	RightJoin
	FullJoin
)

func (t JoinType) String() string {
	switch t {
	case LeftJoin:
		return "LEFT"
	case RightJoin:
		return "RIGHT"
	case FullJoin:
		return "FULL"
	}
	return "INNER"
}

// KeepsUnmatchedLeft reports whether left rows without a match are emitted
func (t JoinType) KeepsUnmatchedLeft() bool { return t == LeftJoin || t == FullJoin }

// KeepsUnmatchedRight reports whether right rows without a match are emitted
func (t JoinType) KeepsUnmatchedRight() bool { return t == RightJoin || t == FullJoin }

// KeyPair equates a left-side expression with a right-side expression
type KeyPair struct {
	Left  expression.Expression
	Right expression.Expression
}

// KeyGroup is a conjunction of key equalities
type KeyGroup []KeyPair

// Join combines Left and Right. Rows match when every pair of at least one
// KeyGroup is equal and the Residual condition, if any, is TRUE for the
// joined row.
type Join struct {
	Left     LogicalPlan
	Right    LogicalPlan
	Type     JoinType
	Keys     []KeyGroup
	Residual expression.Expression
}

// NewJoin joins left and right on a single group of key pairs
func NewJoin(left, right LogicalPlan, t JoinType, keys ...KeyPair) *Join {
	j := &Join{Left: left, Right: right, Type: t}
	if len(keys) > 0 {
		j.Keys = []KeyGroup{keys}
	}
	return j
}

func (p *Join) Children() []LogicalPlan { return []LogicalPlan{p.Left, p.Right} }

func (p *Join) ReplaceChildren(c []LogicalPlan) LogicalPlan {
	j := *p
	j.Left, j.Right = c[0], c[1]
	return &j
}

func (p *Join) Schema() expression.Schema {
	return append(append(expression.Schema{}, p.Left.Schema()...), p.Right.Schema()...)
}

func (p *Join) String() string {
	groups := make([]string, len(p.Keys))
	for i, g := range p.Keys {
		pairs := make([]string, len(g))
		for j, kp := range g {
			pairs[j] = kp.Left.String() + " = " + kp.Right.String()
		}
		groups[i] = strings.Join(pairs, " AND ")
	}
	s := fmt.Sprintf("Join(type=%s, keys=[%s]", p.Type, strings.Join(groups, " OR "))
	if p.Residual != nil {
		s += ", residual=" + p.Residual.String()
	}
	return s + ")"
}

func (*Join) logicalPlan() {}
