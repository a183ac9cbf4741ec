package optimizer

import (
	"github.com/cockroachdb/errors"

	"github.com/vegasq/sqlcore/internal/log"
	"github.com/vegasq/sqlcore/planner/logical"
)

// DefaultMaxIterations bounds the number of passes when none is configured
const DefaultMaxIterations = 100

// Optimizer applies its rules to every node, pass after pass, until a pass
// rewrites nothing or MaxIterations passes have run
type Optimizer struct {
	Rules         []Rule
	MaxIterations int
	// OnRewrite, when set, is called after every rule firing
	OnRewrite func(rule string)
}

// New returns an optimizer with the default rule set
func New(maxIterations int) *Optimizer {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &Optimizer{Rules: DefaultRules(), MaxIterations: maxIterations}
}

// Optimize rewrites plan to a fixpoint
func (o *Optimizer) Optimize(plan logical.LogicalPlan) (logical.LogicalPlan, error) {
	for pass := 1; pass <= o.MaxIterations; pass++ {
		next, fired, err := o.pass(plan)
		if err != nil {
			return nil, errors.Wrapf(err, "optimizer pass %d", pass)
		}
		plan = next
		if fired == 0 {
			log.V(1).Infof("optimizer reached fixpoint after %d passes", pass)
			return plan, nil
		}
		log.V(1).Infof("optimizer pass %d fired %d rules", pass, fired)
	}
	log.Warningf("optimizer stopped after %d passes without reaching a fixpoint", o.MaxIterations)
	return plan, nil
}

// pass rewrites children first, then offers the node to every rule in order.
// A rule that fires hands its result on to the following rules.
func (o *Optimizer) pass(node logical.LogicalPlan) (logical.LogicalPlan, int, error) {
	fired := 0
	children := node.Children()
	if len(children) > 0 {
		rewritten := make([]logical.LogicalPlan, len(children))
		changed := false
		for i, c := range children {
			nc, n, err := o.pass(c)
			if err != nil {
				return nil, 0, err
			}
			rewritten[i] = nc
			fired += n
			changed = changed || n > 0
		}
		if changed {
			node = node.ReplaceChildren(rewritten)
		}
	}

	for _, r := range o.Rules {
		m, ok := r.Pattern(node)
		if !ok {
			continue
		}
		next, err := r.Apply(m)
		if err != nil {
			return nil, 0, err
		}
		log.V(2).Infof("rule %s rewrote %s into %s", r.Name(), node, next)
		if o.OnRewrite != nil {
			o.OnRewrite(r.Name())
		}
		node = next
		fired++
	}
	return node, fired, nil
}
