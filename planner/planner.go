// Package planner lowers optimized logical plans to physical operators. A
// lowered tree is single use: every execution plans again.
package planner

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/vegasq/sqlcore/planner/logical"
	"github.com/vegasq/sqlcore/planner/physical"
	"github.com/vegasq/sqlcore/storage"
)

// Options tune the operators the planner creates
type Options struct {
	Join physical.JoinOptions
	// RareTopNSize replaces a non-positive RareTopN result count
	RareTopNSize int
}

// DefaultOptions matches the configuration defaults
var DefaultOptions = Options{
	Join: physical.JoinOptions{
		BlockSize:      physical.DefaultBlockSize,
		UseTermsFilter: true,
	},
	RareTopNSize: physical.DefaultRareTopNSize,
}

// Planner resolves relations against a storage engine
type Planner struct {
	engine storage.Engine
	opts   Options
}

// New returns a planner reading tables from engine
func New(engine storage.Engine, opts Options) *Planner {
	return &Planner{engine: engine, opts: opts}
}

// Plan builds the physical operator tree for plan. Operators bind their
// expressions here, so unresolvable references fail before any row is read.
func (p *Planner) Plan(ctx context.Context, plan logical.LogicalPlan) (physical.PhysicalPlan, error) {
	switch plan := plan.(type) {
	case *logical.Relation:
		return p.scan(ctx, logical.ScanOf(plan))
	case *logical.TableScan:
		return p.scan(ctx, plan)
	case *logical.Values:
		return physical.NewValues(plan.Schema(), plan.Rows), nil
	case *logical.Join:
		left, err := p.Plan(ctx, plan.Left)
		if err != nil {
			return nil, err
		}
		right, err := p.Plan(ctx, plan.Right)
		if err != nil {
			return nil, err
		}
		j, err := physical.NewBlockHashJoin(left, right, plan.Type, plan.Keys, plan.Residual, p.opts.Join)
		if err != nil {
			return nil, errors.Wrapf(err, "planning %s join", plan.Type)
		}
		return j, nil
	}

	children := plan.Children()
	if len(children) != 1 {
		return nil, errors.AssertionFailedf("unknown logical plan node %T", plan)
	}
	child, err := p.Plan(ctx, children[0])
	if err != nil {
		return nil, err
	}
	op, err := p.unary(plan, child)
	if err != nil {
		return nil, errors.Wrapf(err, "planning %s", plan)
	}
	return op, nil
}

// unary lowers a single-input node over its already lowered child
func (p *Planner) unary(plan logical.LogicalPlan, child physical.PhysicalPlan) (physical.PhysicalPlan, error) {
	switch plan := plan.(type) {
	case *logical.RelationSubquery:
		return physical.NewRename(child, plan.Alias), nil
	case *logical.Filter:
		return physical.NewFilter(child, plan.Condition)
	case *logical.Project:
		return physical.NewProject(child, plan.Projections)
	case *logical.Aggregation:
		return physical.NewAggregation(child, plan.Aggregators, plan.GroupBy)
	case *logical.Sort:
		return physical.NewSort(child, plan.Items)
	case *logical.RareTopN:
		n := plan.NoOfResults
		if n <= 0 {
			n = p.opts.RareTopNSize
		}
		return physical.NewRareTopN(child, plan.Command, n, plan.Fields, plan.GroupBy)
	case *logical.Limit:
		return physical.NewLimit(child, plan.Count, plan.Offset), nil
	}
	return nil, errors.AssertionFailedf("unknown logical plan node %T", plan)
}

func (p *Planner) scan(ctx context.Context, node *logical.TableScan) (physical.PhysicalPlan, error) {
	table, err := p.engine.Table(node.Name)
	if err != nil {
		return nil, err
	}
	if got, want := len(table.Schema()), len(node.TableSchema); got != want {
		return nil, errors.Newf("table %s has %d columns, the plan expects %d", node.Name, got, want)
	}
	return physical.NewScan(ctx, table, node)
}
