// Package executor runs logical plans: it optimizes them, lowers them to
// physical operators and drains the result.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/vegasq/sqlcore/config"
	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/internal/log"
	"github.com/vegasq/sqlcore/planner"
	"github.com/vegasq/sqlcore/planner/logical"
	"github.com/vegasq/sqlcore/planner/optimizer"
	"github.com/vegasq/sqlcore/planner/physical"
	"github.com/vegasq/sqlcore/sqlerr"
	"github.com/vegasq/sqlcore/storage"
	"github.com/vegasq/sqlcore/value"
)

// QueryResponse is the materialized result of one execution
type QueryResponse struct {
	QueryID uuid.UUID
	Schema  expression.Schema
	Rows    []value.Tuple
	Elapsed time.Duration
}

// Summary describes the response in one line, e.g. "1,204 rows in 3ms"
func (r *QueryResponse) Summary() string {
	unit := "rows"
	if len(r.Rows) == 1 {
		unit = "row"
	}
	return fmt.Sprintf("%s %s in %s", humanize.Comma(int64(len(r.Rows))), unit, r.Elapsed.Round(time.Microsecond))
}

// Engine executes plans against a storage engine
type Engine struct {
	store storage.Engine
	cfg   *config.Config
}

// New returns an engine reading tables from store. A nil cfg selects the
// defaults.
func New(store storage.Engine, cfg *config.Config) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Engine{store: store, cfg: cfg}
}

// Optimize rewrites plan with the configured rule driver
func (e *Engine) Optimize(plan logical.LogicalPlan) (logical.LogicalPlan, error) {
	o := optimizer.New(e.cfg.Optimizer.MaxIterations)
	o.OnRewrite = func(rule string) {
		RewritesTotal.WithLabelValues(rule).Inc()
	}
	return o.Optimize(plan)
}

func (e *Engine) prepare(ctx context.Context, plan logical.LogicalPlan) (logical.LogicalPlan, physical.PhysicalPlan, error) {
	optimized, err := e.Optimize(plan)
	if err != nil {
		return nil, nil, err
	}
	op, err := planner.New(e.store, e.cfg.PlannerOptions()).Plan(ctx, optimized)
	if err != nil {
		return nil, nil, err
	}
	return optimized, op, nil
}

// Execute runs plan to completion. Every call plans again, so a plan can be
// executed any number of times.
func (e *Engine) Execute(ctx context.Context, plan logical.LogicalPlan) (*QueryResponse, error) {
	start := time.Now()
	resp := &QueryResponse{QueryID: uuid.New()}
	err := e.execute(ctx, plan, resp)
	resp.Elapsed = time.Since(start)

	QueriesTotal.WithLabelValues("execute", status(err)).Inc()
	QueryDuration.Observe(resp.Elapsed.Seconds())
	if err != nil {
		log.Errorf("query %s failed: %v", resp.QueryID, err)
		return nil, errors.Wrapf(err, "query %s", resp.QueryID)
	}
	RowsReturned.Add(float64(len(resp.Rows)))
	log.V(1).Infof("query %s: %s", resp.QueryID, resp.Summary())
	return resp, nil
}

func (e *Engine) execute(ctx context.Context, plan logical.LogicalPlan, resp *QueryResponse) error {
	_, op, err := e.prepare(ctx, plan)
	if err != nil {
		return err
	}
	resp.Schema = op.Schema()
	for {
		ok, err := op.HasNext()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		v, err := op.Next()
		if err != nil {
			return err
		}
		t, isTuple := v.(value.Tuple)
		if !isTuple {
			return sqlerr.Contract("plan produced %s instead of a tuple", v.Type())
		}
		resp.Rows = append(resp.Rows, t)
	}
}

// Explain plans without reading any row
func (e *Engine) Explain(ctx context.Context, plan logical.LogicalPlan) (*ExplainResponse, error) {
	optimized, op, err := e.prepare(ctx, plan)
	QueriesTotal.WithLabelValues("explain", status(err)).Inc()
	if err != nil {
		return nil, err
	}
	return &ExplainResponse{Logical: logical.Format(optimized), Physical: describe(op)}, nil
}

func status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case sqlerr.IsInternal(err):
		return "internal_error"
	case sqlerr.IsClientError(err):
		return "client_error"
	}
	return "error"
}
