package physical

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/internal/log"
	"github.com/vegasq/sqlcore/planner/logical"
	"github.com/vegasq/sqlcore/storage"
	"github.com/vegasq/sqlcore/value"
)

// Scan reads a storage table. The table is opened on the first pull; every
// hint the adapter did not honor is applied here: filter, then sort, then
// offset and limit.
type Scan struct {
	ctx    context.Context
	table  storage.Table
	node   *logical.TableScan
	schema expression.Schema
	names  []string
	req    storage.ScanRequest

	opened  bool
	applied storage.Applied
	it      storage.RowIterator
	sorted  []expression.Row
	pending expression.Row
	skip    int
	left    int
	done    bool
}

// NewScan prepares a scan of table described by node
func NewScan(ctx context.Context, table storage.Table, node *logical.TableScan) (*Scan, error) {
	schema := node.Schema()
	filter, err := expression.Bind(node.Filter, schema)
	if err != nil {
		return nil, errors.Wrapf(err, "scan %s", node.Name)
	}
	sortItems, err := logical.BindSortItems(node.Sort, schema)
	if err != nil {
		return nil, errors.Wrapf(err, "scan %s", node.Name)
	}
	return &Scan{
		ctx:    ctx,
		table:  table,
		node:   node,
		schema: schema,
		names:  schema.Names(),
		req: storage.ScanRequest{
			Filter:     filter,
			Sort:       sortItems,
			Projection: node.Projection,
			Limit:      node.Limit,
			Offset:     node.Offset,
		},
	}, nil
}

func (p *Scan) Children() []PhysicalPlan  { return nil }
func (p *Scan) Schema() expression.Schema { return p.schema }

func (p *Scan) open() error {
	p.opened = true
	it, applied, err := p.table.Open(p.ctx, p.req)
	if err != nil {
		return errors.Wrapf(err, "open %s", p.node.Name)
	}
	p.it, p.applied = it, applied
	if p.req.HasLimit() && !applied.Limit {
		p.skip, p.left = p.req.Offset, p.req.Limit
	} else {
		p.left = -1
	}
	log.V(1).Infof("scan %s opened, adapter applied %+v", p.node.Name, applied)

	if len(p.req.Sort) > 0 && !applied.Sort {
		var rows []expression.Row
		for {
			row, err := p.read()
			if err != nil {
				return err
			}
			if row == nil {
				break
			}
			rows = append(rows, row)
		}
		if err := storage.SortRows(rows, p.req.Sort); err != nil {
			return err
		}
		p.sorted = rows
	}
	return nil
}

// read returns the next row from the adapter that passes the local filter
func (p *Scan) read() (expression.Row, error) {
	for {
		if err := p.ctx.Err(); err != nil {
			return nil, err
		}
		row, err := p.it.Next()
		if errors.Is(err, io.EOF) {
			return nil, p.it.Close()
		}
		if err != nil {
			_ = p.it.Close()
			return nil, errors.Wrapf(err, "read %s", p.node.Name)
		}
		if len(row) != len(p.schema) {
			return nil, errors.AssertionFailedf("table %s returned %d columns, schema has %d", p.node.Name, len(row), len(p.schema))
		}
		if p.req.Filter != nil && !p.applied.Filter {
			v, err := p.req.Filter.ValueOf(row)
			if err != nil {
				return nil, err
			}
			if !expression.IsTrue(v) {
				continue
			}
		}
		return row, nil
	}
}

func (p *Scan) fetch() (expression.Row, error) {
	if p.sorted != nil {
		if len(p.sorted) == 0 {
			return nil, nil
		}
		row := p.sorted[0]
		p.sorted = p.sorted[1:]
		return row, nil
	}
	if len(p.req.Sort) > 0 && !p.applied.Sort {
		return nil, nil
	}
	return p.read()
}

func (p *Scan) HasNext() (bool, error) {
	if p.pending != nil {
		return true, nil
	}
	if p.done {
		return false, nil
	}
	if !p.opened {
		if err := p.open(); err != nil {
			return false, err
		}
	}
	for p.left != 0 {
		row, err := p.fetch()
		if err != nil {
			return false, err
		}
		if row == nil {
			break
		}
		if p.skip > 0 {
			p.skip--
			continue
		}
		if p.left > 0 {
			p.left--
		}
		p.pending = row
		return true, nil
	}
	if p.left == 0 {
		// limit reached before the adapter ran out of rows
		_ = p.it.Close()
	}
	p.done = true
	return false, nil
}

func (p *Scan) Next() (value.ExprValue, error) {
	ok, err := p.HasNext()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, exhausted("Scan")
	}
	row := p.pending
	p.pending = nil
	return tuple(p.names, row), nil
}

func (p *Scan) CanRescan() bool { return true }

// Rescan returns a fresh scan. The extra condition is pushed to the adapter
// unless the scan carries a limit, in which case it is applied on top.
func (p *Scan) Rescan(extra expression.Expression) (PhysicalPlan, error) {
	node := p.node.Clone()
	if extra == nil || p.node.HasLimit() {
		fresh, err := NewScan(p.ctx, p.table, node)
		if err != nil || extra == nil {
			return fresh, err
		}
		return NewFilter(fresh, extra)
	}
	node.Filter = expression.AndOf(node.Filter, extra)
	return NewScan(p.ctx, p.table, node)
}

func (p *Scan) Describe() Description {
	params := []Param{{Key: "table", Value: p.node.Name}}
	if p.node.Filter != nil {
		params = append(params, Param{Key: "filter", Value: p.node.Filter.String()})
	}
	if len(p.node.Sort) > 0 {
		params = append(params, Param{Key: "sort", Value: "[" + logical.FormatSortItems(p.node.Sort) + "]"})
	}
	if len(p.node.Projection) > 0 {
		params = append(params, Param{Key: "projection", Value: "[" + strings.Join(p.node.Projection, ", ") + "]"})
	}
	if p.node.HasLimit() {
		params = append(params, Param{Key: "limit", Value: fmt.Sprint(p.node.Limit)}, Param{Key: "offset", Value: fmt.Sprint(p.node.Offset)})
	}
	return Description{Name: "Scan", Params: params}
}
