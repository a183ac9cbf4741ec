package logical

import (
	"fmt"
	"strings"

	"github.com/vegasq/sqlcore/expression"
)

// TableScan is a relation scan carrying operations pushed down by the
// optimizer. The storage adapter treats every field as a hint; whatever it
// does not honor is applied by the scan operator.
type TableScan struct {
	Name        string
	Alias       string
	TableSchema expression.Schema
	Filter      expression.Expression
	Sort        []SortItem
	Projection  []string
	// Limit is -1 when no limit was pushed down
	Limit  int
	Offset int
}

// ScanOf turns a relation into an empty table scan
func ScanOf(r *Relation) *TableScan {
	return &TableScan{Name: r.Name, Alias: r.Alias, TableSchema: r.TableSchema, Limit: -1}
}

// HasLimit reports whether a limit was pushed into the scan
func (p *TableScan) HasLimit() bool { return p.Limit >= 0 }

// Clone returns a copy safe to modify
func (p *TableScan) Clone() *TableScan {
	c := *p
	c.Sort = append([]SortItem(nil), p.Sort...)
	c.Projection = append([]string(nil), p.Projection...)
	return &c
}

func (p *TableScan) Children() []LogicalPlan                   { return nil }
func (p *TableScan) ReplaceChildren([]LogicalPlan) LogicalPlan { return p.Clone() }
func (p *TableScan) Schema() expression.Schema                 { return p.TableSchema.Qualify(qualifier(p.Name, p.Alias)) }

func (p *TableScan) String() string {
	parts := []string{relationName(p.Name, p.Alias)}
	if p.Filter != nil {
		parts = append(parts, "filter="+p.Filter.String())
	}
	if len(p.Sort) > 0 {
		parts = append(parts, "sort=["+FormatSortItems(p.Sort)+"]")
	}
	if len(p.Projection) > 0 {
		parts = append(parts, "projection=["+strings.Join(p.Projection, ", ")+"]")
	}
	if p.HasLimit() {
		parts = append(parts, fmt.Sprintf("limit=%d, offset=%d", p.Limit, p.Offset))
	}
	return "TableScan(" + strings.Join(parts, ", ") + ")"
}

func (*TableScan) logicalPlan() {}
