package logical

import (
	"strings"

	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/value"
)

// SortOrder is the direction of a sort key
type SortOrder int

const (
	Asc SortOrder = iota
	Desc
)

// NullOrder places absent values before or after present ones
type NullOrder int

const (
	NullsFirst NullOrder = iota
	NullsLast
)

// SortOption pairs a direction with a null placement
type SortOption struct {
	Order SortOrder
	Nulls NullOrder
}

// Default options: ascending puts nulls first, descending puts them last.
var (
	DefaultAsc  = SortOption{Order: Asc, Nulls: NullsFirst}
	DefaultDesc = SortOption{Order: Desc, Nulls: NullsLast}
)

// IsDefault reports whether o is one of the two default options
func (o SortOption) IsDefault() bool {
	return o == DefaultAsc || o == DefaultDesc
}

func (o SortOption) String() string {
	dir, nulls := "ASC", "NULLS_FIRST"
	if o.Order == Desc {
		dir = "DESC"
	}
	if o.Nulls == NullsLast {
		nulls = "NULLS_LAST"
	}
	return dir + " " + nulls
}

// SortItem is one sort key
type SortItem struct {
	Option SortOption
	Expr   expression.Expression
}

// AscBy sorts ascending by e with nulls first
func AscBy(e expression.Expression) SortItem { return SortItem{Option: DefaultAsc, Expr: e} }

// DescBy sorts descending by e with nulls last
func DescBy(e expression.Expression) SortItem { return SortItem{Option: DefaultDesc, Expr: e} }

// FormatSortItems renders sort keys as "expr ASC NULLS_FIRST, ..."
func FormatSortItems(items []SortItem) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.Expr.String() + " " + it.Option.String()
	}
	return strings.Join(parts, ", ")
}

// SortByFieldsOnly reports whether every sort key is a plain column reference
func SortByFieldsOnly(items []SortItem) bool {
	for _, it := range items {
		if _, ok := it.Expr.(*expression.Reference); !ok {
			return false
		}
	}
	return true
}

// SortByDefaultOptionsOnly reports whether every sort key uses a default option
func SortByDefaultOptionsOnly(items []SortItem) bool {
	for _, it := range items {
		if !it.Option.IsDefault() {
			return false
		}
	}
	return true
}

// Compare orders a and b under the option. Nulls are placed by the null
// order whatever the direction.
func (o SortOption) Compare(a, b value.ExprValue) (int, error) {
	if value.IsAbsent(a) || value.IsAbsent(b) {
		return value.CompareWithAbsent(a, b, o.Nulls == NullsFirst)
	}
	c, err := value.Compare(a, b)
	if err != nil {
		return 0, err
	}
	if o.Order == Desc {
		c = -c
	}
	return c, nil
}

// CompareRows orders two rows by bound sort items, key by key
func CompareRows(items []SortItem, a, b expression.Environment) (int, error) {
	for _, it := range items {
		va, err := it.Expr.ValueOf(a)
		if err != nil {
			return 0, err
		}
		vb, err := it.Expr.ValueOf(b)
		if err != nil {
			return 0, err
		}
		c, err := it.Option.Compare(va, vb)
		if err != nil || c != 0 {
			return c, err
		}
	}
	return 0, nil
}

// BindSortItems binds every sort key against schema
func BindSortItems(items []SortItem, schema expression.Schema) ([]SortItem, error) {
	out := make([]SortItem, len(items))
	for i, it := range items {
		e, err := expression.Bind(it.Expr, schema)
		if err != nil {
			return nil, err
		}
		out[i] = SortItem{Option: it.Option, Expr: e}
	}
	return out, nil
}
