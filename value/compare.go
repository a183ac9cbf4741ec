package value

import (
	"strings"

	"github.com/vegasq/sqlcore/sqlerr"
	"github.com/vegasq/sqlcore/types"
)

// Compare orders two present values. Values of the same type follow native
// numeric, lexicographic or chronological order. Numeric values of different
// widths and the DATE/DATETIME/TIMESTAMP family compare after widening; any
// other mix of types is an error.
func Compare(a, b ExprValue) (int, error) {
	at, bt := a.Type(), b.Type()
	switch {
	case at.IsNumeric() && bt.IsNumeric():
		return compareNumeric(a, b), nil
	case at == types.String && bt == types.String:
		return strings.Compare(string(a.(String)), string(b.(String))), nil
	case at == types.Boolean && bt == types.Boolean:
		return compareBool(bool(a.(Boolean)), bool(b.(Boolean))), nil
	case at == types.Time && bt == types.Time:
		return a.(Time).t.Compare(b.(Time).t), nil
	case chronological(at) && chronological(bt):
		ta, _ := AsTimestamp(a)
		tb, _ := AsTimestamp(b)
		return ta.Compare(tb), nil
	case at == types.Array && bt == types.Array:
		return compareCollections(a.(Collection), b.(Collection))
	case at == types.Struct && bt == types.Struct:
		return compareCollections(a.(Tuple).values, b.(Tuple).values)
	}
	return 0, sqlerr.Evaluation("cannot compare %s with %s", at, bt)
}

func chronological(t types.ExprType) bool {
	return t == types.Date || t == types.Datetime || t == types.Timestamp
}

func compareNumeric(a, b ExprValue) int {
	if a.Type().IsIntegral() && b.Type().IsIntegral() {
		x, _ := AsLong(a)
		y, _ := AsLong(b)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	x, _ := AsDouble(a)
	y, _ := AsDouble(b)
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}

func compareCollections(a, b []ExprValue) (int, error) {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c, err := CompareWithAbsent(a[i], b[i], true); err != nil || c != 0 {
			return c, err
		}
	}
	return len(a) - len(b), nil
}

// CompareWithAbsent orders values including NULL and MISSING. Absent values
// sort before present ones when absentFirst is set and after them otherwise;
// MISSING sorts before NULL.
func CompareWithAbsent(a, b ExprValue, absentFirst bool) (int, error) {
	ra, rb := absentRank(a), absentRank(b)
	if ra != 0 || rb != 0 {
		if ra == rb {
			return 0, nil
		}
		if ra == 0 || rb == 0 {
			if (ra != 0) == absentFirst {
				return -1, nil
			}
			return 1, nil
		}
		return ra - rb, nil
	}
	return Compare(a, b)
}

func absentRank(v ExprValue) int {
	switch {
	case v == nil || IsMissing(v):
		return 1
	case IsNull(v):
		return 2
	}
	return 0
}

// Equal reports whether a and b are equal present values, or the same
// absent marker
func Equal(a, b ExprValue) bool {
	c, err := CompareWithAbsent(a, b, true)
	return err == nil && c == 0
}
