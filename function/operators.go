package function

import (
	"math"

	"github.com/vegasq/sqlcore/sqlerr"
	"github.com/vegasq/sqlcore/types"
	"github.com/vegasq/sqlcore/value"
)

// Operator function names.
const (
	Add      = "add"
	Subtract = "subtract"
	Multiply = "multiply"
	Divide   = "divide"
	Modulus  = "modulus"

	Equal        = "="
	NotEqual     = "!="
	Less         = "<"
	LessEqual    = "<="
	Greater      = ">"
	GreaterEqual = ">="

	Not = "not"
)

type arith struct {
	name  string
	ints  func(a, b int64) (int64, bool)
	reals func(a, b float64) (float64, bool)
}

var arithmetic = []arith{
	{Add, func(a, b int64) (int64, bool) { return a + b, true }, func(a, b float64) (float64, bool) { return a + b, true }},
	{Subtract, func(a, b int64) (int64, bool) { return a - b, true }, func(a, b float64) (float64, bool) { return a - b, true }},
	{Multiply, func(a, b int64) (int64, bool) { return a * b, true }, func(a, b float64) (float64, bool) { return a * b, true }},
	{Divide, func(a, b int64) (int64, bool) {
		if b == 0 {
			return 0, false
		}
		return a / b, true
	}, func(a, b float64) (float64, bool) {
		if b == 0 {
			return 0, false
		}
		return a / b, true
	}},
	{Modulus, func(a, b int64) (int64, bool) {
		if b == 0 {
			return 0, false
		}
		return a % b, true
	}, func(a, b float64) (float64, bool) {
		if b == 0 {
			return 0, false
		}
		return math.Mod(a, b), true
	}},
}

// registerArithmetic registers the binary arithmetic operators. Division and
// modulus by zero yield NULL.
func registerArithmetic(g *registrar) {
	for _, op := range arithmetic {
		op := op
		for _, t := range numericTypes {
			t := t
			g.add(op.name, t, binary(func(a, b value.ExprValue) (value.ExprValue, error) {
				if t.IsIntegral() {
					x, _ := value.AsLong(a)
					y, _ := value.AsLong(b)
					r, ok := op.ints(x, y)
					if !ok {
						return value.Null, nil
					}
					return Widen(value.Long(r), t)
				}
				x, _ := value.AsDouble(a)
				y, _ := value.AsDouble(b)
				r, ok := op.reals(x, y)
				if !ok {
					return value.Null, nil
				}
				return Widen(value.Double(r), t)
			}), t, t)
		}
	}
}

var comparableTypes = []types.ExprType{
	types.Integer, types.Long, types.Float, types.Double, types.String, types.Boolean,
	types.Date, types.Time, types.Datetime, types.Timestamp,
}

type comparison struct {
	name string
	test func(c int) bool
}

var comparisons = []comparison{
	{Equal, func(c int) bool { return c == 0 }},
	{NotEqual, func(c int) bool { return c != 0 }},
	{Less, func(c int) bool { return c < 0 }},
	{LessEqual, func(c int) bool { return c <= 0 }},
	{Greater, func(c int) bool { return c > 0 }},
	{GreaterEqual, func(c int) bool { return c >= 0 }},
}

func registerComparison(g *registrar) {
	for _, cmp := range comparisons {
		cmp := cmp
		for _, t := range comparableTypes {
			g.add(cmp.name, types.Boolean, binary(func(a, b value.ExprValue) (value.ExprValue, error) {
				c, err := value.Compare(a, b)
				if err != nil {
					return nil, err
				}
				return value.Boolean(cmp.test(c)), nil
			}), t, t)
		}
	}

	g.add(Not, types.Boolean, unary(func(v value.ExprValue) (value.ExprValue, error) {
		b, err := value.AsBoolean(v)
		if err != nil {
			return nil, sqlerr.Evaluation("not expects a boolean, but get %s", v.Type())
		}
		return value.Boolean(!b), nil
	}), types.Boolean)
}
