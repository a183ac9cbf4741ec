package function

import (
	"math"

	"github.com/vegasq/sqlcore/types"
	"github.com/vegasq/sqlcore/value"
)

func registerMath(g *registrar) {
	for _, t := range numericTypes {
		t := t
		g.add("abs", t, unary(func(v value.ExprValue) (value.ExprValue, error) {
			if t.IsIntegral() {
				n, _ := value.AsLong(v)
				if n < 0 {
					n = -n
				}
				return Widen(value.Long(n), t)
			}
			f, _ := value.AsDouble(v)
			return Widen(value.Double(math.Abs(f)), t)
		}), t)

		g.add("sign", types.Integer, unary(func(v value.ExprValue) (value.ExprValue, error) {
			f, _ := value.AsDouble(v)
			switch {
			case f > 0:
				return value.Integer(1), nil
			case f < 0:
				return value.Integer(-1), nil
			}
			return value.Integer(0), nil
		}), t)
	}

	g.add("ceil", types.Long, doubleToLong(math.Ceil), types.Double)
	g.add("floor", types.Long, doubleToLong(math.Floor), types.Double)

	g.add("round", types.Long, unary(identity), types.Long)
	g.add("round", types.Double, unary(func(v value.ExprValue) (value.ExprValue, error) {
		f, _ := value.AsDouble(v)
		return value.Double(math.Round(f)), nil
	}), types.Double)
	g.add("round", types.Double, binary(func(v, d value.ExprValue) (value.ExprValue, error) {
		f, _ := value.AsDouble(v)
		decimals, _ := value.AsInteger(d)
		multiplier := math.Pow(10, float64(decimals))
		return value.Double(math.Round(f*multiplier) / multiplier), nil
	}), types.Double, types.Integer)

	// sqrt of a negative number is NULL
	g.add("sqrt", types.Double, unary(func(v value.ExprValue) (value.ExprValue, error) {
		f, _ := value.AsDouble(v)
		if f < 0 {
			return value.Null, nil
		}
		return value.Double(math.Sqrt(f)), nil
	}), types.Double)

	g.add("pow", types.Double, binary(func(a, b value.ExprValue) (value.ExprValue, error) {
		x, _ := value.AsDouble(a)
		y, _ := value.AsDouble(b)
		return value.Double(math.Pow(x, y)), nil
	}), types.Double, types.Double)
}

func doubleToLong(fn func(float64) float64) func([]value.ExprValue) (value.ExprValue, error) {
	return unary(func(v value.ExprValue) (value.ExprValue, error) {
		f, _ := value.AsDouble(v)
		n, _ := value.AsLong(value.Double(fn(f)))
		return value.Long(n), nil
	})
}
