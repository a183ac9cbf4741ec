package function

import (
	"github.com/cockroachdb/errors"

	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/types"
	"github.com/vegasq/sqlcore/value"
)

// RegisterBuiltins registers every built-in function into r
func RegisterBuiltins(r *Repository) error {
	for _, register := range []func(*registrar){
		registerCasts,
		registerArithmetic,
		registerComparison,
		registerMath,
		registerStrings,
		registerDatetime,
	} {
		reg := &registrar{repo: r}
		register(reg)
		if reg.err != nil {
			return reg.err
		}
	}
	return nil
}

// registrar collects the first registration error of a batch
type registrar struct {
	repo *Repository
	err  error
}

func (g *registrar) add(name string, ret types.ExprType, b expression.Builder, params ...types.ExprType) {
	if g.err != nil {
		return
	}
	if err := g.repo.Register(name, params, ret, b); err != nil {
		g.err = errors.Wrapf(err, "registering %s", name)
	}
}

// unary adapts a single-argument function
func unary(fn func(value.ExprValue) (value.ExprValue, error)) expression.Builder {
	return func(args []value.ExprValue) (value.ExprValue, error) {
		return fn(args[0])
	}
}

// binary adapts a two-argument function
func binary(fn func(a, b value.ExprValue) (value.ExprValue, error)) expression.Builder {
	return func(args []value.ExprValue) (value.ExprValue, error) {
		return fn(args[0], args[1])
	}
}

func identity(v value.ExprValue) (value.ExprValue, error) { return v, nil }

var numericTypes = []types.ExprType{types.Integer, types.Long, types.Float, types.Double}
