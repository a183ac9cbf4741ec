package expression

import (
	"strings"

	"github.com/vegasq/sqlcore/types"
	"github.com/vegasq/sqlcore/value"
)

// And is three-valued conjunction. FALSE dominates, then MISSING, then NULL.
type And struct {
	Left, Right Expression
}

// AndOf folds the operands into a left-deep conjunction. It returns nil for
// no operands.
func AndOf(exprs ...Expression) Expression {
	var out Expression
	for _, e := range exprs {
		if e == nil {
			continue
		}
		if out == nil {
			out = e
			continue
		}
		out = &And{Left: out, Right: e}
	}
	return out
}

func (e *And) ValueOf(env Environment) (value.ExprValue, error) {
	return connective(env, e.Left, e.Right, false)
}

func (e *And) Type() types.ExprType { return types.Boolean }
func (e *And) String() string       { return "(" + e.Left.String() + " AND " + e.Right.String() + ")" }
func (*And) expression()            {}

// Or is three-valued disjunction. TRUE dominates, then MISSING, then NULL.
type Or struct {
	Left, Right Expression
}

// OrOf folds the operands into a left-deep disjunction. It returns nil for
// no operands.
func OrOf(exprs ...Expression) Expression {
	var out Expression
	for _, e := range exprs {
		if e == nil {
			continue
		}
		if out == nil {
			out = e
			continue
		}
		out = &Or{Left: out, Right: e}
	}
	return out
}

func (e *Or) ValueOf(env Environment) (value.ExprValue, error) {
	return connective(env, e.Left, e.Right, true)
}

func (e *Or) Type() types.ExprType { return types.Boolean }
func (e *Or) String() string       { return "(" + e.Left.String() + " OR " + e.Right.String() + ")" }
func (*Or) expression()            {}

// connective evaluates AND (dominant=false) or OR (dominant=true)
func connective(env Environment, left, right Expression, dominant bool) (value.ExprValue, error) {
	l, err := left.ValueOf(env)
	if err != nil {
		return nil, err
	}
	if !value.IsAbsent(l) {
		b, err := value.AsBoolean(l)
		if err != nil {
			return nil, err
		}
		if b == dominant {
			return value.Boolean(dominant), nil
		}
	}
	r, err := right.ValueOf(env)
	if err != nil {
		return nil, err
	}
	if !value.IsAbsent(r) {
		b, err := value.AsBoolean(r)
		if err != nil {
			return nil, err
		}
		if b == dominant {
			return value.Boolean(dominant), nil
		}
	}
	switch {
	case value.IsMissing(l) || value.IsMissing(r):
		return value.Missing, nil
	case value.IsNull(l) || value.IsNull(r):
		return value.Null, nil
	}
	return value.Boolean(!dominant), nil
}

// IsNull tests whether its operand is NULL or MISSING
type IsNull struct {
	Expr Expression
}

func (e *IsNull) ValueOf(env Environment) (value.ExprValue, error) {
	v, err := e.Expr.ValueOf(env)
	if err != nil {
		return nil, err
	}
	return value.Boolean(value.IsAbsent(v)), nil
}

func (e *IsNull) Type() types.ExprType { return types.Boolean }
func (e *IsNull) String() string       { return "is null(" + e.Expr.String() + ")" }
func (*IsNull) expression()            {}

// IsNotNull tests whether its operand is present
type IsNotNull struct {
	Expr Expression
}

func (e *IsNotNull) ValueOf(env Environment) (value.ExprValue, error) {
	v, err := e.Expr.ValueOf(env)
	if err != nil {
		return nil, err
	}
	return value.Boolean(!value.IsAbsent(v)), nil
}

func (e *IsNotNull) Type() types.ExprType { return types.Boolean }
func (e *IsNotNull) String() string       { return "is not null(" + e.Expr.String() + ")" }
func (*IsNotNull) expression()            {}

// In tests membership of its operand in a list of values. An absent operand
// yields itself; elements of a multi-valued operand match individually.
type In struct {
	Expr   Expression
	Values []value.ExprValue
	set    map[string]struct{}
}

// NewIn builds a membership test
func NewIn(expr Expression, values []value.ExprValue) *In {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[string(value.AppendKey(nil, v))] = struct{}{}
	}
	return &In{Expr: expr, Values: values, set: set}
}

func (e *In) ValueOf(env Environment) (value.ExprValue, error) {
	v, err := e.Expr.ValueOf(env)
	if err != nil {
		return nil, err
	}
	if value.IsAbsent(v) {
		return v, nil
	}
	if c, ok := v.(value.Collection); ok {
		for _, item := range c {
			if e.contains(item) {
				return value.True, nil
			}
		}
		return value.False, nil
	}
	return value.Boolean(e.contains(v)), nil
}

func (e *In) contains(v value.ExprValue) bool {
	_, ok := e.set[string(value.AppendKey(nil, v))]
	return ok
}

func (e *In) Type() types.ExprType { return types.Boolean }

func (e *In) String() string {
	parts := make([]string, len(e.Values))
	for i, v := range e.Values {
		parts[i] = v.String()
	}
	return e.Expr.String() + " IN (" + strings.Join(parts, ", ") + ")"
}

func (*In) expression() {}

// Conjuncts splits a conjunction into its operands
func Conjuncts(e Expression) []Expression {
	if e == nil {
		return nil
	}
	if and, ok := e.(*And); ok {
		return append(Conjuncts(and.Left), Conjuncts(and.Right)...)
	}
	return []Expression{e}
}

// IsTrue reports whether v is the boolean TRUE
func IsTrue(v value.ExprValue) bool {
	b, ok := v.(value.Boolean)
	return ok && bool(b)
}
