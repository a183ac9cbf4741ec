// Package expression implements typed expression trees and their evaluation.
//
// An Expression is a closed set of node kinds: Literal, Reference, Call, the
// boolean connectives And and Or, the absence tests IsNull and IsNotNull, In
// and Named. Every node already carries its resolved type. References are
// bound to row slots with Bind before they are evaluated against a Row.
package expression

import (
	"strings"

	"github.com/vegasq/sqlcore/types"
	"github.com/vegasq/sqlcore/value"
)

// Expression is a typed node that evaluates to a value in an environment
type Expression interface {
	// ValueOf evaluates the expression for one row
	ValueOf(env Environment) (value.ExprValue, error)
	// Type returns the resolved result type
	Type() types.ExprType
	// String renders the expression deterministically
	String() string

	expression()
}

// Literal is a constant value
type Literal struct {
	Value value.ExprValue
}

// Lit wraps a native Go value as a literal
func Lit(v interface{}) *Literal {
	return &Literal{Value: value.FromInterface(v)}
}

func (e *Literal) ValueOf(Environment) (value.ExprValue, error) { return e.Value, nil }
func (e *Literal) Type() types.ExprType                         { return e.Value.Type() }
func (e *Literal) String() string                               { return e.Value.String() }
func (*Literal) expression()                                    {}

// Reference reads a column of the current row. Slot is -1 until the
// reference is bound.
type Reference struct {
	Name    string
	RefType types.ExprType
	Slot    int
}

// Ref returns an unbound reference
func Ref(name string, t types.ExprType) *Reference {
	return &Reference{Name: name, RefType: t, Slot: -1}
}

func (e *Reference) ValueOf(env Environment) (value.ExprValue, error) { return env.Resolve(e) }
func (e *Reference) Type() types.ExprType                             { return e.RefType }
func (e *Reference) String() string                                   { return e.Name }
func (*Reference) expression()                                        {}

// Builder computes a function result from evaluated arguments
type Builder func(args []value.ExprValue) (value.ExprValue, error)

// Call is a resolved function invocation
type Call struct {
	Name       string
	Args       []Expression
	ReturnType types.ExprType
	eval       Builder
}

// NewCall returns a call node that evaluates args and hands them to eval
func NewCall(name string, args []Expression, ret types.ExprType, eval Builder) *Call {
	return &Call{Name: name, Args: args, ReturnType: ret, eval: eval}
}

func (e *Call) ValueOf(env Environment) (value.ExprValue, error) {
	args := make([]value.ExprValue, len(e.Args))
	for i, arg := range e.Args {
		v, err := arg.ValueOf(env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return e.eval(args)
}

func (e *Call) Type() types.ExprType { return e.ReturnType }

func (e *Call) String() string {
	parts := make([]string, len(e.Args))
	for i, arg := range e.Args {
		parts[i] = arg.String()
	}
	return e.Name + "(" + strings.Join(parts, ", ") + ")"
}

func (*Call) expression() {}

func (e *Call) withArgs(args []Expression) *Call {
	c := *e
	c.Args = args
	return &c
}

// Named gives an expression an output column name
type Named struct {
	Name string
	Expr Expression
}

// As names expr
func As(name string, expr Expression) *Named {
	return &Named{Name: name, Expr: expr}
}

func (e *Named) ValueOf(env Environment) (value.ExprValue, error) { return e.Expr.ValueOf(env) }
func (e *Named) Type() types.ExprType                             { return e.Expr.Type() }

func (e *Named) String() string {
	if ref, ok := e.Expr.(*Reference); ok && ref.Name == e.Name {
		return e.Name
	}
	return e.Expr.String() + " AS " + e.Name
}

func (*Named) expression() {}

// Unwrap strips any Named wrappers
func Unwrap(e Expression) Expression {
	for {
		n, ok := e.(*Named)
		if !ok {
			return e
		}
		e = n.Expr
	}
}

// OutputName returns the column name an expression produces
func OutputName(e Expression) string {
	switch x := e.(type) {
	case *Named:
		return x.Name
	case *Reference:
		return x.Name
	}
	return e.String()
}
