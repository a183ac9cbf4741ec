package expression

import (
	"strings"

	"github.com/vegasq/sqlcore/sqlerr"
	"github.com/vegasq/sqlcore/types"
	"github.com/vegasq/sqlcore/value"
)

// Column describes one slot of a row
type Column struct {
	Name      string
	Qualifier string
	Type      types.ExprType
}

// QualifiedName returns qualifier.name, or the bare name without a qualifier
func (c Column) QualifiedName() string {
	if c.Qualifier == "" {
		return c.Name
	}
	return c.Qualifier + "." + c.Name
}

// Schema is the ordered list of columns a plan node produces
type Schema []Column

// Names returns the bare column names
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// QualifiedNames returns the column names prefixed with their qualifiers
func (s Schema) QualifiedNames() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.QualifiedName()
	}
	return names
}

// IndexOf resolves a bare or qualified column name to its slot. A qualified
// name matches first; a bare name resolves to the first column with that name.
func (s Schema) IndexOf(name string) (int, bool) {
	for i, c := range s {
		if c.QualifiedName() == name {
			return i, true
		}
	}
	for i, c := range s {
		if c.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Qualify returns a copy of s with every column qualified by q
func (s Schema) Qualify(q string) Schema {
	out := make(Schema, len(s))
	for i, c := range s {
		c.Qualifier = q
		out[i] = c
	}
	return out
}

// Environment supplies the value of references during evaluation
type Environment interface {
	Resolve(ref *Reference) (value.ExprValue, error)
}

// Row is a flat environment indexed by bound slot
type Row []value.ExprValue

func (r Row) Resolve(ref *Reference) (value.ExprValue, error) {
	if ref.Slot < 0 || ref.Slot >= len(r) {
		return nil, sqlerr.Contract("reference %s is not bound to a slot of a %d column row", ref.Name, len(r))
	}
	return r[ref.Slot], nil
}

// TupleEnv resolves references by name against a tuple. Dotted names descend
// into nested tuples; an absent field is MISSING.
type TupleEnv struct {
	Tuple value.Tuple
}

func (e TupleEnv) Resolve(ref *Reference) (value.ExprValue, error) {
	v := e.Tuple.Get(ref.Name)
	if !value.IsMissing(v) || !strings.Contains(ref.Name, ".") {
		return v, nil
	}
	var cur value.ExprValue = e.Tuple
	for _, part := range strings.Split(ref.Name, ".") {
		t, ok := cur.(value.Tuple)
		if !ok {
			return value.Missing, nil
		}
		cur = t.Get(part)
	}
	return cur, nil
}

// Bind returns a copy of e whose references point at slots of schema
func Bind(e Expression, schema Schema) (Expression, error) {
	switch x := e.(type) {
	case nil:
		return nil, nil
	case *Literal:
		return x, nil
	case *Reference:
		slot, ok := schema.IndexOf(x.Name)
		if !ok {
			return nil, sqlerr.Contract("reference %s not found in schema %v", x.Name, schema.Names())
		}
		return &Reference{Name: x.Name, RefType: x.RefType, Slot: slot}, nil
	case *Call:
		args, err := bindAll(x.Args, schema)
		if err != nil {
			return nil, err
		}
		return x.withArgs(args), nil
	case *And:
		l, r, err := bindPair(x.Left, x.Right, schema)
		if err != nil {
			return nil, err
		}
		return &And{Left: l, Right: r}, nil
	case *Or:
		l, r, err := bindPair(x.Left, x.Right, schema)
		if err != nil {
			return nil, err
		}
		return &Or{Left: l, Right: r}, nil
	case *IsNull:
		inner, err := Bind(x.Expr, schema)
		if err != nil {
			return nil, err
		}
		return &IsNull{Expr: inner}, nil
	case *IsNotNull:
		inner, err := Bind(x.Expr, schema)
		if err != nil {
			return nil, err
		}
		return &IsNotNull{Expr: inner}, nil
	case *In:
		inner, err := Bind(x.Expr, schema)
		if err != nil {
			return nil, err
		}
		return &In{Expr: inner, Values: x.Values, set: x.set}, nil
	case *Named:
		inner, err := Bind(x.Expr, schema)
		if err != nil {
			return nil, err
		}
		return &Named{Name: x.Name, Expr: inner}, nil
	}
	return nil, sqlerr.Contract("cannot bind expression of type %T", e)
}

func bindAll(exprs []Expression, schema Schema) ([]Expression, error) {
	out := make([]Expression, len(exprs))
	for i, e := range exprs {
		b, err := Bind(e, schema)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

func bindPair(l, r Expression, schema Schema) (Expression, Expression, error) {
	bl, err := Bind(l, schema)
	if err != nil {
		return nil, nil, err
	}
	br, err := Bind(r, schema)
	if err != nil {
		return nil, nil, err
	}
	return bl, br, nil
}

// Walk calls fn for e and every sub-expression, parents first
func Walk(e Expression, fn func(Expression)) {
	if e == nil {
		return
	}
	fn(e)
	switch x := e.(type) {
	case *Call:
		for _, arg := range x.Args {
			Walk(arg, fn)
		}
	case *And:
		Walk(x.Left, fn)
		Walk(x.Right, fn)
	case *Or:
		Walk(x.Left, fn)
		Walk(x.Right, fn)
	case *IsNull:
		Walk(x.Expr, fn)
	case *IsNotNull:
		Walk(x.Expr, fn)
	case *In:
		Walk(x.Expr, fn)
	case *Named:
		Walk(x.Expr, fn)
	}
}

// References returns the distinct column names e reads, in first-seen order
func References(exprs ...Expression) []string {
	seen := map[string]bool{}
	var names []string
	for _, e := range exprs {
		Walk(e, func(n Expression) {
			if ref, ok := n.(*Reference); ok && !seen[ref.Name] {
				seen[ref.Name] = true
				names = append(names, ref.Name)
			}
		})
	}
	return names
}

// IsReference reports whether e is a plain column reference, possibly named
func IsReference(e Expression) bool {
	_, ok := Unwrap(e).(*Reference)
	return ok
}
