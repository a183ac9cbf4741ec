package docstore

import (
	"github.com/tidwall/gjson"

	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/function"
	"github.com/vegasq/sqlcore/types"
	"github.com/vegasq/sqlcore/value"
)

// Operator is a native document predicate operator
type Operator string

const (
	OpEq Operator = "$eq"
	OpIn Operator = "$in"
)

// FieldNode matches documents whose field equals one of Values
type FieldNode struct {
	Field    string
	Type     types.ExprType
	Operator Operator
	Values   []value.ExprValue

	keys map[string]struct{}
}

func newFieldNode(col expression.Column, op Operator, values []value.ExprValue) *FieldNode {
	n := &FieldNode{Field: col.Name, Type: col.Type, Operator: op, Values: values, keys: map[string]struct{}{}}
	for _, v := range values {
		n.keys[string(value.AppendKey(nil, v))] = struct{}{}
	}
	return n
}

// Matches reports whether doc satisfies the node. An absent or null field
// never matches; an array field matches when any element does.
func (n *FieldNode) Matches(doc string) bool {
	res := gjson.Get(doc, n.Field)
	if !res.Exists() || res.Type == gjson.Null {
		return false
	}
	if res.IsArray() {
		matched := false
		res.ForEach(func(_, el gjson.Result) bool {
			matched = n.matchOne(el, elementType(el))
			return !matched
		})
		return matched
	}
	return n.matchOne(res, n.Type)
}

func (n *FieldNode) matchOne(res gjson.Result, t types.ExprType) bool {
	v, err := fromResult(res, t)
	if err != nil || value.IsAbsent(v) {
		return false
	}
	_, ok := n.keys[string(value.AppendKey(nil, v))]
	return ok
}

// Translate turns a filter bound to schema into native field predicates.
// It succeeds only when the whole filter is a conjunction of equalities and
// IN lists between a column and literals.
func Translate(filter expression.Expression, schema expression.Schema) ([]*FieldNode, bool) {
	if filter == nil {
		return nil, false
	}
	var nodes []*FieldNode
	for _, term := range expression.Conjuncts(filter) {
		n, ok := translate(term, schema)
		if !ok {
			return nil, false
		}
		nodes = append(nodes, n)
	}
	return nodes, true
}

func translate(e expression.Expression, schema expression.Schema) (*FieldNode, bool) {
	switch x := e.(type) {
	case *expression.In:
		col, ok := column(x.Expr, schema)
		if !ok || !comparable(col.Type, x.Values...) {
			return nil, false
		}
		return newFieldNode(col, OpIn, x.Values), true
	case *expression.Call:
		if x.Name != function.Equal || len(x.Args) != 2 {
			return nil, false
		}
		ref, lit := x.Args[0], x.Args[1]
		if _, isLit := ref.(*expression.Literal); isLit {
			ref, lit = lit, ref
		}
		l, ok := lit.(*expression.Literal)
		if !ok {
			return nil, false
		}
		col, ok := column(ref, schema)
		if !ok || col.Type == types.Array || !comparable(col.Type, l.Value) {
			return nil, false
		}
		return newFieldNode(col, OpEq, []value.ExprValue{l.Value}), true
	}
	return nil, false
}

// column returns the table column a bound plain reference reads
func column(e expression.Expression, schema expression.Schema) (expression.Column, bool) {
	ref, ok := e.(*expression.Reference)
	if !ok || ref.Slot < 0 || ref.Slot >= len(schema) {
		return expression.Column{}, false
	}
	return schema[ref.Slot], true
}

// comparable reports whether literal values can be matched by canonical key
// against a column of type t
func comparable(t types.ExprType, vals ...value.ExprValue) bool {
	for _, v := range vals {
		if value.IsAbsent(v) {
			return false
		}
		vt := v.Type()
		if vt == t || (numeric(vt) && numeric(t)) || t == types.Array {
			continue
		}
		return false
	}
	return true
}

func numeric(t types.ExprType) bool {
	switch t {
	case types.Byte, types.Short, types.Integer, types.Long, types.Float, types.Double:
		return true
	}
	return false
}
