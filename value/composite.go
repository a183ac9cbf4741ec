package value

import (
	"strings"

	"github.com/vegasq/sqlcore/types"
)

// Tuple is an ordered list of named values, the shape of one row
type Tuple struct {
	names  []string
	values []ExprValue
}

// NewTuple pairs names with values. Both slices must have the same length.
func NewTuple(names []string, values []ExprValue) Tuple {
	return Tuple{names: names, values: values}
}

// TupleOf builds a tuple from alternating name/value pairs
func TupleOf(pairs ...interface{}) Tuple {
	t := Tuple{}
	for i := 0; i+1 < len(pairs); i += 2 {
		t.names = append(t.names, pairs[i].(string))
		t.values = append(t.values, FromInterface(pairs[i+1]))
	}
	return t
}

// Len returns the number of fields
func (v Tuple) Len() int { return len(v.values) }

// Names returns the field names in order
func (v Tuple) Names() []string { return v.names }

// Values returns the field values in order
func (v Tuple) Values() []ExprValue { return v.values }

// At returns the value of the i-th field
func (v Tuple) At(i int) ExprValue { return v.values[i] }

// Get returns the value for name, or MISSING when the tuple has no such field
func (v Tuple) Get(name string) ExprValue {
	for i, n := range v.names {
		if n == name {
			return v.values[i]
		}
	}
	return Missing
}

func (v Tuple) Type() types.ExprType { return types.Struct }

func (v Tuple) Value() interface{} {
	m := make(map[string]interface{}, len(v.values))
	for i, n := range v.names {
		m[n] = v.values[i].Value()
	}
	return m
}

func (v Tuple) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, n := range v.names {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(n)
		sb.WriteByte(':')
		sb.WriteString(v.values[i].String())
	}
	sb.WriteByte('}')
	return sb.String()
}

func (Tuple) exprValue() {}

// Collection is an ordered list of positional values
type Collection []ExprValue

// CollectionOf converts native values into a collection
func CollectionOf(items ...interface{}) Collection {
	c := make(Collection, len(items))
	for i, item := range items {
		c[i] = FromInterface(item)
	}
	return c
}

func (v Collection) Type() types.ExprType { return types.Array }

func (v Collection) Value() interface{} {
	out := make([]interface{}, len(v))
	for i, item := range v {
		out[i] = item.Value()
	}
	return out
}

func (v Collection) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, item := range v {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(item.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

func (Collection) exprValue() {}
