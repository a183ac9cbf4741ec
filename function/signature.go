package function

import (
	"strings"

	"github.com/vegasq/sqlcore/types"
)

// Name identifies a function. Names are case-insensitive and stored in lower case.
type Name string

// NameOf normalizes a function name
func NameOf(s string) Name { return Name(strings.ToLower(s)) }

func (n Name) String() string { return string(n) }

// Signature is a function name plus an ordered list of parameter types
type Signature struct {
	Name       Name
	ParamTypes []types.ExprType
}

// NewSignature builds a signature
func NewSignature(name string, params ...types.ExprType) Signature {
	return Signature{Name: NameOf(name), ParamTypes: params}
}

// Match returns the widening distance from this call-site signature to a
// declared one
func (s Signature) Match(declared Signature) int {
	return types.SignatureDistance(s.ParamTypes, declared.ParamTypes)
}

// FormatTypes renders the parameter types as [A,B]
func (s Signature) FormatTypes() string {
	names := make([]string, len(s.ParamTypes))
	for i, t := range s.ParamTypes {
		names[i] = t.String()
	}
	return "[" + strings.Join(names, ",") + "]"
}

func (s Signature) String() string { return s.Name.String() + s.FormatTypes() }
