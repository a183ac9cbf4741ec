package function

import (
	"strings"

	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/sqlerr"
	"github.com/vegasq/sqlcore/types"
)

// Overload is one registered implementation of a function
type Overload struct {
	Signature  Signature
	ReturnType types.ExprType
	Builder    expression.Builder
}

// Resolver holds every overload of one function name, in registration order
type Resolver struct {
	name      Name
	overloads []Overload
}

// NewResolver returns an empty resolver for name
func NewResolver(name string) *Resolver {
	return &Resolver{name: NameOf(name)}
}

// Name returns the function name
func (r *Resolver) Name() Name { return r.name }

// Register adds an overload. Registering the same parameter types twice is
// rejected.
func (r *Resolver) Register(params []types.ExprType, ret types.ExprType, b expression.Builder) error {
	sig := Signature{Name: r.name, ParamTypes: params}
	for _, o := range r.overloads {
		if o.Signature.FormatTypes() == sig.FormatTypes() {
			return sqlerr.Duplicate(r.name.String(), sig.FormatTypes())
		}
	}
	r.overloads = append(r.overloads, Overload{Signature: sig, ReturnType: ret, Builder: b})
	return nil
}

// Signatures returns the registered signatures in registration order
func (r *Resolver) Signatures() []Signature {
	out := make([]Signature, len(r.overloads))
	for i, o := range r.overloads {
		out[i] = o.Signature
	}
	return out
}

// Resolve picks the overload closest to the call-site signature. An exact
// match wins at once. Otherwise the unique overload with the smallest total
// widening distance wins. No reachable overload is a FunctionResolutionError,
// and so is a tie at the minimum unless the tied overloads differ only where
// the call passes an UNDEFINED (NULL or MISSING) argument. Such calls always
// evaluate to NULL or MISSING, so the first registered candidate is taken.
func (r *Resolver) Resolve(call Signature) (Overload, error) {
	best, bestDistance, tied := -1, types.ImpossibleWidening, false
	for i, o := range r.overloads {
		d := call.Match(o.Signature)
		switch {
		case d == 0:
			return o, nil
		case d == types.ImpossibleWidening:
			continue
		case d < bestDistance:
			best, bestDistance, tied = i, d, false
		case d == bestDistance:
			tied = true
		}
	}
	if best < 0 || (tied && !r.undefinedTie(call, best, bestDistance)) {
		return Overload{}, r.resolutionError(call)
	}
	return r.overloads[best], nil
}

// undefinedTie reports whether every overload at distance agrees with the
// one at best on each parameter the call gives a present type
func (r *Resolver) undefinedTie(call Signature, best, distance int) bool {
	want := r.overloads[best].Signature.ParamTypes
	for _, o := range r.overloads[best+1:] {
		if call.Match(o.Signature) != distance {
			continue
		}
		for i, actual := range call.ParamTypes {
			if actual != types.Undefined && o.Signature.ParamTypes[i] != want[i] {
				return false
			}
		}
	}
	return true
}

func (r *Resolver) resolutionError(call Signature) error {
	expected := make([]string, len(r.overloads))
	for i, o := range r.overloads {
		expected[i] = o.Signature.FormatTypes()
	}
	return sqlerr.Resolution(r.name.String(), "{"+strings.Join(expected, ",")+"}", call.FormatTypes())
}
