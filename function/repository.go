// Package function holds the built-in function catalogue and resolves calls
// against it by widening distance.
package function

import (
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/patrickmn/go-cache"

	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/internal/log"
	"github.com/vegasq/sqlcore/sqlerr"
	"github.com/vegasq/sqlcore/types"
	"github.com/vegasq/sqlcore/value"
)

// Repository maps function names to their resolvers
type Repository struct {
	mu        sync.RWMutex
	resolvers map[Name]*Resolver
	// resolved caches call-site signatures to the overload they resolved to
	resolved *cache.Cache
}

// NewRepository creates an empty repository
func NewRepository() *Repository {
	return &Repository{
		resolvers: make(map[Name]*Resolver),
		resolved:  cache.New(cache.NoExpiration, 0),
	}
}

var (
	defaultOnce sync.Once
	defaultRepo *Repository
)

// Default returns the shared repository holding every built-in function
func Default() *Repository {
	defaultOnce.Do(func() {
		defaultRepo = NewRepository()
		if err := RegisterBuiltins(defaultRepo); err != nil {
			panic(errors.Wrap(err, "registering built-in functions"))
		}
	})
	return defaultRepo
}

// Register adds an overload of name. The builder is wrapped so that NULL
// and MISSING arguments propagate without calling it, and so that widened
// arguments are converted to the declared parameter types first.
func (r *Repository) Register(name string, params []types.ExprType, ret types.ExprType, b expression.Builder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := NameOf(name)
	res, ok := r.resolvers[n]
	if !ok {
		res = NewResolver(name)
		r.resolvers[n] = res
	}
	if err := res.Register(params, ret, nullMissingHandling(widenArgs(params, b))); err != nil {
		return err
	}
	r.resolved.Flush()
	return nil
}

// Resolver returns the resolver registered for name
func (r *Repository) Resolver(name string) (*Resolver, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.resolvers[NameOf(name)]
	return res, ok
}

// Names returns the registered function names in sorted order
func (r *Repository) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.resolvers))
	for n := range r.resolvers {
		names = append(names, n.String())
	}
	sort.Strings(names)
	return names
}

// Resolve finds the overload for a call with the given argument types
func (r *Repository) Resolve(sig Signature) (Overload, error) {
	key := sig.String()
	if o, ok := r.resolved.Get(key); ok {
		return o.(Overload), nil
	}
	res, ok := r.Resolver(sig.Name.String())
	if !ok {
		return Overload{}, sqlerr.UnknownFunction(sig.Name.String())
	}
	o, err := res.Resolve(sig)
	if err != nil {
		return Overload{}, err
	}
	if log.V(2) {
		log.Infof("resolved %s to %s", sig, o.Signature)
	}
	r.resolved.Set(key, o, cache.NoExpiration)
	return o, nil
}

// Compile resolves name against the argument types and returns a call node
func (r *Repository) Compile(name string, args ...expression.Expression) (*expression.Call, error) {
	params := make([]types.ExprType, len(args))
	for i, a := range args {
		params[i] = a.Type()
	}
	o, err := r.Resolve(Signature{Name: NameOf(name), ParamTypes: params})
	if err != nil {
		return nil, err
	}
	return expression.NewCall(NameOf(name).String(), args, o.ReturnType, o.Builder), nil
}

// MustCompile is like Compile but panics on error. It is meant for tests and
// statically known expressions.
func (r *Repository) MustCompile(name string, args ...expression.Expression) *expression.Call {
	c, err := r.Compile(name, args...)
	if err != nil {
		panic(err)
	}
	return c
}

// nullMissingHandling returns MISSING when any argument is MISSING and NULL
// when any argument is NULL; otherwise it calls b.
func nullMissingHandling(b expression.Builder) expression.Builder {
	return func(args []value.ExprValue) (value.ExprValue, error) {
		sawNull := false
		for _, a := range args {
			if a == nil || value.IsMissing(a) {
				return value.Missing, nil
			}
			if value.IsNull(a) {
				sawNull = true
			}
		}
		if sawNull {
			return value.Null, nil
		}
		return b(args)
	}
}

// widenArgs converts each argument whose type differs from its declared
// parameter type before calling b
func widenArgs(params []types.ExprType, b expression.Builder) expression.Builder {
	return func(args []value.ExprValue) (value.ExprValue, error) {
		var widened []value.ExprValue
		for i, a := range args {
			if i >= len(params) || a.Type() == params[i] {
				continue
			}
			w, err := Widen(a, params[i])
			if err != nil {
				return nil, err
			}
			if widened == nil {
				widened = append([]value.ExprValue(nil), args...)
			}
			widened[i] = w
		}
		if widened == nil {
			return b(args)
		}
		return b(widened)
	}
}

// Widen converts v to the wider type t using the value accessors
func Widen(v value.ExprValue, t types.ExprType) (value.ExprValue, error) {
	switch t {
	case types.Byte:
		n, err := value.AsByte(v)
		return value.Byte(n), err
	case types.Short:
		n, err := value.AsShort(v)
		return value.Short(n), err
	case types.Integer:
		n, err := value.AsInteger(v)
		return value.Integer(n), err
	case types.Long:
		n, err := value.AsLong(v)
		return value.Long(n), err
	case types.Float:
		f, err := value.AsFloat(v)
		return value.Float(f), err
	case types.Double:
		f, err := value.AsDouble(v)
		return value.Double(f), err
	case types.Boolean:
		b, err := value.AsBoolean(v)
		return value.Boolean(b), err
	case types.String:
		s, err := value.AsString(v)
		return value.String(s), err
	case types.Date:
		d, err := value.AsDate(v)
		return value.DateOf(d), err
	case types.Time:
		tm, err := value.AsTime(v)
		return value.TimeOf(tm), err
	case types.Datetime:
		dt, err := value.AsDatetime(v)
		return value.DatetimeOf(dt), err
	case types.Timestamp:
		ts, err := value.AsTimestamp(v)
		return value.TimestampOf(ts), err
	}
	return v, nil
}
