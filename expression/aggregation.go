package expression

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/vegasq/sqlcore/types"
	"github.com/vegasq/sqlcore/value"
)

// Aggregate function names.
const (
	AggCount = "count"
	AggSum   = "sum"
	AggAvg   = "avg"
	AggMin   = "min"
	AggMax   = "max"
)

// Aggregator folds an argument expression over a group of rows. A nil Arg
// counts rows.
type Aggregator struct {
	Func       string
	Arg        Expression
	ReturnType types.ExprType
}

// NewAggregator resolves the result type of an aggregate function
func NewAggregator(fn string, arg Expression) (*Aggregator, error) {
	fn = strings.ToLower(fn)
	a := &Aggregator{Func: fn, Arg: arg}
	if arg == nil && fn != AggCount {
		return nil, errors.Newf("%s requires an argument", fn)
	}
	switch fn {
	case AggCount:
		a.ReturnType = types.Integer
	case AggSum:
		switch {
		case arg.Type().IsIntegral():
			a.ReturnType = types.Long
		case arg.Type().IsNumeric():
			a.ReturnType = types.Double
		default:
			return nil, errors.Newf("sum expects a numeric argument, but get %s", arg.Type())
		}
	case AggAvg:
		if !arg.Type().IsNumeric() {
			return nil, errors.Newf("avg expects a numeric argument, but get %s", arg.Type())
		}
		a.ReturnType = types.Double
	case AggMin, AggMax:
		a.ReturnType = arg.Type()
	default:
		return nil, errors.Newf("unsupported aggregation function %s", fn)
	}
	return a, nil
}

func (a *Aggregator) String() string {
	if a.Arg == nil {
		return a.Func + "(*)"
	}
	return a.Func + "(" + a.Arg.String() + ")"
}

// Bind binds the argument against schema
func (a *Aggregator) Bind(schema Schema) (*Aggregator, error) {
	if a.Arg == nil {
		return a, nil
	}
	arg, err := Bind(a.Arg, schema)
	if err != nil {
		return nil, err
	}
	return &Aggregator{Func: a.Func, Arg: arg, ReturnType: a.ReturnType}, nil
}

// AggregationState accumulates one group
type AggregationState interface {
	Iterate(env Environment) error
	Result() value.ExprValue
}

// NewState returns empty accumulation state for one group
func (a *Aggregator) NewState() AggregationState {
	switch a.Func {
	case AggCount:
		return &countState{arg: a.Arg}
	case AggSum:
		return &sumState{arg: a.Arg, integral: a.ReturnType == types.Long}
	case AggAvg:
		return &avgState{arg: a.Arg}
	case AggMin:
		return &extremeState{arg: a.Arg, want: -1}
	default:
		return &extremeState{arg: a.Arg, want: 1}
	}
}

type countState struct {
	arg   Expression
	count int32
}

func (s *countState) Iterate(env Environment) error {
	if s.arg == nil {
		s.count++
		return nil
	}
	v, err := s.arg.ValueOf(env)
	if err != nil {
		return err
	}
	if !value.IsAbsent(v) {
		s.count++
	}
	return nil
}

func (s *countState) Result() value.ExprValue { return value.Integer(s.count) }

type sumState struct {
	arg      Expression
	integral bool
	seen     bool
	l        int64
	d        float64
}

func (s *sumState) Iterate(env Environment) error {
	v, err := s.arg.ValueOf(env)
	if err != nil || value.IsAbsent(v) {
		return err
	}
	s.seen = true
	if s.integral {
		n, err := value.AsLong(v)
		s.l += n
		return err
	}
	f, err := value.AsDouble(v)
	s.d += f
	return err
}

func (s *sumState) Result() value.ExprValue {
	switch {
	case !s.seen:
		return value.Null
	case s.integral:
		return value.Long(s.l)
	}
	return value.Double(s.d)
}

type avgState struct {
	arg   Expression
	count int64
	total float64
}

func (s *avgState) Iterate(env Environment) error {
	v, err := s.arg.ValueOf(env)
	if err != nil || value.IsAbsent(v) {
		return err
	}
	f, err := value.AsDouble(v)
	if err != nil {
		return err
	}
	s.count++
	s.total += f
	return nil
}

func (s *avgState) Result() value.ExprValue {
	if s.count == 0 {
		return value.Null
	}
	return value.Double(s.total / float64(s.count))
}

// extremeState keeps the minimum (want -1) or maximum (want 1)
type extremeState struct {
	arg  Expression
	want int
	best value.ExprValue
}

func (s *extremeState) Iterate(env Environment) error {
	v, err := s.arg.ValueOf(env)
	if err != nil || value.IsAbsent(v) {
		return err
	}
	if s.best == nil {
		s.best = v
		return nil
	}
	c, err := value.Compare(v, s.best)
	if err != nil {
		return err
	}
	if c*s.want > 0 {
		s.best = v
	}
	return nil
}

func (s *extremeState) Result() value.ExprValue {
	if s.best == nil {
		return value.Null
	}
	return s.best
}

// NamedAggregator names an aggregator's output column
type NamedAggregator struct {
	Name string
	Agg  *Aggregator
}
