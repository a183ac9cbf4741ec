package function

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/sqlerr"
	"github.com/vegasq/sqlcore/types"
	"github.com/vegasq/sqlcore/value"
)

func call(t *testing.T, name string, args ...interface{}) value.ExprValue {
	t.Helper()
	exprs := make([]expression.Expression, len(args))
	for i, a := range args {
		exprs[i] = expression.Lit(a)
	}
	c, err := Default().Compile(name, exprs...)
	require.NoError(t, err)
	v, err := c.ValueOf(expression.Row{})
	require.NoError(t, err)
	return v
}

func callErr(t *testing.T, name string, args ...interface{}) error {
	t.Helper()
	exprs := make([]expression.Expression, len(args))
	for i, a := range args {
		exprs[i] = expression.Lit(a)
	}
	c, err := Default().Compile(name, exprs...)
	if err != nil {
		return err
	}
	_, err = c.ValueOf(expression.Row{})
	return err
}

func mustDate(s string) value.Date {
	d, err := value.NewDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func mustTimestamp(s string) value.Timestamp {
	ts, err := value.NewTimestamp(s)
	if err != nil {
		panic(err)
	}
	return ts
}

func TestCastCatalogueSources(t *testing.T) {
	want := map[string][]string{
		CastToString: {"[BYTE]", "[SHORT]", "[INTEGER]", "[LONG]", "[FLOAT]", "[DOUBLE]", "[BOOLEAN]",
			"[TIME]", "[DATE]", "[TIMESTAMP]", "[DATETIME]", "[STRING]"},
		CastToByte:      {"[STRING]", "[DOUBLE]", "[BOOLEAN]", "[BYTE]"},
		CastToShort:     {"[STRING]", "[DOUBLE]", "[BOOLEAN]", "[SHORT]"},
		CastToInt:       {"[STRING]", "[DOUBLE]", "[BOOLEAN]", "[INTEGER]"},
		CastToLong:      {"[STRING]", "[DOUBLE]", "[BOOLEAN]", "[LONG]"},
		CastToFloat:     {"[STRING]", "[DOUBLE]", "[BOOLEAN]", "[FLOAT]"},
		CastToDouble:    {"[STRING]", "[BOOLEAN]", "[DOUBLE]"},
		CastToBoolean:   {"[STRING]", "[DOUBLE]", "[BOOLEAN]"},
		CastToDate:      {"[STRING]", "[DATETIME]", "[TIMESTAMP]", "[DATE]"},
		CastToTime:      {"[STRING]", "[DATETIME]", "[TIMESTAMP]", "[TIME]"},
		CastToTimestamp: {"[STRING]", "[DATETIME]", "[TIMESTAMP]"},
		CastToDatetime:  {"[STRING]", "[TIMESTAMP]", "[DATE]", "[DATETIME]"},
	}

	for name, sources := range want {
		t.Run(name, func(t *testing.T) {
			res, ok := Default().Resolver(name)
			require.True(t, ok)
			var got []string
			for _, sig := range res.Signatures() {
				got = append(got, sig.FormatTypes())
			}
			assert.Equal(t, sources, got)
		})
	}
}

func TestCastToBooleanRejectsInteger(t *testing.T) {
	// INTEGER reaches cast_to_boolean only through DOUBLE
	c, err := Default().Compile(CastToBoolean, expression.Lit(int32(2)))
	require.NoError(t, err)
	v, err := c.ValueOf(expression.Row{})
	require.NoError(t, err)
	assert.Equal(t, value.True, v)

	_, err = Default().Compile(CastToBoolean, expression.Lit(mustDate("2020-01-01")))
	require.Error(t, err)
	assert.Equal(t, "cast_to_boolean function expected {[STRING],[DOUBLE],[BOOLEAN]}, but get [DATE]", err.Error())
}

func TestCasts(t *testing.T) {
	tests := []struct {
		name string
		fn   string
		arg  interface{}
		want value.ExprValue
	}{
		{"string of integer", CastToString, int32(42), value.String("42")},
		{"string of double", CastToString, 1.0, value.String("1.0")},
		{"string of boolean", CastToString, true, value.String("true")},
		{"string of date", CastToString, mustDate("2020-01-02"), value.String("2020-01-02")},
		{"byte of string", CastToByte, "300", value.Byte(44)},
		{"byte of double", CastToByte, 3.9, value.Byte(3)},
		{"short of boolean", CastToShort, true, value.Short(1)},
		{"int of string", CastToInt, "-12", value.Integer(-12)},
		{"int of double", CastToInt, 1e20, value.Integer(2147483647)},
		{"int of long", CastToInt, int64(7), value.Integer(7)},
		{"long of string", CastToLong, "9000000000", value.Long(9000000000)},
		{"float of string", CastToFloat, " 1.5 ", value.Float(1.5)},
		{"float of double", CastToFloat, 2.25, value.Float(2.25)},
		{"double of integer", CastToDouble, int32(3), value.Double(3)},
		{"boolean of string", CastToBoolean, "TRUE", value.True},
		{"boolean of other string", CastToBoolean, "yes", value.False},
		{"boolean of zero", CastToBoolean, 0.0, value.False},
		{"date of string", CastToDate, "2020-01-02", mustDate("2020-01-02")},
		{"date of timestamp", CastToDate, mustTimestamp("2020-01-02 10:11:12"), mustDate("2020-01-02")},
		{"timestamp of date", CastToTimestamp, mustDate("2020-01-02"), mustTimestamp("2020-01-02 00:00:00")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, call(t, tt.fn, tt.arg))
		})
	}
}

func TestCastErrors(t *testing.T) {
	err := callErr(t, CastToInt, "abc")
	require.Error(t, err)
	assert.True(t, sqlerr.Is(err, sqlerr.EvaluationError))

	err = callErr(t, CastToTime, "01:01:0")
	require.Error(t, err)
	assert.Equal(t, "time:01:01:0 in unsupported format, please use HH:mm:ss[.SSSSSS]", err.Error())
}

func TestCastRoundTrip(t *testing.T) {
	tests := []struct {
		target types.ExprType
		text   string
	}{
		{types.Byte, "-128"},
		{types.Byte, "127"},
		{types.Short, "32767"},
		{types.Integer, "-2147483648"},
		{types.Long, "9223372036854775807"},
		{types.Float, "1.5"},
		{types.Float, "3.4028235E38"},
		{types.Double, "0.1"},
		{types.Double, "1.0E10"},
		{types.Boolean, "true"},
		{types.Boolean, "false"},
	}

	for _, tt := range tests {
		t.Run(tt.target.String()+" "+tt.text, func(t *testing.T) {
			name, ok := CastName(tt.target)
			require.True(t, ok)
			to, err := Default().Compile(name, expression.Lit(tt.text))
			require.NoError(t, err)
			back, err := Default().Compile(CastToString, to)
			require.NoError(t, err)
			v, err := back.ValueOf(expression.Row{})
			require.NoError(t, err)
			assert.Equal(t, value.String(tt.text), v)
		})
	}
}

func sample(t types.ExprType) value.ExprValue {
	switch t {
	case types.Byte:
		return value.Byte(1)
	case types.Short:
		return value.Short(1)
	case types.Integer:
		return value.Integer(1)
	case types.Long:
		return value.Long(1)
	case types.Float:
		return value.Float(1)
	case types.Double:
		return value.Double(1)
	case types.Boolean:
		return value.True
	case types.Date:
		return mustDate("2020-01-01")
	case types.Time:
		v, _ := value.NewTime("01:01:01")
		return v
	case types.Datetime:
		v, _ := value.NewDatetime("2020-01-01 01:01:01")
		return v
	case types.Timestamp:
		return mustTimestamp("2020-01-01 01:01:01")
	}
	return value.String("2020-01-01 01:01:01")
}

func TestNullAndMissingPropagation(t *testing.T) {
	repo := Default()
	for _, name := range repo.Names() {
		res, _ := repo.Resolver(name)
		for _, o := range res.overloads {
			for i := range o.Signature.ParamTypes {
				args := make([]value.ExprValue, len(o.Signature.ParamTypes))
				for j, p := range o.Signature.ParamTypes {
					args[j] = sample(p)
				}

				args[i] = value.Null
				v, err := o.Builder(args)
				require.NoError(t, err)
				assert.True(t, value.IsNull(v), "%s with NULL argument %d", o.Signature, i)

				args[i] = value.Missing
				v, err = o.Builder(args)
				require.NoError(t, err)
				assert.True(t, value.IsMissing(v), "%s with MISSING argument %d", o.Signature, i)

				if len(args) > 1 {
					args[(i+1)%len(args)] = value.Null
					v, err = o.Builder(args)
					require.NoError(t, err)
					assert.True(t, value.IsMissing(v), "%s: MISSING takes precedence over NULL", o.Signature)
				}
			}
		}
	}
}

func TestAbsentLiteralArguments(t *testing.T) {
	repo := Default()
	for _, name := range repo.Names() {
		res, _ := repo.Resolver(name)
		for _, o := range res.overloads {
			params := o.Signature.ParamTypes
			for i := range params {
				for _, absent := range []value.ExprValue{value.Null, value.Missing} {
					args := make([]expression.Expression, len(params))
					for j, p := range params {
						args[j] = expression.Lit(sample(p))
					}
					args[i] = expression.Lit(absent)

					c, err := repo.Compile(name, args...)
					require.NoError(t, err, "%s with %s argument %d", o.Signature, absent, i)
					v, err := c.ValueOf(expression.Row{})
					require.NoError(t, err)
					assert.Equal(t, absent, v, "%s with %s argument %d", o.Signature, absent, i)
				}
			}

			all := make([]expression.Expression, len(params))
			for j := range all {
				all[j] = expression.Lit(nil)
			}
			c, err := repo.Compile(name, all...)
			require.NoError(t, err, "%s with only NULL arguments", name)
			v, err := c.ValueOf(expression.Row{})
			require.NoError(t, err)
			assert.Equal(t, value.Null, v)
		}
	}
}

func TestCastNullLiteral(t *testing.T) {
	for _, name := range []string{CastToString, CastToByte, CastToBoolean, CastToDate} {
		assert.Equal(t, value.Null, call(t, name, nil), name)
	}
}

func TestArithmetic(t *testing.T) {
	assert.Equal(t, value.Integer(3), call(t, Add, int32(1), int32(2)))
	assert.Equal(t, value.Long(3), call(t, Add, int32(1), int64(2)))
	assert.Equal(t, value.Double(2.5), call(t, Divide, 5.0, int32(2)))
	assert.Equal(t, value.Integer(2), call(t, Divide, int32(5), int32(2)))
	assert.Equal(t, value.Null, call(t, Divide, int32(5), int32(0)))
	assert.Equal(t, value.Long(1), call(t, Modulus, int64(7), int64(3)))
	assert.Equal(t, value.Integer(-2147483648), call(t, Add, int32(2147483647), int32(1)))
}

func TestComparison(t *testing.T) {
	assert.Equal(t, value.True, call(t, Less, int32(1), int64(2)))
	assert.Equal(t, value.True, call(t, Equal, "a", "a"))
	assert.Equal(t, value.False, call(t, GreaterEqual, 1.5, 2.0))
	assert.Equal(t, value.True, call(t, Equal, "2020-01-01", mustDate("2020-01-01")))
	assert.Equal(t, value.False, call(t, Not, true))

	err := callErr(t, Equal, "a", int32(1))
	require.Error(t, err)
	assert.True(t, sqlerr.Is(err, sqlerr.FunctionResolutionError))
}

func TestMathAndStrings(t *testing.T) {
	assert.Equal(t, value.Integer(3), call(t, "abs", int32(-3)))
	assert.Equal(t, value.Long(2), call(t, "ceil", 1.2))
	assert.Equal(t, value.Long(1), call(t, "floor", 1.8))
	assert.Equal(t, value.Double(1.23), call(t, "round", 1.234, int32(2)))
	assert.Equal(t, value.Null, call(t, "sqrt", -1.0))
	assert.Equal(t, value.Integer(-1), call(t, "sign", int64(-5)))

	assert.Equal(t, value.String("ABC"), call(t, "UPPER", "abc"))
	assert.Equal(t, value.Integer(5), call(t, "length", "héllo"))
	assert.Equal(t, value.String("ell"), call(t, "substring", "hello", int32(2), int32(3)))
	assert.Equal(t, value.String("llo"), call(t, "substring", "hello", int32(3)))
	assert.Equal(t, value.String("ab"), call(t, "concat", "a", "b"))
}

func TestMatchLike(t *testing.T) {
	tests := []struct {
		s, pattern string
		want       bool
	}{
		{"hello", "hello", true},
		{"hello", "h%", true},
		{"hello", "%llo", true},
		{"hello", "h_llo", true},
		{"hello", "h_lo", false},
		{"abab", "a%b", true},
		{"a", "a%a", false},
		{"anything", "%", true},
		{"Seattle", "%att%", true},
		{"Seattle", "S%x%", false},
	}

	for _, tt := range tests {
		t.Run(tt.s+" "+tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchLike(tt.s, tt.pattern))
		})
	}
}

func TestDatetimeFunctions(t *testing.T) {
	ts := mustTimestamp("2020-08-17 19:44:00")
	assert.Equal(t, value.Integer(2020), call(t, "year", ts))
	assert.Equal(t, value.Integer(8), call(t, "month", "2020-08-17"))
	assert.Equal(t, value.Integer(17), call(t, "day_of_month", mustDate("2020-08-17")))
	assert.Equal(t, value.Integer(19), call(t, "hour", ts))
	assert.Equal(t, value.Integer(44), call(t, "minute", "19:44:00"))
	assert.Equal(t, mustDate("2020-08-17"), call(t, "date", ts))
	assert.Equal(t, mustTimestamp("2020-08-01 00:00:00"), call(t, "date_trunc", "month", ts))

	err := callErr(t, "year", "2020-08-17T00:00:00Z")
	require.Error(t, err)
	assert.True(t, sqlerr.Is(err, sqlerr.FormatError))
}
