package value

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/vegasq/sqlcore/types"
)

// FromInterface wraps a native Go value read from storage. Unknown types
// become their fmt representation as a STRING.
func FromInterface(v interface{}) ExprValue {
	switch val := v.(type) {
	case nil:
		return Null
	case ExprValue:
		return val
	case string:
		return String(val)
	case []byte:
		return String(val)
	case bool:
		return Boolean(val)
	case int8:
		return Byte(val)
	case int16:
		return Short(val)
	case int32:
		return Integer(val)
	case int:
		if val >= math.MinInt32 && val <= math.MaxInt32 {
			return Integer(val)
		}
		return Long(val)
	case int64:
		return Long(val)
	case uint8:
		return Short(val)
	case uint16:
		return Integer(val)
	case uint32:
		return Long(val)
	case uint:
		return Long(val)
	case uint64:
		return Long(val)
	case float32:
		return Float(val)
	case float64:
		return Double(val)
	case time.Time:
		return TimestampOf(val)
	case map[string]interface{}:
		names := make([]string, 0, len(val))
		for k := range val {
			names = append(names, k)
		}
		sort.Strings(names)
		values := make([]ExprValue, len(names))
		for i, k := range names {
			values[i] = FromInterface(val[k])
		}
		return NewTuple(names, values)
	case []interface{}:
		return CollectionOf(val...)
	}
	return String(fmt.Sprint(v))
}

// Convert wraps a native Go value as the declared column type. Strings are
// parsed with the strict literal rules; absent input yields NULL.
func Convert(v interface{}, t types.ExprType) (ExprValue, error) {
	if v == nil {
		return Null, nil
	}
	raw := FromInterface(v)
	if IsAbsent(raw) || raw.Type() == t || t == types.Undefined {
		return raw, nil
	}
	if s, ok := raw.(String); ok {
		return parseAs(string(s), t)
	}
	switch t {
	case types.Byte:
		n, err := AsByte(raw)
		return Byte(n), err
	case types.Short:
		n, err := AsShort(raw)
		return Short(n), err
	case types.Integer:
		n, err := AsInteger(raw)
		return Integer(n), err
	case types.Long:
		n, err := AsLong(raw)
		return Long(n), err
	case types.Float:
		f, err := AsFloat(raw)
		return Float(f), err
	case types.Double:
		f, err := AsDouble(raw)
		return Double(f), err
	case types.String:
		return String(Text(raw)), nil
	case types.Date:
		d, err := AsDate(raw)
		return Date{t: d}, err
	case types.Time:
		tm, err := AsTime(raw)
		return Time{t: tm}, err
	case types.Datetime:
		dt, err := AsDatetime(raw)
		return Datetime{t: dt}, err
	case types.Timestamp:
		ts, err := AsTimestamp(raw)
		return Timestamp{t: ts}, err
	}
	return raw, nil
}

func parseAs(s string, t types.ExprType) (ExprValue, error) {
	switch t {
	case types.Byte, types.Short, types.Integer, types.Long:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "converting %q to %s", s, t)
		}
		return Convert(n, t)
	case types.Float, types.Double:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "converting %q to %s", s, t)
		}
		return Convert(f, t)
	case types.Boolean:
		b, err := AsBoolean(String(s))
		return Boolean(b), err
	case types.Date:
		return NewDate(s)
	case types.Time:
		return NewTime(s)
	case types.Datetime:
		return NewDatetime(s)
	case types.Timestamp:
		return NewTimestamp(s)
	}
	return String(s), nil
}

// Text renders a value's canonical payload without SQL quoting
func Text(v ExprValue) string {
	switch x := v.(type) {
	case String:
		return string(x)
	case Date, Time, Datetime, Timestamp:
		return x.Value().(string)
	}
	if IsAbsent(v) {
		return ""
	}
	return v.String()
}
