package value

import (
	"math"
	"strings"
	"time"

	"github.com/vegasq/sqlcore/sqlerr"
)

// The accessors below read a payload of the requested type out of a value.
// Numeric accessors convert between numeric variants the way a Java numeric
// cast does: integral narrowing wraps, float to integral saturates.

func asInt64(v ExprValue, accessor string) (int64, error) {
	switch x := v.(type) {
	case Byte:
		return int64(x), nil
	case Short:
		return int64(x), nil
	case Integer:
		return int64(x), nil
	case Long:
		return int64(x), nil
	case Float:
		return saturate(float64(x), math.MinInt64, math.MaxInt64), nil
	case Double:
		return saturate(float64(x), math.MinInt64, math.MaxInt64), nil
	}
	return 0, sqlerr.TypeAccess(accessor, v.Type())
}

func saturate(f float64, lo, hi int64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f <= float64(lo):
		return lo
	case f >= float64(hi):
		return hi
	}
	return int64(f)
}

// AsByte reads a BYTE payload
func AsByte(v ExprValue) (int8, error) {
	if f, ok := floatOf(v); ok {
		return int8(saturate(f, math.MinInt32, math.MaxInt32)), nil
	}
	n, err := asInt64(v, "byte")
	return int8(n), err
}

// AsShort reads a SHORT payload
func AsShort(v ExprValue) (int16, error) {
	if f, ok := floatOf(v); ok {
		return int16(saturate(f, math.MinInt32, math.MaxInt32)), nil
	}
	n, err := asInt64(v, "short")
	return int16(n), err
}

// AsInteger reads an INTEGER payload
func AsInteger(v ExprValue) (int32, error) {
	if f, ok := floatOf(v); ok {
		return int32(saturate(f, math.MinInt32, math.MaxInt32)), nil
	}
	n, err := asInt64(v, "integer")
	return int32(n), err
}

// AsLong reads a LONG payload
func AsLong(v ExprValue) (int64, error) {
	return asInt64(v, "long")
}

// AsFloat reads a FLOAT payload
func AsFloat(v ExprValue) (float32, error) {
	if f, ok := floatOf(v); ok {
		return float32(f), nil
	}
	n, err := asInt64(v, "float")
	return float32(n), err
}

// AsDouble reads a DOUBLE payload
func AsDouble(v ExprValue) (float64, error) {
	if f, ok := floatOf(v); ok {
		return f, nil
	}
	n, err := asInt64(v, "double")
	return float64(n), err
}

func floatOf(v ExprValue) (float64, bool) {
	switch x := v.(type) {
	case Float:
		return float64(x), true
	case Double:
		return float64(x), true
	}
	return 0, false
}

// AsBoolean reads a BOOLEAN payload. A STRING holding true or false, in any
// case, is accepted.
func AsBoolean(v ExprValue) (bool, error) {
	switch x := v.(type) {
	case Boolean:
		return bool(x), nil
	case String:
		switch {
		case strings.EqualFold(string(x), "true"):
			return true, nil
		case strings.EqualFold(string(x), "false"):
			return false, nil
		}
		return false, sqlerr.Evaluation("boolean:%s in unsupported format, please use true or false", string(x))
	}
	return false, sqlerr.TypeAccess("boolean", v.Type())
}

// AsString reads a STRING payload
func AsString(v ExprValue) (string, error) {
	if s, ok := v.(String); ok {
		return string(s), nil
	}
	return "", sqlerr.TypeAccess("string", v.Type())
}

// AsDate reads the calendar date of a value
func AsDate(v ExprValue) (time.Time, error) {
	switch x := v.(type) {
	case Date:
		return x.t, nil
	case Datetime:
		return midnight(x.t), nil
	case Timestamp:
		return midnight(x.t), nil
	case String:
		if t, ok := parseDatetime(string(x)); ok {
			return midnight(t), nil
		}
		d, err := NewDate(string(x))
		return d.t, err
	}
	return time.Time{}, sqlerr.TypeAccess("date", v.Type())
}

// AsTime reads the time of day of a value, anchored on 1970-01-01
func AsTime(v ExprValue) (time.Time, error) {
	switch x := v.(type) {
	case Time:
		return x.t, nil
	case Date:
		return epoch, nil
	case Datetime:
		return timeOfDay(x.t), nil
	case Timestamp:
		return timeOfDay(x.t), nil
	case String:
		if t, ok := parseDatetime(string(x)); ok {
			return timeOfDay(t), nil
		}
		tv, err := NewTime(string(x))
		return tv.t, err
	}
	return time.Time{}, sqlerr.TypeAccess("time", v.Type())
}

// AsDatetime reads a date and time of day
func AsDatetime(v ExprValue) (time.Time, error) {
	switch x := v.(type) {
	case Datetime:
		return x.t, nil
	case Date:
		return x.t, nil
	case Timestamp:
		return x.t, nil
	case String:
		if t, ok := parseDatetime(string(x)); ok {
			return t, nil
		}
		if t, ok := parseDate(string(x)); ok {
			return t, nil
		}
		return time.Time{}, sqlerr.Format("datetime", string(x), DatetimePattern)
	}
	return time.Time{}, sqlerr.TypeAccess("datetime", v.Type())
}

// AsTimestamp reads an instant in UTC
func AsTimestamp(v ExprValue) (time.Time, error) {
	switch x := v.(type) {
	case Timestamp:
		return x.t, nil
	case Datetime:
		return x.t, nil
	case Date:
		return x.t, nil
	case String:
		ts, err := NewTimestamp(string(x))
		return ts.t, err
	}
	return time.Time{}, sqlerr.TypeAccess("timestamp", v.Type())
}

// AsTuple reads a STRUCT payload
func AsTuple(v ExprValue) (Tuple, error) {
	if t, ok := v.(Tuple); ok {
		return t, nil
	}
	return Tuple{}, sqlerr.TypeAccess("tuple", v.Type())
}

// AsCollection reads an ARRAY payload
func AsCollection(v ExprValue) (Collection, error) {
	if c, ok := v.(Collection); ok {
		return c, nil
	}
	return nil, sqlerr.TypeAccess("collection", v.Type())
}
