package function

import (
	"strconv"
	"strings"

	"github.com/vegasq/sqlcore/sqlerr"
	"github.com/vegasq/sqlcore/types"
	"github.com/vegasq/sqlcore/value"
)

// Cast function names.
const (
	CastToString    = "cast_to_string"
	CastToByte      = "cast_to_byte"
	CastToShort     = "cast_to_short"
	CastToInt       = "cast_to_int"
	CastToLong      = "cast_to_long"
	CastToFloat     = "cast_to_float"
	CastToDouble    = "cast_to_double"
	CastToBoolean   = "cast_to_boolean"
	CastToDate      = "cast_to_date"
	CastToTime      = "cast_to_time"
	CastToTimestamp = "cast_to_timestamp"
	CastToDatetime  = "cast_to_datetime"
)

// CastName returns the cast function producing t
func CastName(t types.ExprType) (string, bool) {
	switch t {
	case types.String:
		return CastToString, true
	case types.Byte:
		return CastToByte, true
	case types.Short:
		return CastToShort, true
	case types.Integer:
		return CastToInt, true
	case types.Long:
		return CastToLong, true
	case types.Float:
		return CastToFloat, true
	case types.Double:
		return CastToDouble, true
	case types.Boolean:
		return CastToBoolean, true
	case types.Date:
		return CastToDate, true
	case types.Time:
		return CastToTime, true
	case types.Timestamp:
		return CastToTimestamp, true
	case types.Datetime:
		return CastToDatetime, true
	}
	return "", false
}

func registerCasts(g *registrar) {
	for _, t := range []types.ExprType{
		types.Byte, types.Short, types.Integer, types.Long, types.Float, types.Double,
		types.Boolean, types.Time, types.Date, types.Timestamp, types.Datetime,
	} {
		g.add(CastToString, types.String, unary(func(v value.ExprValue) (value.ExprValue, error) {
			return value.String(value.Text(v)), nil
		}), t)
	}
	g.add(CastToString, types.String, unary(identity), types.String)

	registerNumericCast(g, CastToByte, types.Byte, func(s string) (value.ExprValue, error) {
		n, err := parseInt(s, 16, types.Byte)
		return value.Byte(int8(n)), err
	}, func(f float64) value.ExprValue {
		n, _ := value.AsShort(value.Double(f))
		return value.Byte(int8(n))
	})
	registerNumericCast(g, CastToShort, types.Short, func(s string) (value.ExprValue, error) {
		n, err := parseInt(s, 16, types.Short)
		return value.Short(n), err
	}, func(f float64) value.ExprValue {
		n, _ := value.AsShort(value.Double(f))
		return value.Short(n)
	})
	registerNumericCast(g, CastToInt, types.Integer, func(s string) (value.ExprValue, error) {
		n, err := parseInt(s, 32, types.Integer)
		return value.Integer(n), err
	}, func(f float64) value.ExprValue {
		n, _ := value.AsInteger(value.Double(f))
		return value.Integer(n)
	})
	registerNumericCast(g, CastToLong, types.Long, func(s string) (value.ExprValue, error) {
		n, err := parseInt(s, 64, types.Long)
		return value.Long(n), err
	}, func(f float64) value.ExprValue {
		n, _ := value.AsLong(value.Double(f))
		return value.Long(n)
	})
	registerNumericCast(g, CastToFloat, types.Float, func(s string) (value.ExprValue, error) {
		f, err := parseFloat(s, 32, types.Float)
		return value.Float(f), err
	}, func(f float64) value.ExprValue {
		return value.Float(f)
	})
	registerNumericCast(g, CastToDouble, types.Double, func(s string) (value.ExprValue, error) {
		f, err := parseFloat(s, 64, types.Double)
		return value.Double(f), err
	}, func(f float64) value.ExprValue {
		return value.Double(f)
	})

	g.add(CastToBoolean, types.Boolean, unary(func(v value.ExprValue) (value.ExprValue, error) {
		return value.Boolean(strings.EqualFold(string(v.(value.String)), "true")), nil
	}), types.String)
	g.add(CastToBoolean, types.Boolean, unary(func(v value.ExprValue) (value.ExprValue, error) {
		f, err := value.AsDouble(v)
		return value.Boolean(f != 0), err
	}), types.Double)
	g.add(CastToBoolean, types.Boolean, unary(identity), types.Boolean)

	g.add(CastToDate, types.Date, unary(func(v value.ExprValue) (value.ExprValue, error) {
		return value.NewDate(string(v.(value.String)))
	}), types.String)
	for _, t := range []types.ExprType{types.Datetime, types.Timestamp} {
		g.add(CastToDate, types.Date, unary(func(v value.ExprValue) (value.ExprValue, error) {
			d, err := value.AsDate(v)
			return value.DateOf(d), err
		}), t)
	}
	g.add(CastToDate, types.Date, unary(identity), types.Date)

	g.add(CastToTime, types.Time, unary(func(v value.ExprValue) (value.ExprValue, error) {
		return value.NewTime(string(v.(value.String)))
	}), types.String)
	for _, t := range []types.ExprType{types.Datetime, types.Timestamp} {
		g.add(CastToTime, types.Time, unary(func(v value.ExprValue) (value.ExprValue, error) {
			tm, err := value.AsTime(v)
			return value.TimeOf(tm), err
		}), t)
	}
	g.add(CastToTime, types.Time, unary(identity), types.Time)

	g.add(CastToTimestamp, types.Timestamp, unary(func(v value.ExprValue) (value.ExprValue, error) {
		return value.NewTimestamp(string(v.(value.String)))
	}), types.String)
	g.add(CastToTimestamp, types.Timestamp, unary(func(v value.ExprValue) (value.ExprValue, error) {
		ts, err := value.AsTimestamp(v)
		return value.TimestampOf(ts), err
	}), types.Datetime)
	g.add(CastToTimestamp, types.Timestamp, unary(identity), types.Timestamp)

	g.add(CastToDatetime, types.Datetime, unary(func(v value.ExprValue) (value.ExprValue, error) {
		return value.NewDatetime(string(v.(value.String)))
	}), types.String)
	for _, t := range []types.ExprType{types.Timestamp, types.Date} {
		g.add(CastToDatetime, types.Datetime, unary(func(v value.ExprValue) (value.ExprValue, error) {
			dt, err := value.AsDatetime(v)
			return value.DatetimeOf(dt), err
		}), t)
	}
	g.add(CastToDatetime, types.Datetime, unary(identity), types.Datetime)
}

// registerNumericCast registers the STRING, DOUBLE and BOOLEAN sources of a
// numeric cast plus its identity signature
func registerNumericCast(
	g *registrar,
	name string,
	target types.ExprType,
	fromString func(string) (value.ExprValue, error),
	fromDouble func(float64) value.ExprValue,
) {
	g.add(name, target, unary(func(v value.ExprValue) (value.ExprValue, error) {
		return fromString(string(v.(value.String)))
	}), types.String)
	if target != types.Double {
		g.add(name, target, unary(func(v value.ExprValue) (value.ExprValue, error) {
			f, err := value.AsDouble(v)
			if err != nil {
				return nil, err
			}
			return fromDouble(f), nil
		}), types.Double)
	}
	g.add(name, target, unary(func(v value.ExprValue) (value.ExprValue, error) {
		b, err := value.AsBoolean(v)
		if err != nil {
			return nil, err
		}
		if b {
			return fromDouble(1), nil
		}
		return fromDouble(0), nil
	}), types.Boolean)
	g.add(name, target, unary(identity), target)
}

func parseInt(s string, bitSize int, target types.ExprType) (int64, error) {
	n, err := strconv.ParseInt(s, 10, bitSize)
	if err != nil {
		return 0, sqlerr.Evaluation("invalid %s literal %q", target, s)
	}
	return n, nil
}

func parseFloat(s string, bitSize int, target types.ExprType) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), bitSize)
	if err != nil {
		return 0, sqlerr.Evaluation("invalid %s literal %q", target, s)
	}
	return f, nil
}
