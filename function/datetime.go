package function

import (
	"strings"
	"time"

	"github.com/vegasq/sqlcore/sqlerr"
	"github.com/vegasq/sqlcore/types"
	"github.com/vegasq/sqlcore/value"
)

// datePart extracts an integer field from a date or time value. STRING
// arguments get their own overload so that resolution is not ambiguous
// between the temporal types a string widens into.
type datePart struct {
	name    string
	sources []types.ExprType
	read    func(value.ExprValue) (time.Time, error)
	field   func(time.Time) int
}

var dateParts = []datePart{
	{"year", dateSources, value.AsDatetime, func(t time.Time) int { return t.Year() }},
	{"month", dateSources, value.AsDatetime, func(t time.Time) int { return int(t.Month()) }},
	{"day_of_month", dateSources, value.AsDatetime, func(t time.Time) int { return t.Day() }},
	{"hour", timeSources, value.AsTime, func(t time.Time) int { return t.Hour() }},
	{"minute", timeSources, value.AsTime, func(t time.Time) int { return t.Minute() }},
	{"second", timeSources, value.AsTime, func(t time.Time) int { return t.Second() }},
}

var (
	dateSources = []types.ExprType{types.String, types.Date, types.Datetime, types.Timestamp}
	timeSources = []types.ExprType{types.String, types.Time, types.Datetime, types.Timestamp}
)

func registerDatetime(g *registrar) {
	for _, p := range dateParts {
		p := p
		for _, t := range p.sources {
			g.add(p.name, types.Integer, unary(func(v value.ExprValue) (value.ExprValue, error) {
				tm, err := p.read(v)
				if err != nil {
					return nil, err
				}
				return value.Integer(p.field(tm)), nil
			}), t)
		}
	}

	for _, t := range dateSources {
		g.add("date", types.Date, unary(func(v value.ExprValue) (value.ExprValue, error) {
			d, err := value.AsDate(v)
			if err != nil {
				return nil, err
			}
			return value.DateOf(d), nil
		}), t)
	}
	for _, t := range timeSources {
		g.add("time", types.Time, unary(func(v value.ExprValue) (value.ExprValue, error) {
			tm, err := value.AsTime(v)
			if err != nil {
				return nil, err
			}
			return value.TimeOf(tm), nil
		}), t)
	}
	for _, t := range []types.ExprType{types.String, types.Datetime, types.Timestamp} {
		g.add("timestamp", types.Timestamp, unary(func(v value.ExprValue) (value.ExprValue, error) {
			ts, err := value.AsTimestamp(v)
			if err != nil {
				return nil, err
			}
			return value.TimestampOf(ts), nil
		}), t)
	}

	for _, t := range []types.ExprType{types.Datetime, types.Timestamp} {
		t := t
		g.add("date_trunc", t, binary(func(unit, v value.ExprValue) (value.ExprValue, error) {
			tm, err := value.AsDatetime(v)
			if err != nil {
				return nil, err
			}
			truncated, err := truncate(str(unit), tm)
			if err != nil {
				return nil, err
			}
			if t == types.Timestamp {
				return value.TimestampOf(truncated), nil
			}
			return value.DatetimeOf(truncated), nil
		}), types.String, t)
	}
}

func truncate(unit string, t time.Time) (time.Time, error) {
	switch strings.ToLower(unit) {
	case "year":
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC), nil
	case "month":
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	case "day":
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	case "hour":
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, time.UTC), nil
	case "minute":
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
	}
	return time.Time{}, sqlerr.Evaluation("date_trunc: invalid unit: %s", unit)
}
