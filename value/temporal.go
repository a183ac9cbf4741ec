package value

import (
	"regexp"
	"time"

	"github.com/vegasq/sqlcore/sqlerr"
	"github.com/vegasq/sqlcore/types"
)

// Patterns quoted in format errors.
const (
	DatePattern     = "yyyy-MM-dd"
	TimePattern     = "HH:mm:ss[.SSSSSS]"
	DatetimePattern = "yyyy-MM-dd HH:mm:ss[.SSSSSS]"
)

const (
	dateLayout     = "2006-01-02"
	timeLayout     = "15:04:05.999999"
	datetimeLayout = "2006-01-02 15:04:05.999999"
)

var (
	dateRegexp     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRegexp     = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}(\.\d{1,6})?$`)
	datetimeRegexp = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(\.\d{1,6})?$`)
)

// epoch is the date every TIME value is anchored to
var epoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

func parseDate(s string) (time.Time, bool) {
	if !dateRegexp.MatchString(s) {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, s)
	return t, err == nil
}

func parseTime(s string) (time.Time, bool) {
	if !timeRegexp.MatchString(s) {
		return time.Time{}, false
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return timeOfDay(t), true
}

func parseDatetime(s string) (time.Time, bool) {
	if !datetimeRegexp.MatchString(s) {
		return time.Time{}, false
	}
	t, err := time.Parse(datetimeLayout, s)
	return t, err == nil
}

func timeOfDay(t time.Time) time.Time {
	return epoch.Add(time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond()))
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Date is a DATE value
type Date struct{ t time.Time }

// NewDate parses a yyyy-MM-dd literal
func NewDate(s string) (Date, error) {
	t, ok := parseDate(s)
	if !ok {
		return Date{}, sqlerr.Format("date", s, DatePattern)
	}
	return Date{t: t}, nil
}

// DateOf truncates t to its calendar date
func DateOf(t time.Time) Date { return Date{t: midnight(t)} }

func (v Date) Type() types.ExprType { return types.Date }
func (v Date) Value() interface{}   { return v.t.Format(dateLayout) }
func (v Date) String() string       { return "DATE '" + v.t.Format(dateLayout) + "'" }
func (v Date) Time() time.Time      { return v.t }
func (Date) exprValue()             {}

// Time is a TIME value
type Time struct{ t time.Time }

// NewTime parses an HH:mm:ss[.SSSSSS] literal
func NewTime(s string) (Time, error) {
	t, ok := parseTime(s)
	if !ok {
		return Time{}, sqlerr.Format("time", s, TimePattern)
	}
	return Time{t: t}, nil
}

// TimeOf keeps the time of day of t
func TimeOf(t time.Time) Time { return Time{t: timeOfDay(t)} }

func (v Time) Type() types.ExprType { return types.Time }
func (v Time) Value() interface{}   { return v.t.Format(timeLayout) }
func (v Time) String() string       { return "TIME '" + v.t.Format(timeLayout) + "'" }
func (v Time) Time() time.Time      { return v.t }
func (Time) exprValue()             {}

// Datetime is a DATETIME value, a date and time of day without a zone
type Datetime struct{ t time.Time }

// NewDatetime parses a yyyy-MM-dd HH:mm:ss[.SSSSSS] literal
func NewDatetime(s string) (Datetime, error) {
	t, ok := parseDatetime(s)
	if !ok {
		return Datetime{}, sqlerr.Format("datetime", s, DatetimePattern)
	}
	return Datetime{t: t}, nil
}

// DatetimeOf drops the zone of t, keeping its wall clock
func DatetimeOf(t time.Time) Datetime {
	return Datetime{t: time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)}
}

func (v Datetime) Type() types.ExprType { return types.Datetime }
func (v Datetime) Value() interface{}   { return v.t.Format(datetimeLayout) }
func (v Datetime) String() string       { return "DATETIME '" + v.t.Format(datetimeLayout) + "'" }
func (v Datetime) Time() time.Time      { return v.t }
func (Datetime) exprValue()             {}

// Timestamp is a TIMESTAMP value, an instant rendered in UTC
type Timestamp struct{ t time.Time }

// NewTimestamp parses a yyyy-MM-dd HH:mm:ss[.SSSSSS] literal as UTC
func NewTimestamp(s string) (Timestamp, error) {
	t, ok := parseDatetime(s)
	if !ok {
		return Timestamp{}, sqlerr.Format("timestamp", s, DatetimePattern)
	}
	return Timestamp{t: t}, nil
}

// TimestampOf converts t to UTC
func TimestampOf(t time.Time) Timestamp { return Timestamp{t: t.UTC()} }

func (v Timestamp) Type() types.ExprType { return types.Timestamp }
func (v Timestamp) Value() interface{}   { return v.t.Format(datetimeLayout) }
func (v Timestamp) String() string       { return "TIMESTAMP '" + v.t.Format(datetimeLayout) + "'" }
func (v Timestamp) Time() time.Time      { return v.t }
func (Timestamp) exprValue()             {}
