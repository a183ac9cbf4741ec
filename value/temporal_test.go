package value

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/sqlcore/sqlerr"
	"github.com/vegasq/sqlcore/types"
)

func clock(h, m, s, ns int) time.Time {
	return time.Date(1970, 1, 1, h, m, s, ns, time.UTC)
}

func TestTimeValue(t *testing.T) {
	v, err := NewTime("01:01:01")
	require.NoError(t, err)

	assert.Equal(t, types.Time, v.Type())
	assert.Equal(t, "01:01:01", v.Value())
	assert.Equal(t, "TIME '01:01:01'", v.String())

	got, err := AsTime(v)
	require.NoError(t, err)
	assert.Equal(t, clock(1, 1, 1, 0), got)

	_, err = AsTime(Integer(1))
	require.Error(t, err)
	assert.Equal(t, "invalid to get timeValue from value of type INTEGER", err.Error())
	assert.True(t, sqlerr.Is(err, sqlerr.TypeAccessError))
}

func TestTimestampValue(t *testing.T) {
	v, err := NewTimestamp("2020-07-07 01:01:01")
	require.NoError(t, err)

	assert.Equal(t, types.Timestamp, v.Type())
	assert.Equal(t, "2020-07-07 01:01:01", v.Value())
	assert.Equal(t, "TIMESTAMP '2020-07-07 01:01:01'", v.String())

	ts, err := AsTimestamp(v)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 7, 7, 1, 1, 1, 0, time.UTC), ts)

	d, err := AsDate(v)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 7, 7, 0, 0, 0, 0, time.UTC), d)

	tm, err := AsTime(v)
	require.NoError(t, err)
	assert.Equal(t, clock(1, 1, 1, 0), tm)

	_, err = AsTimestamp(Integer(1))
	assert.EqualError(t, err, "invalid to get timestampValue from value of type INTEGER")
}

func TestDateValue(t *testing.T) {
	v, err := NewDate("2012-07-07")
	require.NoError(t, err)
	assert.Equal(t, "2012-07-07", v.Value())
	assert.Equal(t, "DATE '2012-07-07'", v.String())

	tm, err := AsTime(v)
	require.NoError(t, err)
	assert.Equal(t, clock(0, 0, 0, 0), tm)

	dt, err := AsDatetime(v)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2012, 7, 7, 0, 0, 0, 0, time.UTC), dt)

	_, err = AsDate(Integer(1))
	assert.EqualError(t, err, "invalid to get dateValue from value of type INTEGER")
}

func TestDatetimeValue(t *testing.T) {
	v, err := NewDatetime("2020-08-17 19:44:00")
	require.NoError(t, err)
	assert.Equal(t, "DATETIME '2020-08-17 19:44:00'", v.String())

	tm, err := AsTime(v)
	require.NoError(t, err)
	assert.Equal(t, clock(19, 44, 0, 0), tm)

	_, err = AsDatetime(Integer(1))
	assert.EqualError(t, err, "invalid to get datetimeValue from value of type INTEGER")
}

func TestUnsupportedFormats(t *testing.T) {
	tests := []struct {
		name  string
		parse func() error
		want  string
	}{
		{
			name:  "date with zone",
			parse: func() error { _, err := NewDate("2020-07-07Z"); return err },
			want:  "date:2020-07-07Z in unsupported format, please use yyyy-MM-dd",
		},
		{
			name:  "short time",
			parse: func() error { _, err := NewTime("01:01:0"); return err },
			want:  "time:01:01:0 in unsupported format, please use HH:mm:ss[.SSSSSS]",
		},
		{
			name:  "time over micro precision",
			parse: func() error { _, err := NewTime("01:01:01.1234567"); return err },
			want:  "time:01:01:01.1234567 in unsupported format, please use HH:mm:ss[.SSSSSS]",
		},
		{
			name:  "iso timestamp",
			parse: func() error { _, err := NewTimestamp("2020-07-07T01:01:01Z"); return err },
			want:  "timestamp:2020-07-07T01:01:01Z in unsupported format, please use yyyy-MM-dd HH:mm:ss[.SSSSSS]",
		},
		{
			name:  "timestamp over micro precision",
			parse: func() error { _, err := NewTimestamp("2020-07-07 01:01:01.1234567"); return err },
			want:  "timestamp:2020-07-07 01:01:01.1234567 in unsupported format, please use yyyy-MM-dd HH:mm:ss[.SSSSSS]",
		},
		{
			name:  "iso datetime",
			parse: func() error { _, err := NewDatetime("2020-07-07T01:01:01Z"); return err },
			want:  "datetime:2020-07-07T01:01:01Z in unsupported format, please use yyyy-MM-dd HH:mm:ss[.SSSSSS]",
		},
		{
			name:  "invalid calendar day",
			parse: func() error { _, err := NewDate("2020-02-30"); return err },
			want:  "date:2020-02-30 in unsupported format, please use yyyy-MM-dd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.parse()
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
			assert.True(t, sqlerr.Is(err, sqlerr.FormatError))
		})
	}
}

func TestStringIsPolymorphic(t *testing.T) {
	s := String("2020-08-17 19:44:00")
	dt, err := AsDatetime(s)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 8, 17, 19, 44, 0, 0, time.UTC), dt)

	d, err := AsDate(s)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 8, 17, 0, 0, 0, 0, time.UTC), d)

	tm, err := AsTime(s)
	require.NoError(t, err)
	assert.Equal(t, clock(19, 44, 0, 0), tm)
	assert.Equal(t, `"2020-08-17 19:44:00"`, s.String())

	dt, err = AsDatetime(String("2020-08-17"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 8, 17, 0, 0, 0, 0, time.UTC), dt)

	_, err = AsDatetime(String("2020-07-07T01:01:01Z"))
	assert.EqualError(t, err, "datetime:2020-07-07T01:01:01Z in unsupported format, please use yyyy-MM-dd HH:mm:ss[.SSSSSS]")

	_, err = AsDate(String("2020-07-07Z"))
	assert.EqualError(t, err, "date:2020-07-07Z in unsupported format, please use yyyy-MM-dd")

	_, err = AsTime(String("01:01:0"))
	assert.EqualError(t, err, "time:01:01:0 in unsupported format, please use HH:mm:ss[.SSSSSS]")
}

func TestVariableMicroPrecision(t *testing.T) {
	var micros strings.Builder
	for precision := 1; precision <= 6; precision++ {
		micros.WriteString(fmt.Sprint(precision))
		literal := "10:11:12." + micros.String()

		tv, err := NewTime(literal)
		require.NoError(t, err, literal)
		assert.Equal(t, literal, tv.Value())

		ts, err := NewTimestamp("2020-08-17 " + literal)
		require.NoError(t, err)
		assert.Equal(t, "2020-08-17 "+literal, ts.Value())

		dt, err := NewDatetime("2020-08-17 " + literal)
		require.NoError(t, err)
		got, err := AsTime(dt)
		require.NoError(t, err)
		assert.Equal(t, tv.Time(), got)
	}
}
