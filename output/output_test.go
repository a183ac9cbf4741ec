package output

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/types"
	"github.com/vegasq/sqlcore/value"
)

var schema = expression.Schema{
	{Name: "id", Type: types.Long},
	{Name: "name", Type: types.String},
	{Name: "score", Type: types.Double},
	{Name: "active", Type: types.Boolean},
}

func row(vals ...value.ExprValue) value.Tuple {
	names := make([]string, len(vals))
	for i := range vals {
		names[i] = schema[i].Name
	}
	return value.NewTuple(names, vals)
}

var rows = []value.Tuple{
	row(value.Long(1), value.String("alice"), value.Double(95.5), value.Boolean(true)),
	row(value.Long(2), value.Null, value.Missing, value.Boolean(false)),
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(&buf).Format(schema, rows))
	assert.Equal(t,
		`{"id":1,"name":"alice","score":95.5,"active":true}`+"\n"+
			`{"id":2,"name":null,"active":false}`+"\n",
		buf.String())
}

func TestJSONFormatterNested(t *testing.T) {
	s := expression.Schema{{Name: "tags", Type: types.Array}, {Name: "geo", Type: types.Struct}}
	r := value.NewTuple([]string{"tags", "geo"}, []value.ExprValue{value.CollectionOf("a", "b"), value.TupleOf("country", "NL")})

	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(&buf).Format(s, []value.Tuple{r}))
	assert.Equal(t, `{"tags":["a","b"],"geo":{"country":"NL"}}`+"\n", buf.String())
}

func TestJSONFormatterEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(&buf).Format(schema, nil))
	assert.Empty(t, buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestJSONFormatterWriteError(t *testing.T) {
	many := make([]value.Tuple, 1000)
	for i := range many {
		many[i] = rows[0]
	}
	err := NewJSONFormatter(failingWriter{}).Format(schema, many)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "writing row")
	assert.Contains(t, err.Error(), "disk full")

	err = NewJSONFormatter(failingWriter{}).Format(schema, rows)
	assert.EqualError(t, err, "disk full")
}

func TestCSVFormatter(t *testing.T) {
	tests := []struct {
		name      string
		rows      []value.Tuple
		wantLines int
	}{
		{name: "empty rows", wantLines: 1},
		{name: "single row", rows: rows[:1], wantLines: 2},
		{name: "multiple rows", rows: rows, wantLines: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewCSVFormatter(&buf).Format(schema, tt.rows))

			records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
			require.NoError(t, err)
			require.Len(t, records, tt.wantLines)
			assert.Equal(t, []string{"id", "name", "score", "active"}, records[0])
		})
	}
}

func TestCSVValues(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVFormatter(&buf).Format(schema, rows))
	assert.Equal(t, "id,name,score,active\n1,alice,95.5,true\n2,,,false\n", buf.String())
}

func TestCSVInjection(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"=SUM(A1:A2)", "'=SUM(A1:A2)"},
		{"+1", "'+1"},
		{"-1", "'-1"},
		{"@cmd", "'@cmd"},
		{"|pipe", "'|pipe"},
		{"=it's", "'=it''s"},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, formatValue(value.String(tt.in)))
		})
	}
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(&buf).Format(schema, rows))
	out := buf.String()

	assert.Contains(t, out, "| id |")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "NULL")
	assert.True(t, strings.HasSuffix(out, "(2 rows)\n"))

	buf.Reset()
	require.NoError(t, NewTableFormatter(&buf).Format(schema, rows[:1]))
	assert.True(t, strings.HasSuffix(buf.String(), "(1 row)\n"))
}

func TestHeaderQualifiesDuplicates(t *testing.T) {
	s := expression.Schema{
		{Name: "id", Type: types.Long, Qualifier: "l"},
		{Name: "id", Type: types.Long, Qualifier: "r"},
		{Name: "name", Type: types.String, Qualifier: "r"},
	}
	assert.Equal(t, []string{"l.id", "r.id", "name"}, Header(s))
}

func TestNew(t *testing.T) {
	for _, name := range append(Formats, "JSON") {
		f, err := New(name, &bytes.Buffer{})
		require.NoError(t, err, name)
		assert.NotNil(t, f)
	}
	_, err := New("xml", &bytes.Buffer{})
	assert.ErrorContains(t, err, `unknown output format "xml"`)
}

func TestShortRowsAreMissing(t *testing.T) {
	var buf bytes.Buffer
	short := value.NewTuple([]string{"id"}, []value.ExprValue{value.Long(3)})
	require.NoError(t, NewJSONFormatter(&buf).Format(schema, []value.Tuple{short}))
	assert.Equal(t, `{"id":3}`+"\n", buf.String())
}
