package docstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/function"
	"github.com/vegasq/sqlcore/storage"
	"github.com/vegasq/sqlcore/types"
	"github.com/vegasq/sqlcore/value"
)

const events = `{"user": "ann", "status": 200, "took": 1.5, "tags": ["a", "b"]}
{"user": "bob", "status": 404, "took": 2, "geo": {"country": "NL"}}

{"user": "cid", "status": null, "tags": ["b"]}
{"user": "dee", "status": 200, "took": 0.25}
`

func collection(t *testing.T) *Collection {
	t.Helper()
	c, err := New("events", events, nil)
	require.NoError(t, err)
	return c
}

func scan(t *testing.T, c *Collection, req storage.ScanRequest) ([]expression.Row, storage.Applied) {
	t.Helper()
	it, applied, err := c.Open(context.Background(), req)
	require.NoError(t, err)
	var rows []expression.Row
	for {
		row, err := it.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		rows = append(rows, row)
	}
	require.NoError(t, it.Close())
	return rows, applied
}

func bound(t *testing.T, c *Collection, e expression.Expression) expression.Expression {
	t.Helper()
	b, err := expression.Bind(e, c.Schema())
	require.NoError(t, err)
	return b
}

func users(rows []expression.Row) []interface{} {
	var out []interface{}
	for _, r := range rows {
		out = append(out, r[0].Value())
	}
	return out
}

func TestInferredSchema(t *testing.T) {
	c := collection(t)
	assert.Equal(t, 4, c.Len())
	assert.Equal(t, expression.Schema{
		{Name: "user", Type: types.String},
		{Name: "status", Type: types.Long},
		{Name: "took", Type: types.Double},
		{Name: "tags", Type: types.Array},
		{Name: "geo", Type: types.Struct},
	}, c.Schema())
}

func TestRowsConvertToColumnTypes(t *testing.T) {
	rows, applied := scan(t, collection(t), storage.ScanRequest{Limit: -1})
	assert.Equal(t, storage.Applied{}, applied)
	require.Len(t, rows, 4)

	assert.Equal(t, expression.Row{
		value.String("ann"), value.Long(200), value.Double(1.5), value.CollectionOf("a", "b"), value.Missing,
	}, rows[0])
	assert.Equal(t, value.Double(2), rows[1][2])
	assert.Equal(t, value.TupleOf("country", "NL"), rows[1][4])
	assert.Equal(t, value.Null, rows[2][1])
	assert.Equal(t, value.Missing, rows[2][2])
}

func TestNativeFilter(t *testing.T) {
	c := collection(t)
	status := expression.Ref("status", types.Long)
	tags := expression.Ref("tags", types.Array)

	tests := []struct {
		name   string
		filter expression.Expression
		native bool
		want   []interface{}
	}{
		{
			name:   "equality",
			filter: function.Default().MustCompile(function.Equal, status, expression.Lit(200)),
			native: true,
			want:   []interface{}{"ann", "dee"},
		},
		{
			name:   "literal first",
			filter: function.Default().MustCompile(function.Equal, expression.Lit("bob"), expression.Ref("user", types.String)),
			native: true,
			want:   []interface{}{"bob"},
		},
		{
			name: "conjunction of in lists",
			filter: expression.AndOf(
				expression.NewIn(status, []value.ExprValue{value.Integer(200), value.Integer(404)}),
				expression.NewIn(expression.Ref("user", types.String), []value.ExprValue{value.String("bob"), value.String("dee")}),
			),
			native: true,
			want:   []interface{}{"bob", "dee"},
		},
		{
			name:   "multi-valued field",
			filter: expression.NewIn(tags, []value.ExprValue{value.String("b")}),
			native: true,
			want:   []interface{}{"ann", "cid"},
		},
		{
			name: "disjunction stays local",
			filter: expression.OrOf(
				expression.NewIn(status, []value.ExprValue{value.Long(404)}),
				&expression.IsNull{Expr: status},
			),
		},
		{
			name:   "comparison stays local",
			filter: function.Default().MustCompile(function.Greater, status, expression.Lit(200)),
		},
		{
			name:   "mismatched literal type stays local",
			filter: expression.NewIn(expression.Ref("user", types.String), []value.ExprValue{value.Long(1)}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, applied := scan(t, c, storage.ScanRequest{Filter: bound(t, c, tt.filter), Limit: -1})
			assert.Equal(t, tt.native, applied.Filter)
			if tt.native {
				assert.Equal(t, tt.want, users(rows))
			} else {
				assert.Len(t, rows, c.Len())
			}
		})
	}
}

func TestLimitNeedsFilterAndNoSort(t *testing.T) {
	c := collection(t)
	status := expression.Ref("status", types.Long)
	native := bound(t, c, expression.NewIn(status, []value.ExprValue{value.Long(200), value.Long(404)}))

	rows, applied := scan(t, c, storage.ScanRequest{Filter: native, Limit: 1, Offset: 1})
	assert.True(t, applied.Limit)
	assert.Equal(t, []interface{}{"bob"}, users(rows))

	local := bound(t, c, &expression.IsNotNull{Expr: status})
	_, applied = scan(t, c, storage.ScanRequest{Filter: local, Limit: 1})
	assert.False(t, applied.Limit)

	rows, applied = scan(t, c, storage.ScanRequest{Limit: 2})
	assert.True(t, applied.Limit)
	assert.Len(t, rows, 2)
}

func TestProjection(t *testing.T) {
	rows, applied := scan(t, collection(t), storage.ScanRequest{Projection: []string{"user"}, Limit: -1})
	assert.True(t, applied.Projection)
	assert.Equal(t, expression.Row{value.String("dee"), value.Missing, value.Missing, value.Missing, value.Missing}, rows[3])
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.ndjson")
	require.NoError(t, os.WriteFile(path, []byte(events), 0o644))
	c, err := Open("events", path)
	require.NoError(t, err)
	assert.Equal(t, "events", c.Name())
	assert.Equal(t, 4, c.Len())

	_, err = New("broken", "{\"a\": 1}\n[1, 2]\n", nil)
	assert.ErrorContains(t, err, "broken: line 2 is not a JSON object")
}
