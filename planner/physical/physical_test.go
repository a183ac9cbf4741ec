package physical

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/planner/logical"
	"github.com/vegasq/sqlcore/sqlerr"
	"github.com/vegasq/sqlcore/storage/memory"
	"github.com/vegasq/sqlcore/types"
	"github.com/vegasq/sqlcore/value"
)

func values(rows ...[]interface{}) *Values {
	lv := logical.NewValues(rows...)
	return NewValues(lv.Schema(), lv.Rows)
}

// plain drains p and unwraps every row to native Go values
func plain(t *testing.T, p PhysicalPlan) [][]interface{} {
	t.Helper()
	rows, err := Drain(p)
	require.NoError(t, err)
	out := make([][]interface{}, len(rows))
	for i, r := range rows {
		tup, ok := r.(value.Tuple)
		require.True(t, ok, "row %d is %T", i, r)
		for _, v := range tup.Values() {
			out[i] = append(out[i], v.Value())
		}
	}
	return out
}

var accessSchema = expression.Schema{
	{Name: "action", Type: types.String},
	{Name: "response", Type: types.Integer},
}

func accessTable() *memory.Table {
	return memory.NewTable(accessSchema).
		MustInsert("GET", 200).
		MustInsert("GET", 404).
		MustInsert("POST", 200).
		MustInsert("POST", 500)
}

func scanOf(t *testing.T, name string, table *memory.Table) *Scan {
	t.Helper()
	s, err := NewScan(context.Background(), table, logical.ScanOf(logical.NewRelation(name, table.Schema())))
	require.NoError(t, err)
	return s
}

func TestValuesOperator(t *testing.T) {
	p := values([]interface{}{1, "abc"})
	assert.Empty(t, p.Children())

	ok, err := p.HasNext()
	require.NoError(t, err)
	assert.True(t, ok)

	v, err := p.Next()
	require.NoError(t, err)
	tup := v.(value.Tuple)
	assert.Equal(t, []value.ExprValue{value.Integer(1), value.String("abc")}, tup.Values())

	for i := 0; i < 3; i++ {
		ok, err = p.HasNext()
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestNextAfterEndIsContractViolation(t *testing.T) {
	newSort := func() PhysicalPlan {
		s, err := NewSort(values([]interface{}{1}), []logical.SortItem{logical.AscBy(expression.Ref("$0", types.Integer))})
		require.NoError(t, err)
		return s
	}
	ops := map[string]func() PhysicalPlan{
		"values": func() PhysicalPlan { return values() },
		"scan":   func() PhysicalPlan { return scanOf(t, "logs", memory.NewTable(accessSchema)) },
		"limit":  func() PhysicalPlan { return NewLimit(values([]interface{}{1}), 0, 0) },
		"sort":   newSort,
		"rare": func() PhysicalPlan {
			p, err := NewRareTopN(scanOf(t, "logs", memory.NewTable(accessSchema)), logical.Rare, 1,
				[]expression.Expression{expression.Ref("action", types.String)}, nil)
			require.NoError(t, err)
			return p
		},
	}

	for name, build := range ops {
		t.Run(name, func(t *testing.T) {
			p := build()
			_, err := Drain(p)
			require.NoError(t, err)

			_, err = p.Next()
			require.Error(t, err)
			assert.True(t, sqlerr.Is(err, sqlerr.ContractViolation))
			assert.True(t, sqlerr.IsInternal(err))
		})
	}
}

func TestTopNPerGroup(t *testing.T) {
	p, err := NewRareTopN(scanOf(t, "logs", accessTable()), logical.Top, 1,
		[]expression.Expression{expression.Ref("response", types.Integer)},
		[]expression.Expression{expression.Ref("action", types.String)},
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"action", "response"}, p.Schema().Names())
	assert.ElementsMatch(t, [][]interface{}{
		{"POST", int32(200)},
		{"GET", int32(200)},
	}, plain(t, p))
}

func TestRareTopN(t *testing.T) {
	action := []expression.Expression{expression.Ref("action", types.String)}
	response := []expression.Expression{expression.Ref("response", types.Integer)}

	tests := []struct {
		name    string
		command logical.CommandType
		n       int
		fields  []expression.Expression
		groupBy []expression.Expression
		want    [][]interface{}
	}{
		{
			name: "top without group", command: logical.Top, fields: action,
			want: [][]interface{}{{"GET"}, {"POST"}},
		},
		{
			name: "rare without group", command: logical.Rare, fields: action,
			want: [][]interface{}{{"GET"}, {"POST"}},
		},
		{
			name: "rare per group", command: logical.Rare, fields: response, groupBy: action,
			want: [][]interface{}{{"GET", int32(200)}, {"GET", int32(404)}, {"POST", int32(200)}, {"POST", int32(500)}},
		},
		{
			name: "top one of the responses", command: logical.Top, n: 1, fields: response,
			want: [][]interface{}{{int32(200)}},
		},
		{
			name: "rare one ties by first seen", command: logical.Rare, n: 1, fields: response,
			want: [][]interface{}{{int32(404)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewRareTopN(scanOf(t, "logs", accessTable()), tt.command, tt.n, tt.fields, tt.groupBy)
			require.NoError(t, err)
			assert.Equal(t, tt.want, plain(t, p))
		})
	}
}

func TestScanAppliesHintsTheAdapterIgnores(t *testing.T) {
	node := logical.ScanOf(logical.NewRelation("logs", accessSchema))
	node.Filter = &expression.Or{
		Left:  expression.NewIn(expression.Ref("response", types.Integer), []value.ExprValue{value.Integer(200)}),
		Right: expression.NewIn(expression.Ref("action", types.String), []value.ExprValue{value.String("POST")}),
	}
	node.Sort = []logical.SortItem{logical.DescBy(expression.Ref("response", types.Integer))}
	node.Projection = []string{"response", "action"}
	node.Limit, node.Offset = 2, 1

	want := [][]interface{}{{"GET", int32(200)}, {"POST", int32(200)}}
	for name, hints := range map[string]memory.Hints{
		"all":     memory.AllHints,
		"none":    {},
		"filter":  {Filter: true},
		"sort":    {Sort: true, Limit: true},
		"no sort": {Filter: true, Limit: true, Projection: true},
	} {
		t.Run(name, func(t *testing.T) {
			s, err := NewScan(context.Background(), accessTable().WithHints(hints), node)
			require.NoError(t, err)
			assert.Equal(t, want, plain(t, s))
		})
	}
}

func TestScanIsLazy(t *testing.T) {
	table := accessTable()
	s := scanOf(t, "logs", table)
	assert.Equal(t, 0, table.Opens)

	ok, err := s.HasNext()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, table.Opens)
}

func TestFilterProjectLimit(t *testing.T) {
	f, err := NewFilter(scanOf(t, "logs", accessTable()), &expression.Or{
		Left:  expression.NewIn(expression.Ref("response", types.Integer), []value.ExprValue{value.Integer(404)}),
		Right: expression.NewIn(expression.Ref("response", types.Integer), []value.ExprValue{value.Integer(500)}),
	})
	require.NoError(t, err)
	p, err := NewProject(f, []*expression.Named{
		expression.As("code", expression.Ref("logs.response", types.Integer)),
		expression.As("missing", &expression.IsNull{Expr: expression.Ref("action", types.String)}),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"code", "missing"}, p.Schema().Names())
	assert.Equal(t, [][]interface{}{{int32(404), false}}, plain(t, NewLimit(p, 1, 0)))
}

func TestLimitOffset(t *testing.T) {
	p := NewLimit(values([]interface{}{1}, []interface{}{2}, []interface{}{3}), 5, 1)
	assert.Equal(t, [][]interface{}{{int32(2)}, {int32(3)}}, plain(t, p))
}

func TestSortOptions(t *testing.T) {
	rows := func() *Values {
		return values([]interface{}{int64(2)}, []interface{}{nil}, []interface{}{int64(1)}, []interface{}{value.Missing})
	}
	ref := expression.Ref("$0", types.Long)

	tests := []struct {
		name string
		item logical.SortItem
		want [][]interface{}
	}{
		{"asc nulls first", logical.AscBy(ref), [][]interface{}{{nil}, {nil}, {int64(1)}, {int64(2)}}},
		{"desc nulls last", logical.DescBy(ref), [][]interface{}{{int64(2)}, {int64(1)}, {nil}, {nil}}},
		{"asc nulls last", logical.SortItem{Option: logical.SortOption{Order: logical.Asc, Nulls: logical.NullsLast}, Expr: ref},
			[][]interface{}{{int64(1)}, {int64(2)}, {nil}, {nil}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewSort(rows(), []logical.SortItem{tt.item})
			require.NoError(t, err)
			assert.Equal(t, tt.want, plain(t, p))
		})
	}
}

func TestAggregation(t *testing.T) {
	count, err := expression.NewAggregator(expression.AggCount, nil)
	require.NoError(t, err)
	maxResp, err := expression.NewAggregator(expression.AggMax, expression.Ref("response", types.Integer))
	require.NoError(t, err)
	aggs := []expression.NamedAggregator{{Name: "n", Agg: count}, {Name: "worst", Agg: maxResp}}

	grouped, err := NewAggregation(scanOf(t, "logs", accessTable()), aggs,
		[]*expression.Named{expression.As("action", expression.Ref("action", types.String))})
	require.NoError(t, err)
	assert.Equal(t, [][]interface{}{{"GET", int32(2), int32(404)}, {"POST", int32(2), int32(500)}}, plain(t, grouped))

	empty, err := NewAggregation(scanOf(t, "logs", memory.NewTable(accessSchema)), aggs, nil)
	require.NoError(t, err)
	assert.Equal(t, [][]interface{}{{int32(0), nil}}, plain(t, empty))
}
