package physical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/planner/logical"
	"github.com/vegasq/sqlcore/storage/memory"
	"github.com/vegasq/sqlcore/types"
	"github.com/vegasq/sqlcore/value"
)

func leftTable() *memory.Table {
	return memory.NewTable(expression.Schema{
		{Name: "id", Type: types.Integer},
		{Name: "name", Type: types.String},
	}).
		MustInsert(1, "a").
		MustInsert(2, "b").
		MustInsert(3, "c").
		MustInsert(2, "d")
}

func rightTable() *memory.Table {
	return memory.NewTable(expression.Schema{
		{Name: "rid", Type: types.Long},
		{Name: "tag", Type: types.String},
	}).
		MustInsert(2, "x").
		MustInsert(4, "y").
		MustInsert(1, "z").
		MustInsert(2, "w")
}

var idEqualsRid = logical.KeyGroup{{
	Left:  expression.Ref("l.id", types.Integer),
	Right: expression.Ref("r.rid", types.Long),
}}

var (
	innerRows = [][]interface{}{
		{int32(2), "b", int64(2), "x"},
		{int32(2), "d", int64(2), "x"},
		{int32(1), "a", int64(1), "z"},
		{int32(2), "b", int64(2), "w"},
		{int32(2), "d", int64(2), "w"},
	}
	unmatchedLeft  = []interface{}{int32(3), "c", nil, nil}
	unmatchedRight = []interface{}{nil, nil, int64(4), "y"}
)

func with(rows [][]interface{}, extra ...[]interface{}) [][]interface{} {
	return append(append([][]interface{}{}, rows...), extra...)
}

func newJoin(t *testing.T, joinType logical.JoinType, opts JoinOptions, groups ...logical.KeyGroup) *BlockHashJoin {
	t.Helper()
	j, err := NewBlockHashJoin(scanOf(t, "l", leftTable()), scanOf(t, "r", rightTable()), joinType, groups, nil, opts)
	require.NoError(t, err)
	return j
}

func TestJoinTypes(t *testing.T) {
	tests := []struct {
		joinType logical.JoinType
		want     [][]interface{}
	}{
		{logical.InnerJoin, innerRows},
		{logical.LeftJoin, with(innerRows, unmatchedLeft)},
		{logical.RightJoin, with(innerRows, unmatchedRight)},
		{logical.FullJoin, with(innerRows, unmatchedLeft, unmatchedRight)},
	}
	for _, tt := range tests {
		t.Run(tt.joinType.String(), func(t *testing.T) {
			j := newJoin(t, tt.joinType, JoinOptions{}, idEqualsRid)
			assert.Equal(t, []string{"l.id", "l.name", "r.rid", "r.tag"}, j.Schema().QualifiedNames())
			assert.Equal(t, tt.want, plain(t, j))
		})
	}
}

func TestJoinResultDoesNotDependOnBlocking(t *testing.T) {
	want := map[logical.JoinType][][]interface{}{
		logical.InnerJoin: innerRows,
		logical.LeftJoin:  with(innerRows, unmatchedLeft),
		logical.RightJoin: with(innerRows, unmatchedRight),
		logical.FullJoin:  with(innerRows, unmatchedLeft, unmatchedRight),
	}
	for joinType, rows := range want {
		for _, opts := range []JoinOptions{
			{BlockSize: 1},
			{BlockSize: 2},
			{BlockSize: 3},
			{BlockSize: 100},
			{BlockSize: 2, ProbeLimit: 1},
			{BlockSize: 1, UseTermsFilter: true},
			{BlockSize: 3, UseTermsFilter: true, ProbeLimit: 1},
		} {
			t.Run(joinType.String(), func(t *testing.T) {
				assert.ElementsMatch(t, rows, plain(t, newJoin(t, joinType, opts, idEqualsRid)), "options %+v", opts)
			})
		}
	}
}

func TestJoinTermsFilter(t *testing.T) {
	left := leftTable().MustInsert(nil, "e")
	run := func(terms bool) (*memory.Table, *BlockHashJoin, [][]interface{}) {
		right := rightTable()
		j, err := NewBlockHashJoin(scanOf(t, "l", left), scanOf(t, "r", right), logical.LeftJoin,
			[]logical.KeyGroup{idEqualsRid}, nil, JoinOptions{BlockSize: 1, UseTermsFilter: terms})
		require.NoError(t, err)
		return right, j, plain(t, j)
	}

	plainRight, plainJoin, without := run(false)
	termsRight, termsJoin, withTerms := run(true)

	assert.Equal(t, without, withTerms)
	assert.Contains(t, withTerms, []interface{}{nil, "e", nil, nil})
	// one scan of the right side per block, except the block whose key is NULL
	assert.Equal(t, 5, plainRight.Opens)
	assert.Equal(t, 4, termsRight.Opens)

	assert.Contains(t, termsJoin.Describe().Params, Param{Key: "termsFilter", Value: "true"})
	assert.Contains(t, plainJoin.Describe().Params, Param{Key: "termsFilter", Value: "false"})
}

func TestJoinTermsFilterIsOffForOuterRight(t *testing.T) {
	j := newJoin(t, logical.RightJoin, JoinOptions{UseTermsFilter: true}, idEqualsRid)
	assert.Contains(t, j.Describe().Params, Param{Key: "termsFilter", Value: "false"})
}

func TestJoinMultiValuedKeys(t *testing.T) {
	posts := memory.NewTable(expression.Schema{
		{Name: "title", Type: types.String},
		{Name: "tags", Type: types.Array},
	}).
		MustInsert("first", value.CollectionOf("go", "sql")).
		MustInsert("second", value.CollectionOf("sql", "sql")).
		MustInsert("third", nil)
	tags := memory.NewTable(expression.Schema{{Name: "tag", Type: types.String}}).
		MustInsert("sql").
		MustInsert("go").
		MustInsert("rust")

	j, err := NewBlockHashJoin(scanOf(t, "p", posts), scanOf(t, "t", tags), logical.InnerJoin,
		[]logical.KeyGroup{{{Left: expression.Ref("tags", types.Array), Right: expression.Ref("tag", types.String)}}},
		nil, JoinOptions{})
	require.NoError(t, err)

	var got [][]interface{}
	for _, row := range plain(t, j) {
		got = append(got, []interface{}{row[0], row[2]})
	}
	// a right row matches a left row once even when several elements agree
	assert.Equal(t, [][]interface{}{
		{"first", "sql"},
		{"second", "sql"},
		{"first", "go"},
	}, got)
}

func TestJoinKeyGroupsAreAlternatives(t *testing.T) {
	byTag := logical.KeyGroup{{
		Left:  expression.Ref("l.name", types.String),
		Right: expression.Ref("r.tag", types.String),
	}}
	left := leftTable().MustInsert(9, "y")

	j, err := NewBlockHashJoin(scanOf(t, "l", left), scanOf(t, "r", rightTable()), logical.InnerJoin,
		[]logical.KeyGroup{idEqualsRid, byTag}, nil, JoinOptions{UseTermsFilter: true, BlockSize: 2})
	require.NoError(t, err)
	assert.ElementsMatch(t, with(innerRows, []interface{}{int32(9), "y", int64(4), "y"}), plain(t, j))
}

func TestJoinResidual(t *testing.T) {
	onlyW := expression.NewIn(expression.Ref("r.tag", types.String), []value.ExprValue{value.String("w")})
	j, err := NewBlockHashJoin(scanOf(t, "l", leftTable()), scanOf(t, "r", rightTable()), logical.LeftJoin,
		[]logical.KeyGroup{idEqualsRid}, onlyW, JoinOptions{})
	require.NoError(t, err)

	assert.Equal(t, [][]interface{}{
		{int32(2), "b", int64(2), "w"},
		{int32(2), "d", int64(2), "w"},
		{int32(1), "a", nil, nil},
		{int32(3), "c", nil, nil},
	}, plain(t, j))
	assert.Contains(t, j.Describe().Params, Param{Key: "condition", Value: onlyW.String()})
}

func TestJoinCross(t *testing.T) {
	j, err := NewBlockHashJoin(values([]interface{}{1}, []interface{}{2}), values([]interface{}{"a"}, []interface{}{"b"}),
		logical.InnerJoin, nil, nil, JoinOptions{BlockSize: 1})
	require.NoError(t, err)
	assert.Equal(t, [][]interface{}{
		{int32(1), "a"}, {int32(1), "b"},
		{int32(2), "a"}, {int32(2), "b"},
	}, plain(t, j))
}

func TestJoinBuffersRightSideThatCannotRescan(t *testing.T) {
	right, err := NewProject(values(
		[]interface{}{2, "x"},
		[]interface{}{4, "y"},
		[]interface{}{1, "z"},
		[]interface{}{2, "w"},
	), []*expression.Named{
		expression.As("rid", expression.Ref("$0", types.Long)),
		expression.As("tag", expression.Ref("$1", types.String)),
	})
	require.NoError(t, err)

	j, err := NewBlockHashJoin(scanOf(t, "l", leftTable()), right, logical.FullJoin,
		[]logical.KeyGroup{{{Left: expression.Ref("id", types.Integer), Right: expression.Ref("rid", types.Long)}}},
		nil, JoinOptions{BlockSize: 1, UseTermsFilter: true})
	require.NoError(t, err)
	assert.Contains(t, j.Describe().Params, Param{Key: "termsFilter", Value: "false"})
	assert.ElementsMatch(t, with(innerRows, unmatchedLeft, unmatchedRight), plain(t, j))
}

func TestJoinEstimateIsUnknown(t *testing.T) {
	assert.Equal(t, Cost{}, newJoin(t, logical.InnerJoin, JoinOptions{}, idEqualsRid).Estimate())
}
