package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRow struct {
	ID     int64   `parquet:"id"`
	Name   string  `parquet:"name"`
	Age    int64   `parquet:"age"`
	Salary float64 `parquet:"salary"`
	Dept   string  `parquet:"dept"`
}

func createTestParquetFile(t *testing.T, dir, filename string, rows []testRow) string {
	t.Helper()
	path := filepath.Join(dir, filename)

	f, err := os.Create(path)
	require.NoError(t, err)
	writer := parquet.NewGenericWriter[testRow](f)
	_, err = writer.Write(rows)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	require.NoError(t, f.Close())
	return path
}

func people(t *testing.T) string {
	return createTestParquetFile(t, t.TempDir(), "people.parquet", []testRow{
		{ID: 1, Name: "Alice", Age: 30, Salary: 50000, Dept: "eng"},
		{ID: 2, Name: "Bob", Age: 25, Salary: 45000, Dept: "ops"},
		{ID: 3, Name: "Charlie", Age: 35, Salary: 60000, Dept: "eng"},
		{ID: 4, Name: "Dana", Age: 41, Salary: 70000, Dept: "eng"},
	})
}

func depts(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "depts.ndjson")
	data := `{"code": "eng", "floor": 3}
{"code": "ops", "floor": 1}
{"code": "hr", "floor": 2}
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := newRootCmd(&buf)
	cmd.SetArgs(args)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return buf.String(), err
}

func lines(out string) []string {
	return strings.Split(strings.TrimSuffix(out, "\n"), "\n")
}

func TestScan(t *testing.T) {
	out, err := run(t, "scan", "--where", "dept=eng", "--sort", "age:desc", "--fields", "name,age", "--limit", "2", people(t))
	require.NoError(t, err)
	assert.Equal(t, []string{
		`{"name":"Dana","age":41}`,
		`{"name":"Charlie","age":35}`,
	}, lines(out))
}

func TestScanCSV(t *testing.T) {
	out, err := run(t, "scan", "-f", "csv", "--fields", "id,name", "--where", "id=2,4", people(t))
	require.NoError(t, err)
	assert.Equal(t, "id,name\n2,Bob\n4,Dana\n", out)
}

func TestScanOffsetNeedsLimit(t *testing.T) {
	_, err := run(t, "scan", "--offset", "1", people(t))
	assert.ErrorContains(t, err, "--offset requires --limit")
}

func TestScanNDJSON(t *testing.T) {
	out, err := run(t, "scan", "--where", "floor=1,2", "--sort", "floor", depts(t))
	require.NoError(t, err)
	assert.Equal(t, []string{
		`{"code":"ops","floor":1}`,
		`{"code":"hr","floor":2}`,
	}, lines(out))
}

func TestTopAndRare(t *testing.T) {
	out, err := run(t, "top", "--field", "dept", "-n", "1", people(t))
	require.NoError(t, err)
	assert.Equal(t, []string{`{"dept":"eng"}`}, lines(out))

	out, err = run(t, "rare", "--field", "dept", "-n", "1", people(t))
	require.NoError(t, err)
	assert.Equal(t, []string{`{"dept":"ops"}`}, lines(out))
}

func TestTopRequiresField(t *testing.T) {
	_, err := run(t, "top", people(t))
	assert.ErrorContains(t, err, `required flag(s) "field" not set`)
}

func TestJoin(t *testing.T) {
	out, err := run(t, "join", "-f", "csv", "--on", "dept=code", "--type", "right", "--where", "depts.floor=2,3", people(t), depts(t))
	require.NoError(t, err)

	got := lines(out)
	require.Len(t, got, 5)
	assert.Equal(t, "id,name,age,salary,dept,code,floor", got[0])
	assert.ElementsMatch(t, []string{
		"1,Alice,30,50000,eng,eng,3",
		"3,Charlie,35,60000,eng,eng,3",
		"4,Dana,41,70000,eng,eng,3",
		",,,,,hr,2",
	}, got[1:])
}

func TestJoinWithRightFilter(t *testing.T) {
	out, err := run(t, "join", "--on", "dept=code", "--type", "left", "--right-where", "code=ops", "-f", "csv", people(t), "d="+depts(t))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"1,Alice,30,50000,eng,,",
		"2,Bob,25,45000,ops,ops,1",
		"3,Charlie,35,60000,eng,,",
		"4,Dana,41,70000,eng,,",
	}, lines(out)[1:])
}

func TestJoinErrors(t *testing.T) {
	p := people(t)
	_, err := run(t, "join", "--on", "dept=code", "--type", "cross", p, depts(t))
	assert.ErrorContains(t, err, `invalid join type "cross"`)

	_, err = run(t, "join", "--on", "nope=code", p, depts(t))
	assert.ErrorContains(t, err, "unknown column people.nope")

	_, err = run(t, "join", "--on", "id=id", p, p)
	assert.ErrorContains(t, err, "duplicate table name people")
}

func TestExplain(t *testing.T) {
	out, err := run(t, "scan", "--explain", "--where", "dept=eng", "--limit", "1", people(t))
	require.NoError(t, err)
	assert.Contains(t, out, "logical:\nTableScan(people")
	assert.Contains(t, out, "physical:\nScan (table=people")
}

func TestSchema(t *testing.T) {
	out, err := run(t, "schema", "-f", "csv", people(t))
	require.NoError(t, err)
	got := lines(out)
	assert.Equal(t, "column,type,physical_type,logical_type,repetition", got[0])
	assert.True(t, strings.HasPrefix(got[1], "id,LONG,INT64,"))
	assert.True(t, strings.HasSuffix(got[1], ",required"))
	assert.True(t, strings.HasPrefix(got[2], "name,STRING,BYTE_ARRAY,"))

	out, err = run(t, "schema", "-f", "csv", depts(t))
	require.NoError(t, err)
	assert.Equal(t, "column,type,physical_type,logical_type,repetition\ncode,STRING,,,\nfloor,LONG,,,\n", out)
}

func TestSourceErrors(t *testing.T) {
	_, err := run(t, "scan", filepath.Join(t.TempDir(), "data.csv"))
	assert.ErrorContains(t, err, "unsupported source")

	_, err = run(t, "scan", "=x.parquet")
	assert.ErrorContains(t, err, "invalid source")
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sqlcore.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  format: csv\nraretopn:\n  default_size: 2\n"), 0o644))

	out, err := run(t, "--config", path, "top", "--field", "dept", people(t))
	require.NoError(t, err)
	assert.Equal(t, "dept\neng\nops\n", out)

	_, err = run(t, "--format", "xml", "scan", people(t))
	assert.ErrorContains(t, err, "output.format must be one of")
}
