package parquet

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/internal/log"
	"github.com/vegasq/sqlcore/storage"
	"github.com/vegasq/sqlcore/types"
	"github.com/vegasq/sqlcore/value"
)

// FileColumn is the column a glob table adds with the source file of each row
const FileColumn = "_file"

// Table is a parquet file or a glob of parquet files.
//
// The schema is taken from the first file. When the table was opened from a
// glob pattern, every row also carries the path of its file in FileColumn.
type Table struct {
	pattern string
	files   []string
	schema  expression.Schema
	units   []time.Duration
	tagged  bool
}

// Open resolves pattern and reads the schema of the first file.
//
// Example:
//
//	table, err := parquet.Open("logs/2024-*.parquet")
//	if err != nil {
//	    return err
//	}
//	engine := storage.MapEngine{"logs": table}
func Open(pattern string) (*Table, error) {
	files, err := Expand(pattern)
	if err != nil {
		return nil, err
	}
	r, err := openFile(files[0])
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	t := &Table{pattern: pattern, files: files, tagged: IsGlob(pattern)}
	t.schema, t.units = tableSchema(r.Schema())
	if t.tagged {
		if _, exists := t.schema.IndexOf(FileColumn); !exists {
			t.schema = append(t.schema, expression.Column{Name: FileColumn, Type: types.String})
			t.units = append(t.units, 0)
		} else {
			t.tagged = false
		}
	}
	return t, nil
}

// Files returns the files the table reads, in order
func (t *Table) Files() []string { return t.files }

func (t *Table) Schema() expression.Schema { return t.schema }

// Open starts a scan over every file. Only the projection hint is honored.
func (t *Table) Open(ctx context.Context, req storage.ScanRequest) (storage.RowIterator, storage.Applied, error) {
	it := &iterator{ctx: ctx, table: t, projector: storage.NewProjector(t.schema, req.Projection)}
	return it, storage.Applied{Projection: len(req.Projection) > 0}, nil
}

type iterator struct {
	ctx       context.Context
	table     *Table
	projector *storage.Projector
	current   *fileReader
	next      int
}

func (it *iterator) Next() (expression.Row, error) {
	for {
		if err := it.ctx.Err(); err != nil {
			return nil, err
		}
		if it.current == nil {
			if it.next >= len(it.table.files) {
				return nil, io.EOF
			}
			r, err := openFile(it.table.files[it.next])
			if err != nil {
				return nil, err
			}
			log.V(1).Infof("parquet: reading %s", r.path)
			it.current = r
			it.next++
		}
		raw, err := it.current.next()
		if errors.Is(err, io.EOF) {
			if err := it.current.Close(); err != nil {
				return nil, errors.Wrapf(err, "failed to close %s", it.current.path)
			}
			it.current = nil
			continue
		}
		if err != nil {
			return nil, err
		}
		return it.convert(raw)
	}
}

func (it *iterator) convert(raw map[string]interface{}) (expression.Row, error) {
	t := it.table
	row := make(expression.Row, len(t.schema))
	for i, col := range t.schema {
		if !it.projector.Keeps(i) {
			row[i] = value.Missing
			continue
		}
		if t.tagged && i == len(t.schema)-1 {
			row[i] = value.String(it.current.path)
			continue
		}
		v, ok := raw[col.Name]
		if !ok {
			row[i] = value.Missing
			continue
		}
		cv, err := convert(v, col.Type, t.units[i])
		if err != nil {
			return nil, errors.Wrapf(err, "column %s of %s", col.Name, it.current.path)
		}
		row[i] = cv
	}
	return row, nil
}

func (it *iterator) Close() error {
	if it.current == nil {
		return nil
	}
	err := it.current.Close()
	it.current = nil
	return err
}

var epoch = time.Unix(0, 0).UTC()

// convert wraps a value decoded from parquet as a column value. Temporal
// columns arrive either as time.Time or as integers: days for DATE, ticks
// of unit for TIME and TIMESTAMP.
func convert(v interface{}, t types.ExprType, unit time.Duration) (value.ExprValue, error) {
	switch t {
	case types.Date:
		if days, ok := v.(int32); ok {
			return value.DateOf(epoch.AddDate(0, 0, int(days))), nil
		}
	case types.Time, types.Timestamp:
		var ticks int64
		switch n := v.(type) {
		case int32:
			ticks = int64(n)
		case int64:
			ticks = n
		default:
			return value.Convert(v, t)
		}
		at := epoch.Add(time.Duration(ticks) * unit)
		if t == types.Time {
			return value.TimeOf(at), nil
		}
		return value.TimestampOf(at), nil
	}
	if tm, ok := v.(time.Time); ok {
		switch t {
		case types.Date:
			return value.DateOf(tm), nil
		case types.Time:
			return value.TimeOf(tm), nil
		}
	}
	return value.Convert(v, t)
}

// Engine resolves table names to parquet paths or glob patterns. Tables are
// opened on first use and cached.
type Engine struct {
	mu     sync.Mutex
	paths  map[string]string
	tables map[string]*Table
}

// NewEngine returns an engine over the given name to path mapping
func NewEngine(paths map[string]string) *Engine {
	return &Engine{paths: paths, tables: make(map[string]*Table)}
}

func (e *Engine) Table(name string) (storage.Table, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if t, ok := e.tables[name]; ok {
		return t, nil
	}
	path, ok := e.paths[name]
	if !ok {
		return nil, errors.Wrapf(storage.ErrTableNotFound, "%s", name)
	}
	t, err := Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "table %s", name)
	}
	e.tables[name] = t
	return t, nil
}
