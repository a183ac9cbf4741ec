// Package docstore is a storage adapter over newline-delimited JSON
// documents. Columns are gjson paths into each document. Filters made of
// equalities and IN lists on plain fields are evaluated natively against the
// raw documents; every other filter is left to the scan operator.
package docstore

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"

	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/internal/log"
	"github.com/vegasq/sqlcore/storage"
	"github.com/vegasq/sqlcore/types"
	"github.com/vegasq/sqlcore/value"
)

// DefaultSample is the number of documents schema inference looks at
const DefaultSample = 100

// Collection is a list of JSON documents read as a table
type Collection struct {
	name   string
	schema expression.Schema
	docs   []string
}

// New parses NDJSON data. A nil schema is inferred from the first
// DefaultSample documents.
func New(name, data string, schema expression.Schema) (*Collection, error) {
	c := &Collection{name: name, schema: schema}
	var err error
	line := 0
	gjson.ForEachLine(data, func(doc gjson.Result) bool {
		line++
		if !doc.IsObject() {
			err = errors.Newf("%s: line %d is not a JSON object", name, line)
			return false
		}
		c.docs = append(c.docs, doc.Raw)
		return true
	})
	if err != nil {
		return nil, err
	}
	if c.schema == nil {
		c.schema = Infer(c.docs, DefaultSample)
	}
	return c, nil
}

// Open reads an NDJSON file into a collection named after name
func Open(name, path string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return New(name, string(data), nil)
}

// Infer builds a schema from the top-level fields of up to sample
// documents. Fields keep the order they were first seen in; the first
// non-null value decides the type.
func Infer(docs []string, sample int) expression.Schema {
	if sample > 0 && len(docs) > sample {
		docs = docs[:sample]
	}
	var schema expression.Schema
	index := map[string]int{}
	for _, doc := range docs {
		gjson.Parse(doc).ForEach(func(key, v gjson.Result) bool {
			name := key.String()
			i, seen := index[name]
			if !seen {
				index[name] = len(schema)
				schema = append(schema, expression.Column{Name: name, Type: types.Undefined})
				i = len(schema) - 1
			}
			if schema[i].Type == types.Undefined && v.Type != gjson.Null {
				schema[i].Type = elementType(v)
			}
			return true
		})
	}
	for i := range schema {
		if schema[i].Type == types.Undefined {
			schema[i].Type = types.String
		}
	}
	return schema
}

// elementType maps a JSON value to the type it converts to without a schema
func elementType(v gjson.Result) types.ExprType {
	switch v.Type {
	case gjson.Number:
		if v.Num == float64(int64(v.Num)) && !strings.ContainsAny(v.Raw, ".eE") {
			return types.Long
		}
		return types.Double
	case gjson.True, gjson.False:
		return types.Boolean
	case gjson.JSON:
		if v.IsArray() {
			return types.Array
		}
		return types.Struct
	}
	return types.String
}

// fromResult converts a JSON value to a value of type t. An absent field is
// MISSING and a JSON null is NULL.
func fromResult(res gjson.Result, t types.ExprType) (value.ExprValue, error) {
	if !res.Exists() {
		return value.Missing, nil
	}
	switch res.Type {
	case gjson.Null:
		return value.Null, nil
	case gjson.JSON:
		if res.IsArray() {
			var items value.Collection
			var err error
			res.ForEach(func(_, el gjson.Result) bool {
				var item value.ExprValue
				item, err = fromResult(el, elementType(el))
				items = append(items, item)
				return err == nil
			})
			return items, err
		}
		return value.FromInterface(res.Value()), nil
	case gjson.Number:
		if t == types.Long || t == types.Integer || t == types.Short || t == types.Byte {
			return value.Convert(res.Int(), t)
		}
		return value.Convert(res.Float(), t)
	}
	return value.Convert(res.Value(), t)
}

func (c *Collection) Name() string { return c.name }

// Len returns the number of documents
func (c *Collection) Len() int { return len(c.docs) }

func (c *Collection) Schema() expression.Schema { return c.schema }

// Open honors projection always, the filter when it translates to native
// predicates, and the limit when there is no sort and the filter, if any,
// was honored.
func (c *Collection) Open(ctx context.Context, req storage.ScanRequest) (storage.RowIterator, storage.Applied, error) {
	var applied storage.Applied
	nodes, native := Translate(req.Filter, c.schema)
	applied.Filter = native
	if req.Filter != nil {
		log.V(1).Infof("docstore %s: filter %s native=%t", c.name, req.Filter, native)
	}
	applied.Projection = len(req.Projection) > 0
	limit := -1
	if req.HasLimit() && len(req.Sort) == 0 && (req.Filter == nil || native) {
		applied.Limit = true
		limit = req.Limit
	}
	it := &iterator{
		ctx:       ctx,
		c:         c,
		nodes:     nodes,
		projector: storage.NewProjector(c.schema, req.Projection),
		left:      limit,
	}
	if applied.Limit {
		it.skip = req.Offset
	}
	return it, applied, nil
}

type iterator struct {
	ctx       context.Context
	c         *Collection
	nodes     []*FieldNode
	projector *storage.Projector
	pos       int
	skip      int
	left      int
}

func (it *iterator) Next() (expression.Row, error) {
	for it.left != 0 {
		if err := it.ctx.Err(); err != nil {
			return nil, err
		}
		if it.pos >= len(it.c.docs) {
			break
		}
		doc := it.c.docs[it.pos]
		it.pos++
		if !it.matches(doc) {
			continue
		}
		if it.skip > 0 {
			it.skip--
			continue
		}
		if it.left > 0 {
			it.left--
		}
		return it.row(doc)
	}
	return nil, io.EOF
}

func (it *iterator) matches(doc string) bool {
	for _, n := range it.nodes {
		if !n.Matches(doc) {
			return false
		}
	}
	return true
}

func (it *iterator) row(doc string) (expression.Row, error) {
	schema := it.c.schema
	paths := make([]string, 0, len(schema))
	slots := make([]int, 0, len(schema))
	row := make(expression.Row, len(schema))
	for i, col := range schema {
		if it.projector.Keeps(i) {
			paths = append(paths, col.Name)
			slots = append(slots, i)
		} else {
			row[i] = value.Missing
		}
	}
	for k, res := range gjson.GetMany(doc, paths...) {
		v, err := fromResult(res, schema[slots[k]].Type)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: field %s", it.c.name, paths[k])
		}
		row[slots[k]] = v
	}
	return row, nil
}

func (it *iterator) Close() error { return nil }
