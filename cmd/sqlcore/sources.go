package main

import (
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/planner/logical"
	"github.com/vegasq/sqlcore/storage"
	"github.com/vegasq/sqlcore/storage/docstore"
	"github.com/vegasq/sqlcore/storage/parquet"
	"github.com/vegasq/sqlcore/value"
)

// source is one opened table argument
type source struct {
	name  string
	table storage.Table
}

// openSource opens "path" or "name=path". Without a name the table is named
// after the file, minus its extension.
func openSource(arg string) (*source, error) {
	name, path, named := strings.Cut(arg, "=")
	if !named {
		path = arg
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if name == "" || path == "" {
		return nil, errors.Newf("invalid source %q, expected path or name=path", arg)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		t, err := parquet.Open(path)
		if err != nil {
			return nil, err
		}
		return &source{name: name, table: t}, nil
	case ".json", ".jsonl", ".ndjson":
		c, err := docstore.Open(name, path)
		if err != nil {
			return nil, err
		}
		return &source{name: name, table: c}, nil
	}
	return nil, errors.Newf("unsupported source %s, expected .parquet, .json, .jsonl or .ndjson", path)
}

func (s *source) relation() *logical.Relation {
	return logical.NewRelation(s.name, s.table.Schema())
}

// openSources opens every argument into one engine. Table names must be
// distinct.
func openSources(args ...string) (storage.MapEngine, []*source, error) {
	engine := storage.MapEngine{}
	var sources []*source
	for _, arg := range args {
		s, err := openSource(arg)
		if err != nil {
			return nil, nil, err
		}
		if _, dup := engine[s.name]; dup {
			return nil, nil, errors.Newf("duplicate table name %s, use name=path to rename one", s.name)
		}
		engine[s.name] = s.table
		sources = append(sources, s)
	}
	return engine, sources, nil
}

// column resolves name, plain or qualified, against schema into a typed
// reference
func column(schema expression.Schema, name string) (*expression.Reference, error) {
	i, ok := schema.IndexOf(name)
	if !ok {
		return nil, errors.Newf("unknown column %s, have %s", name, strings.Join(schema.Names(), ", "))
	}
	return expression.Ref(name, schema[i].Type), nil
}

func columns(schema expression.Schema, names []string) ([]expression.Expression, error) {
	out := make([]expression.Expression, 0, len(names))
	for _, n := range names {
		ref, err := column(schema, n)
		if err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, nil
}

// whereClause parses "col=v1,v2" into col IN (v1, v2) with the values
// converted to the column type
func whereClause(schema expression.Schema, clause string) (expression.Expression, error) {
	name, list, ok := strings.Cut(clause, "=")
	if !ok || name == "" {
		return nil, errors.Newf("invalid condition %q, expected column=value[,value...]", clause)
	}
	ref, err := column(schema, name)
	if err != nil {
		return nil, err
	}
	var vals []value.ExprValue
	for _, raw := range strings.Split(list, ",") {
		var v value.ExprValue
		if strings.EqualFold(raw, "null") {
			v = value.Null
		} else if v, err = value.Convert(raw, ref.Type()); err != nil {
			return nil, errors.Wrapf(err, "condition %s", clause)
		}
		vals = append(vals, v)
	}
	return expression.NewIn(ref, vals), nil
}

// sortItem parses "col", "col:asc" or "col:desc"
func sortItem(schema expression.Schema, arg string) (logical.SortItem, error) {
	name, dir, _ := strings.Cut(arg, ":")
	ref, err := column(schema, name)
	if err != nil {
		return logical.SortItem{}, err
	}
	switch strings.ToLower(dir) {
	case "", "asc":
		return logical.AscBy(ref), nil
	case "desc":
		return logical.DescBy(ref), nil
	}
	return logical.SortItem{}, errors.Newf("invalid sort direction %q in %s", dir, arg)
}

func joinType(s string) (logical.JoinType, error) {
	switch strings.ToLower(s) {
	case "inner":
		return logical.InnerJoin, nil
	case "left":
		return logical.LeftJoin, nil
	case "right":
		return logical.RightJoin, nil
	case "full":
		return logical.FullJoin, nil
	}
	return 0, errors.Newf("invalid join type %q, expected inner, left, right or full", s)
}

