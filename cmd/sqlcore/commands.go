package main

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/output"
	"github.com/vegasq/sqlcore/planner/logical"
	"github.com/vegasq/sqlcore/storage/parquet"
	"github.com/vegasq/sqlcore/types"
	"github.com/vegasq/sqlcore/value"
)

// filtered wraps plan in one filter holding every --where condition
func filtered(plan logical.LogicalPlan, where []string) (logical.LogicalPlan, error) {
	if len(where) == 0 {
		return plan, nil
	}
	conds := make([]expression.Expression, 0, len(where))
	for _, w := range where {
		c, err := whereClause(plan.Schema(), w)
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	return logical.NewFilter(plan, expression.AndOf(conds...)), nil
}

func (a *app) scanCmd() *cobra.Command {
	var (
		where  []string
		sorts  []string
		fields []string
		limit  int
		offset int
	)
	cmd := &cobra.Command{
		Use:   "scan <source>",
		Short: "Reads rows, optionally filtered, sorted, projected and limited.",
		Example: "  sqlcore scan --where status=500,503 --sort took:desc --limit 10 requests.parquet\n" +
			"  sqlcore scan --fields user,status -f table events.ndjson",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if offset > 0 && limit < 0 {
				return errors.New("--offset requires --limit")
			}
			store, sources, err := openSources(args[0])
			if err != nil {
				return err
			}
			plan, err := filtered(sources[0].relation(), where)
			if err != nil {
				return err
			}
			schema := plan.Schema()
			if len(sorts) > 0 {
				items := make([]logical.SortItem, 0, len(sorts))
				for _, s := range sorts {
					item, err := sortItem(schema, s)
					if err != nil {
						return err
					}
					items = append(items, item)
				}
				plan = logical.NewSort(plan, items...)
			}
			if len(fields) > 0 {
				refs, err := columns(schema, fields)
				if err != nil {
					return err
				}
				named := make([]*expression.Named, len(refs))
				for i, r := range refs {
					named[i] = expression.As(fields[i], r)
				}
				plan = logical.NewProject(plan, named...)
			}
			if limit >= 0 {
				plan = logical.NewLimit(plan, limit, offset)
			}
			return a.run(cmd.Context(), store, plan)
		},
	}
	cmd.Flags().StringArrayVar(&where, "where", nil, "Condition column=value[,value...]; repeat to AND several.")
	cmd.Flags().StringSliceVar(&sorts, "sort", nil, "Sort keys as column[:asc|desc].")
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "Columns to output.")
	cmd.Flags().IntVar(&limit, "limit", -1, "Maximum number of rows, negative for all.")
	cmd.Flags().IntVar(&offset, "offset", 0, "Rows to skip before the limit applies.")
	return cmd
}

func (a *app) rareTopCmd(command logical.CommandType) *cobra.Command {
	var (
		where  []string
		fields []string
		by     []string
		n      int
	)
	name := strings.ToLower(command.String())
	short := "Lists the most frequent value combinations of the given fields."
	if command == logical.Rare {
		short = "Lists the least frequent value combinations of the given fields."
	}
	cmd := &cobra.Command{
		Use:     name + " <source>",
		Short:   short,
		Example: "  sqlcore " + name + " --field status --by path -n 3 requests.parquet",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, sources, err := openSources(args[0])
			if err != nil {
				return err
			}
			plan, err := filtered(sources[0].relation(), where)
			if err != nil {
				return err
			}
			fieldRefs, err := columns(plan.Schema(), fields)
			if err != nil {
				return err
			}
			groupRefs, err := columns(plan.Schema(), by)
			if err != nil {
				return err
			}
			return a.run(cmd.Context(), store, logical.NewRareTopN(plan, command, n, fieldRefs, groupRefs))
		},
	}
	cmd.Flags().StringArrayVar(&where, "where", nil, "Condition column=value[,value...]; repeat to AND several.")
	cmd.Flags().StringSliceVar(&fields, "field", nil, "Fields whose value combinations are counted.")
	cmd.Flags().StringSliceVar(&by, "by", nil, "Group by columns.")
	cmd.Flags().IntVarP(&n, "number", "n", 0, "Results per group, 0 for the configured default.")
	_ = cmd.MarkFlagRequired("field")
	return cmd
}

func (a *app) joinCmd() *cobra.Command {
	var (
		on       []string
		kind     string
		where    []string
		subquery []string
	)
	cmd := &cobra.Command{
		Use:   "join <left> <right>",
		Short: "Hash joins two sources on equality keys.",
		Example: "  sqlcore join --on user_id=id --type left events.ndjson users=people.parquet\n" +
			"  sqlcore join --on status=code --right-where code=404,500 requests.parquet codes.ndjson",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jt, err := joinType(kind)
			if err != nil {
				return err
			}
			store, sources, err := openSources(args...)
			if err != nil {
				return err
			}
			left, right := sources[0], sources[1]

			var rightPlan logical.LogicalPlan = right.relation()
			if len(subquery) > 0 {
				inner, err := filtered(right.relation(), subquery)
				if err != nil {
					return err
				}
				rightPlan = logical.NewRelationSubquery(right.name, inner)
			}

			keys := make([]logical.KeyPair, 0, len(on))
			for _, pair := range on {
				l, r, ok := strings.Cut(pair, "=")
				if !ok {
					return errors.Newf("invalid join key %q, expected left_column=right_column", pair)
				}
				lref, err := column(left.relation().Schema(), qualify(left.name, l))
				if err != nil {
					return err
				}
				rref, err := column(rightPlan.Schema(), qualify(right.name, r))
				if err != nil {
					return err
				}
				keys = append(keys, logical.KeyPair{Left: lref, Right: rref})
			}

			plan, err := filtered(logical.NewJoin(left.relation(), rightPlan, jt, keys...), where)
			if err != nil {
				return err
			}
			return a.run(cmd.Context(), store, plan)
		},
	}
	cmd.Flags().StringArrayVar(&on, "on", nil, "Key pair left_column=right_column; repeat for composite keys.")
	cmd.Flags().StringVar(&kind, "type", "inner", "Join type: inner, left, right or full.")
	cmd.Flags().StringArrayVar(&where, "where", nil, "Condition on the joined rows, column=value[,value...].")
	cmd.Flags().StringArrayVar(&subquery, "right-where", nil, "Condition applied to the right source before the join.")
	_ = cmd.MarkFlagRequired("on")
	return cmd
}

// qualify prefixes col with its table unless it already carries it
func qualify(table, col string) string {
	if strings.HasPrefix(col, table+".") {
		return col
	}
	return table + "." + col
}

var schemaColumns = expression.Schema{
	{Name: "column", Type: types.String},
	{Name: "type", Type: types.String},
	{Name: "physical_type", Type: types.String},
	{Name: "logical_type", Type: types.String},
	{Name: "repetition", Type: types.String},
}

func (a *app) schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema <source>",
		Short: "Describes the columns of a source.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, sources, err := openSources(args[0])
			if err != nil {
				return err
			}
			rows, err := describeColumns(sources[0])
			if err != nil {
				return err
			}
			f, err := output.New(a.cfg.Output.Format, a.out)
			if err != nil {
				return err
			}
			return f.Format(schemaColumns, rows)
		},
	}
}

// describeColumns lists the columns of s. Parquet sources also report the
// storage types of their first file.
func describeColumns(s *source) ([]value.Tuple, error) {
	names := schemaColumns.Names()
	physical := map[string]parquet.ColumnInfo{}
	if t, ok := s.table.(*parquet.Table); ok {
		infos, err := parquet.Columns(t.Files()[0])
		if err != nil {
			return nil, err
		}
		for _, info := range infos {
			physical[info.Name] = info
		}
	}

	var rows []value.Tuple
	for _, c := range s.table.Schema() {
		vals := []value.ExprValue{value.String(c.Name), value.String(c.Type.String()), value.Null, value.Null, value.Null}
		if info, ok := physical[c.Name]; ok {
			vals[2] = value.String(info.PhysicalType)
			if info.LogicalType != "" {
				vals[3] = value.String(info.LogicalType)
			}
			vals[4] = value.String(repetition(info))
		}
		rows = append(rows, value.NewTuple(names, vals))
	}
	return rows, nil
}

func repetition(info parquet.ColumnInfo) string {
	switch {
	case info.Repeated:
		return "repeated"
	case info.Optional:
		return "optional"
	}
	return "required"
}
