package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vegasq/sqlcore/config"
	"github.com/vegasq/sqlcore/executor"
	"github.com/vegasq/sqlcore/internal/log"
	"github.com/vegasq/sqlcore/output"
	"github.com/vegasq/sqlcore/planner/logical"
	"github.com/vegasq/sqlcore/storage"
)

// app holds the state shared by every subcommand
type app struct {
	out        io.Writer
	configPath string
	format     string
	explain    bool
	cfg        *config.Config
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}
	root := &cobra.Command{
		Use:   "sqlcore",
		Short: "sqlcore queries parquet and NDJSON files.",
		Long: "`sqlcore` plans and executes scan, top, rare and join commands over local files.\n\n" +
			"Sources are given as `path` or `name=path`. Paths ending in .parquet, or globs\n" +
			"matching parquet files, are read as parquet. Paths ending in .json, .jsonl or\n" +
			".ndjson are read as newline-delimited JSON.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("format") {
				cfg.Output.Format = a.format
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			a.cfg = cfg
			return nil
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to a config file (yaml, json or toml).")
	flags.StringVarP(&a.format, "format", "f", "jsonl", "Output format: jsonl, csv, table.")
	flags.BoolVar(&a.explain, "explain", false, "Print the optimized logical plan and the operator tree instead of rows.")
	log.RegisterFlags(flags)

	root.AddCommand(
		a.scanCmd(),
		a.rareTopCmd(logical.Top),
		a.rareTopCmd(logical.Rare),
		a.joinCmd(),
		a.schemaCmd(),
	)
	return root
}

// run executes plan, or explains it, and writes the result
func (a *app) run(ctx context.Context, store storage.Engine, plan logical.LogicalPlan) error {
	engine := executor.New(store, a.cfg)
	if a.explain {
		resp, err := engine.Explain(ctx, plan)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(a.out, resp.String())
		return err
	}

	resp, err := engine.Execute(ctx, plan)
	if err != nil {
		return err
	}
	f, err := output.New(a.cfg.Output.Format, a.out)
	if err != nil {
		return err
	}
	log.Infof("query %s: %s", resp.QueryID, resp.Summary())
	return f.Format(resp.Schema, resp.Rows)
}
