// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/relplan/pkg/sql/opt/memo"
	"github.com/cockroachdb/relplan/pkg/sql/opt/testutils/opttester"
	"github.com/cockroachdb/relplan/pkg/sql/opt/testutils/testcat"
	"github.com/cockroachdb/relplan/pkg/sql/opt/xform"
	"github.com/cockroachdb/relplan/pkg/util/humanizeutil"
	"github.com/cockroachdb/relplan/pkg/util/log"
	"github.com/cockroachdb/relplan/pkg/util/metric"
	"github.com/cockroachdb/relplan/pkg/util/tracing"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type explainFlags struct {
	disableSeqScan   bool
	disableIndexScan bool
	disableNestLoop  bool
	disableMergeJoin bool
	disableHashJoin  bool
	disableSort      bool
	cursorFraction   float64
	joinOrderLimit   int
	showMemo         bool
	hideCosts        bool
	showMetrics      bool
	trace            bool
	verbosity        int32
}

var flags explainFlags

var explainFlagSet = func() *pflag.FlagSet {
	fs := pflag.NewFlagSet("explain", pflag.ContinueOnError)
	fs.BoolVar(&flags.disableSeqScan, "disable-seqscan", false, "penalize sequential scans")
	fs.BoolVar(&flags.disableIndexScan, "disable-indexscan", false, "penalize index scans")
	fs.BoolVar(&flags.disableNestLoop, "disable-nestloop", false, "penalize nested loop joins")
	fs.BoolVar(&flags.disableMergeJoin, "disable-mergejoin", false, "penalize merge joins")
	fs.BoolVar(&flags.disableHashJoin, "disable-hashjoin", false, "penalize hash joins")
	fs.BoolVar(&flags.disableSort, "disable-sort", false, "penalize explicit sorts")
	fs.Var(humanizeutil.NewFractionValue(&flags.cursorFraction), "cursor-fraction",
		"plan the query as a cursor fetching this fraction of the rows (e.g. 0.1 or 10%)")
	fs.IntVar(&flags.joinOrderLimit, "join-order-limit", 0,
		"number of relations up to which bushy join trees are searched")
	fs.BoolVar(&flags.showMemo, "memo", false, "print the memo after planning")
	fs.BoolVar(&flags.hideCosts, "hide-costs", false, "omit path costs from the output")
	fs.BoolVar(&flags.showMetrics, "metrics", false, "print the planner counters")
	fs.BoolVar(&flags.trace, "trace", false, "log the planner's trace spans")
	fs.Int32VarP(&flags.verbosity, "verbosity", "v", 0, "log verbosity level")
	return fs
}()

var rootCmd = &cobra.Command{
	Use:   "relplan",
	Short: "relational query planner",
	Long: `relplan plans queries over a toy catalog and prints the chosen plan.

Examples:

  relplan explain scenario.yaml
  relplan explain --disable-hashjoin --memo scenario.yaml

A scenario is a YAML file declaring tables, indexes and the query to plan.
`,
	SilenceUsage: true,
}

var explainCmd = &cobra.Command{
	Use:   "explain <scenario-file>",
	Short: "plan the query of a scenario and print the plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExplain(cmd.Context(), cmd.OutOrStdout(), args[0], cmd.Flags())
	},
}

func init() {
	explainCmd.Flags().AddFlagSet(explainFlagSet)
	rootCmd.AddCommand(explainCmd)
}

// applyFlags overrides the scenario's settings with the flags that were set
// on the command line.
func applyFlags(settings *xform.Settings, fs *pflag.FlagSet) error {
	disable := func(name string, enabled *bool) {
		if fs.Changed(name) {
			v, _ := fs.GetBool(name)
			*enabled = !v
		}
	}
	disable("disable-seqscan", &settings.EnableSeqScan)
	disable("disable-indexscan", &settings.EnableIndexScan)
	disable("disable-nestloop", &settings.EnableNestLoop)
	disable("disable-mergejoin", &settings.EnableMergeJoin)
	disable("disable-hashjoin", &settings.EnableHashJoin)
	disable("disable-sort", &settings.EnableSort)
	if fs.Changed("cursor-fraction") {
		settings.Cursor = true
		settings.CursorTupleFraction = flags.cursorFraction
	}
	if fs.Changed("join-order-limit") {
		settings.JoinOrderLimit = flags.joinOrderLimit
	}
	return settings.Validate()
}

func runExplain(ctx context.Context, w io.Writer, path string, fs *pflag.FlagSet) (retErr error) {
	if ctx == nil {
		ctx = context.Background()
	}
	log.SetVerbosity(flags.verbosity)
	if flags.trace {
		shutdown := tracing.InstallLogTracer()
		defer func() {
			retErr = errors.CombineErrors(retErr, shutdown(ctx))
		}()
	}

	sc, err := testcat.LoadScenario(path)
	if err != nil {
		return err
	}
	ot, err := opttester.NewFromScenario(ctx, sc)
	if err != nil {
		return err
	}
	if err := applyFlags(&ot.Flags.Settings, fs); err != nil {
		return err
	}
	metrics := xform.MakeMetrics()
	ot.Flags.Metrics = &metrics

	start := time.Now()
	res, err := ot.Optimize()
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	var fmtFlags memo.FmtFlags
	if flags.hideCosts {
		fmtFlags |= memo.FmtHideCosts
	}
	if flags.showMemo {
		fmt.Fprint(w, res.Optimizer.Memo().Format(fmtFlags|memo.FmtPaths))
		fmt.Fprintln(w)
	}
	fmt.Fprint(w, res.Optimizer.FormatPlan(res.Path, fmtFlags))
	fmt.Fprintf(w, "estimated rows: %s (%s)\n",
		humanizeutil.Rows(res.Rel.Rows), humanizeutil.IBytes(int64(res.Rel.Rows)*int64(res.Rel.Width)))
	fmt.Fprintf(w, "planning time: %s\n", humanizeutil.Duration(elapsed))

	if flags.showMetrics {
		registry := metric.NewRegistry()
		registry.AddMetricStruct(metrics)
		registry.Each(func(name string, val int64) {
			fmt.Fprintf(w, "%s %s\n", name, humanizeutil.Count(val))
		})
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra has already printed the error message.
		os.Exit(1)
	}
}
