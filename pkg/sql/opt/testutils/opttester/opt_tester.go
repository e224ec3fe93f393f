// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package opttester plans test scenarios with the optimizer and formats the
// results for data-driven tests and command line tools.
package opttester

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/relplan/pkg/sql/opt"
	"github.com/cockroachdb/relplan/pkg/sql/opt/memo"
	"github.com/cockroachdb/relplan/pkg/sql/opt/ordering"
	"github.com/cockroachdb/relplan/pkg/sql/opt/testutils/testcat"
	"github.com/cockroachdb/relplan/pkg/sql/opt/xform"
)

// OptTester is a helper for testing the optimizer on a scenario: a schema
// and a query written in YAML. It can:
//   - build the optimizer state of the query
//   - plan the query and format the chosen path tree
//   - format the memo, with or without the surviving paths
//   - format the equivalence classes and the query ordering
type OptTester struct {
	Flags Flags

	ctx      context.Context
	scenario *testcat.Scenario
	catalog  *testcat.Catalog
	query    *testcat.Query
}

// Flags are control knobs for tests. Test cases can override them with
// command arguments.
type Flags struct {
	// MemoFormat controls the output detail of the memo and plan commands.
	MemoFormat memo.FmtFlags

	// Settings are the planner settings. They start from the scenario's
	// settings block; command arguments override them.
	Settings xform.Settings

	// Metrics, if set, receives the counters of every planning pass.
	Metrics *xform.Metrics
}

// New parses the scenario and resolves its query.
func New(ctx context.Context, input string) (*OptTester, error) {
	sc, err := testcat.ParseScenario([]byte(input))
	if err != nil {
		return nil, err
	}
	return NewFromScenario(ctx, sc)
}

// NewFromScenario resolves the query of a parsed scenario.
func NewFromScenario(ctx context.Context, sc *testcat.Scenario) (*OptTester, error) {
	catalog, query, err := sc.Build()
	if err != nil {
		return nil, err
	}
	ot := &OptTester{
		ctx:      ctx,
		scenario: sc,
		catalog:  catalog,
		query:    query,
	}
	ot.Flags.Settings = xform.DefaultSettings()
	if err := ot.Flags.Settings.ApplyYAML(&sc.Settings); err != nil {
		return nil, err
	}
	return ot, nil
}

// Catalog returns the catalog built from the scenario's schema.
func (ot *OptTester) Catalog() *testcat.Catalog {
	return ot.catalog
}

// RunCommand implements the commands of the data-driven tests. The input of
// every command is a scenario.
//
//   - plan [flags]
//
//     Plans the query and outputs the chosen path tree.
//
//   - memo [flags]
//
//     Plans the query and outputs the memo: the equivalence classes and every
//     relation node with its surviving paths.
//
//   - equiv
//
//     Builds the query up to the end of equivalence discovery and outputs the
//     equivalence classes and the canonical query ordering.
//
// Supported flags:
//
//   - format: a list of hide-cost, hide-paths and show-target-list.
//   - disable: a list of strategies to disable: seqscan, indexscan, nestloop,
//     mergejoin, hashjoin and sort.
//   - cursor-fraction: plans the query as a cursor fetching the given
//     fraction of its rows.
//   - join-limit: the number of relations up to which bushy trees are
//     searched.
func (ot *OptTester) RunCommand(tb testing.TB, d *datadriven.TestData) string {
	ot.Flags.MemoFormat = memo.FmtPaths
	for _, a := range d.CmdArgs {
		if err := ot.Flags.Set(a); err != nil {
			d.Fatalf(tb, "%+v", err)
		}
	}

	switch d.Cmd {
	case "plan":
		result, err := ot.Plan()
		if err != nil {
			return fmt.Sprintf("error: %s\n", strings.TrimSpace(err.Error()))
		}
		return result

	case "memo":
		result, err := ot.Memo()
		if err != nil {
			return fmt.Sprintf("error: %s\n", strings.TrimSpace(err.Error()))
		}
		return result

	case "equiv":
		result, err := ot.Equivalences()
		if err != nil {
			d.Fatalf(tb, "%+v", err)
		}
		return result

	default:
		d.Fatalf(tb, "unsupported command: %s", d.Cmd)
		return ""
	}
}

// Set parses a command argument that refers to a flag.
func (f *Flags) Set(arg datadriven.CmdArg) error {
	switch arg.Key {
	case "format":
		f.MemoFormat = 0
		paths := true
		for _, v := range arg.Vals {
			switch v {
			case "hide-cost":
				f.MemoFormat |= memo.FmtHideCosts
			case "hide-paths":
				paths = false
			case "show-target-list":
				f.MemoFormat |= memo.FmtTargetList
			default:
				return errors.Newf("unknown format value %q", v)
			}
		}
		if paths {
			f.MemoFormat |= memo.FmtPaths
		}

	case "disable":
		for _, v := range arg.Vals {
			if err := f.disable(v); err != nil {
				return err
			}
		}

	case "cursor-fraction":
		if len(arg.Vals) != 1 {
			return errors.New("cursor-fraction requires one value")
		}
		fraction, err := strconv.ParseFloat(arg.Vals[0], 64)
		if err != nil {
			return errors.Wrap(err, "cursor-fraction")
		}
		f.Settings.Cursor = true
		f.Settings.CursorTupleFraction = fraction

	case "join-limit":
		if len(arg.Vals) != 1 {
			return errors.New("join-limit requires one value")
		}
		limit, err := strconv.Atoi(arg.Vals[0])
		if err != nil {
			return errors.Wrap(err, "join-limit")
		}
		f.Settings.JoinOrderLimit = limit

	default:
		return errors.Newf("unknown argument: %s", arg.Key)
	}
	return f.Settings.Validate()
}

func (f *Flags) disable(strategy string) error {
	switch strategy {
	case "seqscan":
		f.Settings.EnableSeqScan = false
	case "indexscan":
		f.Settings.EnableIndexScan = false
	case "nestloop":
		f.Settings.EnableNestLoop = false
	case "mergejoin":
		f.Settings.EnableMergeJoin = false
	case "hashjoin":
		f.Settings.EnableHashJoin = false
	case "sort":
		f.Settings.EnableSort = false
	default:
		return errors.Newf("unknown strategy %q", strategy)
	}
	return nil
}

// Optimizer returns an optimizer loaded with the scenario's query: its
// relations, clauses, target list and ordering. The optimizer has not been
// prepared yet.
func (ot *OptTester) Optimizer() (*xform.Optimizer, error) {
	q := ot.query
	o := xform.NewOptimizer(ot.ctx, ot.catalog, ot.catalog, q.RangeTable, ot.Flags.Settings)
	if ot.Flags.Metrics != nil {
		o.SetMetrics(ot.Flags.Metrics)
	}
	for i := range q.RangeTable {
		relid := opt.RelID(i + 1)
		var err error
		if q.OtherRels.Contains(relid) {
			_, err = o.AddOtherRel(relid)
		} else {
			_, err = o.AddBaseRel(relid)
		}
		if err != nil {
			return nil, err
		}
	}
	for _, clause := range q.Where {
		if _, err := o.AddQual(clause); err != nil {
			return nil, err
		}
	}
	if err := o.SetTargetList(q.Select); err != nil {
		return nil, err
	}
	sortClauses := make([]ordering.SortClause, len(q.OrderBy))
	for i, item := range q.OrderBy {
		sortClauses[i] = ordering.SortClause{Ref: item.Ref, SortOp: item.SortOp}
	}
	if err := o.SetSortClauses(sortClauses); err != nil {
		return nil, err
	}
	return o, nil
}

// PlanResult holds the outcome of planning the scenario.
type PlanResult struct {
	Optimizer *xform.Optimizer
	Rel       *memo.RelNode
	Path      *memo.Path
}

// Optimize plans the scenario's query.
func (ot *OptTester) Optimize() (PlanResult, error) {
	o, err := ot.Optimizer()
	if err != nil {
		return PlanResult{}, err
	}
	rel, path, err := o.Plan()
	if err != nil {
		return PlanResult{}, err
	}
	return PlanResult{Optimizer: o, Rel: rel, Path: path}, nil
}

// Plan plans the query and formats the chosen path tree.
func (ot *OptTester) Plan() (string, error) {
	res, err := ot.Optimize()
	if err != nil {
		return "", err
	}
	return res.Optimizer.FormatPlan(res.Path, ot.Flags.MemoFormat), nil
}

// Memo plans the query and formats the memo.
func (ot *OptTester) Memo() (string, error) {
	res, err := ot.Optimize()
	if err != nil {
		return "", err
	}
	return res.Optimizer.Memo().Format(ot.Flags.MemoFormat), nil
}

// Equivalences prepares the query and formats the equivalence classes and
// the canonical query ordering.
func (ot *OptTester) Equivalences() (string, error) {
	o, err := ot.Optimizer()
	if err != nil {
		return "", err
	}
	if err := o.Prepare(); err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(o.Registry().Format(ot.catalog))
	fmt.Fprintf(&b, "ordering: %s\n", o.QueryPathKeys().Format(ot.catalog))
	return b.String(), nil
}
