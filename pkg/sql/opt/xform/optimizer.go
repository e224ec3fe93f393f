// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package xform drives one planning pass over the planner core: it owns the
// equivalence registry and the memo of a query, builds the access paths of
// every base relation, searches join orders bottom-up, and picks the cheapest
// plan that delivers the query's requested ordering.
package xform

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/relplan/pkg/sql/opt"
	"github.com/cockroachdb/relplan/pkg/sql/opt/cat"
	"github.com/cockroachdb/relplan/pkg/sql/opt/memo"
	"github.com/cockroachdb/relplan/pkg/sql/opt/norm"
	"github.com/cockroachdb/relplan/pkg/sql/opt/ordering"
	"github.com/cockroachdb/relplan/pkg/sql/opt/props"
	"github.com/cockroachdb/relplan/pkg/sql/opt/scalar"
	"github.com/cockroachdb/relplan/pkg/util/log"
	"github.com/cockroachdb/relplan/pkg/util/tracing"
)

// Optimizer is the planning context of one query. The calls to build the
// query must be made in this order:
//
//  1. AddBaseRel and AddOtherRel for the relations of the range table.
//  2. AddQual for every WHERE and JOIN clause.
//  3. SetTargetList and SetSortClauses.
//  4. Plan, which calls Prepare if it was not called already.
//
// Programming errors in the core are raised as assertion failure panics; the
// exported methods convert them to errors.
//
// An Optimizer must not be used concurrently or reused for another query
// without calling Init again.
type Optimizer struct {
	ctx      context.Context
	settings Settings
	catalog  cat.Catalog
	ops      cat.Operators

	reg        props.EquivRegistry
	mem        memo.Memo
	coster     coster
	simplifier norm.RedundancyEliminator
	metrics    *Metrics

	// tlist is the query's target list.
	tlist []memo.TargetEntry

	// sortKeys are the pathkeys of the query's ORDER BY list, as built from
	// the sort clauses. queryPathKeys is their canonical form, available
	// after Prepare.
	sortKeys      props.PathKeys
	queryPathKeys props.PathKeys

	prepared bool
	planned  bool
}

// NewOptimizer allocates and initializes an optimizer.
func NewOptimizer(
	ctx context.Context,
	catalog cat.Catalog,
	ops cat.Operators,
	rangeTable []cat.DataSource,
	settings Settings,
) *Optimizer {
	o := &Optimizer{}
	o.Init(ctx, catalog, ops, rangeTable, settings)
	return o
}

// Init prepares the optimizer for a new query over the given range table.
// Relation id i refers to rangeTable[i-1].
func (o *Optimizer) Init(
	ctx context.Context,
	catalog cat.Catalog,
	ops cat.Operators,
	rangeTable []cat.DataSource,
	settings Settings,
) {
	// This initialization pattern ensures that fields are not unwittingly
	// reused. Field reuse must be explicit.
	*o = Optimizer{
		ctx:      logtags.AddTag(ctx, "opt", nil),
		settings: settings,
		catalog:  catalog,
		ops:      ops,
	}
	o.reg.Init(o.ctx)
	o.mem.Init(o.ctx, catalog, ops, rangeTable, &o.reg)
	o.coster.init(&o.settings)
	o.simplifier.Init(o.ctx, &o.reg)
	o.mem.SetCoster(&o.coster)
	o.mem.SetSimplifier(&o.simplifier)
}

// SetMetrics makes the optimizer report its work to the given metrics when
// planning ends.
func (o *Optimizer) SetMetrics(m *Metrics) {
	o.metrics = m
}

// SetCoster replaces the collaborator used to estimate join sizes and to
// compare path costs. Paths are still costed by the default model.
func (o *Optimizer) SetCoster(c memo.Coster) {
	o.mem.SetCoster(c)
}

// Memo returns the memo of the query.
func (o *Optimizer) Memo() *memo.Memo {
	return &o.mem
}

// Registry returns the equivalence registry of the query.
func (o *Optimizer) Registry() *props.EquivRegistry {
	return &o.reg
}

// Settings returns the settings of the planning pass.
func (o *Optimizer) Settings() Settings {
	return o.settings
}

// QueryPathKeys returns the canonical pathkeys of the query's ORDER BY list.
// It is only valid after Prepare.
func (o *Optimizer) QueryPathKeys() props.PathKeys {
	return o.queryPathKeys
}

// AddBaseRel creates the relation node of a base relation.
func (o *Optimizer) AddBaseRel(relid opt.RelID) (_ *memo.RelNode, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = opt.CatchOptimizerError(r)
		}
	}()
	o.checkNotPrepared()
	return o.mem.BuildBaseRel(relid), nil
}

// AddOtherRel creates the relation node of an auxiliary relation, such as an
// inheritance child. Auxiliary relations get access paths but do not take
// part in the join search.
func (o *Optimizer) AddOtherRel(relid opt.RelID) (_ *memo.RelNode, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = opt.CatchOptimizerError(r)
		}
	}()
	o.checkNotPrepared()
	return o.mem.BuildOtherRel(relid), nil
}

// AddQual annotates a WHERE or JOIN clause and attaches it to the relations
// it references. Mergejoinable equalities are recorded as equivalences.
func (o *Optimizer) AddQual(clause scalar.Expr) (_ *memo.RestrictInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = opt.CatchOptimizerError(r)
		}
	}()
	o.checkNotPrepared()
	ri := memo.NewRestrictInfo(clause, o.ops)
	o.mem.DistributeQual(ri)
	return ri, nil
}

// SetTargetList sets the expressions the query returns. Their variables are
// added to the target lists of their base relations.
func (o *Optimizer) SetTargetList(exprs []scalar.Expr) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = opt.CatchOptimizerError(r)
		}
	}()
	o.checkNotPrepared()
	o.tlist = make([]memo.TargetEntry, len(exprs))
	for i, e := range exprs {
		o.tlist[i] = memo.TargetEntry{ResNo: i + 1, Expr: e}
		for _, v := range scalar.Variables(e) {
			o.mem.AddVarToTargetList(v)
		}
	}
	return nil
}

// SetSortClauses sets the query's ORDER BY list. The clauses refer to the
// target list, which must be set first.
func (o *Optimizer) SetSortClauses(clauses []ordering.SortClause) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = opt.CatchOptimizerError(r)
		}
	}()
	o.checkNotPrepared()
	o.sortKeys = ordering.FromSortClauses(clauses, o.tlist)
	return nil
}

// Prepare ends the equivalence discovery phase and builds the access paths
// of every base and auxiliary relation.
func (o *Optimizer) Prepare() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = opt.CatchOptimizerError(r)
		}
	}()
	o.checkNotPrepared()
	o.reg.Close()
	o.queryPathKeys = o.reg.Canonicalize(o.sortKeys)

	for _, rel := range o.mem.BaseRels() {
		o.buildScanPaths(rel)
	}
	for _, rel := range o.mem.OtherRels() {
		o.buildScanPaths(rel)
	}
	o.prepared = true
	if log.V(2) {
		log.Infof(o.ctx, "prepared %d base rels, %d equivalence classes, query ordering %s",
			len(o.mem.BaseRels()), len(o.reg.Classes()), o.queryPathKeys.Format(o.ops))
	}
	return nil
}

// Plan searches the join orders of the base relations and returns the
// relation node covering all of them, along with the cheapest path that
// delivers the query's ordering. A sort is added on top of the cheapest path
// if that is cheaper than any path that is already ordered.
func (o *Optimizer) Plan() (rel *memo.RelNode, path *memo.Path, err error) {
	ctx, sp := tracing.ChildSpan(o.ctx, "plan")
	defer func() {
		tracing.FinishSpan(sp, err)
		if o.metrics != nil {
			o.metrics.record(o.mem.Stats(), o.simplifier.Removed(), err)
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			err = opt.CatchOptimizerError(r)
		}
	}()

	if o.planned {
		return nil, nil, errors.AssertionFailedf("query already planned")
	}
	o.planned = true
	if !o.prepared {
		if err := o.Prepare(); err != nil {
			return nil, nil, err
		}
	}

	n := len(o.mem.BaseRels())
	if n == 0 {
		return nil, nil, errors.New("no relations to plan")
	}
	if n > opt.MaxReorderJoinsLimit {
		return nil, nil, errors.Newf("cannot plan a join of %d relations; the limit is %d",
			n, opt.MaxReorderJoinsLimit)
	}

	rel = o.searchJoins(ctx)
	path = o.bestPathForQuery(rel)
	sp.AddEvent("planned")
	log.VEventf(ctx, 1, "planned %s: %s path, cost=%.2f..%.2f",
		o.mem.FormatRelids(rel.Relids), path.Type, float64(path.StartupCost), float64(path.TotalCost))
	return rel, path, nil
}

// FormatPlan renders a path tree.
func (o *Optimizer) FormatPlan(p *memo.Path, flags memo.FmtFlags) string {
	return o.mem.FormatPath(p, flags)
}

func (o *Optimizer) checkNotPrepared() {
	if o.prepared {
		panic(errors.AssertionFailedf("query was already prepared"))
	}
}

// bestPathForQuery picks the final path of the query: the cheapest path of
// rel that is ordered by the query pathkeys, or the cheapest path overall
// with a sort on top, whichever is cheaper. Cursors are compared on the cost
// of fetching the cursor tuple fraction.
func (o *Optimizer) bestPathForQuery(rel *memo.RelNode) *memo.Path {
	c := o.mem.Coster()
	fraction := o.settings.tupleFraction()
	cheapest := rel.CheapestTotalPath
	if fraction > 0 {
		cheapest = CheapestFractionalPathForPathKeys(rel.Paths, nil, fraction, c)
	}
	if o.queryPathKeys.ContainedIn(cheapest.PathKeys) {
		return cheapest
	}

	sorted := &memo.Path{Type: memo.SortPath, Parent: rel, Input: cheapest, PathKeys: o.queryPathKeys}
	o.coster.costSort(sorted)

	var presorted *memo.Path
	if fraction > 0 {
		presorted = CheapestFractionalPathForPathKeys(rel.Paths, o.queryPathKeys, fraction, c)
		if presorted != nil && c.CompareFractionalCosts(presorted, sorted, fraction) <= 0 {
			return presorted
		}
		return sorted
	}
	presorted = CheapestPathForPathKeys(rel.Paths, o.queryPathKeys, opt.TotalCost, c)
	if presorted != nil && c.ComparePathCosts(presorted, sorted, opt.TotalCost) <= 0 {
		return presorted
	}
	return sorted
}
