// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package xform

import (
	"math"

	"github.com/cockroachdb/relplan/pkg/sql/opt"
	"github.com/cockroachdb/relplan/pkg/sql/opt/cat"
	"github.com/cockroachdb/relplan/pkg/sql/opt/memo"
	"github.com/cockroachdb/relplan/pkg/sql/opt/props"
	"github.com/cockroachdb/relplan/pkg/sql/opt/scalar"
)

// These costs are in units of one sequential page fetch.
const (
	seqPageCost       = 1.0
	randomPageCost    = 4.0
	cpuTupleCost      = 0.01
	cpuIndexTupleCost = 0.001
	cpuOperatorCost   = 0.0025

	// disableCost is added to the cost of strategies turned off in the
	// settings.
	disableCost = 1.0e8

	pageSize = 8192
	// sortMemPages is the number of pages a sort can hold in memory before it
	// spills to disk.
	sortMemPages = 128
)

// Default selectivities, used in the absence of statistics.
const (
	defaultEqSel    = 0.005
	defaultIneqSel  = 1.0 / 3.0
	defaultTypWidth = 32
)

// coster is the default memo.Coster. It implements a simple disk-oriented
// cost model: page fetches plus per-tuple and per-operator CPU costs.
type coster struct {
	settings *Settings
}

var _ memo.Coster = &coster{}

func (c *coster) init(settings *Settings) {
	*c = coster{settings: settings}
}

// clampRows rounds a row estimate and forces it to at least one row.
func clampRows(rows float64) float64 {
	if rows <= 1 {
		return 1
	}
	return math.Round(rows)
}

// selectivity returns the fraction of rows a clause lets through.
func selectivity(ri *memo.RestrictInfo) float64 {
	if ri.CanMergeJoin() {
		return defaultEqSel
	}
	return defaultIneqSel
}

func clauseListSelectivity(list []*memo.RestrictInfo) float64 {
	sel := 1.0
	for _, ri := range list {
		sel *= selectivity(ri)
	}
	return sel
}

// typeWidth returns the average width in bytes of a value of the given type.
func typeWidth(typ cat.TypeID) int {
	switch typ {
	case 16: // bool
		return 1
	case 23: // int4
		return 4
	case 20, 701: // int8, float8
		return 8
	}
	return defaultTypWidth
}

func targetListWidth(tlist []memo.TargetEntry) int {
	width := 0
	for i := range tlist {
		switch e := tlist[i].Expr.(type) {
		case *scalar.Variable:
			width += typeWidth(e.Type)
		case *scalar.FuncCall:
			width += typeWidth(e.Type)
		default:
			width += defaultTypWidth
		}
	}
	return width
}

// setBaseRelSize estimates the row count and width of a base or other
// relation after applying its restrictions.
func (c *coster) setBaseRelSize(rel *memo.RelNode) {
	rel.Rows = clampRows(rel.Tuples * clauseListSelectivity(rel.BaseRestrictInfo))
	rel.Width = targetListWidth(rel.TargetList)
}

// EstimateJoinSize is part of the memo.Coster interface.
func (c *coster) EstimateJoinSize(
	joinRel, outer, inner *memo.RelNode, joinType opt.JoinType, restrict []*memo.RestrictInfo,
) (float64, int) {
	rows := outer.Rows * inner.Rows * clauseListSelectivity(restrict)
	return clampRows(rows), outer.Width + inner.Width
}

// ComparePathCosts is part of the memo.Coster interface. Ties on the given
// criterion are broken by the other one.
func (c *coster) ComparePathCosts(a, b *memo.Path, criterion opt.CostCriterion) int {
	if criterion == opt.StartupCost {
		if cmp := a.StartupCost.Compare(b.StartupCost); cmp != 0 {
			return cmp
		}
		return a.TotalCost.Compare(b.TotalCost)
	}
	if cmp := a.TotalCost.Compare(b.TotalCost); cmp != 0 {
		return cmp
	}
	return a.StartupCost.Compare(b.StartupCost)
}

// CompareFractionalCosts is part of the memo.Coster interface. A fraction
// outside of (0, 1) compares total costs.
func (c *coster) CompareFractionalCosts(a, b *memo.Path, fraction float64) int {
	if fraction <= 0 || fraction >= 1 {
		return c.ComparePathCosts(a, b, opt.TotalCost)
	}
	return fractionalCost(a, fraction).Compare(fractionalCost(b, fraction))
}

func fractionalCost(p *memo.Path, fraction float64) memo.Cost {
	return p.StartupCost + memo.Cost(fraction)*(p.TotalCost-p.StartupCost)
}

func (c *coster) penalize(p *memo.Path, enabled bool) {
	if !enabled {
		p.StartupCost += disableCost
		p.TotalCost += disableCost
	}
}

func rowsOf(p *memo.Path) float64 {
	return p.Parent.Rows
}

// costSeqScan reads every page of the table and evaluates the restrictions
// on every tuple.
func (c *coster) costSeqScan(p *memo.Path) {
	rel := p.Parent
	perTuple := cpuTupleCost + cpuOperatorCost*float64(len(rel.BaseRestrictInfo))
	p.StartupCost = 0
	p.TotalCost = memo.Cost(seqPageCost*rel.Pages + perTuple*rel.Tuples)
	c.penalize(p, c.settings.EnableSeqScan)
}

// costIndexScan reads the whole index and fetches every heap page at random.
func (c *coster) costIndexScan(p *memo.Path) {
	rel := p.Parent
	indexPages := p.Index.Pages
	if indexPages <= 0 {
		indexPages = math.Ceil(rel.Pages / 2)
	}
	perTuple := cpuIndexTupleCost + cpuTupleCost + cpuOperatorCost*float64(len(rel.BaseRestrictInfo))
	p.StartupCost = 0
	p.TotalCost = memo.Cost(seqPageCost*indexPages + randomPageCost*rel.Pages + perTuple*rel.Tuples)
	c.penalize(p, c.settings.EnableIndexScan)
}

// sortCost returns the startup and run cost of sorting the output of input,
// not including the cost of the input itself.
func (c *coster) sortCost(rows float64, width int) (startup, run memo.Cost) {
	if rows < 2 {
		rows = 2
	}
	startup = memo.Cost(2 * cpuOperatorCost * rows * math.Log2(rows))
	if pages := math.Ceil(rows * float64(width) / pageSize); pages > sortMemPages {
		// Write and read back every page once per merge pass.
		passes := math.Ceil(math.Log2(pages / sortMemPages))
		startup += memo.Cost(2 * seqPageCost * pages * passes)
	}
	if !c.settings.EnableSort {
		startup += disableCost
	}
	run = memo.Cost(cpuOperatorCost * rows)
	return startup, run
}

// costSort sets the cost of a sort path over its input.
func (c *coster) costSort(p *memo.Path) {
	startup, run := c.sortCost(rowsOf(p.Input), p.Parent.Width)
	p.StartupCost = p.Input.TotalCost + startup
	p.TotalCost = p.StartupCost + run
}

// sortedInputCost returns the cost of an input of a merge join, including
// the sort if sortKeys is not empty.
func (c *coster) sortedInputCost(input *memo.Path, sortKeys props.PathKeys) (startup, total memo.Cost) {
	if len(sortKeys) == 0 {
		return input.StartupCost, input.TotalCost
	}
	sortStartup, run := c.sortCost(rowsOf(input), input.Parent.Width)
	startup = input.TotalCost + sortStartup
	return startup, startup + run
}

// costNestLoop rescans the inner input once per outer row.
func (c *coster) costNestLoop(p *memo.Path) {
	outerRows, innerRows := rowsOf(p.Outer), rowsOf(p.Inner)
	p.StartupCost = p.Outer.StartupCost + p.Inner.StartupCost
	p.TotalCost = p.Outer.TotalCost + memo.Cost(outerRows)*p.Inner.TotalCost +
		memo.Cost(cpuTupleCost*outerRows*innerRows)
	c.penalize(p, c.settings.EnableNestLoop)
}

// costMergeJoin reads both sorted inputs once.
func (c *coster) costMergeJoin(p *memo.Path) {
	outerStartup, outerTotal := c.sortedInputCost(p.Outer, p.OuterSortKeys)
	innerStartup, innerTotal := c.sortedInputCost(p.Inner, p.InnerSortKeys)
	outerRows, innerRows := rowsOf(p.Outer), rowsOf(p.Inner)
	p.StartupCost = outerStartup + innerStartup
	p.TotalCost = outerTotal + innerTotal +
		memo.Cost(cpuOperatorCost*(outerRows+innerRows)+cpuTupleCost*p.Parent.Rows)
	c.penalize(p, c.settings.EnableMergeJoin)
}

// costHashJoin builds a hash table over the whole inner input before
// returning the first row.
func (c *coster) costHashJoin(p *memo.Path) {
	outerRows, innerRows := rowsOf(p.Outer), rowsOf(p.Inner)
	p.StartupCost = p.Inner.TotalCost + memo.Cost(cpuOperatorCost*innerRows)
	p.TotalCost = p.StartupCost + p.Outer.TotalCost +
		memo.Cost(cpuOperatorCost*outerRows+cpuTupleCost*p.Parent.Rows)
	c.penalize(p, c.settings.EnableHashJoin)
}
