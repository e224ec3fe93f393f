// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package xform_test

import (
	"testing"

	"github.com/cockroachdb/relplan/pkg/sql/opt"
	"github.com/cockroachdb/relplan/pkg/sql/opt/memo"
	"github.com/cockroachdb/relplan/pkg/sql/opt/props"
	"github.com/cockroachdb/relplan/pkg/sql/opt/scalar"
	"github.com/cockroachdb/relplan/pkg/sql/opt/xform"
	"github.com/stretchr/testify/require"
)

// plainCoster compares paths on the requested cost only.
type plainCoster struct{}

func (plainCoster) EstimateJoinSize(
	_, outer, inner *memo.RelNode, _ opt.JoinType, _ []*memo.RestrictInfo,
) (float64, int) {
	return outer.Rows * inner.Rows, outer.Width + inner.Width
}

func (plainCoster) ComparePathCosts(a, b *memo.Path, criterion opt.CostCriterion) int {
	if criterion == opt.StartupCost {
		return a.StartupCost.Compare(b.StartupCost)
	}
	return a.TotalCost.Compare(b.TotalCost)
}

func (plainCoster) CompareFractionalCosts(a, b *memo.Path, fraction float64) int {
	fa := a.StartupCost + memo.Cost(fraction)*(a.TotalCost-a.StartupCost)
	fb := b.StartupCost + memo.Cost(fraction)*(b.TotalCost-b.StartupCost)
	return fa.Compare(fb)
}

func sortKey(name string) *props.PathKey {
	return props.NewSingleton(props.MakeExprKey(&scalar.Variable{Name: name, Rel: 1, Attr: 1}, 2))
}

func TestCheapestPathForPathKeys(t *testing.T) {
	a := sortKey("a")
	b := props.NewSingleton(props.MakeExprKey(&scalar.Variable{Name: "b", Rel: 1, Attr: 2}, 2))
	ordered := props.PathKeys{a}

	p10 := &memo.Path{TotalCost: 10, PathKeys: props.PathKeys{b}}
	p5 := &memo.Path{TotalCost: 5, PathKeys: props.PathKeys{a}}
	p8 := &memo.Path{TotalCost: 8, PathKeys: props.PathKeys{a}}
	unordered := &memo.Path{TotalCost: 1}
	paths := []*memo.Path{p10, p5, p8, unordered}

	require.Same(t, p5, xform.CheapestPathForPathKeys(paths, ordered, opt.TotalCost, plainCoster{}))
	require.Same(t, unordered, xform.CheapestPathForPathKeys(paths, nil, opt.TotalCost, plainCoster{}))
	require.Same(t, p10, xform.CheapestPathForPathKeys(paths, props.PathKeys{b}, opt.TotalCost, plainCoster{}))
	require.Nil(t, xform.CheapestPathForPathKeys(paths, props.PathKeys{a, b}, opt.TotalCost, plainCoster{}))
	require.Nil(t, xform.CheapestPathForPathKeys(nil, ordered, opt.TotalCost, plainCoster{}))

	// Ties keep the earlier path.
	tie := &memo.Path{TotalCost: 5, PathKeys: props.PathKeys{a}}
	require.Same(t, p5, xform.CheapestPathForPathKeys(
		[]*memo.Path{p5, tie}, ordered, opt.TotalCost, plainCoster{}))
}

func TestCheapestFractionalPathForPathKeys(t *testing.T) {
	a := sortKey("a")
	ordered := props.PathKeys{a}

	// Fetching 10% of slowStart costs 50.5, and 10% of fastStart costs 10.
	slowStart := &memo.Path{StartupCost: 50, TotalCost: 55, PathKeys: ordered}
	fastStart := &memo.Path{StartupCost: 0, TotalCost: 100, PathKeys: ordered}
	paths := []*memo.Path{slowStart, fastStart}

	require.Same(t, fastStart, xform.CheapestFractionalPathForPathKeys(paths, ordered, 0.1, plainCoster{}))
	require.Same(t, slowStart, xform.CheapestFractionalPathForPathKeys(paths, ordered, 0.9, plainCoster{}))
	require.Same(t, slowStart, xform.CheapestPathForPathKeys(paths, ordered, opt.TotalCost, plainCoster{}))
	require.Same(t, fastStart, xform.CheapestPathForPathKeys(paths, ordered, opt.StartupCost, plainCoster{}))
}
