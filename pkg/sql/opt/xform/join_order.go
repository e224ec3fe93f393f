// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package xform

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/relplan/pkg/sql/opt"
	"github.com/cockroachdb/relplan/pkg/sql/opt/memo"
	"github.com/cockroachdb/relplan/pkg/util/log"
)

// cartesianLogEvery limits how often cartesian product fallbacks are logged.
var cartesianLogEvery = log.Every(time.Minute)

// searchJoins builds the join relations of the query bottom-up, by number of
// base relations, and returns the one covering every base relation. Level k
// holds the join relations of k base relations. It is built by joining every
// pair of disjoint relations from levels i and k-i that are linked by a join
// clause. If no pair is linked, the relations of level k-1 are joined to
// every base relation instead (cartesian products).
//
// If there are more base relations than the join order limit, only
// left-deep trees are considered: level k is built from levels k-1 and 1.
func (o *Optimizer) searchJoins(ctx context.Context) *memo.RelNode {
	base := o.mem.BaseRels()
	n := len(base)
	levels := make([][]*memo.RelNode, n+1)
	levels[1] = base
	bushy := n <= o.settings.JoinOrderLimit

	for k := 2; k <= n; k++ {
		seen := make(map[*memo.RelNode]bool)
		add := func(rel *memo.RelNode) {
			if !seen[rel] {
				seen[rel] = true
				levels[k] = append(levels[k], rel)
			}
		}

		for i := 1; i <= k/2; i++ {
			if !bushy && i > 1 {
				break
			}
			for li, left := range levels[k-i] {
				for ri, right := range levels[i] {
					if i == k-i && ri <= li {
						// Each pair of the same level is considered once.
						continue
					}
					if left.Relids.Intersects(right.Relids) || !haveRelevantJoinClause(left, right) {
						continue
					}
					add(o.makeJoinRel(left, right))
				}
			}
		}

		if len(levels[k]) == 0 {
			if cartesianLogEvery.ShouldLog() {
				log.Infof(ctx, "no join clause links relations at level %d; considering cartesian products", k)
			}
			for _, left := range levels[k-1] {
				for _, right := range levels[1] {
					if !left.Relids.Intersects(right.Relids) {
						add(o.makeJoinRel(left, right))
					}
				}
			}
		}
		if len(levels[k]) == 0 {
			panic(errors.AssertionFailedf("no join relations of %d base relations", k))
		}

		for _, rel := range levels[k] {
			o.mem.SetCheapest(rel)
		}
		log.VEventf(ctx, 2, "join level %d: %d relations", k, len(levels[k]))
	}

	if len(levels[n]) != 1 {
		panic(errors.AssertionFailedf("expected one relation covering every base relation, found %d", len(levels[n])))
	}
	return levels[n][0]
}

// haveRelevantJoinClause returns true if a join clause of left references
// one of the relations of right.
func haveRelevantJoinClause(left, right *memo.RelNode) bool {
	for _, ji := range left.JoinInfo {
		if ji.UnjoinedRelids.Intersects(right.Relids) {
			return true
		}
	}
	return false
}

// makeJoinRel finds or creates the join relation of left and right, and adds
// the join paths of both orientations to it.
func (o *Optimizer) makeJoinRel(left, right *memo.RelNode) *memo.RelNode {
	relids := left.Relids.Union(right.Relids)
	joinRel, restrict := o.mem.BuildJoinRel(relids, left, right, opt.InnerJoin)
	o.addJoinPaths(joinRel, left, right, opt.InnerJoin, restrict)
	_, restrict = o.mem.BuildJoinRel(relids, right, left, opt.InnerJoin)
	o.addJoinPaths(joinRel, right, left, opt.InnerJoin, restrict)
	return joinRel
}
