// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/relplan/pkg/sql/opt"
	"github.com/cockroachdb/relplan/pkg/sql/opt/props"
	"github.com/cockroachdb/relplan/pkg/util/log"
)

// AddPath considers a new path for a relation node. The path is added unless
// an existing path is at least as cheap and at least as well ordered; every
// existing path that the new path dominates in the same way is removed.
// Paths are compared on total cost, with startup cost breaking ties. Returns
// true if the path was added.
func (m *Memo) AddPath(rel *RelNode, path *Path) bool {
	if m.coster == nil {
		panic(errors.AssertionFailedf("memo has no coster"))
	}
	path.Parent = rel

	accept := true
	kept := rel.Paths[:0]
	for i, old := range rel.Paths {
		removeOld := false
		costCmp := m.coster.ComparePathCosts(path, old, opt.TotalCost)
		if costCmp == 0 {
			costCmp = m.coster.ComparePathCosts(path, old, opt.StartupCost)
		}
		keysCmp := props.ComparePathKeys(path.PathKeys, old.PathKeys)
		if keysCmp != props.PathKeysDifferent {
			switch {
			case costCmp < 0:
				removeOld = keysCmp != props.PathKeysBetter2
			case costCmp > 0:
				accept = keysCmp == props.PathKeysBetter1
			default:
				if keysCmp == props.PathKeysBetter1 {
					removeOld = true
				} else {
					accept = false
				}
			}
		}

		if removeOld {
			m.stats.PathsRemoved++
		} else {
			kept = append(kept, old)
		}
		if !accept {
			// The remaining paths are kept as is.
			kept = append(kept, rel.Paths[i+1:]...)
			break
		}
	}
	// Clear the tail so removed paths can be collected.
	for i := len(kept); i < len(rel.Paths); i++ {
		rel.Paths[i] = nil
	}
	rel.Paths = kept

	if !accept {
		m.stats.PathsRejected++
		log.VEventf(m.ctx, 4, "rejected %s path for %s", path.Type, rel.Relids)
		return false
	}
	rel.Paths = append(rel.Paths, path)
	m.stats.PathsAdded++
	return true
}

// SetCheapest finds the cheapest paths of a relation node by startup and by
// total cost. It panics if the node has no paths.
func (m *Memo) SetCheapest(rel *RelNode) {
	if len(rel.Paths) == 0 {
		panic(errors.AssertionFailedf("relation %s has no paths", rel.Relids))
	}
	var startup, total *Path
	for _, p := range rel.Paths {
		if startup == nil {
			startup, total = p, p
			continue
		}
		cmp := m.coster.ComparePathCosts(p, startup, opt.StartupCost)
		if cmp < 0 || (cmp == 0 && m.coster.ComparePathCosts(p, startup, opt.TotalCost) < 0) {
			startup = p
		}
		cmp = m.coster.ComparePathCosts(p, total, opt.TotalCost)
		if cmp < 0 || (cmp == 0 && m.coster.ComparePathCosts(p, total, opt.StartupCost) < 0) {
			total = p
		}
	}
	rel.CheapestStartupPath = startup
	rel.CheapestTotalPath = total
}
