// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package xform

import (
	"github.com/cockroachdb/relplan/pkg/sql/opt"
	"github.com/cockroachdb/relplan/pkg/sql/opt/memo"
	"github.com/cockroachdb/relplan/pkg/sql/opt/ordering"
	"github.com/cockroachdb/relplan/pkg/sql/opt/props"
)

// buildScanPaths estimates the size of a base or auxiliary relation and adds
// its access paths: a sequential scan, and a scan of every ordered index in
// each direction whose ordering is useful.
func (o *Optimizer) buildScanPaths(rel *memo.RelNode) {
	o.coster.setBaseRelSize(rel)

	seq := &memo.Path{Type: memo.SeqScanPath, Parent: rel}
	o.coster.costSeqScan(seq)
	o.mem.AddPath(rel, seq)

	for _, index := range rel.Indexes {
		if !index.IsOrdered() {
			continue
		}
		for _, dir := range []opt.ScanDirection{opt.ForwardScan, opt.BackwardScan} {
			keys := ordering.FromIndex(&o.mem, rel, index, dir)
			if !o.usefulPathKeys(rel, keys) {
				continue
			}
			p := &memo.Path{Type: memo.IndexScanPath, Parent: rel, Index: index, ScanDir: dir, PathKeys: keys}
			o.coster.costIndexScan(p)
			o.mem.AddPath(rel, p)
		}
	}
	o.mem.SetCheapest(rel)
}

// usefulPathKeys returns true if an ordering could save a sort: either it
// starts with the first position of the query ordering, or some join clause
// of the relation could merge on it.
func (o *Optimizer) usefulPathKeys(rel *memo.RelNode, keys props.PathKeys) bool {
	if len(keys) == 0 {
		return false
	}
	if len(o.queryPathKeys) > 0 && keys[0].Equals(o.queryPathKeys[0]) {
		return true
	}
	for _, ji := range rel.JoinInfo {
		if len(ordering.FindMergeClauses(keys, ji.RestrictInfos)) > 0 {
			return true
		}
	}
	return false
}
