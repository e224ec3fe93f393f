// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import (
	"bytes"
	"fmt"

	"github.com/cockroachdb/relplan/pkg/sql/opt"
	"github.com/cockroachdb/relplan/pkg/sql/opt/props"
	"github.com/cockroachdb/relplan/pkg/util/treeprinter"
)

// FmtFlags controls how much detail the memo formatter prints.
type FmtFlags int

const (
	// FmtPaths includes the surviving paths of every relation node.
	FmtPaths FmtFlags = 1 << iota
	// FmtTargetList includes the target lists of relation nodes.
	FmtTargetList
	// FmtHideCosts omits path costs.
	FmtHideCosts
)

// HasFlags tests whether the given flags are all set.
func (f FmtFlags) HasFlags(subset FmtFlags) bool {
	return f&subset == subset
}

// FormatRelids renders a relation id set using the range table aliases, for
// example "{r,s}".
func (m *Memo) FormatRelids(relids opt.RelSet) string {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	relids.ForEach(func(relid opt.RelID) {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		if int(relid) <= len(m.rangeTable) && m.rangeTable[relid-1].Name != "" {
			buf.WriteString(m.rangeTable[relid-1].Name)
		} else {
			fmt.Fprintf(&buf, "%d", relid)
		}
	})
	buf.WriteByte('}')
	return buf.String()
}

// Format renders the equivalence classes and relation nodes of the memo.
func (m *Memo) Format(flags FmtFlags) string {
	tp := treeprinter.New()
	root := tp.Child("memo")

	if m.registry != nil && len(m.registry.Classes()) > 0 {
		eq := root.Child("equivalences")
		for _, class := range m.registry.Classes() {
			eq.Child(class.Format(m.ops))
		}
	}

	for _, rel := range m.baseRels {
		m.formatRel(root, rel, flags)
	}
	for _, rel := range m.otherRels {
		m.formatRel(root, rel, flags)
	}
	for _, rel := range m.joinRels {
		m.formatRel(root, rel, flags)
	}
	return tp.String()
}

func (m *Memo) formatRel(tp treeprinter.Node, rel *RelNode, flags FmtFlags) {
	var n treeprinter.Node
	switch rel.Kind {
	case JoinRel:
		n = tp.Childf("join %s rows=%.0f width=%d", m.FormatRelids(rel.Relids), rel.Rows, rel.Width)
	default:
		n = tp.Childf("%s %s rows=%.0f pages=%.0f tuples=%.0f",
			rel.Kind, m.FormatRelids(rel.Relids), rel.Rows, rel.Pages, rel.Tuples)
	}

	if flags.HasFlags(FmtTargetList) && len(rel.TargetList) > 0 {
		var buf bytes.Buffer
		for i := range rel.TargetList {
			if i > 0 {
				buf.WriteString(", ")
			}
			fmt.Fprintf(&buf, "%d:%s", rel.TargetList[i].ResNo, rel.TargetList[i].Expr)
		}
		n.Childf("target: %s", buf.String())
	}
	for _, idx := range rel.Indexes {
		n.Childf("index %s", idx.Name)
	}
	for _, ri := range rel.BaseRestrictInfo {
		n.Childf("restrict: %s", ri)
	}
	for _, ji := range rel.JoinInfo {
		var buf bytes.Buffer
		for i, ri := range ji.RestrictInfos {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(ri.String())
		}
		n.Childf("awaiting %s: %s", m.FormatRelids(ji.UnjoinedRelids), buf.String())
	}
	if flags.HasFlags(FmtPaths) {
		for _, p := range rel.Paths {
			n.Child(m.formatPathLine(p, flags))
		}
	}
}

// FormatPath renders a path and its inputs as a tree.
func (m *Memo) FormatPath(p *Path, flags FmtFlags) string {
	tp := treeprinter.New()
	m.formatPath(tp, p, flags)
	return tp.String()
}

func (m *Memo) formatPath(tp treeprinter.Node, p *Path, flags FmtFlags) {
	n := tp.Child(m.formatPathLine(p, flags))
	if len(p.PathKeys) > 0 {
		n.AddLine(fmt.Sprintf("ordering: %s", m.formatPathKeys(p.PathKeys)))
	}
	switch p.Type {
	case MergeJoinPath:
		n.AddLine(fmt.Sprintf("merge: %s", formatClauses(p.MergeClauses)))
		m.formatSortedInput(n, p.Outer, p.OuterSortKeys, flags)
		m.formatSortedInput(n, p.Inner, p.InnerSortKeys, flags)
	case HashJoinPath:
		n.AddLine(fmt.Sprintf("hash: %s", formatClauses(p.HashClauses)))
		m.formatPath(n, p.Outer, flags)
		m.formatPath(n, p.Inner, flags)
	case NestLoopPath:
		m.formatPath(n, p.Outer, flags)
		m.formatPath(n, p.Inner, flags)
	case SortPath:
		m.formatPath(n, p.Input, flags)
	}
}

func (m *Memo) formatSortedInput(
	tp treeprinter.Node, input *Path, sortKeys props.PathKeys, flags FmtFlags,
) {
	if len(sortKeys) == 0 {
		m.formatPath(tp, input, flags)
		return
	}
	n := tp.Childf("sort %s", m.formatPathKeys(sortKeys))
	m.formatPath(n, input, flags)
}

func (m *Memo) formatPathLine(p *Path, flags FmtFlags) string {
	var buf bytes.Buffer
	buf.WriteString(p.Type.String())
	if p.Parent != nil {
		fmt.Fprintf(&buf, " %s", m.FormatRelids(p.Parent.Relids))
	}
	switch p.Type {
	case IndexScanPath:
		fmt.Fprintf(&buf, " %s", p.Index.Name)
		if p.ScanDir.IsBackward() {
			buf.WriteString(" backward")
		}
	case NestLoopPath, MergeJoinPath, HashJoinPath:
		if p.JoinType != opt.InnerJoin {
			fmt.Fprintf(&buf, " %s", p.JoinType)
		}
		if p.Type == NestLoopPath && len(p.JoinRestrict) > 0 {
			fmt.Fprintf(&buf, " on %s", formatClauses(p.JoinRestrict))
		}
	}
	if !flags.HasFlags(FmtHideCosts) {
		fmt.Fprintf(&buf, " cost=%.2f..%.2f", float64(p.StartupCost), float64(p.TotalCost))
	}
	return buf.String()
}

func (m *Memo) formatPathKeys(pk props.PathKeys) string {
	return pk.Format(m.ops)
}

func formatClauses(list []*RestrictInfo) string {
	var buf bytes.Buffer
	for i, ri := range list {
		if i > 0 {
			buf.WriteString(" AND ")
		}
		buf.WriteString(ri.String())
	}
	return buf.String()
}
