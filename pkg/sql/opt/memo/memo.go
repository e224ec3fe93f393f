// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package memo holds the per-query registry of relation nodes and the
// join-graph builder. The search driver asks the memo for the relation node
// of every combination of base relations it considers; the memo guarantees
// that each relation id set maps to exactly one node, and computes which
// clauses become restrictions at each join.
package memo

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/relplan/pkg/sql/opt"
	"github.com/cockroachdb/relplan/pkg/sql/opt/cat"
	"github.com/cockroachdb/relplan/pkg/sql/opt/props"
	"github.com/cockroachdb/relplan/pkg/sql/opt/scalar"
	"github.com/cockroachdb/relplan/pkg/util/log"
)

// Stats counts the work done by a memo.
type Stats struct {
	BaseRels       int
	OtherRels      int
	JoinRelsBuilt  int
	JoinRelsReused int
	Equivalences   int
	PathsAdded     int
	PathsRejected  int
	PathsRemoved   int
}

// Memo is the relation node registry of one query. It is not safe for
// concurrent use, and must not be shared between queries.
type Memo struct {
	ctx        context.Context
	catalog    cat.Catalog
	ops        cat.Operators
	rangeTable []cat.DataSource
	registry   *props.EquivRegistry
	coster     Coster
	simplifier Simplifier

	baseRels  []*RelNode
	otherRels []*RelNode
	joinRels  []*RelNode

	stats Stats
}

// Init prepares the memo for a new query. The range table is indexed by
// relation id: relid 1 is rangeTable[0].
func (m *Memo) Init(
	ctx context.Context,
	catalog cat.Catalog,
	ops cat.Operators,
	rangeTable []cat.DataSource,
	registry *props.EquivRegistry,
) {
	*m = Memo{
		ctx:        ctx,
		catalog:    catalog,
		ops:        ops,
		rangeTable: rangeTable,
		registry:   registry,
		simplifier: dedupSimplifier{},
	}
}

// SetCoster sets the collaborator used to estimate join sizes and compare
// path costs.
func (m *Memo) SetCoster(c Coster) {
	m.coster = c
}

// SetSimplifier sets the collaborator used to remove redundant clauses from
// join restriction lists.
func (m *Memo) SetSimplifier(s Simplifier) {
	m.simplifier = s
}

// Coster returns the cost collaborator.
func (m *Memo) Coster() Coster {
	return m.coster
}

// Registry returns the equivalence registry the memo records equalities in.
func (m *Memo) Registry() *props.EquivRegistry {
	return m.registry
}

// Operators returns the operator collaborator.
func (m *Memo) Operators() cat.Operators {
	return m.ops
}

// Catalog returns the catalog collaborator.
func (m *Memo) Catalog() cat.Catalog {
	return m.catalog
}

// Stats returns the memo's counters.
func (m *Memo) Stats() Stats {
	return m.stats
}

// DataSource returns the range table entry of the given relation.
func (m *Memo) DataSource(relid opt.RelID) *cat.DataSource {
	if relid <= 0 || int(relid) > len(m.rangeTable) {
		panic(errors.AssertionFailedf("relid %d is not in the range table", relid))
	}
	return &m.rangeTable[relid-1]
}

// BaseRels returns the base relation nodes, in creation order.
func (m *Memo) BaseRels() []*RelNode { return m.baseRels }

// OtherRels returns the auxiliary relation nodes, in creation order.
func (m *Memo) OtherRels() []*RelNode { return m.otherRels }

// JoinRels returns the join relation nodes, in creation order.
func (m *Memo) JoinRels() []*RelNode { return m.joinRels }

// BuildBaseRel creates the relation node of a base relation. It must be
// called exactly once per relation id; it panics if a base or other node for
// relid already exists.
func (m *Memo) BuildBaseRel(relid opt.RelID) *RelNode {
	if findRel(m.baseRels, relid) != nil {
		panic(errors.AssertionFailedf("base rel %d already exists", relid))
	}
	if findRel(m.otherRels, relid) != nil {
		panic(errors.AssertionFailedf("base rel %d already exists as other rel", relid))
	}
	rel := m.makeBaseRel(relid)
	m.baseRels = append(m.baseRels, rel)
	m.stats.BaseRels++
	return rel
}

// BuildOtherRel returns the auxiliary relation node for relid, creating it if
// necessary. It panics if relid is already a base relation.
func (m *Memo) BuildOtherRel(relid opt.RelID) *RelNode {
	if rel := findRel(m.otherRels, relid); rel != nil {
		return rel
	}
	if findRel(m.baseRels, relid) != nil {
		panic(errors.AssertionFailedf("other rel %d already exists as base rel", relid))
	}
	rel := m.makeBaseRel(relid)
	rel.Kind = OtherChildRel
	m.otherRels = append(m.otherRels, rel)
	m.stats.OtherRels++
	return rel
}

// FindBaseRel returns the base or other relation node for relid. It panics
// if there is none.
func (m *Memo) FindBaseRel(relid opt.RelID) *RelNode {
	if rel := findRel(m.baseRels, relid); rel != nil {
		return rel
	}
	if rel := findRel(m.otherRels, relid); rel != nil {
		return rel
	}
	panic(errors.AssertionFailedf("no relation entry for relid %d", relid))
}

// FindJoinRel returns the join relation node covering exactly relids, or nil
// if it has not been built yet.
func (m *Memo) FindJoinRel(relids opt.RelSet) *RelNode {
	for _, rel := range m.joinRels {
		if rel.Relids.Equals(relids) {
			return rel
		}
	}
	return nil
}

func findRel(rels []*RelNode, relid opt.RelID) *RelNode {
	for _, rel := range rels {
		if rel.Relids.Contains(relid) {
			return rel
		}
	}
	return nil
}

// makeBaseRel builds a relation node for a range table entry, pulling its
// statistics and indexes from the catalog.
func (m *Memo) makeBaseRel(relid opt.RelID) *RelNode {
	ds := m.DataSource(relid)
	rel := &RelNode{
		Kind:   BaseRel,
		Relids: opt.MakeRelSet(relid),
		Source: ds.Kind,
	}
	switch ds.Kind {
	case cat.RelationSource:
		indexed, pages, tuples := m.catalog.RelationStats(ds.Table)
		rel.Table = ds.Table
		rel.Pages, rel.Tuples = pages, tuples
		rel.Rows = tuples
		if indexed {
			rel.Indexes = m.catalog.IndexList(ds.Table)
		}

	case cat.SubquerySource, cat.FunctionSource:
		// Nothing to fetch.

	default:
		panic(errors.AssertionFailedf("unsupported range table entry kind %s for relid %d", ds.Kind, relid))
	}
	return rel
}

// AddVarToTargetList makes the base relation of v produce v, if it does not
// already.
func (m *Memo) AddVarToTargetList(v *scalar.Variable) {
	rel := m.FindBaseRel(v.Rel)
	if !rel.hasTargetExpr(v) {
		rel.TargetList = append(rel.TargetList, TargetEntry{ResNo: len(rel.TargetList) + 1, Expr: v})
	}
}

// DistributeQual attaches a clause to the relation nodes it references. A
// clause of a single relation becomes a restriction of that relation. A join
// clause is added to the JoinInfo of each referenced relation, keyed by the
// other relations it references, and its variables are added to their
// relations' target lists. Mergejoinable clauses are also recorded as
// equivalences.
func (m *Memo) DistributeQual(ri *RestrictInfo) {
	switch ri.ClauseRelids.Len() {
	case 0:
		panic(errors.AssertionFailedf("clause %s references no relations", ri.Clause.String()))

	case 1:
		rel := m.FindBaseRel(ri.ClauseRelids.SingleRel())
		rel.BaseRestrictInfo = append(rel.BaseRestrictInfo, ri)

	default:
		ri.ClauseRelids.ForEach(func(relid opt.RelID) {
			rel := m.FindBaseRel(relid)
			unjoined := ri.ClauseRelids.Difference(opt.MakeRelSet(relid))
			rel.ensureJoinInfo(unjoined).addRestrictInfos([]*RestrictInfo{ri})
		})
		for _, v := range scalar.Variables(ri.Clause) {
			m.AddVarToTargetList(v)
		}
	}

	if ri.CanMergeJoin() {
		m.AddEquijoinedClause(ri)
	}
}

// AddEquijoinedClause records the equality of the two operands of a
// mergejoinable clause in the equivalence registry. It panics if the clause
// is not mergejoinable.
func (m *Memo) AddEquijoinedClause(ri *RestrictInfo) {
	if !ri.CanMergeJoin() {
		panic(errors.AssertionFailedf("clause %s has no mergejoin operator", ri.Clause.String()))
	}
	m.registry.AddEquijoinedKeys(ri.LeftKey(), ri.RightKey())
	m.stats.Equivalences++
	if log.V(3) {
		log.Infof(m.ctx, "recorded equivalence %s", ri.Clause.String())
	}
}
