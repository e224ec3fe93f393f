// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import (
	"github.com/cockroachdb/relplan/pkg/sql/opt"
	"github.com/cockroachdb/relplan/pkg/sql/opt/cat"
	"github.com/cockroachdb/relplan/pkg/sql/opt/props"
)

// PathType is the strategy a path uses to produce its relation's rows.
type PathType uint8

const (
	// SeqScanPath reads the whole table.
	SeqScanPath PathType = iota
	// IndexScanPath reads the table through an index.
	IndexScanPath
	// NestLoopPath rescans the inner input for every outer row.
	NestLoopPath
	// MergeJoinPath merges two inputs sorted on the merge clauses.
	MergeJoinPath
	// HashJoinPath builds a hash table on the inner input.
	HashJoinPath
	// SortPath sorts its input.
	SortPath
)

func (t PathType) String() string {
	switch t {
	case SeqScanPath:
		return "seq-scan"
	case IndexScanPath:
		return "index-scan"
	case NestLoopPath:
		return "nested-loop"
	case MergeJoinPath:
		return "merge-join"
	case HashJoinPath:
		return "hash-join"
	case SortPath:
		return "sort"
	}
	return "unknown"
}

// SafeValue implements the redact.SafeValue interface.
func (PathType) SafeValue() {}

// Path is one candidate strategy for producing the rows of a relation node.
type Path struct {
	Type   PathType
	Parent *RelNode

	// PathKeys is the canonical sort order of the path's output, or empty if
	// the output is unordered.
	PathKeys props.PathKeys

	StartupCost Cost
	TotalCost   Cost

	// Index and ScanDir are set for index scans.
	Index   *cat.Index
	ScanDir opt.ScanDirection

	// Outer and Inner are the inputs of join paths. Input is the input of a
	// sort path.
	Outer *Path
	Inner *Path
	Input *Path

	// JoinType and JoinRestrict are set for join paths. JoinRestrict is the
	// restriction list of the outer/inner pairing the path was built from.
	JoinType     opt.JoinType
	JoinRestrict []*RestrictInfo

	// MergeClauses are the clauses a merge join merges on, in sort order.
	// OuterSortKeys and InnerSortKeys are the orderings explicitly sorted for
	// each input, or nil if the input is already suitably ordered.
	MergeClauses  []*RestrictInfo
	OuterSortKeys props.PathKeys
	InnerSortKeys props.PathKeys

	// HashClauses are the clauses a hash join hashes on.
	HashClauses []*RestrictInfo
}

// IsJoin returns true for join paths.
func (p *Path) IsJoin() bool {
	switch p.Type {
	case NestLoopPath, MergeJoinPath, HashJoinPath:
		return true
	}
	return false
}
