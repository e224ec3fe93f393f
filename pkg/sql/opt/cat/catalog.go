// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package cat contains interfaces that are used by the query planner to avoid
// including specifics of sqlbase structures in the planner code.
package cat

// TableID uniquely identifies a table in the catalog.
type TableID uint32

// AttrNum is the 1-based ordinal of a column within its table.
type AttrNum int32

// TypeID identifies a data type.
type TypeID uint32

// OperatorID identifies a (binary) comparison operator. The zero value means
// "no operator".
type OperatorID uint32

// FuncID identifies a function.
type FuncID uint32

// IndexID identifies an index within the catalog.
type IndexID uint32

// SafeValue implements the redact.SafeValue interface.
func (TableID) SafeValue() {}

// SafeValue implements the redact.SafeValue interface.
func (OperatorID) SafeValue() {}

// SafeValue implements the redact.SafeValue interface.
func (AttrNum) SafeValue() {}

// Catalog is the statistics and schema provider consulted when the planner
// creates relation nodes. Implementations are expected to be fast and may
// memoize results; the planner never caches them itself.
type Catalog interface {
	// RelationStats returns whether the table has any indexes, along with its
	// page and row count estimates.
	RelationStats(table TableID) (indexed bool, pages, tuples float64)

	// IndexList returns the index descriptors of the table.
	IndexList(table TableID) []*Index

	// ColumnType returns the type and type modifier of the given column.
	ColumnType(table TableID, attr AttrNum) (typ TypeID, typeMod int32)
}

// Operators answers questions about comparison operators.
type Operators interface {
	// Commutator returns the operator that expresses the same comparison with
	// its operands swapped, if there is one.
	Commutator(op OperatorID) (OperatorID, bool)

	// MergeJoinInfo returns the left and right sort operators to use when the
	// given equality operator drives a merge join. ok is false if the operator
	// is not mergejoinable.
	MergeJoinInfo(op OperatorID) (leftSort, rightSort OperatorID, ok bool)

	// OperatorName returns the display name of the operator.
	OperatorName(op OperatorID) string
}
