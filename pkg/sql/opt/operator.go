// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package opt

// JoinType is the kind of join being planned.
type JoinType uint8

const (
	// InnerJoin returns matching pairs only.
	InnerJoin JoinType = iota
	// LeftJoin returns matching pairs plus unmatched outer rows.
	LeftJoin
	// FullJoin returns matching pairs plus unmatched rows of both sides.
	FullJoin
	// RightJoin returns matching pairs plus unmatched inner rows.
	RightJoin
)

// IsOuter returns true for the outer join types.
func (j JoinType) IsOuter() bool {
	return j == LeftJoin || j == FullJoin || j == RightJoin
}

func (j JoinType) String() string {
	switch j {
	case InnerJoin:
		return "inner"
	case LeftJoin:
		return "left"
	case FullJoin:
		return "full"
	case RightJoin:
		return "right"
	}
	return "unknown"
}

// SafeValue implements the redact.SafeValue interface.
func (JoinType) SafeValue() {}

// CostCriterion selects which of a path's costs is compared.
type CostCriterion uint8

const (
	// StartupCost compares the cost to produce the first row.
	StartupCost CostCriterion = iota
	// TotalCost compares the cost to produce all rows.
	TotalCost
)

func (c CostCriterion) String() string {
	if c == StartupCost {
		return "startup"
	}
	return "total"
}

// ScanDirection is the direction in which an index is scanned.
type ScanDirection int8

const (
	// BackwardScan reads the index from its last entry to its first.
	BackwardScan ScanDirection = -1
	// NoMovementScan is not a valid direction for building orderings.
	NoMovementScan ScanDirection = 0
	// ForwardScan reads the index in its natural order.
	ForwardScan ScanDirection = 1
)

// IsBackward returns true for BackwardScan.
func (d ScanDirection) IsBackward() bool {
	return d == BackwardScan
}

func (d ScanDirection) String() string {
	switch d {
	case BackwardScan:
		return "backward"
	case ForwardScan:
		return "forward"
	}
	return "none"
}
