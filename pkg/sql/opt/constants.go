// Copyright 2019 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package opt

// DefaultJoinOrderLimit denotes the default limit on the number of base
// relations the join search driver will enumerate exhaustively.
const DefaultJoinOrderLimit = 8

// MaxReorderJoinsLimit is the maximum number of base relations which can be
// joined by the search driver.
const MaxReorderJoinsLimit = 63

// DefaultCursorTupleFraction is the default fraction of a cursor's rows that
// are expected to be fetched, used for fractional cost comparisons.
const DefaultCursorTupleFraction = 0.1
