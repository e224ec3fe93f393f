// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package props

import (
	"strings"

	"github.com/cockroachdb/relplan/pkg/sql/opt/cat"
)

// PathKeys describes the sort order of a path's output: the first position is
// the major sort key. An empty list means the output is unordered.
type PathKeys []*PathKey

// PathKeysComparison is the result of ComparePathKeys.
type PathKeysComparison uint8

const (
	// PathKeysEqual means the orderings are identical.
	PathKeysEqual PathKeysComparison = iota
	// PathKeysBetter1 means the first ordering is a strict extension of the
	// second.
	PathKeysBetter1
	// PathKeysBetter2 means the second ordering is a strict extension of the
	// first.
	PathKeysBetter2
	// PathKeysDifferent means neither ordering implies the other.
	PathKeysDifferent
)

func (c PathKeysComparison) String() string {
	switch c {
	case PathKeysEqual:
		return "equal"
	case PathKeysBetter1:
		return "better1"
	case PathKeysBetter2:
		return "better2"
	case PathKeysDifferent:
		return "different"
	}
	return "unknown"
}

// SafeValue implements the redact.SafeValue interface.
func (PathKeysComparison) SafeValue() {}

// ComparePathKeys compares two canonical orderings position by position.
// Canonical positions from one registry are either the same class or
// disjoint, so a position mismatch means the orderings are different. If one
// list is a strict prefix of the other, the longer list is better (it implies
// the shorter one).
func ComparePathKeys(keys1, keys2 PathKeys) PathKeysComparison {
	n := len(keys1)
	if len(keys2) < n {
		n = len(keys2)
	}
	for i := 0; i < n; i++ {
		if !keys1[i].Equals(keys2[i]) {
			return PathKeysDifferent
		}
	}
	switch {
	case len(keys1) == len(keys2):
		return PathKeysEqual
	case len(keys1) > len(keys2):
		return PathKeysBetter1
	default:
		return PathKeysBetter2
	}
}

// ContainedIn returns true if the ordering described by pk is satisfied by a
// path whose output is ordered by offered.
func (pk PathKeys) ContainedIn(offered PathKeys) bool {
	switch ComparePathKeys(pk, offered) {
	case PathKeysEqual, PathKeysBetter2:
		return true
	}
	return false
}

// Equals returns true if the two orderings are identical.
func (pk PathKeys) Equals(other PathKeys) bool {
	return ComparePathKeys(pk, other) == PathKeysEqual
}

func (pk PathKeys) String() string {
	return pk.Format(nil)
}

// Format renders the ordering as a comma-separated list of positions.
func (pk PathKeys) Format(ops cat.Operators) string {
	if len(pk) == 0 {
		return "()"
	}
	var b strings.Builder
	for i, key := range pk {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(key.Format(ops))
	}
	return b.String()
}
