// Copyright 2019 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package opt

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/cockroachdb/relplan/pkg/util"
)

// RelID identifies a base relation (a range table entry) within the scope of
// a query. RelID 0 is reserved to mean "unknown relation".
type RelID int32

// SafeValue implements the redact.SafeValue interface.
func (RelID) SafeValue() {}

// RelSet efficiently stores an unordered set of relation ids. Base relations
// are identified by a singleton set, join relations by the union of the sets
// of their inputs.
type RelSet struct {
	set util.FastIntSet
}

// We offset the RelIDs in the underlying FastIntSet by 1, so that the
// internal set fast-path can be used for RelIDs in the range [1, 64] instead
// of [0, 63].
const offset = 1

func setVal(rel RelID) int { return int(rel - offset) }

func retVal(i int) RelID { return RelID(i + offset) }

// MakeRelSet returns a set initialized with the given values.
func MakeRelSet(vals ...RelID) RelSet {
	var res RelSet
	for _, v := range vals {
		res.Add(v)
	}
	return res
}

// Add adds a relation to the set. No-op if the relation is already in the set.
func (s *RelSet) Add(rel RelID) {
	if rel <= 0 {
		panic(errors.AssertionFailedf("rel must be greater than 0"))
	}
	s.set.Add(setVal(rel))
}

// Remove removes a relation from the set.
func (s *RelSet) Remove(rel RelID) { s.set.Remove(setVal(rel)) }

// Contains returns true if the set contains the relation.
func (s RelSet) Contains(rel RelID) bool { return s.set.Contains(setVal(rel)) }

// Empty returns true if the set is empty.
func (s RelSet) Empty() bool { return s.set.Empty() }

// Len returns the number of relations in the set.
func (s RelSet) Len() int { return s.set.Len() }

// Next returns the first value in the set which is >= startVal. If there is no
// such relation, the second return value is false.
func (s RelSet) Next(startVal RelID) (RelID, bool) {
	c, ok := s.set.Next(setVal(startVal))
	return retVal(c), ok
}

// ForEach calls a function for each relation in the set (in increasing order).
func (s RelSet) ForEach(f func(rel RelID)) { s.set.ForEach(func(i int) { f(retVal(i)) }) }

// Copy returns a copy of s which can be modified independently.
func (s RelSet) Copy() RelSet { return RelSet{set: s.set.Copy()} }

// UnionWith adds all the relations from rhs to this set.
func (s *RelSet) UnionWith(rhs RelSet) { s.set.UnionWith(rhs.set) }

// Union returns the union of s and rhs as a new set.
func (s RelSet) Union(rhs RelSet) RelSet { return RelSet{set: s.set.Union(rhs.set)} }

// Intersection returns the intersection of s and rhs as a new set.
func (s RelSet) Intersection(rhs RelSet) RelSet { return RelSet{set: s.set.Intersection(rhs.set)} }

// Difference returns the elements of s that are not in rhs as a new set.
func (s RelSet) Difference(rhs RelSet) RelSet { return RelSet{set: s.set.Difference(rhs.set)} }

// Intersects returns true if s has any elements in common with rhs.
func (s RelSet) Intersects(rhs RelSet) bool { return s.set.Intersects(rhs.set) }

// Equals returns true if the two sets are identical.
func (s RelSet) Equals(rhs RelSet) bool { return s.set.Equals(rhs.set) }

// SubsetOf returns true if rhs contains all the elements in s.
func (s RelSet) SubsetOf(rhs RelSet) bool { return s.set.SubsetOf(rhs.set) }

// SingleRel returns the single relation in s. Panics if s does not contain
// exactly one relation.
func (s RelSet) SingleRel() RelID {
	if s.Len() != 1 {
		panic(errors.AssertionFailedf("expected a single relation but found %d relations", s.Len()))
	}
	rel, _ := s.Next(0)
	return rel
}

// Ordered returns the relations in the set in increasing order.
func (s RelSet) Ordered() []RelID {
	res := make([]RelID, 0, s.Len())
	s.ForEach(func(rel RelID) {
		res = append(res, rel)
	})
	return res
}

// String returns a list representation of elements. Sequential runs of
// relations are shown as ranges. For example, for the set {1, 2, 3, 5, 6, 10},
// the output is "(1-3,5,6,10)".
func (s RelSet) String() string {
	var noOffset util.FastIntSet
	s.ForEach(func(rel RelID) {
		noOffset.Add(int(rel))
	})
	return noOffset.String()
}

// SafeFormat implements the redact.SafeFormatter interface.
func (s RelSet) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Print(redact.SafeString(s.String()))
}
