// Copyright 2017 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFastIntSetRepresentation(t *testing.T) {
	var s FastIntSet
	require.True(t, s.Empty())

	s.Add(0)
	s.Add(smallCutoff - 1)
	require.Nil(t, s.large)
	require.Equal(t, []int{0, 63}, s.Ordered())

	// The first value past the bitmap switches to the sparse set.
	s.Add(smallCutoff)
	require.NotNil(t, s.large)
	require.Equal(t, uint64(0), s.small)
	require.Equal(t, []int{0, 63, 64}, s.Ordered())
	require.Equal(t, 3, s.Len())

	// Removing it switches back.
	s.Remove(smallCutoff)
	require.Nil(t, s.large)
	require.True(t, s.Contains(63))
	require.False(t, s.Contains(64))

	s = MakeFastIntSet(200)
	s.Remove(200)
	require.True(t, s.Empty())
	require.Nil(t, s.large)
}

func TestFastIntSetNext(t *testing.T) {
	s := MakeFastIntSet(0, 5, 63, 64, 200)
	testCases := []struct {
		start    int
		expected int
		ok       bool
	}{
		{start: 0, expected: 0, ok: true},
		{start: 1, expected: 5, ok: true},
		{start: 63, expected: 63, ok: true},
		{start: 64, expected: 64, ok: true},
		{start: 65, expected: 200, ok: true},
		{start: 201, ok: false},
	}
	for _, tc := range testCases {
		v, ok := s.Next(tc.start)
		require.Equal(t, tc.ok, ok, "Next(%d)", tc.start)
		if ok {
			require.Equal(t, tc.expected, v, "Next(%d)", tc.start)
		}
	}

	small := MakeFastIntSet(3, 9)
	_, ok := small.Next(10)
	require.False(t, ok)
	v, _ := small.Next(-5)
	require.Equal(t, 3, v)

	var visited []int
	s.ForEach(func(i int) { visited = append(visited, i) })
	require.Equal(t, []int{0, 5, 63, 64, 200}, visited)
}

// TestFastIntSetTwoSetOps covers the operations used to track which relations
// a join clause still waits for, across both representations.
func TestFastIntSetTwoSetOps(t *testing.T) {
	testCases := []struct {
		name       string
		lhs, rhs   []int
		union      []int
		inter      []int
		diff       []int
		intersects bool
		subset     bool
		equals     bool
	}{
		{
			name: "small", lhs: []int{0, 1, 2}, rhs: []int{2, 3},
			union: []int{0, 1, 2, 3}, inter: []int{2}, diff: []int{0, 1},
			intersects: true,
		},
		{
			name: "small in large", lhs: []int{1, 2}, rhs: []int{1, 2, 70},
			union: []int{1, 2, 70}, inter: []int{1, 2}, diff: nil,
			intersects: true, subset: true,
		},
		{
			name: "large minus small", lhs: []int{0, 100}, rhs: []int{0},
			union: []int{0, 100}, inter: []int{0}, diff: []int{100},
			intersects: true,
		},
		{
			name: "disjoint large", lhs: []int{64}, rhs: []int{65},
			union: []int{64, 65}, inter: nil, diff: []int{64},
		},
		{
			name: "equal large", lhs: []int{3, 80}, rhs: []int{80, 3},
			union: []int{3, 80}, inter: []int{3, 80}, diff: nil,
			intersects: true, subset: true, equals: true,
		},
		{
			name: "empty", lhs: nil, rhs: []int{7},
			union: []int{7}, inter: nil, diff: nil,
			subset: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lhs, rhs := MakeFastIntSet(tc.lhs...), MakeFastIntSet(tc.rhs...)

			require.Equal(t, tc.union, lhs.Union(rhs).Ordered())
			inter := lhs.Intersection(rhs)
			require.Equal(t, tc.inter, inter.Ordered())
			diff := lhs.Difference(rhs)
			require.Equal(t, tc.diff, diff.Ordered())
			require.Equal(t, tc.intersects, lhs.Intersects(rhs))
			require.Equal(t, tc.intersects, rhs.Intersects(lhs))
			require.Equal(t, tc.subset, lhs.SubsetOf(rhs))
			require.Equal(t, tc.equals, lhs.Equals(rhs))

			// Results holding only small values use the bitmap again.
			for _, res := range []FastIntSet{inter, diff} {
				if res.Empty() || res.Ordered()[res.Len()-1] < smallCutoff {
					require.Nil(t, res.large)
				}
			}

			// The operands are not modified.
			require.Equal(t, MakeFastIntSet(tc.lhs...).Ordered(), lhs.Ordered())
			require.Equal(t, MakeFastIntSet(tc.rhs...).Ordered(), rhs.Ordered())
		})
	}
}

func TestFastIntSetCopy(t *testing.T) {
	for _, vals := range [][]int{{1, 2}, {1, 100}} {
		s := MakeFastIntSet(vals...)
		c := s.Copy()
		c.Add(101)
		c.Remove(1)
		require.Equal(t, vals, s.Ordered())
		require.True(t, c.Contains(101))
		require.False(t, c.Contains(1))
	}
}

func TestFastIntSetAddRange(t *testing.T) {
	var s FastIntSet
	s.AddRange(60, 66)
	require.Equal(t, 7, s.Len())
	require.True(t, s.Contains(60))
	require.True(t, s.Contains(66))
	require.NotNil(t, s.large)

	var empty FastIntSet
	empty.AddRange(5, 4)
	require.True(t, empty.Empty())
}

func TestFastIntSetString(t *testing.T) {
	testCases := []struct {
		vals     []int
		expected string
	}{
		{vals: nil, expected: "()"},
		{vals: []int{0, 1, 2, 5, 6, 10}, expected: "(0-2,5,6,10)"},
		{vals: []int{4}, expected: "(4)"},
		{vals: []int{62, 63, 64, 65}, expected: "(62-65)"},
		{vals: []int{1, 3, 200}, expected: "(1,3,200)"},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.expected, MakeFastIntSet(tc.vals...).String())
	}
}
