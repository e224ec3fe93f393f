// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memo

import "testing"

func TestCostLess(t *testing.T) {
	testCases := []struct {
		left, right Cost
		expected    bool
	}{
		{0.0, 1.0, true},
		{0.0, 1e-20, true},
		{0.0, 0.0, false},
		{1.0, 0.0, false},
		{1e-20, 1.0000000000001e-20, false},
		{1e-20, 1.000001e-20, true},
		{1, 1.00000000000001, false},
		{1, 1.00000001, true},
		{1000, 1000.00000000001, false},
		{1000, 1000.00001, true},
	}
	for _, tc := range testCases {
		if tc.left.Less(tc.right) != tc.expected {
			t.Errorf("expected %v.Less(%v) to be %v", tc.left, tc.right, tc.expected)
		}
	}
}

func TestCostAdd(t *testing.T) {
	testCases := []struct {
		left, right, expected Cost
	}{
		{1.0, 2.0, 3.0},
		{0.0, 0.0, 0.0},
		{-1.0, 1.0, 0.0},
		{1.5, 2.5, 4.0},
	}
	for _, tc := range testCases {
		tc.left.Add(tc.right)
		if tc.left != tc.expected {
			t.Errorf("expected %v.Add(%v) to be %v, got %v", tc.left, tc.right, tc.expected, tc.left)
		}
	}
}

func TestCostCompare(t *testing.T) {
	testCases := []struct {
		left, right Cost
		expected    int
	}{
		{1, 2, -1},
		{2, 1, 1},
		{1, 1.00000000000001, 0},
	}
	for _, tc := range testCases {
		if res := tc.left.Compare(tc.right); res != tc.expected {
			t.Errorf("expected %v.Compare(%v) to be %d, got %d", tc.left, tc.right, tc.expected, res)
		}
	}
}
