// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package xform

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func parseNode(t *testing.T, s string) *yaml.Node {
	var node yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(s), &node))
	return &node
}

func TestSettingsApplyYAML(t *testing.T) {
	s := DefaultSettings()
	require.NoError(t, s.ApplyYAML(nil))
	require.NoError(t, s.ApplyYAML(&yaml.Node{}))
	require.Equal(t, DefaultSettings(), s)

	require.NoError(t, s.ApplyYAML(parseNode(t, `
enable_hashjoin: false
cursor: true
cursor_tuple_fraction: 0.25
join_order_limit: 4
`)))
	require.False(t, s.EnableHashJoin)
	require.True(t, s.EnableMergeJoin)
	require.True(t, s.Cursor)
	require.Equal(t, 0.25, s.CursorTupleFraction)
	require.Equal(t, 4, s.JoinOrderLimit)
	require.Equal(t, 0.25, s.tupleFraction())

	// Invalid settings leave the previous values in place.
	before := s
	err := s.ApplyYAML(parseNode(t, "join_order_limit: 0\nenable_sort: false\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "join_order_limit 0 out of range")
	require.Equal(t, before, s)

	err = s.ApplyYAML(parseNode(t, "enable_sort: [1]\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "decoding settings")
}

func TestSettingsValidate(t *testing.T) {
	testCases := []struct {
		mutate func(s *Settings)
		err    string
	}{
		{mutate: func(s *Settings) {}},
		{mutate: func(s *Settings) { s.CursorTupleFraction = 1 }},
		{mutate: func(s *Settings) { s.CursorTupleFraction = -0.1 }, err: "cursor_tuple_fraction"},
		{mutate: func(s *Settings) { s.CursorTupleFraction = 1.5 }, err: "cursor_tuple_fraction"},
		{mutate: func(s *Settings) { s.JoinOrderLimit = 63 }},
		{mutate: func(s *Settings) { s.JoinOrderLimit = 64 }, err: "join_order_limit"},
	}
	for _, tc := range testCases {
		s := DefaultSettings()
		tc.mutate(&s)
		err := s.Validate()
		if tc.err == "" {
			require.NoError(t, err)
		} else {
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.err)
		}
	}
}

func TestTupleFraction(t *testing.T) {
	s := DefaultSettings()
	require.Zero(t, s.tupleFraction())
	s.Cursor = true
	require.Equal(t, 0.1, s.tupleFraction())
	s.CursorTupleFraction = 1
	require.Zero(t, s.tupleFraction())
	s.CursorTupleFraction = 0
	require.Zero(t, s.tupleFraction())
}
