// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package xform

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/relplan/pkg/sql/opt"
	"gopkg.in/yaml.v3"
)

// Settings are the planner options of one planning pass. A disabled
// strategy is not removed from consideration; it is penalized so that it is
// only chosen when there is no alternative.
type Settings struct {
	EnableSeqScan   bool `yaml:"enable_seqscan"`
	EnableIndexScan bool `yaml:"enable_indexscan"`
	EnableNestLoop  bool `yaml:"enable_nestloop"`
	EnableMergeJoin bool `yaml:"enable_mergejoin"`
	EnableHashJoin  bool `yaml:"enable_hashjoin"`
	EnableSort      bool `yaml:"enable_sort"`

	// Cursor marks the query as a cursor, whose plan is chosen for fetching
	// CursorTupleFraction of the rows rather than all of them.
	Cursor              bool    `yaml:"cursor"`
	CursorTupleFraction float64 `yaml:"cursor_tuple_fraction"`

	// JoinOrderLimit is the number of base relations up to which bushy join
	// trees are considered. Larger queries only consider left-deep trees.
	JoinOrderLimit int `yaml:"join_order_limit"`
}

// DefaultSettings returns the settings with every strategy enabled.
func DefaultSettings() Settings {
	return Settings{
		EnableSeqScan:       true,
		EnableIndexScan:     true,
		EnableNestLoop:      true,
		EnableMergeJoin:     true,
		EnableHashJoin:      true,
		EnableSort:          true,
		CursorTupleFraction: opt.DefaultCursorTupleFraction,
		JoinOrderLimit:      opt.DefaultJoinOrderLimit,
	}
}

// ApplyYAML overrides the settings with the fields present in the given YAML
// mapping. A nil or empty node leaves the settings unchanged.
func (s *Settings) ApplyYAML(node *yaml.Node) error {
	if node == nil || node.Kind == 0 {
		return nil
	}
	updated := *s
	if err := node.Decode(&updated); err != nil {
		return errors.Wrap(err, "decoding settings")
	}
	if err := updated.Validate(); err != nil {
		return err
	}
	*s = updated
	return nil
}

// Validate checks that the settings are in range.
func (s *Settings) Validate() error {
	if s.CursorTupleFraction < 0 || s.CursorTupleFraction > 1 {
		return errors.Newf("cursor_tuple_fraction %g out of range [0, 1]", s.CursorTupleFraction)
	}
	if s.JoinOrderLimit < 1 || s.JoinOrderLimit > opt.MaxReorderJoinsLimit {
		return errors.Newf("join_order_limit %d out of range [1, %d]", s.JoinOrderLimit, opt.MaxReorderJoinsLimit)
	}
	return nil
}

// tupleFraction returns the fraction of the result the plan is optimized
// for, or 0 to optimize for all rows.
func (s *Settings) tupleFraction() float64 {
	if !s.Cursor || s.CursorTupleFraction <= 0 || s.CursorTupleFraction >= 1 {
		return 0
	}
	return s.CursorTupleFraction
}
