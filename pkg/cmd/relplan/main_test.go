// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const scenario = `
tables:
  - {name: r, pages: 10, tuples: 1000, columns: [{name: a, type: int4}, {name: b, type: int4}]}
  - {name: s, pages: 5, tuples: 100, columns: [{name: a, type: int4}, {name: c, type: int4}]}
query:
  from: [{alias: r, table: r}, {alias: s, table: s}]
  where:
    - {left: r.a, op: "=", right: s.a}
  select: [r.a, s.c]
`

func TestExplain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scenario), 0644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"explain", "--disable-hashjoin", "--hide-costs", "--metrics", "--memo", path})
	require.NoError(t, rootCmd.Execute())

	res := out.String()
	require.Contains(t, res, "merge-join {r,s}\n")
	require.Contains(t, res, "memo\n")
	require.Contains(t, res, "estimated rows: 500 (5.9 KiB)\n")
	require.Contains(t, res, "planning time: ")
	require.Contains(t, res, "relplan_opt_plans_succeeded_total 1\n")
	require.NotContains(t, res, "cost=")

	out.Reset()
	rootCmd.SetArgs([]string{"explain", filepath.Join(t.TempDir(), "missing.yaml")})
	err := rootCmd.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "reading scenario")
}
