// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package xform

import (
	"github.com/cockroachdb/relplan/pkg/sql/opt/memo"
	"github.com/cockroachdb/relplan/pkg/util/metric"
)

var (
	metaPlansSucceeded = metric.Metadata{
		Name: "relplan_opt_plans_succeeded_total",
		Help: "Number of planning passes that produced a plan",
	}
	metaPlansFailed = metric.Metadata{
		Name: "relplan_opt_plans_failed_total",
		Help: "Number of planning passes that failed with an error",
	}
	metaEquivalences = metric.Metadata{
		Name: "relplan_opt_equivalences_total",
		Help: "Number of equijoined keys recorded in equivalence registries",
	}
	metaJoinRelsBuilt = metric.Metadata{
		Name: "relplan_opt_join_rels_built_total",
		Help: "Number of join relation nodes created",
	}
	metaJoinRelsReused = metric.Metadata{
		Name: "relplan_opt_join_rels_reused_total",
		Help: "Number of join relation lookups answered by an existing node",
	}
	metaPathsAdded = metric.Metadata{
		Name: "relplan_opt_paths_added_total",
		Help: "Number of candidate paths kept when considered",
	}
	metaPathsPruned = metric.Metadata{
		Name: "relplan_opt_paths_pruned_total",
		Help: "Number of candidate paths rejected or removed as dominated",
	}
	metaRedundantClauses = metric.Metadata{
		Name: "relplan_opt_redundant_clauses_total",
		Help: "Number of join clauses removed as redundant",
	}
)

// Metrics counts the work of every optimizer that shares it. It is safe for
// concurrent use.
type Metrics struct {
	PlansSucceeded   *metric.Counter
	PlansFailed      *metric.Counter
	Equivalences     *metric.Counter
	JoinRelsBuilt    *metric.Counter
	JoinRelsReused   *metric.Counter
	PathsAdded       *metric.Counter
	PathsPruned      *metric.Counter
	RedundantClauses *metric.Counter
}

// MakeMetrics creates a set of planner metrics. Register it with
// metric.Registry.AddMetricStruct to export it.
func MakeMetrics() Metrics {
	return Metrics{
		PlansSucceeded:   metric.NewCounter(metaPlansSucceeded),
		PlansFailed:      metric.NewCounter(metaPlansFailed),
		Equivalences:     metric.NewCounter(metaEquivalences),
		JoinRelsBuilt:    metric.NewCounter(metaJoinRelsBuilt),
		JoinRelsReused:   metric.NewCounter(metaJoinRelsReused),
		PathsAdded:       metric.NewCounter(metaPathsAdded),
		PathsPruned:      metric.NewCounter(metaPathsPruned),
		RedundantClauses: metric.NewCounter(metaRedundantClauses),
	}
}

// record adds the counters of a finished planning pass.
func (m *Metrics) record(stats memo.Stats, redundant int, err error) {
	if err != nil {
		m.PlansFailed.Inc(1)
	} else {
		m.PlansSucceeded.Inc(1)
	}
	m.Equivalences.Inc(int64(stats.Equivalences))
	m.JoinRelsBuilt.Inc(int64(stats.JoinRelsBuilt))
	m.JoinRelsReused.Inc(int64(stats.JoinRelsReused))
	m.PathsAdded.Inc(int64(stats.PathsAdded))
	m.PathsPruned.Inc(int64(stats.PathsRejected + stats.PathsRemoved))
	m.RedundantClauses.Inc(int64(redundant))
}
