// Copyright 2016 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

/*
Package metric provides the counters the planner exports through Prometheus.

Adding a new metric

Declare the metric as a field of a metrics struct and create it with
NewCounter:

	type Metrics struct {
		JoinRelsBuilt *metric.Counter
	}

	func MakeMetrics() Metrics {
		return Metrics{
			JoinRelsBuilt: metric.NewCounter(metaJoinRelsBuilt),
		}
	}

Then register the whole struct:

	registry := metric.NewRegistry()
	registry.AddMetricStruct(metrics)

Every exported *Counter field of the struct is registered. The registry can
be scraped through its prometheus.Gatherer, or walked with Each.
*/
package metric
