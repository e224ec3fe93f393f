// Copyright 2015 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	prometheusgo "github.com/prometheus/client_model/go"
)

// Metadata holds the name and help text of a metric.
type Metadata struct {
	Name string
	Help string
}

// Iterable is implemented by the metrics a Registry can hold.
type Iterable interface {
	// GetName returns the fully-qualified name of the metric.
	GetName() string
	// GetHelp returns the help text for the metric.
	GetHelp() string
	// Collector returns the Prometheus collector of the metric.
	Collector() prometheus.Collector
}

// Counter is a monotonically increasing count. It is safe for concurrent
// use.
type Counter struct {
	Metadata
	c prometheus.Counter
}

var _ Iterable = &Counter{}

// NewCounter creates a counter.
func NewCounter(metadata Metadata) *Counter {
	return &Counter{
		Metadata: metadata,
		c: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metadata.Name,
			Help: metadata.Help,
		}),
	}
}

// GetName is part of the Iterable interface.
func (c *Counter) GetName() string { return c.Name }

// GetHelp is part of the Iterable interface.
func (c *Counter) GetHelp() string { return c.Help }

// Collector is part of the Iterable interface.
func (c *Counter) Collector() prometheus.Collector { return c.c }

// Inc increments the counter by n. Negative values are ignored.
func (c *Counter) Inc(n int64) {
	if n > 0 {
		c.c.Add(float64(n))
	}
}

// Count returns the current value of the counter.
func (c *Counter) Count() int64 {
	var m prometheusgo.Metric
	if err := c.c.Write(&m); err != nil {
		panic(err)
	}
	return int64(m.GetCounter().GetValue())
}
