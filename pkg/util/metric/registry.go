// Copyright 2015 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package metric

import (
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is a list of metrics backed by a Prometheus registry.
type Registry struct {
	prom    *prometheus.Registry
	tracked []Iterable
}

// NewRegistry creates a new, empty Registry.
func NewRegistry() *Registry {
	return &Registry{prom: prometheus.NewRegistry()}
}

// AddMetric adds the passed-in metric to the registry. It panics if a metric
// with the same name is already registered.
func (r *Registry) AddMetric(metric Iterable) {
	if err := r.prom.Register(metric.Collector()); err != nil {
		panic(errors.Wrapf(err, "registering metric %s", metric.GetName()))
	}
	r.tracked = append(r.tracked, metric)
}

// AddMetricStruct examines all fields of metricStruct and adds all Iterable
// ones to the registry. Nil fields are skipped.
func (r *Registry) AddMetricStruct(metricStruct interface{}) {
	v := reflect.ValueOf(metricStruct)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		vfield, tfield := v.Field(i), t.Field(i)
		if !tfield.IsExported() {
			continue
		}
		if vfield.Kind() == reflect.Ptr && vfield.IsNil() {
			continue
		}
		if metric, ok := vfield.Interface().(Iterable); ok {
			r.AddMetric(metric)
		}
	}
}

// Gatherer returns the Prometheus gatherer of the registry, for use by a
// scrape endpoint.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.prom
}

// Each calls the given closure for every counter in the registry, in
// registration order.
func (r *Registry) Each(f func(name string, val int64)) {
	for _, metric := range r.tracked {
		if c, ok := metric.(*Counter); ok {
			f(c.GetName(), c.Count())
		}
	}
}
