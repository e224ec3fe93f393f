// Copyright 2021 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package tracing

import (
	"context"

	"github.com/cockroachdb/relplan/pkg/util/log"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// logExporter is a span exporter that writes finished spans to the INFO log.
type logExporter struct{}

var _ sdktrace.SpanExporter = logExporter{}

// ExportSpans is part of the sdktrace.SpanExporter interface.
func (logExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, sp := range spans {
		log.Infof(ctx, "span %s: %s", sp.Name(), sp.EndTime().Sub(sp.StartTime()))
		for _, ev := range sp.Events() {
			log.Infof(ctx, "  event %s", ev.Name)
		}
	}
	return nil
}

// Shutdown is part of the sdktrace.SpanExporter interface.
func (logExporter) Shutdown(context.Context) error { return nil }

// InstallLogTracer registers a global tracer provider that logs every
// finished span. The returned function flushes and uninstalls it.
func InstallLogTracer() (shutdown func(context.Context) error) {
	prev := otel.GetTracerProvider()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(logExporter{}))
	otel.SetTracerProvider(tp)
	return func(ctx context.Context) error {
		otel.SetTracerProvider(prev)
		return tp.Shutdown(ctx)
	}
}
