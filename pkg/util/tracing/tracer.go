// Copyright 2017 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package tracing wraps OpenTelemetry for the planner. Spans are created
// through the globally registered tracer provider, which is a no-op unless
// the embedding program installs one.
package tracing

import (
	"context"

	"github.com/cockroachdb/logtags"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name of the planner's spans.
const TracerName = "github.com/cockroachdb/relplan"

// ChildSpan starts a span as a child of the span in ctx, if any. The context
// log tags are attached to the span as attributes.
func ChildSpan(ctx context.Context, opName string) (context.Context, trace.Span) {
	var attrs []attribute.KeyValue
	if tags := logtags.FromContext(ctx); tags != nil {
		for _, tag := range tags.Get() {
			attrs = append(attrs, attribute.String(tag.Key(), tag.ValueStr()))
		}
	}
	return otel.Tracer(TracerName).Start(ctx, opName, trace.WithAttributes(attrs...))
}

// FinishSpan ends the span, recording err on it if it is not nil.
func FinishSpan(sp trace.Span, err error) {
	if err != nil {
		sp.RecordError(err)
		sp.SetStatus(codes.Error, err.Error())
	}
	sp.End()
}
