// Copyright 2017 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package tracing

import (
	"bytes"
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/relplan/pkg/util/log"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	sr := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return sr
}

func TestChildSpan(t *testing.T) {
	sr := withRecorder(t)

	ctx := logtags.AddTag(context.Background(), "q", 7)
	ctx, sp := ChildSpan(ctx, "plan")
	require.Equal(t, sp, trace.SpanFromContext(ctx))
	_, child := ChildSpan(ctx, "join-search")
	FinishSpan(child, nil)
	FinishSpan(sp, errors.New("boom"))

	spans := sr.Ended()
	require.Len(t, spans, 2)
	require.Equal(t, "join-search", spans[0].Name())
	require.Equal(t, "plan", spans[1].Name())
	require.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())
	require.Contains(t, spans[1].Attributes(), attribute.String("q", "7"))
	require.Equal(t, codes.Error, spans[1].Status().Code)
	require.Equal(t, "boom", spans[1].Status().Description)
}

func TestInstallLogTracer(t *testing.T) {
	var buf bytes.Buffer
	defer log.SetOutput(&buf)()

	shutdown := InstallLogTracer()
	_, sp := ChildSpan(context.Background(), "plan")
	FinishSpan(sp, nil)
	require.NoError(t, shutdown(context.Background()))
	require.Contains(t, buf.String(), "span plan: ")
}
