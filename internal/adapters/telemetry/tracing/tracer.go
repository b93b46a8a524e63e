// Package tracing provides the OpenTelemetry implementation of the telemetry adapter.
package tracing

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/featreg/internal/core/domain"
	"go.trai.ch/featreg/internal/core/ports"
)

const instrumentationName = "go.trai.ch/featreg"

// Span event and attribute names shared by Vertex and Bridge.
const (
	eventLog     = "log"
	attrMessage  = "message"
	attrLevel    = "level"
	attrStream   = "stream"
	attrCached   = "featreg.cached"
	streamStdout = "stdout"
	streamStderr = "stderr"
)

var _ ports.Telemetry = (*Tracer)(nil)

// Tracer implements ports.Telemetry on an OpenTelemetry tracer provider.
// Every recorded vertex is a span.
type Tracer struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// New creates a Tracer over a new provider built from opts.
func New(opts ...sdktrace.TracerProviderOption) *Tracer {
	provider := sdktrace.NewTracerProvider(opts...)
	return &Tracer{
		provider: provider,
		tracer:   provider.Tracer(instrumentationName),
	}
}

// Record starts a span named name.
func (t *Tracer) Record(ctx context.Context, name string) (context.Context, ports.Vertex) {
	ctx, span := t.tracer.Start(ctx, name)
	v := &Vertex{span: span}
	return ports.ContextWithVertex(ctx, v), v
}

// Close shuts the provider down, which flushes every span processor.
func (t *Tracer) Close() error {
	return t.provider.Shutdown(context.Background())
}

// Vertex implements ports.Vertex on a span.
type Vertex struct {
	span trace.Span
	once sync.Once
}

// Stdout returns a writer adding each write to the span as a log event.
func (v *Vertex) Stdout() io.Writer {
	return spanWriter{span: v.span, stream: streamStdout}
}

// Log adds msg to the span as a log event.
func (v *Vertex) Log(level domain.LogLevel, msg string) {
	stream := streamStdout
	if level >= domain.LogLevelWarn {
		stream = streamStderr
	}
	v.span.AddEvent(eventLog, trace.WithAttributes(
		attribute.String(attrMessage, fmt.Sprintf("[%s] %s\n", level.String(), msg)),
		attribute.String(attrLevel, level.String()),
		attribute.String(attrStream, stream),
	))
}

// Complete ends the span, recording err when it is not nil.
// Only the first call has an effect.
func (v *Vertex) Complete(err error) {
	v.once.Do(func() {
		if err != nil {
			v.span.RecordError(err)
			v.span.SetStatus(codes.Error, err.Error())
		}
		v.span.End()
	})
}

// Cached marks the span as served from a cache.
func (v *Vertex) Cached() {
	v.span.SetAttributes(attribute.Bool(attrCached, true))
}

type spanWriter struct {
	span   trace.Span
	stream string
}

func (w spanWriter) Write(p []byte) (int, error) {
	w.span.AddEvent(eventLog, trace.WithAttributes(
		attribute.String(attrMessage, string(p)),
		attribute.String(attrStream, w.stream),
	))
	return len(p), nil
}
