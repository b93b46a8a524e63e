package tracing

import (
	"context"
	"errors"
	"io"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/featreg/internal/core/ports"
)

var _ sdktrace.SpanProcessor = (*Bridge)(nil)

// stderrer is implemented by vertices with a separate error stream.
type stderrer interface {
	Stderr() io.Writer
}

// Bridge is a span processor mirroring spans onto another ports.Telemetry,
// such as a progrock recorder. A vertex opens when its span starts and is
// completed with the span's logs, cache flag and status when it ends.
type Bridge struct {
	sink     ports.Telemetry
	mu       sync.Mutex
	vertices map[trace.SpanID]ports.Vertex
	closed   bool
}

// NewBridge returns a Bridge feeding sink.
func NewBridge(sink ports.Telemetry) *Bridge {
	return &Bridge{
		sink:     sink,
		vertices: make(map[trace.SpanID]ports.Vertex),
	}
}

// OnStart opens a sink vertex for the span.
func (b *Bridge) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	sc := s.SpanContext()
	if !sc.IsValid() {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	_, v := b.sink.Record(parent, s.Name())
	b.vertices[sc.SpanID()] = v
}

// OnEnd replays the span onto its vertex and completes it.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	b.mu.Lock()
	v, ok := b.vertices[s.SpanContext().SpanID()]
	delete(b.vertices, s.SpanContext().SpanID())
	b.mu.Unlock()
	if !ok {
		return
	}

	for _, e := range s.Events() {
		if e.Name != eventLog {
			continue
		}
		msg, stream := logEvent(e.Attributes)
		w := v.Stdout()
		if se, ok := v.(stderrer); ok && stream == streamStderr {
			w = se.Stderr()
		}
		_, _ = io.WriteString(w, msg)
	}

	for _, kv := range s.Attributes() {
		if kv.Key == attrCached && kv.Value.AsBool() {
			v.Cached()
		}
	}

	var err error
	if s.Status().Code == codes.Error {
		desc := s.Status().Description
		if desc == "" {
			desc = "vertex failed"
		}
		err = errors.New(desc)
	}
	v.Complete(err)
}

// Shutdown completes vertices whose spans never ended and closes the sink.
func (b *Bridge) Shutdown(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	for id, v := range b.vertices {
		v.Complete(nil)
		delete(b.vertices, id)
	}
	return b.sink.Close()
}

// ForceFlush does nothing; vertices are written as spans end.
func (b *Bridge) ForceFlush(_ context.Context) error {
	return nil
}

func logEvent(attrs []attribute.KeyValue) (string, string) {
	var msg, stream string
	for _, kv := range attrs {
		switch kv.Key {
		case attrMessage:
			msg = kv.Value.AsString()
		case attrStream:
			stream = kv.Value.AsString()
		}
	}
	return msg, stream
}
