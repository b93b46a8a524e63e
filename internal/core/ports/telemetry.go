package ports

import (
	"context"
	"io"

	"go.trai.ch/featreg/internal/core/domain"
)

// Telemetry records units of work such as module loads.
type Telemetry interface {
	// Record starts a new vertex named name.
	Record(ctx context.Context, name string) (context.Context, Vertex)
	Close() error
}

// Vertex represents a single recorded unit of work.
type Vertex interface {
	Stdout() io.Writer
	Log(level domain.LogLevel, msg string)
	// Complete marks the vertex finished; a nil err means success.
	Complete(err error)
	// Cached marks the vertex as served from a cache.
	Cached()
}

type vertexKey struct{}

// ContextWithVertex stores v in ctx.
func ContextWithVertex(ctx context.Context, v Vertex) context.Context {
	return context.WithValue(ctx, vertexKey{}, v)
}

// VertexFromContext returns the vertex stored in ctx, if any.
func VertexFromContext(ctx context.Context) (Vertex, bool) {
	v, ok := ctx.Value(vertexKey{}).(Vertex)
	return v, ok
}
