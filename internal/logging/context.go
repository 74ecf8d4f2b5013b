package logging

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	canvasIDKey ctxKey = iota
	nodeIDKey
	edgeIDKey
)

// WithCanvasID returns a context with the canvas ID set.
func WithCanvasID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, canvasIDKey, id)
}

// WithNodeID returns a context with the node ID set.
func WithNodeID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, nodeIDKey, id)
}

// WithEdgeID returns a context with the edge ID set.
func WithEdgeID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, edgeIDKey, id)
}

// CanvasID extracts the canvas ID from the context, or "" if absent.
func CanvasID(ctx context.Context) string {
	v, _ := ctx.Value(canvasIDKey).(string)
	return v
}

// NodeID extracts the node ID from the context, or "" if absent.
func NodeID(ctx context.Context) string {
	v, _ := ctx.Value(nodeIDKey).(string)
	return v
}

// EdgeID extracts the edge ID from the context, or "" if absent.
func EdgeID(ctx context.Context) string {
	v, _ := ctx.Value(edgeIDKey).(string)
	return v
}

// correlationAttrs returns the non-empty correlation IDs carried by ctx.
func correlationAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	if v := CanvasID(ctx); v != "" {
		attrs = append(attrs, slog.String("canvas_id", v))
	}
	if v := NodeID(ctx); v != "" {
		attrs = append(attrs, slog.String("node_id", v))
	}
	if v := EdgeID(ctx); v != "" {
		attrs = append(attrs, slog.String("edge_id", v))
	}
	return attrs
}

// LogWith returns a logger enriched with correlation IDs from the context.
// Only non-empty values are added as attributes.
func LogWith(ctx context.Context, logger *slog.Logger) *slog.Logger {
	for _, a := range correlationAttrs(ctx) {
		logger = logger.With(a)
	}
	return logger
}

// CorrelationHandler wraps an slog.Handler and injects the canvas, node and
// edge IDs found in the record's context.
type CorrelationHandler struct {
	inner slog.Handler
}

// NewCorrelationHandler wraps the given handler with automatic correlation ID injection.
func NewCorrelationHandler(inner slog.Handler) *CorrelationHandler {
	return &CorrelationHandler{inner: inner}
}

func (h *CorrelationHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *CorrelationHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(correlationAttrs(ctx)...)
	return h.inner.Handle(ctx, r)
}

func (h *CorrelationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *CorrelationHandler) WithGroup(name string) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithGroup(name)}
}
