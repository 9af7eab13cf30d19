package observability

import (
	"context"
	"io"
	"log/slog"
)

type contextAwareHandler struct {
	next slog.Handler
}

// WrapSlogHandler adds request and dispatch context fields to structured logs.
func WrapSlogHandler(next slog.Handler) slog.Handler {
	if next == nil {
		next = slog.NewTextHandler(io.Discard, nil)
	}
	return &contextAwareHandler{next: next}
}

func (h *contextAwareHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextAwareHandler) Handle(ctx context.Context, record slog.Record) error {
	if requestID, ok := RequestIDFromContext(ctx); ok {
		record.AddAttrs(slog.String("request_id", requestID))
	}
	if route, ok := RouteFromContext(ctx); ok {
		record.AddAttrs(slog.String("route", route))
	}
	if deliveryID, ok := DeliveryIDFromContext(ctx); ok {
		record.AddAttrs(slog.String("delivery_id", deliveryID))
	}
	if integrationID, ok := IntegrationIDFromContext(ctx); ok {
		record.AddAttrs(slog.Int64("integration_id", integrationID))
	}

	return h.next.Handle(ctx, record)
}

func (h *contextAwareHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextAwareHandler{next: h.next.WithAttrs(attrs)}
}

func (h *contextAwareHandler) WithGroup(name string) slog.Handler {
	return &contextAwareHandler{next: h.next.WithGroup(name)}
}
