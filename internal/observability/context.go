package observability

import (
	"context"
	"strings"
)

type contextKey string

const (
	requestIDKey     contextKey = "observability.request_id"
	routeKey         contextKey = "observability.route"
	deliveryIDKey    contextKey = "observability.delivery_id"
	integrationIDKey contextKey = "observability.integration_id"
)

// WithRequestMetadata enriches context with request metadata.
func WithRequestMetadata(ctx context.Context, requestID, route string) context.Context {
	requestID = strings.TrimSpace(requestID)
	route = strings.TrimSpace(route)
	if requestID != "" {
		ctx = context.WithValue(ctx, requestIDKey, requestID)
	}
	if route != "" {
		ctx = context.WithValue(ctx, routeKey, route)
	}
	return ctx
}

// WithDelivery tags context with the webhook delivery id.
func WithDelivery(ctx context.Context, deliveryID string) context.Context {
	deliveryID = strings.TrimSpace(deliveryID)
	if deliveryID == "" {
		return ctx
	}
	return context.WithValue(ctx, deliveryIDKey, deliveryID)
}

// WithIntegration tags context with the integration being executed.
func WithIntegration(ctx context.Context, integrationID int64) context.Context {
	if integrationID <= 0 {
		return ctx
	}
	return context.WithValue(ctx, integrationIDKey, integrationID)
}

// RequestIDFromContext extracts request id.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(requestIDKey).(string)
	value = strings.TrimSpace(value)
	return value, ok && value != ""
}

// RouteFromContext extracts normalized route path.
func RouteFromContext(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(routeKey).(string)
	value = strings.TrimSpace(value)
	return value, ok && value != ""
}

// DeliveryIDFromContext extracts the webhook delivery id.
func DeliveryIDFromContext(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(deliveryIDKey).(string)
	value = strings.TrimSpace(value)
	return value, ok && value != ""
}

// IntegrationIDFromContext extracts the executing integration id.
func IntegrationIDFromContext(ctx context.Context) (int64, bool) {
	value, ok := ctx.Value(integrationIDKey).(int64)
	return value, ok && value > 0
}
