package router

import (
	"log/slog"
	"strings"

	"github.com/dispatchhq/dispatchd/internal/event"
	"github.com/dispatchhq/dispatchd/internal/integration"
	"github.com/dispatchhq/dispatchd/internal/registry"
)

// Router answers whether an integration instance should react to an event.
// It is pure and side-effect-free apart from debug logging.
type Router struct {
	registry *Registry
	log      *slog.Logger
}

// Registry aliases the variant lookup table dependency.
type Registry = registry.Registry

// New constructs a router over an immutable variant registry.
func New(reg *Registry, log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}
	return &Router{registry: reg, log: log}
}

// Eligible applies the eligibility gate for one instance and payload:
// activation, variant-declared event support, webhook presence, and the
// incident work-item suppression rule. Unknown event kinds are simply
// ineligible, never an error.
func (r *Router) Eligible(instance *integration.Instance, payload event.Payload) bool {
	if !instance.Active {
		return false
	}

	variant, ok := r.registry.Lookup(instance.Kind)
	if !ok {
		r.log.Debug("unknown integration kind", "kind", instance.Kind)
		return false
	}

	kind := payload.Kind()
	if !variant.Supports(kind) {
		r.log.Debug("event not supported by integration",
			"integration", instance.Kind, "event", string(kind))
		return false
	}

	// An incident work item is delivered through the dedicated incident
	// kind; the work-item path must not double-deliver it.
	if payload.IsIncidentWorkItem() {
		return false
	}

	if variant.RequiresWebhook && !webhookConfigured(instance, variant) {
		return false
	}

	return true
}

func webhookConfigured(instance *integration.Instance, variant registry.Variant) bool {
	name := "webhook"
	if variant.WebhookField != "" {
		name = variant.WebhookField
	}
	return strings.TrimSpace(instance.Prop(name)) != ""
}
