package registry

import (
	"fmt"
	"sort"
)

// Registry is the immutable variant lookup table. It is built once at
// process start and passed by reference; mutation after Build is not
// possible through the public surface.
type Registry struct {
	variants map[string]Variant
	order    []string
}

// Build indexes the given variant declarations. Duplicate kinds are a
// programming error and fail construction.
func Build(variants []Variant) (*Registry, error) {
	indexed := make(map[string]Variant, len(variants))
	order := make([]string, 0, len(variants))
	for _, variant := range variants {
		if variant.Kind == "" {
			return nil, fmt.Errorf("variant with empty kind")
		}
		if _, exists := indexed[variant.Kind]; exists {
			return nil, fmt.Errorf("duplicate variant kind %q", variant.Kind)
		}
		indexed[variant.Kind] = variant
		order = append(order, variant.Kind)
	}
	sort.Strings(order)
	return &Registry{variants: indexed, order: order}, nil
}

// MustBuild is Build for static catalogs known correct at compile time.
func MustBuild(variants []Variant) *Registry {
	registry, err := Build(variants)
	if err != nil {
		panic(err)
	}
	return registry
}

// Lookup returns the variant declaration for a kind.
func (r *Registry) Lookup(kind string) (Variant, bool) {
	variant, ok := r.variants[kind]
	return variant, ok
}

// Kinds returns all registered kinds sorted case-insensitively.
func (r *Registry) Kinds() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// FieldsFor returns the ordered declared fields of a kind.
func (r *Registry) FieldsFor(kind string) []Field {
	variant, ok := r.variants[kind]
	if !ok {
		return nil
	}
	out := make([]Field, len(variant.Fields))
	copy(out, variant.Fields)
	return out
}

// APIField is the read-only field listing exposed to the API layer.
type APIField struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description"`
	Placeholder string `json:"placeholder,omitempty"`
}

// APIFields returns the field metadata export for a variant, excluding
// secret fields, the webhook field and fields whose condition evaluates
// false against the given instance.
func (r *Registry) APIFields(kind string, instance InstanceView) []APIField {
	variant, ok := r.variants[kind]
	if !ok {
		return nil
	}
	out := make([]APIField, 0, len(variant.Fields))
	for _, field := range variant.Fields {
		if field.IsSecret() || field.APIOnly {
			continue
		}
		if field.Name == variant.webhookFieldName() {
			continue
		}
		if !field.Visible(instance) {
			continue
		}
		out = append(out, APIField{
			Name:        field.Name,
			Type:        string(field.Type),
			Required:    field.Required,
			Description: field.Description,
			Placeholder: field.Placeholder,
		})
	}
	return out
}
