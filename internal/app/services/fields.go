package services

import (
	"context"

	"github.com/dispatchhq/dispatchd/internal/registry"
)

// FieldsService exports read-only field metadata for the API layer.
type FieldsService struct {
	repo     *IntegrationRepository
	registry *registry.Registry
}

// NewFieldsService constructs a fields export service.
func NewFieldsService(repo *IntegrationRepository, reg *registry.Registry) *FieldsService {
	return &FieldsService{repo: repo, registry: reg}
}

// ForKind lists the exportable fields of a variant, evaluated against a
// configured instance when one exists so conditional fields resolve.
func (s *FieldsService) ForKind(ctx context.Context, kind string, integrationID int64) ([]registry.APIField, error) {
	variant, ok := s.registry.Lookup(kind)
	if !ok {
		return nil, ErrUnknownKind
	}

	var view registry.InstanceView = emptyView{}
	if integrationID > 0 {
		instance, err := s.repo.Load(ctx, integrationID)
		if err != nil {
			return nil, err
		}
		view = instance
	}
	return s.registry.APIFields(variant.Kind, view), nil
}

// Kinds lists every registered variant kind.
func (s *FieldsService) Kinds() []string {
	return s.registry.Kinds()
}

type emptyView struct{}

func (emptyView) Prop(string) string { return "" }
func (emptyView) IsActive() bool     { return false }
