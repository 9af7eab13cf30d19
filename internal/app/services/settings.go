package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dispatchhq/dispatchd/internal/filter"
	"github.com/dispatchhq/dispatchd/internal/integration"
	"github.com/dispatchhq/dispatchd/internal/registry"
)

var (
	// ErrUnknownKind indicates a save against an unregistered variant.
	ErrUnknownKind = errors.New("unknown integration kind")
	// ErrScopeNotAllowed indicates the variant forbids the requested scope.
	ErrScopeNotAllowed = errors.New("integration cannot be configured at this level")
	// ErrMissingRequiredField indicates an active save without a required field.
	ErrMissingRequiredField = errors.New("missing required field")
	// ErrInvalidBranchChoice indicates an unknown branches_to_be_notified value.
	ErrInvalidBranchChoice = errors.New("invalid branch notification choice")
	// ErrInvalidLabelBehavior indicates an unknown label matching behavior.
	ErrInvalidLabelBehavior = errors.New("invalid label matching behavior")
	// ErrChannelLimitExceeded indicates too many channels for one event.
	ErrChannelLimitExceeded = errors.New("channel limit exceeded")
)

// SettingsErrorKind classifies save failures for transport mapping.
type SettingsErrorKind string

const (
	SettingsErrorUnknown         SettingsErrorKind = "unknown"
	SettingsErrorUnknownKind     SettingsErrorKind = "unknown_kind"
	SettingsErrorScope           SettingsErrorKind = "scope_not_allowed"
	SettingsErrorMissingField    SettingsErrorKind = "missing_field"
	SettingsErrorInvalidValue    SettingsErrorKind = "invalid_value"
	SettingsErrorChannelsOverCap SettingsErrorKind = "channels_over_cap"
)

// ClassifySettingsError classifies a returned settings error.
func ClassifySettingsError(err error) SettingsErrorKind {
	switch {
	case errors.Is(err, ErrUnknownKind):
		return SettingsErrorUnknownKind
	case errors.Is(err, ErrScopeNotAllowed), errors.Is(err, integration.ErrInvalidScope):
		return SettingsErrorScope
	case errors.Is(err, ErrMissingRequiredField):
		return SettingsErrorMissingField
	case errors.Is(err, ErrInvalidBranchChoice), errors.Is(err, ErrInvalidLabelBehavior):
		return SettingsErrorInvalidValue
	case errors.Is(err, ErrChannelLimitExceeded):
		return SettingsErrorChannelsOverCap
	default:
		return SettingsErrorUnknown
	}
}

// SettingsService validates and persists integration configuration.
// Configuration errors surface here, synchronously at save time, never
// during dispatch.
type SettingsService struct {
	repo         *IntegrationRepository
	registry     *registry.Registry
	channelLimit int
}

// NewSettingsService constructs a settings service.
func NewSettingsService(repo *IntegrationRepository, reg *registry.Registry, channelLimit int) *SettingsService {
	if channelLimit <= 0 {
		channelLimit = filter.DefaultChannelLimit
	}
	return &SettingsService{repo: repo, registry: reg, channelLimit: channelLimit}
}

// Validate applies every save-time invariant for the instance.
func (s *SettingsService) Validate(instance *integration.Instance) error {
	variant, ok := s.registry.Lookup(instance.Kind)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKind, instance.Kind)
	}

	if err := instance.ValidateScope(); err != nil {
		return err
	}
	if err := validateLevel(variant, instance); err != nil {
		return err
	}

	// Field requirements bind only once the integration is activated, so
	// a draft configuration can be saved incrementally.
	if instance.Active {
		if err := validateRequiredFields(variant, instance); err != nil {
			return err
		}
	}

	if value := instance.Prop("branches_to_be_notified"); !filter.ValidBranchChoice(value) {
		return fmt.Errorf("%w: %q", ErrInvalidBranchChoice, value)
	}
	if value := instance.Prop("labels_to_be_notified_behavior"); !filter.ValidLabelBehavior(value) {
		return fmt.Errorf("%w: %q", ErrInvalidLabelBehavior, value)
	}

	if variant.ConfigurableChannels {
		if err := filter.ValidateChannelCount(instance, variant.SupportedEvents, s.channelLimit); err != nil {
			return fmt.Errorf("%w: %v", ErrChannelLimitExceeded, err)
		}
	}

	return nil
}

// Save validates and persists; the whole properties blob is re-encrypted.
func (s *SettingsService) Save(ctx context.Context, instance *integration.Instance) error {
	if err := s.Validate(instance); err != nil {
		return err
	}
	return s.repo.Save(ctx, instance)
}

func validateLevel(variant registry.Variant, instance *integration.Instance) error {
	switch {
	case instance.ProjectLevel() && !variant.AllowedAtProject():
		return fmt.Errorf("%w: %s is not a project-level integration", ErrScopeNotAllowed, instance.Kind)
	case instance.GroupLevel() && !variant.AllowedAtGroup():
		return fmt.Errorf("%w: %s is not a group-level integration", ErrScopeNotAllowed, instance.Kind)
	case instance.InstanceLevel() && !variant.AllowedAtInstance():
		return fmt.Errorf("%w: %s is not an instance-level integration", ErrScopeNotAllowed, instance.Kind)
	default:
		return nil
	}
}

func validateRequiredFields(variant registry.Variant, instance *integration.Instance) error {
	for _, field := range variant.Fields {
		if !field.Required || !field.Visible(instance) {
			continue
		}
		var value string
		if field.Storage == registry.StorageDataFields {
			value = instance.DataFields[field.Name]
		} else {
			value = instance.Prop(field.Name)
		}
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s", ErrMissingRequiredField, field.Name)
		}
	}
	return nil
}
