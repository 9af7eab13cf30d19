package services

import (
	"context"
	"fmt"

	"github.com/dispatchhq/dispatchd/internal/app/ports"
	"github.com/dispatchhq/dispatchd/internal/event"
	"github.com/dispatchhq/dispatchd/internal/integration"
)

// IntegrationRepository maps between the persisted record shape and the
// integration entity, owning blob encryption. Every save re-serializes
// and re-encrypts the whole properties map.
type IntegrationRepository struct {
	store  ports.IntegrationStore
	cipher *integration.Cipher
}

// NewIntegrationRepository constructs a repository over a store and cipher.
func NewIntegrationRepository(store ports.IntegrationStore, cipher *integration.Cipher) *IntegrationRepository {
	return &IntegrationRepository{store: store, cipher: cipher}
}

// Load fetches and decrypts one instance.
func (r *IntegrationRepository) Load(ctx context.Context, id int64) (*integration.Instance, error) {
	record, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.toEntity(record)
}

// ListForProject fetches all instances scoped to a project.
func (r *IntegrationRepository) ListForProject(ctx context.Context, projectID int64) ([]*integration.Instance, error) {
	records, err := r.store.ListForProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	instances := make([]*integration.Instance, 0, len(records))
	for _, record := range records {
		instance, err := r.toEntity(record)
		if err != nil {
			return nil, err
		}
		instances = append(instances, instance)
	}
	return instances, nil
}

// ListInheritable fetches group- and instance-level instances of a kind,
// used for default resolution.
func (r *IntegrationRepository) ListInheritable(ctx context.Context, kind string) ([]*integration.Instance, error) {
	records, err := r.store.ListInheritable(ctx, kind)
	if err != nil {
		return nil, err
	}
	instances := make([]*integration.Instance, 0, len(records))
	for _, record := range records {
		instance, err := r.toEntity(record)
		if err != nil {
			return nil, err
		}
		instances = append(instances, instance)
	}
	return instances, nil
}

// Save validates the scope invariant, re-encrypts the whole properties
// blob and writes the record atomically. Dirty tracking resets on success.
func (r *IntegrationRepository) Save(ctx context.Context, instance *integration.Instance) error {
	if err := instance.ValidateScope(); err != nil {
		return err
	}

	blob, nonce, err := r.cipher.Seal(instance.Properties())
	if err != nil {
		return fmt.Errorf("seal properties: %w", err)
	}

	toggles := make(map[string]bool, len(instance.EventToggles))
	for kind, enabled := range instance.EventToggles {
		toggles[string(kind)] = enabled
	}

	id, err := r.store.Save(ctx, ports.IntegrationRecord{
		ID:                  instance.ID,
		Kind:                instance.Kind,
		ProjectID:           instance.ProjectID,
		GroupID:             instance.GroupID,
		InstanceWide:        instance.InstanceWide,
		Active:              instance.Active,
		InheritFromID:       instance.InheritFromID,
		EventToggles:        toggles,
		EncryptedProperties: blob,
		PropertiesNonce:     nonce,
		DataFields:          instance.DataFields,
	})
	if err != nil {
		return err
	}
	instance.ID = id
	instance.ResetUpdatedProperties()
	return nil
}

// Delete removes one instance.
func (r *IntegrationRepository) Delete(ctx context.Context, id int64) error {
	return r.store.Delete(ctx, id)
}

func (r *IntegrationRepository) toEntity(record ports.IntegrationRecord) (*integration.Instance, error) {
	props, err := r.cipher.Open(record.EncryptedProperties, record.PropertiesNonce)
	if err != nil {
		return nil, fmt.Errorf("open properties for integration %d: %w", record.ID, err)
	}

	toggles := make(map[event.Kind]bool, len(record.EventToggles))
	for kind, enabled := range record.EventToggles {
		toggles[event.Kind(kind)] = enabled
	}

	instance := &integration.Instance{
		ID:            record.ID,
		Kind:          record.Kind,
		ProjectID:     record.ProjectID,
		GroupID:       record.GroupID,
		InstanceWide:  record.InstanceWide,
		Active:        record.Active,
		InheritFromID: record.InheritFromID,
		EventToggles:  toggles,
		DataFields:    record.DataFields,
	}
	instance.SetProperties(props)
	return instance, nil
}
