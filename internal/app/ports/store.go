package ports

import "context"

// IntegrationRecord is the persisted shape of one integration instance.
// Properties travel as the opaque encrypted blob; the service layer owns
// encryption and entity mapping.
type IntegrationRecord struct {
	ID            int64
	Kind          string
	ProjectID     *int64
	GroupID       *int64
	InstanceWide  bool
	Active        bool
	InheritFromID *int64

	// EventToggles maps event kind names to their coarse on/off switch.
	EventToggles map[string]bool

	EncryptedProperties []byte
	PropertiesNonce     []byte

	// DataFields is the plaintext side-table payload for variants that
	// keep configuration out of the encrypted blob.
	DataFields map[string]string
}

// IntegrationStore is the persistence contract for integration instances.
// Saves are atomic whole-record writes; concurrent writers to the same
// instance serialize at this boundary.
type IntegrationStore interface {
	Get(ctx context.Context, id int64) (IntegrationRecord, error)
	ListForProject(ctx context.Context, projectID int64) ([]IntegrationRecord, error)
	ListInheritable(ctx context.Context, kind string) ([]IntegrationRecord, error)
	Save(ctx context.Context, record IntegrationRecord) (int64, error)
	Delete(ctx context.Context, id int64) error
}
