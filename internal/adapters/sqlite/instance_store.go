package sqlite

import (
	"context"
	"database/sql"

	"github.com/dispatchhq/dispatchd/internal/app/ports"
	"github.com/dispatchhq/dispatchd/internal/db"
)

// InstanceStore implements the integration persistence port over the
// shared SQLite database.
type InstanceStore struct {
	db *db.Database
}

// NewInstanceStore wraps the database as an integration store.
func NewInstanceStore(database *db.Database) *InstanceStore {
	return &InstanceStore{db: database}
}

func (s *InstanceStore) Get(ctx context.Context, id int64) (ports.IntegrationRecord, error) {
	row, err := s.db.GetIntegration(ctx, id)
	if err != nil {
		return ports.IntegrationRecord{}, err
	}
	return s.toRecord(ctx, row)
}

func (s *InstanceStore) ListForProject(ctx context.Context, projectID int64) ([]ports.IntegrationRecord, error) {
	rows, err := s.db.ListIntegrationsForProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return s.toRecords(ctx, rows)
}

func (s *InstanceStore) ListInheritable(ctx context.Context, kind string) ([]ports.IntegrationRecord, error) {
	rows, err := s.db.ListInheritableIntegrations(ctx, kind)
	if err != nil {
		return nil, err
	}
	return s.toRecords(ctx, rows)
}

// Save writes the whole record, replacing the data fields side table in
// the same call.
func (s *InstanceStore) Save(ctx context.Context, record ports.IntegrationRecord) (int64, error) {
	toggles, err := db.MarshalEventToggles(record.EventToggles)
	if err != nil {
		return 0, err
	}

	id, err := s.db.UpsertIntegration(ctx, db.IntegrationRow{
		ID:                  record.ID,
		Kind:                record.Kind,
		ProjectID:           nullInt64(record.ProjectID),
		GroupID:             nullInt64(record.GroupID),
		InstanceWide:        boolToInt(record.InstanceWide),
		Active:              boolToInt(record.Active),
		InheritFromID:       nullInt64(record.InheritFromID),
		EventToggles:        toggles,
		EncryptedProperties: record.EncryptedProperties,
		PropertiesNonce:     record.PropertiesNonce,
	})
	if err != nil {
		return 0, err
	}

	if record.DataFields != nil {
		if err := s.db.ReplaceDataFields(ctx, id, record.DataFields); err != nil {
			return 0, err
		}
	}
	return id, nil
}

func (s *InstanceStore) Delete(ctx context.Context, id int64) error {
	return s.db.DeleteIntegration(ctx, id)
}

func (s *InstanceStore) toRecords(ctx context.Context, rows []db.IntegrationRow) ([]ports.IntegrationRecord, error) {
	records := make([]ports.IntegrationRecord, 0, len(rows))
	for _, row := range rows {
		record, err := s.toRecord(ctx, row)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *InstanceStore) toRecord(ctx context.Context, row db.IntegrationRow) (ports.IntegrationRecord, error) {
	toggles, err := db.UnmarshalEventToggles(row.EventToggles)
	if err != nil {
		return ports.IntegrationRecord{}, err
	}
	fields, err := s.db.GetDataFields(ctx, row.ID)
	if err != nil {
		return ports.IntegrationRecord{}, err
	}
	return ports.IntegrationRecord{
		ID:                  row.ID,
		Kind:                row.Kind,
		ProjectID:           int64Ptr(row.ProjectID),
		GroupID:             int64Ptr(row.GroupID),
		InstanceWide:        row.InstanceWide != 0,
		Active:              row.Active != 0,
		InheritFromID:       int64Ptr(row.InheritFromID),
		EventToggles:        toggles,
		EncryptedProperties: row.EncryptedProperties,
		PropertiesNonce:     row.PropertiesNonce,
		DataFields:          fields,
	}, nil
}

func nullInt64(value *int64) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *value, Valid: true}
}

func int64Ptr(value sql.NullInt64) *int64 {
	if !value.Valid {
		return nil
	}
	v := value.Int64
	return &v
}

func boolToInt(value bool) int64 {
	if value {
		return 1
	}
	return 0
}

var _ ports.IntegrationStore = (*InstanceStore)(nil)
