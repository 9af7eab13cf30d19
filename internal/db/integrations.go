package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// IntegrationRow is the raw integrations table row.
type IntegrationRow struct {
	ID                  int64
	Kind                string
	ProjectID           sql.NullInt64
	GroupID             sql.NullInt64
	InstanceWide        int64
	Active              int64
	InheritFromID       sql.NullInt64
	EventToggles        string
	EncryptedProperties []byte
	PropertiesNonce     []byte
}

const integrationColumns = `id, kind, project_id, group_id, instance_wide, active,
	inherit_from_id, event_toggles, encrypted_properties, properties_nonce`

// GetIntegration fetches one integration row by id.
func (c *Database) GetIntegration(ctx context.Context, id int64) (IntegrationRow, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT `+integrationColumns+` FROM integrations WHERE id = ?`, id)
	return scanIntegration(row)
}

// ListIntegrationsForProject fetches every integration scoped to a project.
func (c *Database) ListIntegrationsForProject(ctx context.Context, projectID int64) ([]IntegrationRow, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT `+integrationColumns+` FROM integrations WHERE project_id = ? ORDER BY kind`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIntegrations(rows)
}

// ListInheritableIntegrations fetches custom group- and instance-level
// integrations of one kind, used for default resolution.
func (c *Database) ListInheritableIntegrations(ctx context.Context, kind string) ([]IntegrationRow, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT `+integrationColumns+` FROM integrations
		 WHERE kind = ? AND project_id IS NULL AND inherit_from_id IS NULL
		 ORDER BY instance_wide, group_id`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIntegrations(rows)
}

// UpsertIntegration inserts or fully rewrites one integration row and
// returns its id. The encrypted blob is always replaced as a whole.
func (c *Database) UpsertIntegration(ctx context.Context, row IntegrationRow) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if row.ID == 0 {
		result, err := c.db.ExecContext(ctx,
			`INSERT INTO integrations
			 (kind, project_id, group_id, instance_wide, active, inherit_from_id,
			  event_toggles, encrypted_properties, properties_nonce, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			row.Kind, row.ProjectID, row.GroupID, row.InstanceWide, row.Active,
			row.InheritFromID, row.EventToggles, row.EncryptedProperties, row.PropertiesNonce, now, now)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	}

	_, err := c.db.ExecContext(ctx,
		`UPDATE integrations SET
		 kind = ?, project_id = ?, group_id = ?, instance_wide = ?, active = ?,
		 inherit_from_id = ?, event_toggles = ?, encrypted_properties = ?,
		 properties_nonce = ?, updated_at = ?
		 WHERE id = ?`,
		row.Kind, row.ProjectID, row.GroupID, row.InstanceWide, row.Active,
		row.InheritFromID, row.EventToggles, row.EncryptedProperties, row.PropertiesNonce, now, row.ID)
	if err != nil {
		return 0, err
	}
	return row.ID, nil
}

// DeleteIntegration removes one integration; data fields and cache
// entries cascade.
func (c *Database) DeleteIntegration(ctx context.Context, id int64) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM integrations WHERE id = ?`, id)
	return err
}

// GetDataFields fetches the side-table fields of one integration.
func (c *Database) GetDataFields(ctx context.Context, integrationID int64) (map[string]string, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT name, value FROM integration_data_fields WHERE integration_id = ?`, integrationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		fields[name] = value
	}
	return fields, rows.Err()
}

// ReplaceDataFields rewrites the side-table fields of one integration.
func (c *Database) ReplaceDataFields(ctx context.Context, integrationID int64, fields map[string]string) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM integration_data_fields WHERE integration_id = ?`, integrationID); err != nil {
		return err
	}
	for name, value := range fields {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO integration_data_fields (integration_id, name, value) VALUES (?, ?, ?)`,
			integrationID, name, value); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// MarshalEventToggles serializes the toggle map for storage.
func MarshalEventToggles(toggles map[string]bool) (string, error) {
	if toggles == nil {
		toggles = map[string]bool{}
	}
	raw, err := json.Marshal(toggles)
	if err != nil {
		return "", fmt.Errorf("marshal event toggles: %w", err)
	}
	return string(raw), nil
}

// UnmarshalEventToggles deserializes the stored toggle map.
func UnmarshalEventToggles(raw string) (map[string]bool, error) {
	toggles := map[string]bool{}
	if raw == "" {
		return toggles, nil
	}
	if err := json.Unmarshal([]byte(raw), &toggles); err != nil {
		return nil, fmt.Errorf("unmarshal event toggles: %w", err)
	}
	return toggles, nil
}

func scanIntegration(row *sql.Row) (IntegrationRow, error) {
	var out IntegrationRow
	err := row.Scan(&out.ID, &out.Kind, &out.ProjectID, &out.GroupID, &out.InstanceWide,
		&out.Active, &out.InheritFromID, &out.EventToggles, &out.EncryptedProperties, &out.PropertiesNonce)
	return out, err
}

func collectIntegrations(rows *sql.Rows) ([]IntegrationRow, error) {
	var out []IntegrationRow
	for rows.Next() {
		var row IntegrationRow
		if err := rows.Scan(&row.ID, &row.Kind, &row.ProjectID, &row.GroupID, &row.InstanceWide,
			&row.Active, &row.InheritFromID, &row.EventToggles, &row.EncryptedProperties, &row.PropertiesNonce); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
