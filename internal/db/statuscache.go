package db

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// StatusCacheRow is one stored build-status computation.
type StatusCacheRow struct {
	IntegrationID int64
	SHA           string
	Ref           string
	Value         string
	ComputedAt    time.Time
}

// GetStatusCache fetches one cache row; found is false on a miss.
func (c *Database) GetStatusCache(ctx context.Context, integrationID int64, sha, ref string) (StatusCacheRow, bool, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT value, computed_at FROM status_cache
		 WHERE integration_id = ? AND sha = ? AND ref = ?`, integrationID, sha, ref)

	out := StatusCacheRow{IntegrationID: integrationID, SHA: sha, Ref: ref}
	var computedAt string
	if err := row.Scan(&out.Value, &computedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return StatusCacheRow{}, false, nil
		}
		return StatusCacheRow{}, false, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, computedAt)
	if err != nil {
		return StatusCacheRow{}, false, err
	}
	out.ComputedAt = parsed
	return out, true, nil
}

// UpsertStatusCache stores one computed value, replacing any previous one.
func (c *Database) UpsertStatusCache(ctx context.Context, row StatusCacheRow) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO status_cache (integration_id, sha, ref, value, computed_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (integration_id, sha, ref)
		 DO UPDATE SET value = excluded.value, computed_at = excluded.computed_at`,
		row.IntegrationID, row.SHA, row.Ref, row.Value,
		row.ComputedAt.UTC().Format(time.RFC3339Nano))
	return err
}

// DeleteExpiredStatusCache evicts rows computed before the cutoff.
func (c *Database) DeleteExpiredStatusCache(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := c.db.ExecContext(ctx,
		`DELETE FROM status_cache WHERE computed_at < ?`,
		olderThan.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
