package sqlite

import (
	"context"
	"time"

	"github.com/dispatchhq/dispatchd/internal/db"
	"github.com/dispatchhq/dispatchd/internal/statuscache"
)

// CacheStore implements the status cache persistence contract over the
// shared SQLite database.
type CacheStore struct {
	db *db.Database
}

// NewCacheStore wraps the database as a status cache store.
func NewCacheStore(database *db.Database) *CacheStore {
	return &CacheStore{db: database}
}

func (s *CacheStore) Get(ctx context.Context, key statuscache.Key) (statuscache.Entry, bool, error) {
	row, found, err := s.db.GetStatusCache(ctx, key.IntegrationID, key.SHA, key.Ref)
	if err != nil || !found {
		return statuscache.Entry{}, false, err
	}
	return statuscache.Entry{
		Value:      statuscache.Status(row.Value),
		ComputedAt: row.ComputedAt,
	}, true, nil
}

func (s *CacheStore) Put(ctx context.Context, key statuscache.Key, entry statuscache.Entry) error {
	return s.db.UpsertStatusCache(ctx, db.StatusCacheRow{
		IntegrationID: key.IntegrationID,
		SHA:           key.SHA,
		Ref:           key.Ref,
		Value:         string(entry.Value),
		ComputedAt:    entry.ComputedAt,
	})
}

func (s *CacheStore) DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	return s.db.DeleteExpiredStatusCache(ctx, olderThan)
}

var _ statuscache.Store = (*CacheStore)(nil)
