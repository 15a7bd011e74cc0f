package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqldb "github.com/choplin/scorerelay/internal/database/sqlc"
)

// FingerprintRepository persists file fingerprints. It satisfies
// tracker.Table so a relay restart does not re-upload unchanged files.
type FingerprintRepository struct {
	ctx *Context
	now func() time.Time
}

func NewFingerprintRepository(dbCtx *Context) *FingerprintRepository {
	return &FingerprintRepository{ctx: dbCtx, now: time.Now}
}

// Find returns the fingerprint stored for path, or ErrNotFound.
func (r *FingerprintRepository) Find(ctx context.Context, path string) (*FingerprintRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("fingerprint repository: missing database context")
	}

	row, err := queries.GetFingerprint(ctx, path)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	record := FingerprintRecordFromRow(row)
	return &record, nil
}

// Save inserts or replaces the fingerprint for path.
func (r *FingerprintRepository) Save(ctx context.Context, path string, modTime time.Time) error {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return fmt.Errorf("fingerprint repository: missing database context")
	}

	return queries.UpsertFingerprint(ctx, sqldb.UpsertFingerprintParams{
		Path:        path,
		ModTimeNs:   modTime.UnixNano(),
		UpdatedAtNs: unixNano(r.now()),
	})
}

// FindAll lists every stored fingerprint ordered by path.
func (r *FingerprintRepository) FindAll(ctx context.Context) ([]FingerprintRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("fingerprint repository: missing database context")
	}

	rows, err := queries.ListFingerprints(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]FingerprintRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, FingerprintRecordFromRow(row))
	}
	return records, nil
}

// Count returns the number of stored fingerprints.
func (r *FingerprintRepository) Count(ctx context.Context) (int64, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return 0, fmt.Errorf("fingerprint repository: missing database context")
	}
	return queries.CountFingerprints(ctx)
}

// Delete removes the fingerprint for path and reports whether one existed.
func (r *FingerprintRepository) Delete(ctx context.Context, path string) (bool, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return false, fmt.Errorf("fingerprint repository: missing database context")
	}

	n, err := queries.DeleteFingerprint(ctx, path)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Lookup implements tracker.Table.
func (r *FingerprintRepository) Lookup(path string) (time.Time, bool, error) {
	record, err := r.Find(context.Background(), path)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return record.ModTime, true, nil
}

// Store implements tracker.Table.
func (r *FingerprintRepository) Store(path string, modTime time.Time) error {
	return r.Save(context.Background(), path, modTime)
}
