package sqldb

import "context"

const getFingerprint = `SELECT path, mod_time_ns, updated_at_ns FROM fingerprints WHERE path = ?`

func (q *Queries) GetFingerprint(ctx context.Context, path string) (Fingerprint, error) {
	row := q.db.QueryRowContext(ctx, getFingerprint, path)
	var i Fingerprint
	err := row.Scan(&i.Path, &i.ModTimeNs, &i.UpdatedAtNs)
	return i, err
}

const upsertFingerprint = `INSERT INTO fingerprints (path, mod_time_ns, updated_at_ns)
VALUES (?, ?, ?)
ON CONFLICT(path) DO UPDATE SET
    mod_time_ns = excluded.mod_time_ns,
    updated_at_ns = excluded.updated_at_ns`

type UpsertFingerprintParams struct {
	Path        string
	ModTimeNs   int64
	UpdatedAtNs int64
}

func (q *Queries) UpsertFingerprint(ctx context.Context, arg UpsertFingerprintParams) error {
	_, err := q.db.ExecContext(ctx, upsertFingerprint, arg.Path, arg.ModTimeNs, arg.UpdatedAtNs)
	return err
}

const listFingerprints = `SELECT path, mod_time_ns, updated_at_ns FROM fingerprints ORDER BY path`

func (q *Queries) ListFingerprints(ctx context.Context) ([]Fingerprint, error) {
	rows, err := q.db.QueryContext(ctx, listFingerprints)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Fingerprint
	for rows.Next() {
		var i Fingerprint
		if err := rows.Scan(&i.Path, &i.ModTimeNs, &i.UpdatedAtNs); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countFingerprints = `SELECT COUNT(*) FROM fingerprints`

func (q *Queries) CountFingerprints(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countFingerprints)
	var count int64
	err := row.Scan(&count)
	return count, err
}
