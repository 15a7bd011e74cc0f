package sqldb

import "context"

const deleteAllFingerprints = `DELETE FROM fingerprints`

func (q *Queries) DeleteAllFingerprints(ctx context.Context) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteAllFingerprints)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteFingerprint = `DELETE FROM fingerprints WHERE path = ?`

func (q *Queries) DeleteFingerprint(ctx context.Context, path string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteFingerprint, path)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
