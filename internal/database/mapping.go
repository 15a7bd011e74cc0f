package database

import (
	"time"

	sqldb "github.com/choplin/scorerelay/internal/database/sqlc"
)

// FingerprintRecordFromRow converts a database row to a FingerprintRecord.
func FingerprintRecordFromRow(row sqldb.Fingerprint) FingerprintRecord {
	return FingerprintRecord{
		Path:      row.Path,
		ModTime:   time.Unix(0, row.ModTimeNs),
		UpdatedAt: optionalTime(row.UpdatedAtNs),
	}
}
