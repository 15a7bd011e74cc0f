package database

import "time"

// FingerprintRecord represents a row in the fingerprints table: the last
// modification time committed for a score file.
type FingerprintRecord struct {
	Path      string    `json:"path"`
	ModTime   time.Time `json:"mod_time"`
	UpdatedAt time.Time `json:"updated_at"`
}
