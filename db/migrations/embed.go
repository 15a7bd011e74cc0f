// Package migrations embeds the SQL schema for the fingerprint store.
package migrations

import "embed"

// Files holds the up/down migration pairs applied by golang-migrate.
//
//go:embed *.sql
var Files embed.FS
