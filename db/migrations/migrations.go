package migrations

import "embed"

// FS holds the SQL migrations of the results table, read by golang-migrate
// through the iofs source.
//
//go:embed *.sql
var FS embed.FS

// Version is the schema version the binary expects.
const Version = 1
