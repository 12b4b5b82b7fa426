// Package db ships the SQL schema so tests and the migration CLI can apply it
// without a checkout on disk.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
