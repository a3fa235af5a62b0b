// Package db exposes the embedded SQL migrations for the service schema.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
