// Package migrations embeds the SQL migrations applied on server startup.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
