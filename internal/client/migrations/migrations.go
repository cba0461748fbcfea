// Package migrations embeds the schema of the client's local session database.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
