// Package migrations embeds the goose migrations of the local SQLite
// database that backs the session store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
