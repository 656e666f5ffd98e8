// Package migrations embeds the goose SQL migrations of the on-device
// database.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
