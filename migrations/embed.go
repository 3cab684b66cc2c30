// Package migrations embeds the Postgres schema for the lead analytics and
// transcript tables.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
