// Package migrations embeds the canonical schema for the application
// database. Reset drops the whole schema and replays these files, so a test
// run always starts from row zero with identity counters back at 1.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
