// Package migrations embeds the goose SQL migrations for the travel agenda
// schema so tests and the server bootstrap can apply them without touching
// the filesystem.
package migrations

import "embed"

// FS holds all *.sql migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
