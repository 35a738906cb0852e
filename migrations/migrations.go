// Package migrations embeds the goose SQL migrations applied by
// "pablo serve" and "pablo migrate".
package migrations

import "embed"

// FS holds the *.sql files at its root, as db.Migrate expects.
//
//go:embed *.sql
var FS embed.FS
