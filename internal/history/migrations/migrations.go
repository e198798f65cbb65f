// Package migrations embeds the goose SQL migrations for the optional
// game-history archive (SPEC_FULL.md §9, supplemented feature).
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
