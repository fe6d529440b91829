// Package migrations holds the PostgreSQL schema, embedded so the binaries
// can migrate without the source tree.
package migrations

import "embed"

// Files contains every *.sql migration at the package root.
//
//go:embed *.sql
var Files embed.FS
