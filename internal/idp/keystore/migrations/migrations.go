// Package migrations embeds the keystore schema so migrations ship inside
// the binary.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
