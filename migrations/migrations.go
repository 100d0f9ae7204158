// Package migrations embeds the goose SQL migrations for the Baidu
// OAuth2 schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
