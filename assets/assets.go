// Package assets embeds the static files shipped with the binaries.
package assets

import "embed"

// FS holds the email templates and the SQL migrations.
//
//go:embed all:templates migrations
var FS embed.FS
