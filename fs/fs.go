// Package appfs embeds the files shipped inside the binaries: SQL migrations and email templates.
package appfs

import "embed"

//go:embed migrations all:templates
var FS embed.FS
