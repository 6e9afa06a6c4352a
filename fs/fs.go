package appfs

import "embed"

// FS embeds runtime assets: goose SQL migrations and email templates.
//
//go:embed migrations assets/templates/email
var FS embed.FS
