// Package scripts embeds the default Risor scripts run during import.
package scripts

import "embed"

// FS holds the embedded .risor scripts, rooted at this directory.
//
//go:embed *.risor
var FS embed.FS
