// Package web embeds the themes shipped with the binary.
//
// Layout: themes/<name>/templates/*.html (must define "layout") and
// themes/<name>/assets/** (served under /assets/).
package web

import "embed"

//go:embed themes
var FS embed.FS
