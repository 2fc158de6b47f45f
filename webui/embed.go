// Package webui exposes the embedded page templates and static assets.
// It lives at the module root so it can embed the sibling "web/" directory.
package webui

import (
	"embed"
	"io/fs"
)

// FS is the embedded web directory tree: web/templates holds the
// html/template sources and web/static the stylesheet.
//
//go:embed web
var FS embed.FS

// Static returns the static asset tree rooted at web/static.
func Static() fs.FS {
	sub, err := fs.Sub(FS, "web/static")
	if err != nil {
		panic("webui: web/static sub-fs failed: " + err.Error())
	}
	return sub
}
