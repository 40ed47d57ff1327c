package site

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var staticFS embed.FS

// Static returns the embedded landing page files rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// Unreachable while the embed directive names static.
		return staticFS
	}
	return sub
}

// FS returns an http.FileSystem for the embedded landing page.
func FS() http.FileSystem {
	return http.FS(Static())
}
