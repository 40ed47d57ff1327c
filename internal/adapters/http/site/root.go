// Package site serves the embedded landing page.
package site

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"
)

// Paths served by the landing page.
const (
	IndexPath    = "/static/index.html"
	staticPrefix = "/static/"
)

// ErrServe is wrapped by failures to read embedded pages.
var ErrServe = errors.New("site serve failed")

// Register attaches the root redirect and the static file routes to mux.
func Register(mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	root := NewRootHandler()
	mux.HandleFunc("GET /{$}", root.HandleRoot)
	mux.HandleFunc("GET "+IndexPath, root.HandleIndex)
	mux.Handle("GET "+staticPrefix, http.StripPrefix(staticPrefix, http.FileServer(FS())))
}

// RootHandler handles the root path and the landing page.
type RootHandler struct {
	files   fs.FS
	started time.Time
}

// NewRootHandler creates a new root handler.
func NewRootHandler() *RootHandler {
	return &RootHandler{files: Static(), started: time.Now()}
}

// HandleRoot handles GET / by redirecting to the landing page.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, IndexPath, http.StatusTemporaryRedirect)
}

// HandleIndex serves index.html directly. http.FileServer would redirect
// the /index.html suffix to the directory.
func (h *RootHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := h.page("index.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeContent(w, r, "index.html", h.started, bytes.NewReader(page))
}

func (h *RootHandler) page(name string) ([]byte, error) {
	b, err := fs.ReadFile(h.files, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrServe, name, err)
	}
	return b, nil
}
