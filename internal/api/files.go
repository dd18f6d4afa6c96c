package api

import (
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/inventory"
)

// FilesHandler serves downloads from the files root. It backs the
// /files/{path} references the link rewriter embeds in source cards.
type FilesHandler struct {
	store inventory.Provider
}

// NewFilesHandler creates a download handler over the given store.
func NewFilesHandler(store inventory.Provider) *FilesHandler {
	return &FilesHandler{store: store}
}

// Serve handles GET /files/*. The wildcard is the root-relative path;
// encoded characters (e.g. %20) are decoded before resolution and anything
// escaping the files root is rejected.
func (h *FilesHandler) Serve(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}
	if raw == "" {
		http.Error(w, "file path is required", http.StatusBadRequest)
		return
	}

	abs, err := h.store.Resolve(raw)
	if err != nil {
		http.Error(w, "invalid file path", http.StatusBadRequest)
		return
	}
	info, statErr := os.Stat(abs)
	if statErr != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}
