package handlers

import (
	"net/http"
	"os"
	"strings"

	"github.com/gorilla/mux"

	"comic-gallery/internal/filesystem"
	"comic-gallery/internal/logging"
	"comic-gallery/internal/mediatypes"
)

// ServeImage serves one stored image from a group directory. Only plain
// image file names directly inside an existing group directory are served.
func (h *Handlers) ServeImage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	group, file := vars["group"], vars["file"]

	if file == "" || strings.ContainsAny(file, `/\`) || !mediatypes.IsImage(file) {
		http.NotFound(w, r)
		return
	}

	groupDir, err := filesystem.ChildDir(h.imagesDir, group)
	if err != nil {
		logging.Warn("Rejected image request for group %q: %v", group, err)
		http.NotFound(w, r)
		return
	}
	fullPath, err := filesystem.ChildDir(groupDir, file)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	f, err := os.Open(fullPath)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", mediatypes.GetMimeType(file))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeContent(w, r, file, info.ModTime(), f)
}
