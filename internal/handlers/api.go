package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"comic-gallery/internal/database"
	"comic-gallery/internal/gallery"
	"comic-gallery/internal/logging"
)

const defaultImportsLimit = 20

// TagResponse is the JSON form of a tag page.
type TagResponse struct {
	Tag   string               `json:"tag"`
	Items []gallery.TaggedItem `json:"items"`
}

// StatsResponse summarizes the loaded gallery.
type StatsResponse struct {
	Items    int        `json:"items"`
	Groups   int        `json:"groups"`
	Tags     int        `json:"tags"`
	Imports  int        `json:"imports"`
	LoadedAt *time.Time `json:"loadedAt,omitempty"`
}

// ListGroups returns every group with an image directory.
func (h *Handlers) ListGroups(w http.ResponseWriter, _ *http.Request) {
	writeJSONResponse(w, http.StatusOK, h.engine.Groups())
}

// GetGroup returns the members of one group.
func (h *Handlers) GetGroup(w http.ResponseWriter, r *http.Request) {
	view, err := h.engine.Group(mux.Vars(r)["group"])
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSONResponse(w, http.StatusOK, view)
}

// GetItem returns one item of a group with its images.
func (h *Handlers) GetItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	view, err := h.engine.Item(vars["group"], vars["item"])
	switch {
	case errors.Is(err, gallery.ErrGroupNotFound), errors.Is(err, gallery.ErrItemNotFound):
		writeJSONError(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		writeJSONError(w, "failed to load item", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, view)
}

// Search answers the same query as the search page.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	resp := h.engine.Search(r.URL.Query().Get("q"), gallery.ParseScope(r.URL.Query().Get("type")))
	writeJSONResponse(w, http.StatusOK, resp)
}

// ListTags returns every distinct tag with its item count.
func (h *Handlers) ListTags(w http.ResponseWriter, _ *http.Request) {
	writeJSONResponse(w, http.StatusOK, h.engine.Tags())
}

// GetTag returns the items carrying a tag.
func (h *Handlers) GetTag(w http.ResponseWriter, r *http.Request) {
	tag := mux.Vars(r)["tag"]
	writeJSONResponse(w, http.StatusOK, TagResponse{Tag: tag, Items: h.engine.ItemsByTag(tag)})
}

// ListImports returns the most recent import runs, newest first.
func (h *Handlers) ListImports(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeJSONResponse(w, http.StatusOK, []database.ImportRecord{})
		return
	}
	records, err := h.history.RecentImports(r.Context(), queryInt(r, "limit", defaultImportsLimit))
	if err != nil {
		logging.Error("Failed to list imports: %v", err)
		writeJSONError(w, "failed to list imports", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []database.ImportRecord{}
	}
	writeJSONResponse(w, http.StatusOK, records)
}

// GetStats returns catalog and import counts.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	stats := StatsResponse{
		Items:  len(snap.Items),
		Groups: len(snap.Groups),
		Tags:   len(h.engine.Tags()),
	}
	if !snap.LoadedAt.IsZero() {
		loaded := snap.LoadedAt
		stats.LoadedAt = &loaded
	}
	if h.history != nil {
		n, err := h.history.CountImports(r.Context())
		if err != nil {
			logging.Warn("Failed to count imports: %v", err)
		}
		stats.Imports = n
	}
	writeJSONResponse(w, http.StatusOK, stats)
}
