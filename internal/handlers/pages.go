package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"comic-gallery/internal/gallery"
	"comic-gallery/internal/logging"
)

// Random tag groups shown on the front page.
const (
	randomTags        = 3
	randomItemsPerTag = 2
)

type indexPage struct {
	Groups    []gallery.GroupSummary
	TagGroups []gallery.TagGroup
}

type itemPage struct {
	View    *gallery.ItemView
	Tags    string
	TagList []string
}

type searchPage struct {
	Query    string
	Message  string
	Response gallery.SearchResponse
}

type tagsPage struct {
	Tags []gallery.TagCount
}

type tagPage struct {
	Tag   string
	Items []gallery.TaggedItem
}

// Index lists every group with a preview, followed by a few random tags.
func (h *Handlers) Index(w http.ResponseWriter, _ *http.Request) {
	h.render(w, http.StatusOK, "index.html", indexPage{
		Groups:    h.engine.Groups(),
		TagGroups: h.engine.RandomTagGroups(randomTags, randomItemsPerTag),
	})
}

// RedirectComics sends the old listing URL to the front page.
func (h *Handlers) RedirectComics(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusFound)
}

// GroupPage shows the members of one group.
func (h *Handlers) GroupPage(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["group"]
	view, err := h.engine.Group(name)
	if err != nil {
		logging.Debug("Group page %q: %v", name, err)
		http.Error(w, "Group not found", http.StatusNotFound)
		return
	}
	h.render(w, http.StatusOK, "group.html", view)
}

// ItemPage shows every image of one item within a group.
func (h *Handlers) ItemPage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	view, err := h.engine.Item(vars["group"], vars["item"])
	if err != nil {
		logging.Debug("Item page %q/%q: %v", vars["group"], vars["item"], err)
		if errors.Is(err, gallery.ErrItemNotFound) {
			http.Error(w, "Item not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Group not found", http.StatusNotFound)
		return
	}

	page := itemPage{View: view, Tags: "N/A"}
	if view.Known {
		page.Tags = view.Tags
		if info, ok := h.engine.Snapshot().Item(view.Name); ok {
			page.TagList = info.TagList()
		}
	}
	h.render(w, http.StatusOK, "item.html", page)
}

// SearchPage runs a search from the q and type query parameters.
func (h *Handlers) SearchPage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	resp := h.engine.Search(query, gallery.ParseScope(r.URL.Query().Get("type")))
	h.render(w, http.StatusOK, "search.html", searchPage{
		Query:    query,
		Message:  searchMessage(resp),
		Response: resp,
	})
}

func searchMessage(resp gallery.SearchResponse) string {
	switch {
	case resp.NeedsQuery:
		return "Please enter a search query."
	case resp.Total() == 0:
		return fmt.Sprintf("Nothing found for '%s'.", resp.Query)
	default:
		return fmt.Sprintf("Search results for '%s' (type: %s):", resp.Query, resp.Scope)
	}
}

// TagsPage lists every distinct tag.
func (h *Handlers) TagsPage(w http.ResponseWriter, _ *http.Request) {
	h.render(w, http.StatusOK, "tags.html", tagsPage{Tags: h.engine.Tags()})
}

// TagPage lists the items carrying one tag.
func (h *Handlers) TagPage(w http.ResponseWriter, r *http.Request) {
	tag := mux.Vars(r)["tag"]
	h.render(w, http.StatusOK, "tag.html", tagPage{Tag: tag, Items: h.engine.ItemsByTag(tag)})
}
