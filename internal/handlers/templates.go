package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"comic-gallery/internal/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"index.html",
	"group.html",
	"item.html",
	"search.html",
	"tags.html",
	"tag.html",
	"upload.html",
	"result.html",
}

var templateFuncs = template.FuncMap{
	"imageURL": imageURL,
	"groupURL": groupURL,
	"itemURL":  itemURL,
	"tagURL":   tagURL,
}

// pageSet holds one template per page, each parsed together with the layout.
type pageSet struct {
	pages map[string]*template.Template
}

func loadPages() (*pageSet, error) {
	set := &pageSet{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(templateFuncs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		set.pages[name] = t
	}
	return set, nil
}

func mustLoadPages() *pageSet {
	set, err := loadPages()
	if err != nil {
		panic(err)
	}
	return set
}

func (s *pageSet) execute(buf *bytes.Buffer, name string, data interface{}) error {
	t, ok := s.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(buf, "layout", data)
}

// render writes a full page. The page is rendered into a buffer first so a
// template error still produces a clean 500.
func (h *Handlers) render(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := h.pages.execute(&buf, name, data); err != nil {
		logging.Error("Failed to render %s: %v", name, err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		logging.Debug("Failed to write %s: %v", name, err)
	}
}

func imageURL(group, file string) string {
	return "/images/" + url.PathEscape(group) + "/" + url.PathEscape(file)
}

func groupURL(group string) string {
	return "/comics/" + url.PathEscape(group)
}

func itemURL(group, item string) string {
	return groupURL(group) + "/" + url.PathEscape(item)
}

func tagURL(tag string) string {
	return "/tags/" + url.PathEscape(tag)
}
