package catalog

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/htmlindex"

	"comic-gallery/internal/logging"
)

const (
	documentCatalog = "catalog"
	documentGroups  = "groups"

	// UnnamedGroup is used for group elements without a name attribute.
	UnnamedGroup = "unnamed_playlist"
)

var (
	itemElements  = []string{"comic", "item"}
	groupElement  = "playlist"
	memberElement = "content"
)

// ParseCatalog reads the item catalog: every direct child of the root named
// comic (or item) becomes an Item keyed by its name attribute.
func ParseCatalog(r io.Reader) CatalogResult {
	items, err := parseCatalog(r)
	if err != nil {
		failure := asParseError(documentCatalog, err)
		logging.Error("Failed to parse %s document: %v", documentCatalog, failure)
		return CatalogResult{Items: Items{}, Failure: failure}
	}
	return CatalogResult{Items: items}
}

// ParseCatalogFile opens path and parses it with ParseCatalog.
func ParseCatalogFile(path string) CatalogResult {
	f, err := os.Open(path)
	if err != nil {
		failure := &ParseError{Document: documentCatalog, Reason: "cannot open " + path, Err: err}
		logging.Error("Failed to parse %s document: %v", documentCatalog, failure)
		return CatalogResult{Items: Items{}, Failure: failure}
	}
	defer f.Close()
	return ParseCatalog(f)
}

// ParseGroups reads the grouping document: every playlist element at any
// depth becomes a group whose members are the name attributes of the content
// elements beneath it, in document order. A content element nested inside
// several groups is credited to each of them.
func ParseGroups(r io.Reader) GroupsResult {
	groups, err := parseGroups(r)
	if err != nil {
		failure := asParseError(documentGroups, err)
		logging.Error("Failed to parse %s document: %v", documentGroups, failure)
		return GroupsResult{Groups: Groups{}, Failure: failure}
	}
	return GroupsResult{Groups: groups}
}

// ParseGroupsFile opens path and parses it with ParseGroups.
func ParseGroupsFile(path string) GroupsResult {
	f, err := os.Open(path)
	if err != nil {
		failure := &ParseError{Document: documentGroups, Reason: "cannot open " + path, Err: err}
		logging.Error("Failed to parse %s document: %v", documentGroups, failure)
		return GroupsResult{Groups: Groups{}, Failure: failure}
	}
	defer f.Close()
	return ParseGroups(f)
}

func asParseError(document string, err error) *ParseError {
	var pe *ParseError
	if errors.As(err, &pe) {
		pe.Document = document
		return pe
	}
	return &ParseError{Document: document, Reason: "malformed XML", Err: err}
}

// walker iterates the element tokens of a single-rooted XML document.
type walker struct {
	dec      *xml.Decoder
	sawRoot  bool
	rootDone bool
}

func newWalker(r io.Reader) *walker {
	dec := xml.NewDecoder(r)
	dec.Strict = true
	dec.CharsetReader = charsetReader
	return &walker{dec: dec}
}

// charsetReader decodes documents declared in a legacy encoding such as
// windows-1251 or koi8-r.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", label, err)
	}
	return enc.NewDecoder().Reader(input), nil
}

// next returns the next start or end element. It returns io.EOF once the
// document is exhausted, and an error for content after the root element.
func (w *walker) next() (xml.Token, error) {
	for {
		tok, err := w.dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if !w.sawRoot {
					return nil, &ParseError{Reason: "document has no root element"}
				}
				return nil, io.EOF
			}
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if w.rootDone {
				return nil, &ParseError{Reason: "content after root element <" + t.Name.Local + ">"}
			}
			w.sawRoot = true
			return t.Copy(), nil
		case xml.EndElement:
			return t, nil
		case xml.CharData:
			if w.rootDone && len(strings.TrimSpace(string(t))) > 0 {
				return nil, &ParseError{Reason: "text after root element"}
			}
		}
	}
}

func attr(el xml.StartElement, names ...string) (string, bool) {
	for _, name := range names {
		for _, a := range el.Attr {
			if a.Name.Local == name {
				return a.Value, true
			}
		}
	}
	return "", false
}

func isOneOf(name string, set []string) bool {
	for _, s := range set {
		if name == s {
			return true
		}
	}
	return false
}

func parseCatalog(r io.Reader) (Items, error) {
	w := newWalker(r)
	items := Items{}
	depth := 0

	for {
		tok, err := w.next()
		if errors.Is(err, io.EOF) {
			return items, nil
		}
		if err != nil {
			return nil, err
		}

		switch el := tok.(type) {
		case xml.StartElement:
			depth++
			if depth != 2 || !isOneOf(el.Name.Local, itemElements) {
				continue
			}
			item, ok, err := itemFromElement(el)
			if err != nil {
				return nil, err
			}
			if ok {
				items[item.Name] = item
			}
		case xml.EndElement:
			depth--
			if depth == 0 {
				w.rootDone = true
			}
		}
	}
}

func itemFromElement(el xml.StartElement) (Item, bool, error) {
	name, _ := attr(el, "name")
	if name == "" {
		logging.Warn("Skipping <%s> element without a name attribute", el.Name.Local)
		return Item{}, false, nil
	}

	item := Item{Name: name, DisplayName: name}
	if display, ok := attr(el, "name_rus", "display_name"); ok {
		item.DisplayName = display
	}
	if tags, ok := attr(el, "tags"); ok {
		item.Tags = tags
	}
	if pics, ok := attr(el, "pics", "picture_count"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(pics))
		if err != nil || n < 0 {
			return Item{}, false, &ParseError{
				Reason: fmt.Sprintf("item %q has invalid picture count %q", name, pics),
				Err:    err,
			}
		}
		item.PictureCount = n
	}
	return item, true, nil
}

func parseGroups(r io.Reader) (Groups, error) {
	w := newWalker(r)
	groups := Groups{}

	// Open playlist elements, innermost last. Each frame remembers the depth
	// it was opened at so it can be closed on the matching end element.
	type frame struct {
		name    string
		depth   int
		members []string
	}
	var open, all []*frame
	depth := 0

	for {
		tok, err := w.next()
		if errors.Is(err, io.EOF) {
			// Later definitions win, in order of their start tags.
			for _, f := range all {
				groups[f.name] = f.members
			}
			return groups, nil
		}
		if err != nil {
			return nil, err
		}

		switch el := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 1 {
				continue
			}
			switch el.Name.Local {
			case groupElement:
				name, ok := attr(el, "name")
				if !ok {
					name = UnnamedGroup
				}
				f := &frame{name: name, depth: depth, members: []string{}}
				open = append(open, f)
				all = append(all, f)
			case memberElement:
				name, _ := attr(el, "name")
				if name == "" {
					continue
				}
				for _, f := range open {
					f.members = append(f.members, name)
				}
			}
		case xml.EndElement:
			if n := len(open); n > 0 && open[n-1].depth == depth {
				open = open[:n-1]
			}
			depth--
			if depth == 0 {
				w.rootDone = true
			}
		}
	}
}
