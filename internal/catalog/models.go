package catalog

import (
	"strings"
	"unicode"
)

// Item is one catalog entry.
type Item struct {
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	PictureCount int    `json:"pictureCount"`
	Tags         string `json:"tags"`
}

// TagList splits the raw tag string on commas and whitespace.
func (i Item) TagList() []string {
	return strings.FieldsFunc(i.Tags, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})
}

// HasTag reports whether tag is one of the item's tags.
func (i Item) HasTag(tag string) bool {
	for _, t := range i.TagList() {
		if t == tag {
			return true
		}
	}
	return false
}

// Items maps item name to item.
type Items map[string]Item

// Groups maps group name to its ordered member item names.
type Groups map[string][]string

// ParseError describes why a document could not be parsed.
type ParseError struct {
	Document string
	Reason   string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return e.Document + ": " + e.Reason + ": " + e.Err.Error()
	}
	return e.Document + ": " + e.Reason
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// CatalogResult is the outcome of ParseCatalog. Exactly one of Items or
// Failure is meaningful: on failure Items is empty, never partial.
type CatalogResult struct {
	Items   Items
	Failure *ParseError
}

// OK reports whether the catalog parsed.
func (r CatalogResult) OK() bool {
	return r.Failure == nil
}

// Err returns the failure as an error, or nil.
func (r CatalogResult) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}

// GroupsResult is the outcome of ParseGroups.
type GroupsResult struct {
	Groups  Groups
	Failure *ParseError
}

// OK reports whether the groups document parsed.
func (r GroupsResult) OK() bool {
	return r.Failure == nil
}

// Err returns the failure as an error, or nil.
func (r GroupsResult) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}
