package gallery

import (
	"sort"
	"strings"

	"comic-gallery/internal/catalog"
	"comic-gallery/internal/metrics"
)

// Scope restricts what a search looks at.
type Scope string

const (
	ScopeAll      Scope = "all"
	ScopeGroup    Scope = "group"
	ScopeTag      Scope = "tag"
	ScopeItemName Scope = "item_name"
)

// ParseScope maps a request value to a Scope. The older names "playlist"
// and "comic_name" are accepted; anything unrecognized searches everything.
func ParseScope(s string) Scope {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "group", "playlist":
		return ScopeGroup
	case "tag":
		return ScopeTag
	case "item_name", "comic_name", "item", "name":
		return ScopeItemName
	default:
		return ScopeAll
	}
}

func (s Scope) includes(other Scope) bool {
	return s == ScopeAll || s == other
}

// GroupResult is a group matched by name.
type GroupResult struct {
	Name    string `json:"name"`
	Preview string `json:"preview,omitempty"`
}

// ItemResult is an item matched by tag or name, listed once per group that
// contains it.
type ItemResult struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Group       string `json:"group"`
	Preview     string `json:"preview,omitempty"`
}

// SearchResponse holds group results first, then item results.
type SearchResponse struct {
	Query      string        `json:"query"`
	Scope      Scope         `json:"scope"`
	Groups     []GroupResult `json:"groups"`
	Items      []ItemResult  `json:"items"`
	NeedsQuery bool          `json:"needsQuery"`
}

// Total is the number of results of both kinds.
func (r SearchResponse) Total() int {
	return len(r.Groups) + len(r.Items)
}

// Search matches query case-insensitively as a substring of group names,
// item tags, or item names and display names, depending on scope. Results
// only include groups whose image directory exists. Groups are sorted by
// name and items by display name, with duplicate (item, group) pairs removed.
func (e *Engine) Search(query string, scope Scope) SearchResponse {
	scope = ParseScope(string(scope))
	q := strings.ToLower(strings.TrimSpace(query))
	resp := SearchResponse{
		Query:  q,
		Scope:  scope,
		Groups: []GroupResult{},
		Items:  []ItemResult{},
	}
	if q == "" {
		resp.NeedsQuery = true
		return resp
	}

	snap := e.store.Snapshot()
	groupNames := snap.GroupNames()
	dirs := make(map[string]string, len(groupNames))
	for _, name := range groupNames {
		if dir, ok := e.groupDirIfExists(name); ok {
			dirs[name] = dir
		}
	}

	if scope.includes(ScopeGroup) {
		for _, name := range groupNames {
			dir, ok := dirs[name]
			if !ok || !strings.Contains(strings.ToLower(name), q) {
				continue
			}
			resp.Groups = append(resp.Groups, GroupResult{
				Name:    name,
				Preview: e.groupPreview(dir, snap.Groups[name]),
			})
		}
	}

	var items []ItemResult
	for _, name := range sortedItemNames(snap.Items) {
		item := snap.Items[name]
		if !itemMatches(item, q, scope) {
			continue
		}
		for _, group := range groupNames {
			dir, ok := dirs[group]
			if !ok || !snap.HasMember(group, name) {
				continue
			}
			items = append(items, ItemResult{
				Name:        name,
				DisplayName: snap.DisplayName(name),
				Group:       group,
				Preview:     firstOrEmpty(e.ImagesForItem(dir, name)),
			})
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].DisplayName != items[j].DisplayName {
			return items[i].DisplayName < items[j].DisplayName
		}
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].Group < items[j].Group
	})
	resp.Items = dedupItems(items)

	metrics.SearchQueriesTotal.WithLabelValues(string(scope)).Inc()
	metrics.SearchResults.WithLabelValues(string(scope)).Observe(float64(resp.Total()))
	return resp
}

func itemMatches(item catalog.Item, q string, scope Scope) bool {
	if scope.includes(ScopeTag) && strings.Contains(strings.ToLower(item.Tags), q) {
		return true
	}
	if scope.includes(ScopeItemName) {
		if strings.Contains(strings.ToLower(item.Name), q) ||
			strings.Contains(strings.ToLower(item.DisplayName), q) {
			return true
		}
	}
	return false
}

func dedupItems(items []ItemResult) []ItemResult {
	type key struct{ name, group string }
	seen := make(map[key]struct{}, len(items))
	out := make([]ItemResult, 0, len(items))
	for _, it := range items {
		k := key{it.Name, it.Group}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, it)
	}
	return out
}

func sortedItemNames(items catalog.Items) []string {
	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
