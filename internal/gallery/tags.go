package gallery

import (
	"sort"

	"comic-gallery/internal/catalog"
)

// TagCount is a distinct tag and how many items carry it.
type TagCount struct {
	Tag   string `json:"tag"`
	Items int    `json:"items"`
}

// TaggedItem is an item carrying a tag, with the groups that list it.
type TaggedItem struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"displayName"`
	Groups      []string `json:"groups"`
	Preview     string   `json:"preview,omitempty"`
	// PreviewGroup is the group directory Preview was taken from.
	PreviewGroup string `json:"previewGroup,omitempty"`
}

// TagGroup is a tag with a few of its items.
type TagGroup struct {
	Tag   string       `json:"tag"`
	Items []TaggedItem `json:"items"`
}

// Tags returns every distinct tag in the catalog,
// sorted.
func (e *Engine) Tags() []TagCount {
	snap := e.store.Snapshot()
	counts := make(map[string]int)
	for _, item := range snap.Items {
		seen := make(map[string]struct{})
		for _, tag := range item.TagList() {
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			counts[tag]++
		}
	}

	out := make([]TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, TagCount{Tag: tag, Items: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

// ItemsByTag returns the items whose tag list contains tag exactly, sorted
// by display name.
func (e *Engine) ItemsByTag(tag string) []TaggedItem {
	snap := e.store.Snapshot()
	out := []TaggedItem{}
	for _, name := range sortedItemNames(snap.Items) {
		item := snap.Items[name]
		if !item.HasTag(tag) {
			continue
		}
		out = append(out, e.taggedItem(snap, item))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	return out
}

func (e *Engine) taggedItem(snap *catalog.Snapshot, item catalog.Item) TaggedItem {
	ti := TaggedItem{
		Name:        item.Name,
		DisplayName: snap.DisplayName(item.Name),
		Groups:      []string{},
	}
	for _, group := range snap.GroupNames() {
		if !snap.HasMember(group, item.Name) {
			continue
		}
		ti.Groups = append(ti.Groups, group)
		if ti.Preview != "" {
			continue
		}
		if dir, ok := e.groupDirIfExists(group); ok {
			ti.Preview = firstOrEmpty(e.ImagesForItem(dir, item.Name))
			if ti.Preview != "" {
				ti.PreviewGroup = group
			}
		}
	}
	return ti
}

// RandomTagGroups picks up to n random tags and lists up to perTag items
// for each.
func (e *Engine) RandomTagGroups(n, perTag int) []TagGroup {
	if n <= 0 || perTag <= 0 {
		return []TagGroup{}
	}
	tags := e.Tags()
	e.shuffle(len(tags), func(i, j int) { tags[i], tags[j] = tags[j], tags[i] })
	if len(tags) > n {
		tags = tags[:n]
	}

	out := make([]TagGroup, 0, len(tags))
	for _, tc := range tags {
		items := e.ItemsByTag(tc.Tag)
		if len(items) == 0 {
			continue
		}
		if len(items) > perTag {
			items = items[:perTag]
		}
		out = append(out, TagGroup{Tag: tc.Tag, Items: items})
	}
	return out
}
