package catalog

import (
	"sort"
	"sync/atomic"
	"time"
)

// Snapshot is an immutable view of the catalog and groups. Callers must not
// modify the maps it exposes.
type Snapshot struct {
	Items    Items
	Groups   Groups
	LoadedAt time.Time

	groupNames []string
}

func newSnapshot(items Items, groups Groups, loadedAt time.Time) *Snapshot {
	if items == nil {
		items = Items{}
	}
	if groups == nil {
		groups = Groups{}
	}
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return &Snapshot{Items: items, Groups: groups, LoadedAt: loadedAt, groupNames: names}
}

// GroupNames returns the group names in sorted order.
func (s *Snapshot) GroupNames() []string {
	out := make([]string, len(s.groupNames))
	copy(out, s.groupNames)
	return out
}

// Members returns the ordered members of a group.
func (s *Snapshot) Members(group string) ([]string, bool) {
	members, ok := s.Groups[group]
	return members, ok
}

// Item looks up an item by name.
func (s *Snapshot) Item(name string) (Item, bool) {
	item, ok := s.Items[name]
	return item, ok
}

// DisplayName returns the item's display name, or name itself for members
// that are not in the catalog.
func (s *Snapshot) DisplayName(name string) string {
	if item, ok := s.Items[name]; ok && item.DisplayName != "" {
		return item.DisplayName
	}
	return name
}

// HasMember reports whether item is listed in group.
func (s *Snapshot) HasMember(group, item string) bool {
	for _, m := range s.Groups[group] {
		if m == item {
			return true
		}
	}
	return false
}

// Store holds the current snapshot. Reads are lock-free; Replace swaps in a
// new snapshot atomically so readers see either the old or the new one.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore returns a store holding an empty snapshot.
func NewStore() *Store {
	s := &Store{}
	s.current.Store(newSnapshot(nil, nil, time.Time{}))
	return s
}

// Snapshot returns the current snapshot.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Replace installs a snapshot built from items and groups and returns it.
func (s *Store) Replace(items Items, groups Groups) *Snapshot {
	snap := newSnapshot(items, groups, time.Now())
	s.current.Store(snap)
	return snap
}
