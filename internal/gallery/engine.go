package gallery

import (
	"errors"
	"math/rand"
	"os"

	"comic-gallery/internal/catalog"
	"comic-gallery/internal/filesystem"
)

var (
	// ErrGroupNotFound is returned for unknown groups and groups whose image
	// directory does not exist.
	ErrGroupNotFound = errors.New("group not found")
	// ErrItemNotFound is returned when an item is not a member of the group.
	ErrItemNotFound = errors.New("item not found in group")
)

// GroupSummary is one entry of the group listing.
type GroupSummary struct {
	Name    string `json:"name"`
	Preview string `json:"preview,omitempty"`
	Members int    `json:"members"`
}

// MemberView is one member of a group page.
type MemberView struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Preview     string `json:"preview,omitempty"`
	Known       bool   `json:"known"`
}

// GroupView is the content of a single group.
type GroupView struct {
	Name    string       `json:"name"`
	Members []MemberView `json:"members"`
}

// ItemView is the detail of one item inside a group.
type ItemView struct {
	Group        string   `json:"group"`
	Name         string   `json:"name"`
	DisplayName  string   `json:"displayName"`
	Tags         string   `json:"tags"`
	PictureCount int      `json:"pictureCount"`
	Known        bool     `json:"known"`
	Images       []string `json:"images"`
}

// Engine answers gallery queries from the current catalog snapshot and the
// per-group image directories.
type Engine struct {
	store     *catalog.Store
	imagesDir string
	assoc     Associator
	shuffle   func(n int, swap func(i, j int))
}

// Option configures an Engine.
type Option func(*Engine)

// WithAssociator replaces the default prefix heuristic.
func WithAssociator(a Associator) Option {
	return func(e *Engine) {
		if a != nil {
			e.assoc = a
		}
	}
}

// WithShuffle replaces the shuffle used for random tag groups.
func WithShuffle(shuffle func(n int, swap func(i, j int))) Option {
	return func(e *Engine) {
		if shuffle != nil {
			e.shuffle = shuffle
		}
	}
}

// NewEngine creates an engine reading from store, with group image
// directories under imagesDir.
func NewEngine(store *catalog.Store, imagesDir string, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		imagesDir: imagesDir,
		assoc:     PrefixAssociator{},
		shuffle:   rand.Shuffle,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Snapshot returns the snapshot the engine currently reads.
func (e *Engine) Snapshot() *catalog.Snapshot {
	return e.store.Snapshot()
}

// ImagesForItem returns the images associated with itemName in groupDir.
func (e *Engine) ImagesForItem(groupDir, itemName string) []string {
	return e.assoc.ImagesForItem(groupDir, itemName)
}

// GroupDir returns the image directory for group, or an error when the name
// is not a single path element directly below the images root.
func (e *Engine) GroupDir(group string) (string, error) {
	return filesystem.ChildDir(e.imagesDir, group)
}

// groupDirIfExists returns the group's directory when it exists on disk.
func (e *Engine) groupDirIfExists(group string) (string, bool) {
	dir, err := e.GroupDir(group)
	if err != nil {
		return "", false
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return dir, true
}

// groupPreview is the first image of the group's first member, falling back
// to the first image in the directory.
func (e *Engine) groupPreview(dir string, members []string) string {
	if len(members) > 0 {
		return firstOrEmpty(e.ImagesForItem(dir, members[0]))
	}
	return firstOrEmpty(listImages(dir))
}

// Groups lists every group with an image directory, sorted by name.
func (e *Engine) Groups() []GroupSummary {
	snap := e.store.Snapshot()
	out := make([]GroupSummary, 0, len(snap.Groups))
	for _, name := range snap.GroupNames() {
		dir, ok := e.groupDirIfExists(name)
		if !ok {
			continue
		}
		members := snap.Groups[name]
		out = append(out, GroupSummary{
			Name:    name,
			Preview: e.groupPreview(dir, members),
			Members: len(members),
		})
	}
	return out
}

// Group returns the members of a group in document order.
func (e *Engine) Group(name string) (*GroupView, error) {
	snap := e.store.Snapshot()
	members, ok := snap.Members(name)
	if !ok {
		return nil, ErrGroupNotFound
	}
	dir, ok := e.groupDirIfExists(name)
	if !ok {
		return nil, ErrGroupNotFound
	}

	view := &GroupView{Name: name, Members: make([]MemberView, 0, len(members))}
	for _, member := range members {
		_, known := snap.Item(member)
		view.Members = append(view.Members, MemberView{
			Name:        member,
			DisplayName: snap.DisplayName(member),
			Preview:     firstOrEmpty(e.ImagesForItem(dir, member)),
			Known:       known,
		})
	}
	return view, nil
}

// Item returns the detail view of item within group.
func (e *Engine) Item(group, item string) (*ItemView, error) {
	snap := e.store.Snapshot()
	if _, ok := snap.Members(group); !ok {
		return nil, ErrGroupNotFound
	}
	if !snap.HasMember(group, item) {
		return nil, ErrItemNotFound
	}
	dir, ok := e.groupDirIfExists(group)
	if !ok {
		return nil, ErrGroupNotFound
	}

	view := &ItemView{
		Group:       group,
		Name:        item,
		DisplayName: snap.DisplayName(item),
		Images:      e.ImagesForItem(dir, item),
	}
	if info, ok := snap.Item(item); ok {
		view.Known = true
		view.Tags = info.Tags
		view.PictureCount = info.PictureCount
	}
	return view, nil
}
