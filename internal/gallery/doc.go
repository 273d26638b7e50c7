// Package gallery answers the read side of the gallery: group listings,
// item pages, search and tag browsing.
//
// Images are tied to items only by file name. The default PrefixAssociator
// treats every image in a group directory whose name starts with the item
// name (ignoring case) as belonging to that item, and falls back to all of
// the directory's images when none match. The association is recomputed on
// every call.
//
// Engine reads the catalog through catalog.Store snapshots and never holds
// a lock. An import running concurrently may leave group directories half
// populated for a moment; readers simply see fewer images.
package gallery
