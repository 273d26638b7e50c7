// Package importer turns an upload into a browsable gallery.
//
// An upload is three files: the item catalog, the group document and a zip
// archive of images. Import saves them under uploads/, extracts the archive
// into uploads/extracted/, parses both documents, swaps the catalog store
// and copies every extracted image into images/<group>/ for each group.
// Which images belong to which item is decided later, at read time, by the
// gallery package.
//
// Only one import runs at a time. Each run gets a UUID and is recorded in
// the import history when one is configured.
package importer
