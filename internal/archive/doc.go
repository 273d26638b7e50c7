// Package archive extracts uploaded zip archives without letting any entry
// write outside the destination directory.
//
// Extraction runs in two phases. First every entry name is resolved against
// the destination and checked; an absolute name, a drive-letter name, or one
// whose ".." segments climb above the destination aborts the whole call with
// an *UnsafeEntryError before anything touches the disk. The same pass
// tracks which paths are files and which are directories; a file entry naming
// the destination itself, or a path that would have to be both, aborts with a
// *ConflictingEntryError. Only then are the entries written.
//
// Entries with an empty name are skipped. Backslashes in entry names are
// treated as separators.
package archive
