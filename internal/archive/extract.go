package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"comic-gallery/internal/filesystem"
	"comic-gallery/internal/logging"
)

// Result summarizes a successful extraction.
type Result struct {
	Files   int   `json:"files"`
	Dirs    int   `json:"dirs"`
	Bytes   int64 `json:"bytes"`
	Skipped int   `json:"skipped"`
}

// UnsafeEntryError reports an archive entry whose target path would land
// outside the destination directory. Nothing has been written when it is
// returned.
type UnsafeEntryError struct {
	Name string
}

func (e *UnsafeEntryError) Error() string {
	return fmt.Sprintf("unsafe archive entry: %q", e.Name)
}

// ConflictingEntryError reports an entry that cannot be written because its
// path needs to be both a file and a directory, either within the archive or
// because a file entry names the destination itself. Like UnsafeEntryError,
// it is returned before anything is written.
type ConflictingEntryError struct {
	Name string
	// Other is the earlier entry it collides with, empty for the destination.
	Other string
}

func (e *ConflictingEntryError) Error() string {
	if e.Other == "" {
		return fmt.Sprintf("archive entry %q is not a file path", e.Name)
	}
	return fmt.Sprintf("archive entry %q conflicts with %q", e.Name, e.Other)
}

// Extract unpacks the zip archive at archivePath into destDir.
func Extract(archivePath, destDir string) (*Result, error) {
	rc, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", archivePath, err)
	}
	defer rc.Close()

	return extractFiles(rc.File, destDir)
}

// ExtractReader unpacks a zip archive held in r into destDir.
func ExtractReader(r io.ReaderAt, size int64, destDir string) (*Result, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}
	return extractFiles(zr.File, destDir)
}

type plannedEntry struct {
	file   *zip.File
	target string
	isDir  bool
}

func extractFiles(files []*zip.File, destDir string) (*Result, error) {
	absDest, err := filepath.Abs(destDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve destination %s: %w", destDir, err)
	}

	// Every entry is checked before the first byte is written.
	plan := make([]plannedEntry, 0, len(files))
	layout := newLayout(absDest)
	result := &Result{}
	for _, f := range files {
		if f.Name == "" {
			result.Skipped++
			continue
		}
		target, err := resolveEntry(absDest, f.Name)
		if err != nil {
			return nil, err
		}
		entry := plannedEntry{
			file:   f,
			target: target,
			isDir:  strings.HasSuffix(f.Name, "/") || f.FileInfo().IsDir(),
		}
		if err := layout.add(entry); err != nil {
			return nil, err
		}
		plan = append(plan, entry)
	}

	if err := os.MkdirAll(absDest, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create destination %s: %w", absDest, err)
	}

	for _, entry := range plan {
		if entry.isDir {
			if err := os.MkdirAll(entry.target, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create directory for %q: %w", entry.file.Name, err)
			}
			result.Dirs++
			continue
		}

		n, err := writeEntry(entry)
		if err != nil {
			return nil, err
		}
		result.Files++
		result.Bytes += n
	}

	logging.Debug("Extracted %d files and %d directories (%d bytes) into %s",
		result.Files, result.Dirs, result.Bytes, absDest)
	return result, nil
}

// resolveEntry maps an entry name to its absolute target under absDest.
// Names are split on "/" after converting backslashes, so archives built on
// Windows resolve the same way.
func resolveEntry(absDest, name string) (string, error) {
	normalized := strings.ReplaceAll(name, "\\", "/")
	if strings.HasPrefix(normalized, "/") || filepath.IsAbs(name) || hasDriveLetter(normalized) {
		return "", &UnsafeEntryError{Name: name}
	}

	parts := append([]string{absDest}, strings.Split(normalized, "/")...)
	target, err := filepath.Abs(filepath.Join(parts...))
	if err != nil {
		return "", fmt.Errorf("failed to resolve entry %q: %w", name, err)
	}

	if !filesystem.IsWithin(absDest, target) {
		return "", &UnsafeEntryError{Name: name}
	}
	return target, nil
}

// layout tracks which planned paths are files and which are directories,
// so entries that would need a path to be both are caught before writing.
type layout struct {
	root  string
	files map[string]string // target -> entry name
	dirs  map[string]string // target -> first entry needing it
}

func newLayout(root string) *layout {
	return &layout{
		root:  root,
		files: make(map[string]string),
		dirs:  map[string]string{root: ""},
	}
}

func (l *layout) add(entry plannedEntry) error {
	name := entry.file.Name
	if !entry.isDir && entry.target == l.root {
		return &ConflictingEntryError{Name: name}
	}

	// Every ancestor below the root must be a directory.
	for dir := filepath.Dir(entry.target); dir != l.root && filesystem.IsWithin(l.root, dir); dir = filepath.Dir(dir) {
		if other, ok := l.files[dir]; ok {
			return &ConflictingEntryError{Name: name, Other: other}
		}
		if _, ok := l.dirs[dir]; !ok {
			l.dirs[dir] = name
		}
	}

	if entry.isDir {
		if other, ok := l.files[entry.target]; ok {
			return &ConflictingEntryError{Name: name, Other: other}
		}
		if _, ok := l.dirs[entry.target]; !ok {
			l.dirs[entry.target] = name
		}
		return nil
	}

	if other, ok := l.dirs[entry.target]; ok {
		return &ConflictingEntryError{Name: name, Other: other}
	}
	// A repeated file name overwrites, as sequential extraction would.
	l.files[entry.target] = name
	return nil
}

func hasDriveLetter(name string) bool {
	if len(name) < 2 || name[1] != ':' {
		return false
	}
	c := name[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// writeEntry writes one file entry. Symlink entries are written as regular
// files holding the link text; the extractor never creates links.
func writeEntry(entry plannedEntry) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(entry.target), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create parent for %q: %w", entry.file.Name, err)
	}

	src, err := entry.file.Open()
	if err != nil {
		return 0, fmt.Errorf("failed to open entry %q: %w", entry.file.Name, err)
	}
	defer src.Close()

	n, err := filesystem.WriteFile(entry.target, src)
	if err != nil {
		return n, fmt.Errorf("failed to write entry %q: %w", entry.file.Name, err)
	}
	return n, nil
}
