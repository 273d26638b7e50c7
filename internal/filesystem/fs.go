package filesystem

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrPathEscape is returned when a relative path resolves outside its root.
var ErrPathEscape = errors.New("path escapes root")

// ErrNotChildName is returned by ChildDir for names that are not exactly one
// path element.
var ErrNotChildName = errors.New("not a single path element")

// VolumeResolver maps file paths to known volume names for metric labeling.
// It uses longest-prefix matching on absolute paths.
type VolumeResolver struct {
	// mounts is sorted by path length descending for longest-prefix matching
	mounts []volumeMount
}

type volumeMount struct {
	path string // absolute path with trailing separator
	name string
}

// NewVolumeResolver creates a resolver from a map of volume name to path:
//
//	NewVolumeResolver(map[string]string{
//	    "uploads": "/data/uploads",
//	    "images":  "/data/images",
//	})
func NewVolumeResolver(volumes map[string]string) *VolumeResolver {
	mounts := make([]volumeMount, 0, len(volumes))
	for name, path := range volumes {
		absPath, err := filepath.Abs(path)
		if err != nil {
			absPath = path
		}
		if !strings.HasSuffix(absPath, string(filepath.Separator)) {
			absPath += string(filepath.Separator)
		}
		mounts = append(mounts, volumeMount{path: absPath, name: name})
	}

	sort.Slice(mounts, func(i, j int) bool {
		return len(mounts[i].path) > len(mounts[j].path)
	})

	return &VolumeResolver{mounts: mounts}
}

// Resolve returns the volume name for a given file path.
// Returns "unknown" if the path doesn't match any configured volume.
func (vr *VolumeResolver) Resolve(path string) string {
	if vr == nil {
		return "unknown"
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "unknown"
	}

	for _, mount := range vr.mounts {
		if strings.HasPrefix(absPath+string(filepath.Separator), mount.path) {
			return mount.name
		}
	}

	return "unknown"
}

// defaultResolver is the package-level resolver set at startup
var defaultResolver *VolumeResolver

// SetDefaultVolumeResolver sets the package-level volume resolver.
func SetDefaultVolumeResolver(vr *VolumeResolver) {
	defaultResolver = vr
}

func record(path, operation string, start time.Time, err error) {
	if defaultObserver == nil {
		return
	}
	defaultObserver.ObserveOperation(defaultResolver.Resolve(path), operation,
		time.Since(start).Seconds(), err)
}

// JoinWithinRoot joins a single untrusted name (or slash-separated relative
// path) onto root and returns the cleaned absolute result. It fails with
// ErrPathEscape when the result would not be root itself or below it.
func JoinWithinRoot(root, rel string) (string, error) {
	if strings.Contains(rel, "\x00") {
		return "", fmt.Errorf("invalid path %q: %w", rel, ErrPathEscape)
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root %s: %w", root, err)
	}

	rel = strings.ReplaceAll(rel, "\\", "/")
	joined := filepath.Join(rootAbs, filepath.FromSlash(rel))

	if !IsWithin(rootAbs, joined) {
		return "", fmt.Errorf("%q: %w", rel, ErrPathEscape)
	}
	return joined, nil
}

// ChildDir returns the entry named name directly below root. The name must
// be a single path element. Names that escape root fail with ErrPathEscape.
// Names that resolve to root itself or only clean to one element (such as
// "x/.." or "a/../b") fail with ErrNotChildName. Distinct accepted names
// always map to distinct paths.
func ChildDir(root, name string) (string, error) {
	joined, err := JoinWithinRoot(root, name)
	if err != nil {
		return "", err
	}
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root %s: %w", root, err)
	}
	if joined == rootAbs || filepath.Dir(joined) != rootAbs || filepath.Base(joined) != name {
		return "", fmt.Errorf("%q: %w", name, ErrNotChildName)
	}
	return joined, nil
}

// IsWithin reports whether target equals root or is a descendant of it.
// Both paths must already be absolute and clean.
func IsWithin(root, target string) bool {
	if target == root {
		return true
	}
	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(target, prefix)
}

// ListFiles returns the names of the regular entries in dir, sorted.
// Subdirectories are left out.
func ListFiles(dir string) (names []string, err error) {
	start := time.Now()
	defer func() { record(dir, "readdir", start, err) }()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names = make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// ResetDir removes path with everything beneath it and recreates it empty.
func ResetDir(path string) (err error) {
	start := time.Now()
	defer func() { record(path, "reset", start, err) }()

	if err = os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	if err = os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	return nil
}

// WriteFile streams r into a new file at dst and returns the byte count.
func WriteFile(dst string, r io.Reader) (n int64, err error) {
	start := time.Now()
	defer func() { record(dst, "write", start, err) }()

	f, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}

	n, err = io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dst)
		return n, err
	}
	return n, nil
}

// CopyFile copies src to dst, overwriting dst, and carries over the source
// modification time.
func CopyFile(src, dst string) (err error) {
	start := time.Now()
	defer func() { record(dst, "copy", start, err) }()

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}

	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
