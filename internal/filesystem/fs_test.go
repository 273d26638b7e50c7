package filesystem

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"
)

type recordingObserver struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingObserver) ObserveOperation(volume, operation string, _ float64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	status := "ok"
	if err != nil {
		status = "err"
	}
	r.calls = append(r.calls, volume+"/"+operation+"/"+status)
}

func TestJoinWithinRoot(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name    string
		rel     string
		want    string
		wantErr bool
	}{
		{"plain name", "Pets", filepath.Join(root, "Pets"), false},
		{"nested", "Pets/cat01_1.jpg", filepath.Join(root, "Pets", "cat01_1.jpg"), false},
		{"empty is root", "", root, false},
		{"dot is root", ".", root, false},
		{"inner dotdot stays inside", "a/../b", filepath.Join(root, "b"), false},
		{"parent escape", "../outside", "", true},
		{"deep escape", "a/../../outside", "", true},
		{"backslash escape", "..\\outside", "", true},
		{"absolute is rooted", "/etc/passwd", filepath.Join(root, "etc", "passwd"), false},
		{"nul byte", "a\x00b", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JoinWithinRoot(root, tt.rel)
			if tt.wantErr {
				if !errors.Is(err, ErrPathEscape) {
					t.Fatalf("JoinWithinRoot(%q) error = %v, want ErrPathEscape", tt.rel, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("JoinWithinRoot(%q) unexpected error: %v", tt.rel, err)
			}
			if got != tt.want {
				t.Errorf("JoinWithinRoot(%q) = %q, want %q", tt.rel, got, tt.want)
			}
		})
	}
}

func TestChildDir(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name    string
		child   string
		wantErr error
	}{
		{"plain name", "Pets", nil},
		{"name with spaces", "My Comics", nil},
		{"empty", "", ErrNotChildName},
		{"dot", ".", ErrNotChildName},
		{"dotdot", "..", ErrPathEscape},
		{"cleans to root", "x/..", ErrNotChildName},
		{"cleans to sibling", "a/../b", ErrNotChildName},
		{"nested", "a/b", ErrNotChildName},
		{"backslash nested", "a\\b", ErrNotChildName},
		{"leading slash", "/b", ErrNotChildName},
		{"trailing slash", "b/", ErrNotChildName},
		{"parent escape", "../outside", ErrPathEscape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ChildDir(root, tt.child)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ChildDir(%q) error = %v, want %v", tt.child, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ChildDir(%q) unexpected error: %v", tt.child, err)
			}
			if want := filepath.Join(root, tt.child); got != want {
				t.Errorf("ChildDir(%q) = %q, want %q", tt.child, got, want)
			}
		})
	}
}

func TestIsWithin(t *testing.T) {
	tests := []struct {
		root, target string
		want         bool
	}{
		{"/data/images", "/data/images", true},
		{"/data/images", "/data/images/Pets", true},
		{"/data/images", "/data/images-old", false},
		{"/data/images", "/data", false},
		{"/", "/etc", true},
	}

	for _, tt := range tests {
		if got := IsWithin(tt.root, tt.target); got != tt.want {
			t.Errorf("IsWithin(%q, %q) = %v, want %v", tt.root, tt.target, got, tt.want)
		}
	}
}

func TestListFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.jpg", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := ListFiles(dir)
	if err != nil {
		t.Fatalf("ListFiles() error: %v", err)
	}
	want := []string{"a.jpg", "b.png", "notes.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListFiles() = %v, want %v", got, want)
	}
}

func TestListFilesMissingDir(t *testing.T) {
	_, err := ListFiles(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ListFiles() error = %v, want ErrNotExist", err)
	}
}

func TestResetDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "images")
	if err := os.MkdirAll(filepath.Join(dir, "old"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "old", "x.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ResetDir(dir); err != nil {
		t.Fatalf("ResetDir() error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty directory, found %d entries", len(entries))
	}
}

func TestWriteFile(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "data.xml")

	n, err := WriteFile(dst, strings.NewReader("<catalog/>"))
	if err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	if n != int64(len("<catalog/>")) {
		t.Errorf("WriteFile() wrote %d bytes", n)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "<catalog/>" {
		t.Errorf("file content = %q", data)
	}
}

func TestCopyFilePreservesModTime(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.jpg")
	dst := filepath.Join(dir, "dst.jpg")

	if err := os.WriteFile(src, []byte("jpegdata"), 0o644); err != nil {
		t.Fatal(err)
	}
	mod := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := os.Chtimes(src, mod, mod); err != nil {
		t.Fatal(err)
	}

	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile() error: %v", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "jpegdata" {
		t.Errorf("copied content = %q", data)
	}

	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(mod) {
		t.Errorf("ModTime = %v, want %v", info.ModTime(), mod)
	}
}

func TestVolumeResolver(t *testing.T) {
	vr := NewVolumeResolver(map[string]string{
		"uploads": "/data/uploads",
		"images":  "/data/images",
	})

	tests := []struct {
		path string
		want string
	}{
		{"/data/uploads/data.xml", "uploads"},
		{"/data/images/Pets/a.jpg", "images"},
		{"/data/images", "images"},
		{"/data/imagesX/a.jpg", "unknown"},
		{"/elsewhere", "unknown"},
	}

	for _, tt := range tests {
		if got := vr.Resolve(tt.path); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}

	var nilResolver *VolumeResolver
	if got := nilResolver.Resolve("/data"); got != "unknown" {
		t.Errorf("nil resolver = %q, want unknown", got)
	}
}

func TestObserverReceivesOperations(t *testing.T) {
	dir := t.TempDir()
	obs := &recordingObserver{}
	SetObserver(obs)
	SetDefaultVolumeResolver(NewVolumeResolver(map[string]string{"images": dir}))
	defer func() {
		SetObserver(nil)
		SetDefaultVolumeResolver(nil)
	}()

	if _, err := ListFiles(dir); err != nil {
		t.Fatal(err)
	}
	_, _ = ListFiles(filepath.Join(dir, "missing"))

	want := []string{"images/readdir/ok", "images/readdir/err"}
	if !reflect.DeepEqual(obs.calls, want) {
		t.Errorf("observed %v, want %v", obs.calls, want)
	}
}
