package startup

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"comic-gallery/internal/workers"
)

// isolateEnv points DATA_DIR at a fresh directory and clears the variables
// LoadConfig reads, so a test only sees what it sets.
func isolateEnv(t *testing.T) string {
	t.Helper()
	dataDir := filepath.Join(t.TempDir(), "data")
	t.Setenv("DATA_DIR", dataDir)
	for _, key := range []string{"PORT", "METRICS_PORT", "METRICS_ENABLED", "DATABASE_PATH",
		"MAX_UPLOAD_SIZE", "LOG_STATIC_FILES", "LOG_HEALTH_CHECKS", workers.OverrideEnv} {
		t.Setenv(key, "")
	}
	return dataDir
}

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version != Version || info.Commit != Commit || info.BuildTime != BuildTime {
		t.Errorf("build fields = %+v, want %s/%s/%s", info, Version, Commit, BuildTime)
	}
	if info.GoVersion != GoVersion {
		t.Errorf("Expected GoVersion=%s, got %s", GoVersion, info.GoVersion)
	}
	if info.OS != runtime.GOOS || info.Arch != runtime.GOARCH {
		t.Errorf("platform = %s/%s, want %s/%s", info.OS, info.Arch, runtime.GOOS, runtime.GOARCH)
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue string
		want         string
	}{
		{"unset returns default", "", "./data", "./data"},
		{"set value wins", "/srv/gallery", "./data", "/srv/gallery"},
		{"empty default", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GALLERY_TEST_VAR", tt.envValue)

			if got := getEnv("GALLERY_TEST_VAR", tt.defaultValue); got != tt.want {
				t.Errorf("getEnv() = %q, want %q", got, tt.want)
			}
		})
	}
}

// =============================================================================
// LoadConfig
// =============================================================================

func TestLoadConfigMaxUploadSize(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int64
	}{
		{"default", "", 512 * 1000 * 1000},
		{"decimal megabytes", "512MB", 512 * 1000 * 1000},
		{"binary gigabytes", "1GiB", 1 << 30},
		{"plain bytes", "1048576", 1 << 20},
		{"spaced unit", "64 MiB", 64 << 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			t.Setenv("MAX_UPLOAD_SIZE", tt.value)

			cfg, err := LoadConfig()
			if err != nil {
				t.Fatalf("LoadConfig() error: %v", err)
			}
			if cfg.MaxUploadSize != tt.want {
				t.Errorf("MaxUploadSize = %d, want %d", cfg.MaxUploadSize, tt.want)
			}
		})
	}
}

func TestLoadConfigInvalidMaxUploadSize(t *testing.T) {
	for _, value := range []string{"not-a-size", "0", "-5MB"} {
		t.Run(value, func(t *testing.T) {
			isolateEnv(t)
			t.Setenv("MAX_UPLOAD_SIZE", value)

			cfg, err := LoadConfig()
			if err == nil {
				t.Fatalf("LoadConfig() = %+v, want error", cfg)
			}
			if !strings.Contains(err.Error(), "MAX_UPLOAD_SIZE") {
				t.Errorf("error %q should name MAX_UPLOAD_SIZE", err)
			}
		})
	}
}

func TestLoadConfigDataDirLayout(t *testing.T) {
	dataDir := isolateEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.DataDir != dataDir {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, dataDir)
	}
	if cfg.UploadsDir != filepath.Join(dataDir, "uploads") {
		t.Errorf("UploadsDir = %q", cfg.UploadsDir)
	}
	if cfg.ImagesDir != filepath.Join(dataDir, "images") {
		t.Errorf("ImagesDir = %q", cfg.ImagesDir)
	}
	if _, err := os.Stat(filepath.Join(dataDir, ".write-test")); !os.IsNotExist(err) {
		t.Errorf("write test file left behind: %v", err)
	}
}

func TestLoadConfigRelativeDataDir(t *testing.T) {
	isolateEnv(t)
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("DATA_DIR", "gallery-data")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if !filepath.IsAbs(cfg.DataDir) || filepath.Base(cfg.DataDir) != "gallery-data" {
		t.Errorf("DataDir = %q, want an absolute path ending in gallery-data", cfg.DataDir)
	}
}

func TestLoadConfigDatabasePath(t *testing.T) {
	tests := []struct {
		name  string
		value func(root string) string
		want  func(root string) string
	}{
		{
			name:  "empty keeps history in memory",
			value: func(string) string { return "" },
			want:  func(string) string { return "" },
		},
		{
			name:  "file path is made absolute",
			value: func(root string) string { return filepath.Join(root, "state", "history.db") },
			want:  func(root string) string { return filepath.Join(root, "state", "history.db") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			root := t.TempDir()
			t.Setenv("DATABASE_PATH", tt.value(root))

			cfg, err := LoadConfig()
			if err != nil {
				t.Fatalf("LoadConfig() error: %v", err)
			}
			if cfg.DatabasePath != tt.want(root) {
				t.Errorf("DatabasePath = %q, want %q", cfg.DatabasePath, tt.want(root))
			}
			if cfg.DatabasePath != "" {
				if info, err := os.Stat(filepath.Dir(cfg.DatabasePath)); err != nil || !info.IsDir() {
					t.Errorf("database directory not created: %v", err)
				}
			}
		})
	}
}

func TestLoadConfigCopyWorkers(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"explicit count", "3", 3},
		{"capped", "64", 8},
		{"invalid falls back", "many", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			t.Setenv(workers.OverrideEnv, tt.value)

			want := tt.want
			if want == 0 {
				want = workers.ForIO(8)
			}

			cfg, err := LoadConfig()
			if err != nil {
				t.Fatalf("LoadConfig() error: %v", err)
			}
			if cfg.CopyWorkers != want {
				t.Errorf("CopyWorkers = %d, want %d", cfg.CopyWorkers, want)
			}
		})
	}
}
