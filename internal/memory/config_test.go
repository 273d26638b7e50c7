package memory

import (
	"math"
	"runtime/debug"
	"testing"
	"time"
)

// restoreMemoryLimit resets the process-wide soft limit after a test.
func restoreMemoryLimit(t *testing.T) {
	t.Helper()
	old := debug.SetMemoryLimit(-1)
	t.Cleanup(func() { debug.SetMemoryLimit(old) })
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LimitBytes != 0 {
		t.Errorf("Expected LimitBytes to be 0, got %d", cfg.LimitBytes)
	}
	if cfg.HighWaterMark >= cfg.CriticalWaterMark {
		t.Errorf("HighWaterMark %v should be below CriticalWaterMark %v", cfg.HighWaterMark, cfg.CriticalWaterMark)
	}
	if cfg.CheckInterval != 5*time.Second {
		t.Errorf("Expected CheckInterval to be 5s, got %v", cfg.CheckInterval)
	}
}

func TestConfigureFromEnv_NoEnvironmentVariables(t *testing.T) {
	restoreMemoryLimit(t)
	t.Setenv("GOMEMLIMIT", "")
	t.Setenv("MEMORY_LIMIT", "")
	t.Setenv("MEMORY_RATIO", "")

	result := ConfigureFromEnv()

	if result.Configured {
		t.Error("Expected Configured to be false when no env vars set")
	}
	if result.Source != sourceNone {
		t.Errorf("Expected Source %q, got %q", sourceNone, result.Source)
	}
	if result.GoMemLimit != 0 || result.ContainerLimit != 0 || result.Ratio != 0 {
		t.Errorf("Expected zero limits, got %+v", result)
	}
}

func TestConfigureFromEnv_GOMEMLIMITSet(t *testing.T) {
	restoreMemoryLimit(t)
	t.Setenv("GOMEMLIMIT", "500MiB")
	t.Setenv("MEMORY_LIMIT", "1073741824")

	// The runtime reads GOMEMLIMIT only at startup, so simulate its effect.
	debug.SetMemoryLimit(500 << 20)

	result := ConfigureFromEnv()

	if result.Source != sourceGOMEMLIMIT {
		t.Errorf("Expected Source %q, got %q", sourceGOMEMLIMIT, result.Source)
	}
	if !result.Configured || result.GoMemLimit != 500<<20 {
		t.Errorf("Expected 500MiB limit, got %+v", result)
	}
	if result.ContainerLimit != 0 {
		t.Errorf("MEMORY_LIMIT should be ignored, got %d", result.ContainerLimit)
	}
}

func TestConfigureFromEnv_MEMORYLIMIT(t *testing.T) {
	tests := []struct {
		name      string
		limit     string
		ratio     string
		wantLimit int64
		wantRatio float64
	}{
		{"plain bytes default ratio", "1073741824", "", 1 << 30, DefaultMemoryRatio},
		{"humanized size", "2GiB", "", 2 << 30, DefaultMemoryRatio},
		{"custom ratio", "1073741824", "0.5", 1 << 30, 0.5},
		{"ratio of one", "1073741824", "1.0", 1 << 30, 1.0},
		{"ratio too large", "1073741824", "1.5", 1 << 30, DefaultMemoryRatio},
		{"zero ratio", "1073741824", "0", 1 << 30, DefaultMemoryRatio},
		{"negative ratio", "1073741824", "-0.5", 1 << 30, DefaultMemoryRatio},
		{"unparsable ratio", "1073741824", "half", 1 << 30, DefaultMemoryRatio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restoreMemoryLimit(t)
			t.Setenv("GOMEMLIMIT", "")
			t.Setenv("MEMORY_LIMIT", tt.limit)
			t.Setenv("MEMORY_RATIO", tt.ratio)

			result := ConfigureFromEnv()

			if !result.Configured || result.Source != sourceMEMORYLIMIT {
				t.Fatalf("Expected MEMORY_LIMIT configuration, got %+v", result)
			}
			if result.ContainerLimit != tt.wantLimit {
				t.Errorf("ContainerLimit = %d, want %d", result.ContainerLimit, tt.wantLimit)
			}
			if result.Ratio != tt.wantRatio {
				t.Errorf("Ratio = %v, want %v", result.Ratio, tt.wantRatio)
			}
			want := int64(float64(tt.wantLimit) * tt.wantRatio)
			if result.GoMemLimit != want {
				t.Errorf("GoMemLimit = %d, want %d", result.GoMemLimit, want)
			}
			if got := debug.SetMemoryLimit(-1); got != want {
				t.Errorf("runtime limit = %d, want %d", got, want)
			}
		})
	}
}

func TestConfigureFromEnv_InvalidMEMORYLIMIT(t *testing.T) {
	for _, value := range []string{"lots", "-1073741824", "0"} {
		t.Run(value, func(t *testing.T) {
			restoreMemoryLimit(t)
			debug.SetMemoryLimit(math.MaxInt64)
			t.Setenv("GOMEMLIMIT", "")
			t.Setenv("MEMORY_LIMIT", value)

			result := ConfigureFromEnv()

			if result.Configured || result.Source != sourceNone {
				t.Errorf("Expected no configuration for %q, got %+v", value, result)
			}
			if got := debug.SetMemoryLimit(-1); got != math.MaxInt64 {
				t.Errorf("runtime limit changed to %d", got)
			}
		})
	}
}
