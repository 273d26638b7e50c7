package workers

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"testing"
)

func TestCount(t *testing.T) {
	t.Setenv(OverrideEnv, "")

	availableCPU := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		minExpect  int
		maxExpect  int
	}{
		{"CPU-bound", 1.0, 0, 1, availableCPU},
		{"I/O-bound", 2.0, 0, 1, availableCPU * 2},
		{"limit caps count", 2.0, 1, 1, 1},
		{"tiny multiplier floors at one", 0.0001, 0, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Count(tt.multiplier, tt.limit)
			if got < tt.minExpect || got > tt.maxExpect {
				t.Errorf("Count(%v, %d) = %d, want between %d and %d",
					tt.multiplier, tt.limit, got, tt.minExpect, tt.maxExpect)
			}
		})
	}
}

func TestCountOverride(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		limit int
		want  int
	}{
		{"override used", "5", 0, 5},
		{"override capped by limit", "50", 4, 4},
		{"invalid override ignored", "abc", 1, 1},
		{"zero override ignored", "0", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(OverrideEnv, tt.env)
			if got := Count(2.0, tt.limit); got != tt.want {
				t.Errorf("Count() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHelpers(t *testing.T) {
	t.Setenv(OverrideEnv, "")

	if ForIO(0) < ForCPU(0) {
		t.Errorf("ForIO(0)=%d should not be below ForCPU(0)=%d", ForIO(0), ForCPU(0))
	}
}

func TestEachRunsEveryJob(t *testing.T) {
	var sum atomic.Int64
	err := Each(context.Background(), 100, 4, func(_ context.Context, i int) error {
		sum.Add(int64(i))
		return nil
	})
	if err != nil {
		t.Fatalf("Each() error: %v", err)
	}
	if sum.Load() != 4950 {
		t.Errorf("sum = %d, want 4950", sum.Load())
	}
}

func TestEachReturnsFirstErrorInOrder(t *testing.T) {
	errLow := errors.New("job 3")
	errHigh := errors.New("job 7")

	err := Each(context.Background(), 10, 3, func(_ context.Context, i int) error {
		switch i {
		case 3:
			return errLow
		case 7:
			return errHigh
		}
		return nil
	})
	if !errors.Is(err, errLow) {
		t.Errorf("Each() error = %v, want %v", err, errLow)
	}
}

func TestEachCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Int32
	err := Each(ctx, 5, 2, func(_ context.Context, _ int) error {
		ran.Add(1)
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Each() error = %v, want context.Canceled", err)
	}
	if ran.Load() != 0 {
		t.Errorf("%d jobs ran after cancellation", ran.Load())
	}
}

func TestEachNoJobs(t *testing.T) {
	if err := Each(context.Background(), 0, 4, nil); err != nil {
		t.Errorf("Each() with no jobs = %v", err)
	}
}
