package workers

import (
	"runtime"
	"testing"
)

func TestCount(t *testing.T) {
	available := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		expected   int
	}{
		{"cpu bound", 1.0, 0, available},
		{"io bound", 2.0, 0, available * 2},
		{"limit applies", 2.0, 1, 1},
		{"tiny multiplier floors to one", 0.001, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Count(tt.multiplier, tt.limit); got != tt.expected {
				t.Errorf("Count(%v, %d) = %d, expected %d", tt.multiplier, tt.limit, got, tt.expected)
			}
		})
	}
}

func TestCountOverride(t *testing.T) {
	t.Setenv("INDEX_WORKERS", "3")
	if got := Count(1.0, 0); got != 3 {
		t.Errorf("Count with override = %d, expected 3", got)
	}
	if got := Count(1.0, 2); got != 2 {
		t.Errorf("Count with override above limit = %d, expected 2", got)
	}

	t.Setenv("INDEX_WORKERS", "not-a-number")
	if got := Count(1.0, 0); got != runtime.GOMAXPROCS(0) {
		t.Errorf("Count with bad override = %d, expected %d", got, runtime.GOMAXPROCS(0))
	}
}
